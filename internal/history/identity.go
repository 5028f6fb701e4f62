// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/pdiddy/paper-radar/pkg/types"
)

// Canonicalize derives the identity key for a paper. It is pure and
// deterministic: the same record always yields the same key, and two
// records describing the same work collapse to one key.
//
// Preference order: DOI, then feed-native identifier, then a hash of the
// normalized title combined with the normalized first-author surname.
// The title/author fallback merges cross-source sightings only on exact
// equality after normalization; no fuzzy similarity threshold is applied.
func Canonicalize(p *types.Paper) string {
	if doi := strings.ToLower(strings.TrimSpace(p.DOI)); doi != "" {
		return "doi:" + strings.TrimPrefix(doi, "https://doi.org/")
	}
	if id := strings.ToLower(strings.TrimSpace(p.FeedID)); id != "" {
		return "id:" + id
	}

	title := normalizeTitle(p.Title)
	author := ""
	if len(p.Authors) > 0 {
		author = normalizeAuthor(p.Authors[0])
	}
	sum := sha256.Sum256([]byte(title + "|" + author))
	return "work:" + hex.EncodeToString(sum[:8])
}

// normalizeTitle returns a lowercased, punctuation-stripped version of the
// title with collapsed whitespace.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// normalizeAuthor reduces an author name to a lowercased surname. Feeds
// disagree on "First Last" versus "Last, First"; the surname is the stable
// part.
func normalizeAuthor(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if i := strings.IndexByte(name, ','); i >= 0 {
		return strings.TrimSpace(name[:i])
	}
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
