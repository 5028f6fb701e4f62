// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm implements the filter, analysis, and narrative backends on
// top of an OpenAI-compatible chat-completions API. Backends are plain
// interfaces so pipeline tests can supply mocks.
package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/paper-radar/internal/gateway"
	"github.com/pdiddy/paper-radar/pkg/types"
)

const chatCompletionsPath = "/chat/completions"

// Client is a minimal chat-completions client. It carries no retry or
// rate-limit logic of its own; the gateway owns that.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
}

// NewClient builds a client from backend configuration.
func NewClient(cfg types.LLMConfig) *Client {
	return &Client{
		httpClient:  &http.Client{},
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type string    `json:"type"`
	Text string    `json:"text,omitempty"`
	File *filePart `json:"file,omitempty"`
}

type filePart struct {
	Filename string `json:"filename"`
	FileData string `json:"file_data"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Chat sends a system and user message and returns the assistant text.
func (c *Client) Chat(ctx context.Context, system, user string) (string, error) {
	return c.complete(ctx, []chatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	})
}

// ChatWithPDF sends a prompt alongside PDF bytes as a file attachment,
// for content-capable backends.
func (c *Client) ChatWithPDF(ctx context.Context, prompt string, pdf []byte, filename string) (string, error) {
	encoded := base64.StdEncoding.EncodeToString(pdf)
	return c.complete(ctx, []chatMessage{
		{Role: "user", Content: []contentPart{
			{Type: "file", File: &filePart{
				Filename: filename,
				FileData: "data:application/pdf;base64," + encoded,
			}},
			{Type: "text", Text: prompt},
		}},
	})
}

// complete posts one chat-completions request. Errors are classified for
// the gateway: 5xx and decode failures are transient, 4xx permanent.
func (c *Client) complete(ctx context.Context, messages []chatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", gateway.Permanent(fmt.Errorf("encoding request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+chatCompletionsPath, bytes.NewReader(body))
	if err != nil {
		return "", gateway.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", gateway.Transient(fmt.Errorf("chat request: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", gateway.Permanentf("chat API rejected credentials (HTTP %d)", resp.StatusCode)
	case resp.StatusCode == http.StatusNotFound:
		return "", gateway.Permanentf("chat API endpoint not found (HTTP %d)", resp.StatusCode)
	case resp.StatusCode == http.StatusBadRequest:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", gateway.Permanentf("chat API rejected request: %s", strings.TrimSpace(string(detail)))
	case resp.StatusCode != http.StatusOK:
		return "", gateway.Transientf("chat API returned HTTP %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", gateway.Transient(fmt.Errorf("decoding chat response: %w", err))
	}
	if parsed.Error != nil {
		return "", gateway.Transientf("chat API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", gateway.Transientf("chat response contained no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
