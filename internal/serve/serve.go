// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package serve exposes persisted reports over a small read-only HTTP
// API. It never mutates reports; paper numbers come straight from the
// persisted JSON.
package serve

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pdiddy/paper-radar/internal/report"
)

// Handler serves persisted reports from a reports directory.
type Handler struct {
	reportsDir string
}

// New builds the report API over reportsDir.
func New(reportsDir string) *echo.Echo {
	h := &Handler{reportsDir: reportsDir}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/healthz", h.health)
	e.GET("/api/reports", h.listReports)
	e.GET("/api/reports/latest", h.latestReport)
	e.GET("/api/reports/:date", h.reportByDate)

	return e
}

func (h *Handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) listReports(c echo.Context) error {
	dates, err := report.Dates(h.reportsDir)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if dates == nil {
		dates = []string{}
	}
	return c.JSON(http.StatusOK, map[string]any{"dates": dates})
}

func (h *Handler) latestReport(c echo.Context) error {
	rep, err := report.Latest(h.reportsDir)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "no reports available")
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *Handler) reportByDate(c echo.Context) error {
	date := c.Param("date")
	if !report.ValidDate(date) {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	rep, err := report.Load(h.reportsDir, date)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "no report for "+date)
	}
	return c.JSON(http.StatusOK, rep)
}
