package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/itsascout/scout/internal/interfaces"
)

// PublisherHandler serves the publisher list and detail endpoints.
type PublisherHandler struct {
	publishers interfaces.PublisherStorage
	wafReports interfaces.WAFReportStorage
	logger     arbor.ILogger
}

func NewPublisherHandler(publishers interfaces.PublisherStorage, wafReports interfaces.WAFReportStorage, logger arbor.ILogger) *PublisherHandler {
	return &PublisherHandler{publishers: publishers, wafReports: wafReports, logger: logger}
}

// ListPublishers is GET /api/publishers, newest first.
func (h *PublisherHandler) ListPublishers(w http.ResponseWriter, r *http.Request) {
	publishers, err := h.publishers.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Publisher list failed")
		WriteError(w, http.StatusInternalServerError, "publisher list failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"publishers": publishers,
		"count":      len(publishers),
	})
}

// GetPublisher is GET /api/publishers/{domain}, including the latest
// WAF scan history row when one exists.
func (h *PublisherHandler) GetPublisher(w http.ResponseWriter, r *http.Request) {
	domain := r.PathValue("domain")

	publisher, err := h.publishers.GetByDomain(r.Context(), domain)
	if err != nil {
		h.logger.Error().Err(err).Str("domain", domain).Msg("Publisher lookup failed")
		WriteError(w, http.StatusInternalServerError, "publisher lookup failed")
		return
	}
	if publisher == nil {
		WriteError(w, http.StatusNotFound, "publisher not found")
		return
	}

	response := map[string]any{"publisher": publisher}
	if report, err := h.wafReports.LatestByDomain(r.Context(), domain); err == nil && report != nil {
		response["latest_waf_report"] = report
	}

	WriteJSON(w, http.StatusOK, response)
}

// IndexPage is GET /: the publisher list shell with the submission
// form props, including any flashed validation error.
func (h *PublisherHandler) IndexPage(w http.ResponseWriter, r *http.Request) {
	publishers, err := h.publishers.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Publisher list failed")
		http.Error(w, "publisher list failed", http.StatusInternalServerError)
		return
	}

	var flash string
	if cookie, err := r.Cookie(flashCookie); err == nil {
		flash = cookie.Value
		http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})
	}

	props, err := json.Marshal(map[string]any{
		"publishers": publishers,
		"errors":     map[string]string{"url": flash},
	})
	if err != nil {
		http.Error(w, "failed to render index", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>Scout</title></head>
<body>
<div id="app"></div>
<script id="props" type="application/json">%s</script>
<script src="/static/app.js"></script>
</body>
</html>
`, props)
}
