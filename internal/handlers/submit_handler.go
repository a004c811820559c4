package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/itsascout/scout/internal/pipeline"
)

// flashCookie carries a validation error back to the index page.
const flashCookie = "scout_url_error"

// SubmitHandler is the POST /submit entry point.
type SubmitHandler struct {
	gate   *pipeline.Gate
	logger arbor.ILogger
}

func NewSubmitHandler(gate *pipeline.Gate, logger arbor.ILogger) *SubmitHandler {
	return &SubmitHandler{gate: gate, logger: logger}
}

// Submit validates the posted URL and redirects to the job page, or
// back to the index with a flashed error on validation failure.
func (h *SubmitHandler) Submit(w http.ResponseWriter, r *http.Request) {
	rawURL := strings.TrimSpace(r.FormValue("url"))

	job, err := h.gate.Submit(r.Context(), rawURL)
	if err != nil {
		h.logger.Warn().Err(err).Str("url", rawURL).Msg("Submission rejected")
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookie,
			Value:    "Please enter a valid article URL",
			Path:     "/",
			MaxAge:   60,
			HttpOnly: true,
		})
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	http.Redirect(w, r, "/jobs/"+job.ID, http.StatusFound)
}
