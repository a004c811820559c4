package handlers

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/itsascout/scout/internal/interfaces"
)

// JobHandler serves the job page and the job JSON API.
type JobHandler struct {
	jobs   interfaces.JobStorage
	logger arbor.ILogger
}

func NewJobHandler(jobs interfaces.JobStorage, logger arbor.ILogger) *JobHandler {
	return &JobHandler{jobs: jobs, logger: logger}
}

// GetJob is GET /api/jobs/{id}.
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	job, err := h.jobs.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("job_id", id).Msg("Job lookup failed")
		WriteError(w, http.StatusInternalServerError, "job lookup failed")
		return
	}
	if job == nil {
		WriteError(w, http.StatusNotFound, "job not found")
		return
	}

	WriteJSON(w, http.StatusOK, job)
}

// JobPage is GET /jobs/{id}: an HTML shell embedding the job state as
// props for the client, which streams updates over SSE.
func (h *JobHandler) JobPage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	job, err := h.jobs.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Str("job_id", id).Msg("Job lookup failed")
		http.Error(w, "job lookup failed", http.StatusInternalServerError)
		return
	}
	if job == nil {
		http.NotFound(w, r)
		return
	}

	props, err := json.Marshal(map[string]any{
		"job":        job,
		"stream_url": "/api/jobs/" + job.ID + "/stream",
	})
	if err != nil {
		http.Error(w, "failed to render job", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>Scout - %s</title></head>
<body>
<div id="app"></div>
<script id="props" type="application/json">%s</script>
<script src="/static/app.js"></script>
</body>
</html>
`, html.EscapeString(job.CanonicalURL), props)
}
