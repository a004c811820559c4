package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/itsascout/scout/internal/events"
	"github.com/itsascout/scout/internal/interfaces"
	"github.com/itsascout/scout/internal/models"
)

// StreamHandler serves GET /api/jobs/{id}/stream: the SSE feed of step
// events for one job. The subscription is opened before the job status
// is read, so a job finishing between the two cannot lose its terminal
// event: either the live event arrives on the subscription, or the
// status read observes the terminal state and a synthetic done frame is
// sent.
type StreamHandler struct {
	jobs   interfaces.JobStorage
	events interfaces.EventService
	logger arbor.ILogger
}

func NewStreamHandler(jobs interfaces.JobStorage, eventService interfaces.EventService, logger arbor.ILogger) *StreamHandler {
	return &StreamHandler{jobs: jobs, events: eventService, logger: logger}
}

func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	messages, unsubscribe := h.events.Subscribe(events.JobChannel(id))
	defer unsubscribe()

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

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if job.IsTerminal() {
		h.writeDone(w, job)
		flusher.Flush()
		return
	}

	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case raw, open := <-messages:
			if !open {
				return
			}

			var event models.StepEvent
			if err := json.Unmarshal(raw, &event); err != nil {
				h.logger.Warn().Err(err).Str("job_id", id).Msg("Dropping malformed event")
				continue
			}

			if event.Step == models.StepPipeline && (event.Status == models.StatusCompleted || event.Status == models.StatusFailed) {
				fmt.Fprintf(w, "event: done\ndata: %s\n\n", raw)
				flusher.Flush()
				return
			}

			fmt.Fprintf(w, "data: %s\n\n", raw)
			flusher.Flush()
		}
	}
}

// writeDone emits the synthetic terminal frame for a job that finished
// before the client connected.
func (h *StreamHandler) writeDone(w http.ResponseWriter, job *models.ResolutionJob) {
	payload, err := json.Marshal(models.StepEvent{
		Step:   models.StepPipeline,
		Status: string(job.Status),
		Data: map[string]any{
			"waf_result": job.WAFResult,
			"tos_result": job.ToSResult,
		},
	})
	if err != nil {
		h.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to serialize done frame")
		return
	}
	fmt.Fprintf(w, "event: done\ndata: %s\n\n", payload)
}
