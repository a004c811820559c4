package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/itsascout/scout/internal/events"
	"github.com/itsascout/scout/internal/interfaces"
	"github.com/itsascout/scout/internal/models"
)

// WebSocketHandler mirrors the SSE stream over a WebSocket for clients
// behind proxies that buffer event streams. Same protocol: subscribe
// first, then read status, so the terminal event can never be missed.
type WebSocketHandler struct {
	jobs     interfaces.JobStorage
	events   interfaces.EventService
	upgrader websocket.Upgrader
	logger   arbor.ILogger
}

func NewWebSocketHandler(jobs interfaces.JobStorage, eventService interfaces.EventService, logger arbor.ILogger) *WebSocketHandler {
	return &WebSocketHandler{
		jobs:   jobs,
		events: eventService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

func (h *WebSocketHandler) Stream(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

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

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("job_id", id).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	if job.IsTerminal() {
		h.writeDone(conn, job)
		return
	}

	// Reader goroutine notices client disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-done:
			return
		case raw, open := <-messages:
			if !open {
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}

			var event models.StepEvent
			if err := json.Unmarshal(raw, &event); err != nil {
				continue
			}
			if event.Step == models.StepPipeline && (event.Status == models.StatusCompleted || event.Status == models.StatusFailed) {
				return
			}
		}
	}
}

func (h *WebSocketHandler) writeDone(conn *websocket.Conn, job *models.ResolutionJob) {
	payload, err := json.Marshal(models.StepEvent{
		Step:   models.StepPipeline,
		Status: string(job.Status),
		Data: map[string]any{
			"waf_result": job.WAFResult,
			"tos_result": job.ToSResult,
		},
	})
	if err != nil {
		return
	}
	conn.WriteMessage(websocket.TextMessage, payload)
}
