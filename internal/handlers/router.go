package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/itsascout/scout/internal/interfaces"
	"github.com/itsascout/scout/internal/pipeline"
)

// Router builds the HTTP mux for the service.
type Router struct {
	submit     *SubmitHandler
	jobs       *JobHandler
	stream     *StreamHandler
	ws         *WebSocketHandler
	publishers *PublisherHandler
	status     *StatusHandler
}

func NewRouter(gate *pipeline.Gate, store interfaces.StorageManager, eventService interfaces.EventService, logger arbor.ILogger) *Router {
	return &Router{
		submit:     NewSubmitHandler(gate, logger),
		jobs:       NewJobHandler(store.Jobs(), logger),
		stream:     NewStreamHandler(store.Jobs(), eventService, logger),
		ws:         NewWebSocketHandler(store.Jobs(), eventService, logger),
		publishers: NewPublisherHandler(store.Publishers(), store.WAFReports(), logger),
		status:     NewStatusHandler(),
	}
}

// Mux wires every route onto a fresh ServeMux.
func (rt *Router) Mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", rt.publishers.IndexPage)
	mux.HandleFunc("POST /submit", rt.submit.Submit)
	mux.HandleFunc("GET /jobs/{id}", rt.jobs.JobPage)

	mux.HandleFunc("GET /api/jobs/{id}", rt.jobs.GetJob)
	mux.HandleFunc("GET /api/jobs/{id}/stream", rt.stream.Stream)
	mux.HandleFunc("GET /api/jobs/{id}/ws", rt.ws.Stream)
	mux.HandleFunc("GET /api/publishers", rt.publishers.ListPublishers)
	mux.HandleFunc("GET /api/publishers/{domain}", rt.publishers.GetPublisher)
	mux.HandleFunc("GET /api/health", rt.status.Health)
	mux.HandleFunc("GET /api/version", rt.status.Version)

	return mux
}
