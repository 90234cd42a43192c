// Package web serves the graph visualization over HTTP: a JSON snapshot
// API, pointer event ingestion, SSE event streams, and the embedded
// frontend page.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mheland/notegraph/pkg/cycles"
	"github.com/mheland/notegraph/pkg/logging"
	"github.com/mheland/notegraph/pkg/pubsub"
	"github.com/mheland/notegraph/pkg/scene"
)

//go:embed static/*
var staticFiles embed.FS

// GraphResponse is the /api/graph payload: the current frame plus build
// statistics.
type GraphResponse struct {
	Frame  pubsub.FrameData   `json:"frame"`
	Cycles []cycles.LinkCycle `json:"cycles"`
}

// PointerResponse is the /api/pointer payload. Close is set when a
// double-click hit a note: the frontend should tear down the view and hand
// off to the note.
type PointerResponse struct {
	NoteID string `json:"note_id"`
	Close  bool   `json:"close"`
}

// Server hosts the HTTP API over a live scene
type Server struct {
	router    *mux.Router
	publisher pubsub.Publisher
	scene     *scene.Scene
}

// NewServer creates a web server with its SSE publisher. The publisher is
// shared with the scene via Publisher().
func NewServer() *Server {
	ssePublisher := pubsub.NewSSEPublisher()

	// build_status: replay only the current state to new subscribers
	ssePublisher.ConfigureTopic("build_status", pubsub.TopicConfig{
		BufferSize: 10,
		ReplayAll:  false,
	})

	// frames: a late subscriber only needs the latest frame
	ssePublisher.ConfigureTopic("frames", pubsub.TopicConfig{
		BufferSize: 1,
		ReplayAll:  false,
	})

	s := &Server{
		router:    mux.NewRouter(),
		publisher: ssePublisher,
	}
	s.setupRoutes()
	return s
}

// Publisher returns the SSE publisher shared with the scene
func (s *Server) Publisher() pubsub.Publisher {
	return s.publisher
}

// SetScene attaches the live scene the API serves
func (s *Server) SetScene(sc *scene.Scene) {
	s.scene = sc
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api/subscribe/build_status", s.handleSubscribe("build_status")).Methods("GET")
	s.router.HandleFunc("/api/subscribe/frames", s.handleSubscribe("frames")).Methods("GET")

	s.router.HandleFunc("/api/graph", s.handleGraph).Methods("GET")
	s.router.HandleFunc("/api/rebuild", s.handleRebuild).Methods("POST")
	s.router.HandleFunc("/api/pointer", s.handlePointer).Methods("POST")

	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		logging.Fatal("embedded static assets missing", "error", err)
	}
	s.router.PathPrefix("/").Handler(http.FileServer(http.FS(staticFS)))
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.scene == nil {
		http.Error(w, "Scene not available", http.StatusServiceUnavailable)
		return
	}

	response := GraphResponse{
		Frame:  s.scene.Snapshot(),
		Cycles: s.scene.Cycles(),
	}
	if response.Cycles == nil {
		response.Cycles = []cycles.LinkCycle{}
	}
	json.NewEncoder(w).Encode(response)
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.scene == nil {
		http.Error(w, "Scene not available", http.StatusServiceUnavailable)
		return
	}

	// Rebuilds run off the request so a slow vault scan doesn't hold the
	// connection open; progress streams over build_status.
	ctx := context.WithoutCancel(r.Context())
	go func() {
		if err := s.scene.Rebuild(ctx); err != nil {
			logging.ErrorContext(ctx, "rebuild failed", "error", err)
		}
	}()

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "rebuilding"})
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.scene == nil {
		http.Error(w, "Scene not available", http.StatusServiceUnavailable)
		return
	}

	var ev scene.PointerEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, fmt.Sprintf("Invalid pointer event: %v", err), http.StatusBadRequest)
		return
	}

	noteID, err := s.scene.HandlePointer(ev)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	json.NewEncoder(w).Encode(PointerResponse{
		NoteID: noteID,
		Close:  ev.Kind == "dblclick" && noteID != "",
	})
}

// handleSubscribe returns an SSE streaming handler for a topic
func (s *Server) handleSubscribe(topic string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		// Initial comment establishes the stream (Safari compatibility)
		fmt.Fprintf(w, ": connected\n\n")
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}

		sub, err := s.publisher.Subscribe(r.Context(), topic)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		defer sub.Close()

		for event := range sub.Events() {
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.DebugContext(r.Context(), "SSE write failed, closing stream", "topic", topic, "error", err)
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}
		}
	}
}

// Handler returns the full HTTP handler including request-ID logging
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

// Start starts the web server on the specified port
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	logging.Info("starting web server", "url", fmt.Sprintf("http://localhost%s", addr))
	return http.ListenAndServe(addr, s.Handler())
}
