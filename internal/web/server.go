// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package web exposes the redaction pipeline over HTTP.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"pii-redact/internal/detector"
	"pii-redact/internal/extract"
	"pii-redact/internal/llm"
	"pii-redact/internal/observability"
	"pii-redact/internal/pipeline"
	"pii-redact/internal/redact"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves the redaction API. Requests are bounded by a semaphore
// so a burst cannot fan out into an unbounded number of model calls.
type Server struct {
	pipeline       *pipeline.Pipeline
	defaults       redact.Settings
	port           int
	maxUploadBytes int64
	semaphore      chan struct{}
	observer       *observability.Observer
	metrics        *metrics
	mux            *http.ServeMux
	server         *http.Server
}

// Options configures a Server.
type Options struct {
	Port int

	// MaxConcurrent caps requests processed at once; zero means 8.
	MaxConcurrent int

	// MaxUploadBytes caps document upload size; zero means 10 MiB.
	MaxUploadBytes int64

	// Defaults is used when a request does not carry its own settings.
	Defaults redact.Settings

	Observer *observability.Observer
}

// NewServer wires the API around an assembled pipeline.
func NewServer(p *pipeline.Pipeline, opts Options) *Server {
	if opts.Port <= 0 {
		opts.Port = 8080
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 8
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}

	s := &Server{
		pipeline:       p,
		defaults:       opts.Defaults,
		port:           opts.Port,
		maxUploadBytes: opts.MaxUploadBytes,
		semaphore:      make(chan struct{}, opts.MaxConcurrent),
		observer:       opts.Observer,
		metrics:        newMetrics(),
		mux:            http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/redact/text", s.instrument("redact_text", s.handleRedactText))
	s.mux.HandleFunc("/api/redact/document", s.instrument("redact_document", s.handleRedactDocument))
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
}

// Handler returns the server's HTTP handler, used directly by tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens and serves, trying successive ports when the requested
// one is taken.
func (s *Server) Start() error {
	var lastError error
	for i := 0; i < 10; i++ {
		port := s.port + i

		listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			lastError = err
			continue
		}

		s.server = &http.Server{
			Handler:           s.mux,
			ReadHeaderTimeout: 15 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      120 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		s.observer.Log(observability.Event{
			Component: "web",
			Operation: "start",
			Success:   true,
			Metadata:  map[string]any{"port": port},
		})
		fmt.Printf("Redaction API listening on http://localhost:%d\n", port)

		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			lastError = err
			continue
		}
		return nil
	}
	return fmt.Errorf("could not find an available port in range %d-%d: %w", s.port, s.port+9, lastError)
}

// Stop closes the server.
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

// redactRequest is the JSON body of POST /api/redact/text.
type redactRequest struct {
	Text     string           `json:"text"`
	Settings *redact.Settings `json:"settings,omitempty"`
}

// redactResponse wraps a pipeline result for the API. It carries the
// original text and the confirmed spans alongside the redacted text, so
// clients can highlight what was removed and where.
type redactResponse struct {
	RequestID   string                     `json:"request_id"`
	Original    string                     `json:"original"`
	Redacted    string                     `json:"redacted"`
	Detections  map[string][]detector.Span `json:"detections"`
	Statistics  map[string]int             `json:"statistics"`
	Explanation string                     `json:"explanation,omitempty"`
}

// errorResponse is the uniform error body.
type errorResponse struct {
	RequestID string `json:"request_id"`
	Error     string `json:"error"`
}

// instrument wraps a handler with request IDs, the concurrency
// semaphore, and per-endpoint metrics.
func (s *Server) instrument(endpoint string, handler func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		w.Header().Set("X-Request-ID", requestID)

		if r.Method != http.MethodPost {
			s.sendError(w, requestID, endpoint, http.StatusMethodNotAllowed, "method not allowed", time.Now())
			return
		}

		select {
		case s.semaphore <- struct{}{}:
			defer func() { <-s.semaphore }()
		default:
			s.metrics.rejected.Inc()
			s.sendError(w, requestID, endpoint, http.StatusServiceUnavailable, "server is at capacity, retry shortly", time.Now())
			return
		}

		start := time.Now()
		s.metrics.inFlight.Inc()
		defer s.metrics.inFlight.Dec()

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		handler(recorder, r, requestID)
		s.metrics.observe(endpoint, recorder.status, time.Since(start))
	}
}

// handleRedactText redacts a text payload supplied as JSON.
func (s *Server) handleRedactText(w http.ResponseWriter, r *http.Request, requestID string) {
	var req redactRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxUploadBytes)).Decode(&req); err != nil {
		s.writeError(w, requestID, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	s.redact(w, r, requestID, req.Text, req.Settings)
}

// handleRedactDocument extracts text from an uploaded document, then
// redacts it. Settings arrive as an optional JSON form field.
func (s *Server) handleRedactDocument(w http.ResponseWriter, r *http.Request, requestID string) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		s.writeError(w, requestID, http.StatusBadRequest, fmt.Sprintf("invalid multipart upload: %v", err))
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		s.writeError(w, requestID, http.StatusBadRequest, "upload must include a document field")
		return
	}
	defer file.Close()

	var settings *redact.Settings
	if raw := r.FormValue("settings"); raw != "" {
		settings = &redact.Settings{}
		if err := json.Unmarshal([]byte(raw), settings); err != nil {
			s.writeError(w, requestID, http.StatusBadRequest, fmt.Sprintf("invalid settings field: %v", err))
			return
		}
	}

	text, err := extract.FromReader(file, header.Filename)
	if err != nil {
		s.writeError(w, requestID, http.StatusBadRequest, fmt.Sprintf("could not extract text: %v", err))
		return
	}

	s.redact(w, r, requestID, text, settings)
}

// redact runs the pipeline and writes the response, mapping pipeline
// failures onto HTTP status codes.
func (s *Server) redact(w http.ResponseWriter, r *http.Request, requestID, text string, settings *redact.Settings) {
	effective := s.defaults
	if settings != nil {
		effective = *settings
	}

	result, err := s.pipeline.Redact(r.Context(), text, effective)
	if err != nil {
		status := statusFor(err)
		s.observer.Log(observability.Event{
			Component: "web",
			Operation: "redact",
			Error:     err.Error(),
			Metadata:  map[string]any{"request_id": requestID, "status": status},
		})
		s.writeError(w, requestID, status, err.Error())
		return
	}

	stats := make(map[string]int, len(result.Statistics))
	for category, n := range result.Statistics {
		stats[string(category)] = n
		if n > 0 {
			s.metrics.redacted.WithLabelValues(string(category)).Add(float64(n))
		}
	}
	detections := make(map[string][]detector.Span, len(result.Detections))
	for category, spans := range result.Detections {
		detections[string(category)] = spans
	}

	s.writeJSON(w, http.StatusOK, redactResponse{
		RequestID:   requestID,
		Original:    result.Original,
		Redacted:    result.Redacted,
		Detections:  detections,
		Statistics:  stats,
		Explanation: result.Explanation,
	})
}

// statusFor maps a pipeline error onto an HTTP status. Input and
// settings problems are the client's fault; a failed validation stage
// means the model service could not deliver an answer, which is a
// dependency outage, not a client error. Everything else is internal.
func statusFor(err error) int {
	if pipeline.IsInputError(err) {
		return http.StatusBadRequest
	}

	var stageErr *pipeline.StageError
	if !errors.As(err, &stageErr) {
		// Only settings validation fails before any stage runs.
		return http.StatusBadRequest
	}

	if stageErr.Stage == pipeline.StageValidate || errors.Is(err, llm.ErrServiceUnavailable) ||
		errors.Is(err, llm.ErrUnparsableResponse) || errors.Is(err, llm.ErrMissingAPIKey) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) sendError(w http.ResponseWriter, requestID, endpoint string, status int, message string, start time.Time) {
	s.writeError(w, requestID, status, message)
	s.metrics.observe(endpoint, status, time.Since(start))
}

func (s *Server) writeError(w http.ResponseWriter, requestID string, status int, message string) {
	s.writeJSON(w, status, errorResponse{RequestID: requestID, Error: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// statusRecorder captures the status code a handler wrote so the
// instrumentation wrapper can label its metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
