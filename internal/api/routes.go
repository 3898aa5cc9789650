// Package api provides the HTTP ingestion gateway for apextrace.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/apex-trace/apextrace/apexlog"
	"github.com/apex-trace/apextrace/internal/api/middleware"
)

// setupRoutes registers every HTTP route the gateway serves. The three
// probe endpoints are registered as public so they bypass authentication.
func (s *Server) setupRoutes(mux *http.ServeMux) {
	middleware.RegisterPublicEndpoint("/ping")
	middleware.RegisterPublicEndpoint("/ready")
	middleware.RegisterPublicEndpoint("/health")

	mux.HandleFunc("GET /ping", s.handlePing)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /v1/logs", s.handleIngest)
}

// handlePing responds to liveness probes with a minimal 200 OK.
func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

// handleReady responds to readiness probes. The gateway has no required
// out-of-process dependency of its own (parsing is in-process), so readiness
// always mirrors liveness once the server has finished constructing its
// routes.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// healthResponse is the JSON body returned by GET /health.
type healthResponse struct {
	Status       string `json:"status"`
	UptimeSecond int64  `json:"uptimeSeconds"`
	AuthEnabled  bool   `json:"authEnabled"`
	RateLimited  bool   `json:"rateLimitEnabled"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	uptime := int64(0)
	if !s.startTime.IsZero() {
		uptime = int64(time.Since(s.startTime).Seconds())
	}

	resp := healthResponse{
		Status:       "ok",
		UptimeSecond: uptime,
		AuthEnabled:  s.apiKeyStore != nil,
		RateLimited:  s.rateLimiter != nil,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// ingestResponse summarizes a single parsed debug log: its root duration,
// governor-limit snapshots, log issues and parsing errors. It deliberately
// mirrors apexlog.Root rather than persisting anything - see SPEC_FULL.md
// section 11 for the synchronous-upload rationale.
type ingestResponse struct {
	ByteSize         int64                      `json:"byteSize"`
	StartTimeMillis  *int64                     `json:"startTimeMillis,omitempty"`
	ExecutionEndTime *int64                     `json:"executionEndTimeNs,omitempty"`
	Namespaces       []string                   `json:"namespaces"`
	ParsingErrors    []string                   `json:"parsingErrors"`
	LogIssues        []apexlog.LogIssue         `json:"logIssues"`
	GovernorLimits   apexlog.GovernorLimitState `json:"governorLimits"`
}

// handleIngest accepts a raw Apex debug log body, parses it with
// apexlog.Parse, and returns a JSON summary. It persists nothing - the
// out-of-band path for that is cmd/ingester's Kafka consumer writing through
// internal/snapshotstore.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" && ct != "text/plain" && ct != "application/octet-stream" {
		WriteErrorResponse(w, r, s.logger,
			UnsupportedMediaType("Content-Type must be text/plain or application/octet-stream, got "+ct))

		return
	}

	maxSize := s.config.MaxRequestSize
	if maxSize <= 0 {
		maxSize = DefaultMaxRequestSize
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxSize+1))
	if err != nil {
		WriteErrorResponse(w, r, s.logger, BadRequest("failed to read request body: "+err.Error()))

		return
	}

	if int64(len(body)) > maxSize {
		WriteErrorResponse(w, r, s.logger,
			PayloadTooLarge("log body exceeds the configured maximum request size"))

		return
	}

	if len(body) == 0 {
		WriteErrorResponse(w, r, s.logger, BadRequest("log body must not be empty"))

		return
	}

	opts := s.parseOptions()
	root := apexlog.Parse(body, opts...)

	namespaces := make([]string, 0, len(root.Namespaces))
	for ns := range root.Namespaces {
		namespaces = append(namespaces, ns)
	}

	resp := ingestResponse{
		ByteSize:         root.ByteSize,
		StartTimeMillis:  root.StartTime,
		ExecutionEndTime: root.ExecutionEndTime,
		Namespaces:       namespaces,
		ParsingErrors:    root.ParsingErrors,
		LogIssues:        root.LogIssues,
		GovernorLimits:   root.GovernorLimits,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("failed to encode ingest response", "error", err.Error())
	}
}
