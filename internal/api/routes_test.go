// Package api provides the HTTP ingestion gateway for apextrace.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const sampleDebugLog = "API_VERSION\n" +
	"12:00:00.0 (0)|EXECUTION_STARTED\n" +
	"12:00:00.1 (100)|EXECUTION_FINISHED\n"

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &ServerConfig{
		Port:               8080,
		Host:               "localhost",
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       5 * time.Second,
		ShutdownTimeout:    5 * time.Second,
		LogLevel:           slog.LevelError,
		MaxRequestSize:     DefaultMaxRequestSize,
		CORSAllowedOrigins: []string{"*"},
		CORSAllowedMethods: []string{"GET", "POST"},
		CORSAllowedHeaders: []string{"Content-Type"},
		CORSMaxAge:         86400,
	}

	return NewServer(cfg, nil, nil, nil)
}

func TestHandlePing(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}

	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}

	if resp.AuthEnabled {
		t.Error("expected AuthEnabled to be false with nil key store")
	}
}

func TestHandleIngest_Success(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/logs", strings.NewReader(sampleDebugLog))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ingestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode ingest response: %v", err)
	}

	if resp.ByteSize != int64(len(sampleDebugLog)) {
		t.Errorf("expected byteSize %d, got %d", len(sampleDebugLog), resp.ByteSize)
	}
}

func TestHandleIngest_EmptyBody(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/logs", strings.NewReader(""))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleIngest_UnsupportedContentType(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/logs", strings.NewReader(sampleDebugLog))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rec.Code)
	}
}

func TestHandleIngest_PayloadTooLarge(t *testing.T) {
	server := newTestServer(t)
	server.config.MaxRequestSize = 4

	req := httptest.NewRequest(http.MethodPost, "/v1/logs", strings.NewReader(sampleDebugLog))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}
