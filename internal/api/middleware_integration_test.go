// Package api provides the HTTP ingestion gateway for apextrace.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apex-trace/apextrace/apexlog"
	"github.com/apex-trace/apextrace/internal/api/middleware"
	"github.com/apex-trace/apextrace/internal/config"
	"github.com/apex-trace/apextrace/internal/storage"
)

// sampleLog is a minimal debug log body, just enough to parse without error -
// the middleware tests in this file care about headers and status codes, not
// parse fidelity (that's apexlog's own test suite).
const sampleLog = "API_VERSION\n" +
	"12:00:00.0 (0)|EXECUTION_STARTED\n" +
	"12:00:00.1 (100)|EXECUTION_FINISHED\n"

// middlewareTestServer bundles a configured Server with the dependencies
// needed to exercise auth and rate-limit middleware against it.
type middlewareTestServer struct {
	server      *Server
	testAPIKey  string
	rateLimiter *middleware.InMemoryRateLimiter
}

// setupMiddlewareTestServer creates a fully configured test server backed by
// a real Postgres-backed API key store (github.com/testcontainers/testcontainers-go),
// mirroring internal/storage/persistent_key_store_integration_test.go's setup.
func setupMiddlewareTestServer(ctx context.Context, t *testing.T, withRateLimiter bool) *middlewareTestServer {
	t.Helper()

	testDB := config.SetupTestDatabase(ctx, t)
	storageConn := &storage.Connection{DB: testDB.Connection}

	keyStore, err := storage.NewPersistentKeyStore(storageConn)
	require.NoError(t, err, "Failed to create key store")

	testAPIKey, err := storage.GenerateAPIKey("test-plugin")
	require.NoError(t, err, "Failed to generate API key")

	err = keyStore.Add(ctx, &storage.APIKey{
		ID:          "test-key-id",
		Key:         testAPIKey,
		PluginID:    "test-plugin",
		Name:        "Test Plugin",
		Permissions: []string{"logs:write"},
		CreatedAt:   time.Now(),
		Active:      true,
	})
	require.NoError(t, err, "Failed to add API key")

	var rateLimiter *middleware.InMemoryRateLimiter
	if withRateLimiter {
		rateLimiter = createTestRateLimiter(5, 2, 1)
	}

	cfg := &ServerConfig{
		Port:               8080,
		Host:               "localhost",
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       30 * time.Second,
		ShutdownTimeout:    30 * time.Second,
		LogLevel:           slog.LevelInfo,
		MaxRequestSize:     DefaultMaxRequestSize,
		CORSAllowedOrigins: []string{"*"},
		CORSAllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "Authorization", "X-Correlation-ID", "X-API-Key"},
		CORSMaxAge:         86400,
	}

	var limiter middleware.RateLimiter
	if rateLimiter != nil {
		limiter = rateLimiter
	}

	server := NewServer(cfg, keyStore, limiter, nil)

	t.Cleanup(func() {
		if rateLimiter != nil {
			rateLimiter.Close()
		}

		_ = keyStore.Close()
	})

	return &middlewareTestServer{
		server:      server,
		testAPIKey:  testAPIKey,
		rateLimiter: rateLimiter,
	}
}

// createTestRateLimiter creates a rate limiter with explicit configuration for testing.
// Burst capacity is automatically computed as 2 x rate for all tiers.
func createTestRateLimiter(globalRPS, pluginRPS, unauthRPS int) *middleware.InMemoryRateLimiter {
	cfg := &middleware.Config{
		GlobalRPS: globalRPS,
		PluginRPS: pluginRPS,
		UnAuthRPS: unauthRPS,
	}

	return middleware.NewInMemoryRateLimiter(cfg)
}

func makeIngestRequest(server *Server, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/logs", strings.NewReader(sampleLog))
	req.Header.Set("Content-Type", "text/plain")

	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	rec := httptest.NewRecorder()
	server.httpServer.Handler.ServeHTTP(rec, req)

	return rec
}

func TestMiddleware_Integration_AuthenticationRequired(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	ts := setupMiddlewareTestServer(ctx, t, false)

	t.Run("rejects missing API key", func(t *testing.T) {
		rec := makeIngestRequest(ts.server, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("accepts valid API key", func(t *testing.T) {
		rec := makeIngestRequest(ts.server, ts.testAPIKey)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rejects invalid API key", func(t *testing.T) {
		rec := makeIngestRequest(ts.server, "not-a-real-key")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestMiddleware_Integration_RateLimiting(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	ts := setupMiddlewareTestServer(ctx, t, true)

	var sawRateLimited bool

	for range 10 {
		rec := makeIngestRequest(ts.server, ts.testAPIKey)
		if rec.Code == http.StatusTooManyRequests {
			sawRateLimited = true

			break
		}
	}

	assert.True(t, sawRateLimited, "expected at least one request to be rate limited")
}

func TestMiddleware_Integration_CorrelationIDPropagated(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	ts := setupMiddlewareTestServer(ctx, t, false)

	rec := makeIngestRequest(ts.server, ts.testAPIKey)
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
}

func TestMiddleware_Integration_NoAuthConfigured(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg := &ServerConfig{
		Port:               8080,
		Host:               "localhost",
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       30 * time.Second,
		ShutdownTimeout:    30 * time.Second,
		LogLevel:           slog.LevelInfo,
		MaxRequestSize:     DefaultMaxRequestSize,
		CORSAllowedOrigins: []string{"*"},
		CORSAllowedMethods: []string{"GET", "POST"},
		CORSAllowedHeaders: []string{"Content-Type"},
		CORSMaxAge:         86400,
	}

	server := NewServer(cfg, nil, nil, nil)

	rec := makeIngestRequest(server, "")
	assert.Equal(t, http.StatusOK, rec.Code, "auth is optional - nil store disables it entirely")
}

func TestMiddleware_Integration_NamespacePatternsApplied(t *testing.T) {
	cfg := &ServerConfig{
		Port:               8080,
		Host:               "localhost",
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       30 * time.Second,
		ShutdownTimeout:    30 * time.Second,
		LogLevel:           slog.LevelInfo,
		MaxRequestSize:     DefaultMaxRequestSize,
		CORSAllowedOrigins: []string{"*"},
		CORSAllowedMethods: []string{"GET", "POST"},
		CORSAllowedHeaders: []string{"Content-Type"},
		CORSMaxAge:         86400,
	}

	patterns := []apexlog.NamespacePattern{{Match: "^acme_.*$", Namespace: "acme"}}
	server := NewServer(cfg, nil, nil, patterns)

	require.Len(t, server.namespacePatterns, 1)
	assert.Equal(t, "acme", server.namespacePatterns[0].Namespace)
}
