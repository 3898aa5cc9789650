// Package main provides the apextrace HTTP ingestion gateway.
//
// apexlogd accepts a raw Apex debug log over POST /v1/logs, parses it with
// apexlog.Parse, and returns a JSON summary synchronously - a lighter-weight
// alternative to standing up a Kafka consumer (cmd/ingester) for ad hoc
// uploads such as a CI step checking governor-limit usage on a single run.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/apex-trace/apextrace/internal/api"
	"github.com/apex-trace/apextrace/internal/api/middleware"
	"github.com/apex-trace/apextrace/internal/namespacing"
	"github.com/apex-trace/apextrace/internal/storage"
)

// Version information.
const (
	version = "1.0.0-dev"
	name    = "apexlogd"
)

func main() {
	versionFlag := flag.Bool("version", false, "show version information")
	flag.Parse()

	if *versionFlag {
		log.Printf("%s v%s\n", name, version)
		os.Exit(0)
	}

	serverConfig := api.LoadServerConfig()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: serverConfig.LogLevel,
	}))

	logger.Info("Starting apextrace ingestion gateway",
		slog.String("service", name),
		slog.String("version", version),
	)

	logger.Info("Loaded server configuration",
		slog.String("host", serverConfig.Host),
		slog.Int("port", serverConfig.Port),
		slog.Duration("read_timeout", serverConfig.ReadTimeout),
		slog.Duration("write_timeout", serverConfig.WriteTimeout),
		slog.Duration("shutdown_timeout", serverConfig.ShutdownTimeout),
		slog.String("log_level", serverConfig.LogLevel.String()),
	)

	namespaceConfig, err := namespacing.LoadConfigFromEnv()
	if err != nil {
		logger.Error("Failed to load namespace pattern configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	apiKeyStore := loadAPIKeyStore(logger)

	var rateLimiter middleware.RateLimiter
	if apiKeyStore != nil {
		rateLimiter = middleware.NewInMemoryRateLimiter(&middleware.Config{
			GlobalRPS: 100,
			PluginRPS: 50,
			UnAuthRPS: 10,
		})
	}

	server := api.NewServer(&serverConfig, apiKeyStore, rateLimiter, namespaceConfig.NamespacePatterns)

	if err := server.Start(); err != nil {
		logger.Error("Server failed to start", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("apextrace ingestion gateway stopped")
}

// loadAPIKeyStore opens the Postgres-backed API key store described in
// SPEC_FULL.md section 11. It's optional: a missing DATABASE_URL disables
// authentication entirely rather than failing startup, matching the
// teacher's "core functionality required, everything else optional" pattern
// for the gateway (the gateway itself has no required persistence - only
// auth needs a database).
func loadAPIKeyStore(logger *slog.Logger) storage.APIKeyStore {
	storageConfig := storage.LoadConfig()
	if err := storageConfig.Validate(); err != nil {
		logger.Warn("No database configured, authentication disabled", slog.String("error", err.Error()))

		return nil
	}

	conn, err := storage.NewConnection(storageConfig)
	if err != nil {
		logger.Warn("Failed to connect to database, authentication disabled", slog.String("error", err.Error()))

		return nil
	}

	keyStore, err := storage.NewPersistentKeyStore(conn)
	if err != nil {
		logger.Warn("Failed to create API key store, authentication disabled", slog.String("error", err.Error()))

		return nil
	}

	return keyStore
}
