// Package main provides the apextrace Kafka ingestion consumer.
//
// The ingester reads raw Apex debug log bodies off a Kafka topic, parses
// each with apexlog.Parse, and persists the resulting governor-limit
// snapshots and log issues through internal/snapshotstore for longitudinal
// trend queries (see SPEC_FULL.md section 10).
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"golang.org/x/time/rate"

	"github.com/apex-trace/apextrace/apexlog"
	"github.com/apex-trace/apextrace/internal/config"
	"github.com/apex-trace/apextrace/internal/snapshotstore"
	"github.com/apex-trace/apextrace/internal/storage"
)

// Version information.
const (
	version = "1.0.0-dev"
	name    = "ingester"
)

const (
	defaultTopic         = "apex-debug-logs"
	defaultBrokerAddr    = "localhost:9092"
	defaultConsumerGroup = "apextrace-ingester"

	// writeRateLimit caps Postgres writes per second so a burst of replayed
	// Kafka messages cannot overwhelm the database - same token-bucket shape
	// as internal/api/middleware/ratelimit.go, new call site.
	writeRateLimit = 50
	writeBurst     = 100
)

func main() {
	versionFlag := flag.Bool("version", false, "show version information")
	flag.Parse()

	if *versionFlag {
		log.Printf("%s v%s\n", name, version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	logger.Info("Starting apextrace ingester",
		slog.String("service", name),
		slog.String("version", version),
	)

	topic := config.GetEnvStr("APEX_LOG_TOPIC", defaultTopic)
	brokerAddr := config.GetEnvStr("KAFKA_BROKER_ADDR", defaultBrokerAddr)
	consumerGroup := config.GetEnvStr("KAFKA_CONSUMER_GROUP", defaultConsumerGroup)

	storageConfig := storage.LoadConfig()
	if err := storageConfig.Validate(); err != nil {
		logger.Error("Database configuration invalid - the ingester requires a snapshot store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	conn, err := storage.NewConnection(storageConfig)
	if err != nil {
		logger.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = conn.Close() }()

	store, err := snapshotstore.NewPostgresStore(conn, snapshotstore.WithLogger(logger))
	if err != nil {
		logger.Error("Failed to create snapshot store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{brokerAddr},
		Topic:   topic,
		GroupID: consumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer func() { _ = reader.Close() }()

	limiter := rate.NewLimiter(rate.Limit(writeRateLimit), writeBurst)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Consuming debug logs",
		slog.String("topic", topic),
		slog.String("broker", brokerAddr),
		slog.String("consumer_group", consumerGroup),
	)

	runLoop(ctx, logger, reader, store, limiter)

	logger.Info("apextrace ingester stopped")
}

// runLoop reads messages until ctx is cancelled, parsing and persisting each
// one in turn. A failure to parse or persist a single message is logged and
// skipped rather than aborting the whole consumer - one malformed log should
// not stall the topic.
func runLoop(ctx context.Context, logger *slog.Logger, reader *kafka.Reader, store snapshotstore.Store, limiter *rate.Limiter) {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}

			logger.Error("Failed to read Kafka message", slog.String("error", err.Error()))

			continue
		}

		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}

			logger.Error("Rate limiter wait failed", slog.String("error", err.Error()))

			continue
		}

		processMessage(ctx, logger, store, msg)
	}
}

func processMessage(ctx context.Context, logger *slog.Logger, store snapshotstore.Store, msg kafka.Message) {
	start := time.Now()

	root := apexlog.Parse(msg.Value)

	saveCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	id, err := store.Save(saveCtx, root)
	if err != nil {
		logger.Error("Failed to persist snapshot",
			slog.String("error", err.Error()),
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
		)

		return
	}

	logger.Info("Persisted governor-limit snapshot",
		slog.String("snapshot_id", id),
		slog.Int("byte_size", len(msg.Value)),
		slog.Int("parsing_errors", len(root.ParsingErrors)),
		slog.Int("log_issues", len(root.LogIssues)),
		slog.Duration("elapsed", time.Since(start)),
	)
}
