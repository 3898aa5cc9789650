// Package snapshotstore persists parsed debug-log summaries (apexlog.Root) to
// PostgreSQL, so that governor-limit history and parsing-error rates can be
// queried after the log bytes themselves have been discarded.
package snapshotstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/apex-trace/apextrace/apexlog"
	"github.com/apex-trace/apextrace/internal/config"
	"github.com/apex-trace/apextrace/internal/storage"
)

// Sentinel errors for snapshot storage operations.
var (
	// ErrNoDatabaseConnection is returned when a nil connection is supplied.
	ErrNoDatabaseConnection = errors.New("snapshotstore: no database connection")
	// ErrSnapshotNotFound is returned when a snapshot id has no matching row.
	ErrSnapshotNotFound = errors.New("snapshotstore: snapshot not found")
	// ErrSaveFailed is returned when a snapshot insert fails.
	ErrSaveFailed = errors.New("snapshotstore: save failed")
)

const queryTimeout = 5 * time.Second

type (
	// Store defines the persistence contract for parsed-log snapshots.
	// Implementations must be safe for concurrent use.
	Store interface {
		// Save persists a summary of root, returning the newly generated
		// snapshot id it was stored under.
		Save(ctx context.Context, root *apexlog.Root) (string, error)
		// Get retrieves a previously saved snapshot by id.
		Get(ctx context.Context, id string) (*Snapshot, error)
		// HealthCheck verifies the storage backend is reachable.
		HealthCheck(ctx context.Context) error
	}

	// Snapshot is the persisted summary of one parsed debug log.
	Snapshot struct {
		ID                 string
		ReceivedAt         time.Time
		ByteSize           int64
		StartTimeMillis    *int64
		ExecutionEndTimeNs *int64
		Namespaces         []string
		ParsingErrorCount  int
		LogIssueCount      int
		TotalThrownCount   int64
		GovernorLimits     apexlog.GovernorLimitState
		// LogIssues holds the individual issue records (log_issues table),
		// so longitudinal trend queries can tell whether a specific issue
		// recurs rather than only counting issues per log.
		LogIssues []apexlog.LogIssue
	}

	// PostgresStore is the PostgreSQL-backed Store implementation.
	PostgresStore struct {
		conn   *storage.Connection
		logger *slog.Logger
	}

	// Option configures optional PostgresStore behavior.
	Option func(*PostgresStore)
)

// WithLogger overrides the default stdout JSON logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *PostgresStore) {
		s.logger = logger
	}
}

// NewPostgresStore creates a snapshot store backed by an existing connection.
// The connection is managed externally: PostgresStore has no Close method
// and never closes conn.
func NewPostgresStore(conn *storage.Connection, opts ...Option) (*PostgresStore, error) {
	if conn == nil {
		return nil, ErrNoDatabaseConnection
	}

	store := &PostgresStore{
		conn: conn,
		logger: slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: config.GetEnvLogLevel("LOG_LEVEL", slog.LevelInfo),
		})),
	}

	for _, opt := range opts {
		opt(store)
	}

	return store, nil
}

// HealthCheck delegates to the underlying connection.
func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	if s.conn == nil {
		return ErrNoDatabaseConnection
	}

	return s.conn.HealthCheck(ctx)
}

// Save inserts one row per parsed log plus one log_issues row per
// apexlog.LogIssue, in a single transaction. Namespaces are derived by
// walking the tree once via apexlog.Root.Namespaces (populated during
// Parse). Persisting the individual issue records - not just their count -
// is what makes the "does this specific issue recur" trend query possible;
// counts alone cannot answer that.
func (s *PostgresStore) Save(ctx context.Context, root *apexlog.Root) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	id := uuid.NewString()

	limitsJSON, err := json.Marshal(root.GovernorLimits)
	if err != nil {
		return "", fmt.Errorf("%w: marshal governor limits: %w", ErrSaveFailed, err)
	}

	namespaces := make([]string, 0, len(root.Namespaces))
	for ns := range root.Namespaces {
		namespaces = append(namespaces, ns)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%w: begin transaction: %w", ErrSaveFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	const insertSnapshot = `
		INSERT INTO log_snapshots (
			id, byte_size, start_time_ms, execution_end_time_ns,
			namespaces, parsing_error_count, log_issue_count,
			total_thrown_count, governor_limits
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = tx.ExecContext(ctx, insertSnapshot,
		id,
		root.ByteSize,
		root.StartTime,
		root.ExecutionEndTime,
		pq.Array(namespaces),
		len(root.ParsingErrors),
		len(root.LogIssues),
		root.TotalThrownCount,
		limitsJSON,
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	const insertIssue = `
		INSERT INTO log_issues (snapshot_id, timestamp_ns, severity, summary, message)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, issue := range root.LogIssues {
		if _, err := tx.ExecContext(ctx, insertIssue,
			id, issue.Timestamp, string(issue.Severity), issue.Summary, issue.Message,
		); err != nil {
			return "", fmt.Errorf("%w: insert log issue: %w", ErrSaveFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%w: commit: %w", ErrSaveFailed, err)
	}

	s.logger.Info("stored log snapshot",
		slog.String("id", id),
		slog.Int("namespace_count", len(namespaces)),
		slog.Int("log_issue_count", len(root.LogIssues)),
		slog.Int64("total_thrown_count", root.TotalThrownCount),
	)

	return id, nil
}

// Get retrieves a snapshot by id, returning ErrSnapshotNotFound if absent.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const q = `
		SELECT id, received_at, byte_size, start_time_ms, execution_end_time_ns,
		       namespaces, parsing_error_count, log_issue_count,
		       total_thrown_count, governor_limits
		FROM log_snapshots
		WHERE id = $1
	`

	var (
		snap          Snapshot
		namespaces    pq.StringArray
		governorBytes []byte
	)

	row := s.conn.QueryRowContext(ctx, q, id)

	err := row.Scan(
		&snap.ID,
		&snap.ReceivedAt,
		&snap.ByteSize,
		&snap.StartTimeMillis,
		&snap.ExecutionEndTimeNs,
		&namespaces,
		&snap.ParsingErrorCount,
		&snap.LogIssueCount,
		&snap.TotalThrownCount,
		&governorBytes,
	)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrSnapshotNotFound
	case err != nil:
		return nil, fmt.Errorf("snapshotstore: get %q: %w", id, err)
	}

	snap.Namespaces = []string(namespaces)

	if err := json.Unmarshal(governorBytes, &snap.GovernorLimits); err != nil {
		return nil, fmt.Errorf("snapshotstore: unmarshal governor limits for %q: %w", id, err)
	}

	issues, err := s.getLogIssues(ctx, id)
	if err != nil {
		return nil, err
	}

	snap.LogIssues = issues

	return &snap, nil
}

// getLogIssues loads the individual issue records for a snapshot, ordered
// the way they occurred in the original log.
func (s *PostgresStore) getLogIssues(ctx context.Context, snapshotID string) ([]apexlog.LogIssue, error) {
	const q = `
		SELECT timestamp_ns, severity, summary, message
		FROM log_issues
		WHERE snapshot_id = $1
		ORDER BY timestamp_ns ASC, id ASC
	`

	rows, err := s.conn.QueryContext(ctx, q, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("snapshotstore: get log issues for %q: %w", snapshotID, err)
	}
	defer func() { _ = rows.Close() }()

	var issues []apexlog.LogIssue

	for rows.Next() {
		var (
			issue    apexlog.LogIssue
			severity string
		)

		if err := rows.Scan(&issue.Timestamp, &severity, &issue.Summary, &issue.Message); err != nil {
			return nil, fmt.Errorf("snapshotstore: scan log issue for %q: %w", snapshotID, err)
		}

		issue.Severity = apexlog.Severity(severity)
		issues = append(issues, issue)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshotstore: iterate log issues for %q: %w", snapshotID, err)
	}

	return issues, nil
}
