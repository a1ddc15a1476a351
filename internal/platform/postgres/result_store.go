package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/studygen/studygen-api/internal/domain"
	"github.com/studygen/studygen-api/internal/platform/logger"
	"github.com/studygen/studygen-api/internal/store"
)

// PostgresResultStore implements the store.ResultStore interface using a
// PostgreSQL database as the storage backend. Content, score, and attempt
// trail are stored as JSONB; topic, content type, and the best-effort flag
// are lifted into columns for querying.
type PostgresResultStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresResultStore creates a new PostgreSQL implementation of the
// ResultStore interface. Writes run inside a transaction; reads go straight
// to the pool. If logger is nil, a default logger will be used.
func NewPostgresResultStore(db *sql.DB, logger *slog.Logger) *PostgresResultStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresResultStore{
		db:     db,
		logger: logger.With(slog.String("component", "result_store")),
	}
}

var _ store.ResultStore = (*PostgresResultStore)(nil)

// Save implements store.ResultStore.Save.
// Returns store.ErrDuplicate if a result with the same ID already exists.
func (s *PostgresResultStore) Save(ctx context.Context, result *domain.GenerationResult) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	requestJSON, err := json.Marshal(result.Request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	contentJSON, err := json.Marshal(result.Content)
	if err != nil {
		return fmt.Errorf("failed to marshal content: %w", err)
	}
	scoreJSON, err := json.Marshal(result.Score)
	if err != nil {
		return fmt.Errorf("failed to marshal score: %w", err)
	}
	attemptsJSON, err := json.Marshal(result.Attempts)
	if err != nil {
		return fmt.Errorf("failed to marshal attempts: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.insert(ctx, tx, result, requestJSON, contentJSON, scoreJSON, attemptsJSON)
	})
	if err != nil {
		log.Error("failed to save generation result",
			slog.String("error", err.Error()),
			slog.String("result_id", result.ID.String()))
		return err
	}

	log.Debug("generation result saved",
		slog.String("result_id", result.ID.String()),
		slog.String("content_type", string(result.Request.ContentType)))
	return nil
}

// insert writes the result row. It takes store.DBTX so it runs the same
// against a transaction or a bare connection.
func (s *PostgresResultStore) insert(
	ctx context.Context,
	db store.DBTX,
	result *domain.GenerationResult,
	requestJSON, contentJSON, scoreJSON, attemptsJSON []byte,
) error {
	query := `
		INSERT INTO generation_results
			(id, content_type, topic, audience, request, content, score, attempts, best_effort, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := db.ExecContext(
		ctx,
		query,
		result.ID,
		string(result.Request.ContentType),
		result.Request.Topic,
		string(result.Request.Audience),
		requestJSON,
		contentJSON,
		scoreJSON,
		attemptsJSON,
		result.BestEffort,
		result.CreatedAt,
	)
	if err != nil {
		return MapError(err)
	}
	return nil
}

// GetByID implements store.ResultStore.GetByID.
// Returns store.ErrResultNotFound if the result does not exist.
func (s *PostgresResultStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.GenerationResult, error) {
	query := `
		SELECT id, request, content, score, attempts, best_effort, created_at
		FROM generation_results
		WHERE id = $1
	`

	result, err := s.scanResult(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrResultNotFound
		}
		return nil, MapError(err)
	}
	return result, nil
}

// ListRecent implements store.ResultStore.ListRecent.
func (s *PostgresResultStore) ListRecent(ctx context.Context, limit int) ([]*domain.GenerationResult, error) {
	query := `
		SELECT id, request, content, score, attempts, best_effort, created_at
		FROM generation_results
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var results []*domain.GenerationResult
	for rows.Next() {
		result, err := s.scanResult(rows)
		if err != nil {
			return nil, MapError(err)
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return results, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresResultStore) scanResult(row rowScanner) (*domain.GenerationResult, error) {
	var (
		result       domain.GenerationResult
		requestJSON  []byte
		contentJSON  []byte
		scoreJSON    []byte
		attemptsJSON []byte
		createdAt    time.Time
	)

	err := row.Scan(
		&result.ID,
		&requestJSON,
		&contentJSON,
		&scoreJSON,
		&attemptsJSON,
		&result.BestEffort,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(requestJSON, &result.Request); err != nil {
		return nil, fmt.Errorf("failed to unmarshal request: %w", err)
	}
	if err := json.Unmarshal(contentJSON, &result.Content); err != nil {
		return nil, fmt.Errorf("failed to unmarshal content: %w", err)
	}
	if err := json.Unmarshal(scoreJSON, &result.Score); err != nil {
		return nil, fmt.Errorf("failed to unmarshal score: %w", err)
	}
	if err := json.Unmarshal(attemptsJSON, &result.Attempts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attempts: %w", err)
	}
	result.CreatedAt = createdAt

	return &result, nil
}
