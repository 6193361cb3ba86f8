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

	"github.com/PiyushChall/CogniSynapseRank/internal/domain"
	"github.com/PiyushChall/CogniSynapseRank/internal/platform/logger"
	"github.com/PiyushChall/CogniSynapseRank/internal/store"
)

// PostgresAnalysisStore implements the store.AnalysisStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAnalysisStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAnalysisStore creates a new PostgreSQL implementation of the
// AnalysisStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresAnalysisStore(db store.DBTX, logger *slog.Logger) *PostgresAnalysisStore {
	if db == nil {
		// ALLOW-PANIC: Constructor dependency, fails fast at wiring time
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAnalysisStore{
		db:     db,
		logger: logger.With(slog.String("component", "analysis_store")),
	}
}

// Ensure PostgresAnalysisStore implements store.AnalysisStore interface
var _ store.AnalysisStore = (*PostgresAnalysisStore)(nil)

// Create saves a new analysis to the database.
// Returns store.ErrInvalidEntity (wrapped) if validation or a constraint fails.
func (s *PostgresAnalysisStore) Create(ctx context.Context, analysis *domain.Analysis) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := analysis.Validate(); err != nil {
		log.Warn("analysis validation failed during create",
			"error", err,
			"analysis_id", analysis.ID)
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	comparisonJSON, err := json.Marshal(analysis.ComparisonURLs)
	if err != nil {
		return fmt.Errorf("failed to marshal comparison URLs: %w", err)
	}

	resultsJSON, err := json.Marshal(analysis.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	query := `
		INSERT INTO analyses (id, main_url, comparison_urls, status, progress, results, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = s.db.ExecContext(ctx, query,
		analysis.ID,
		analysis.MainURL,
		comparisonJSON,
		analysis.Status,
		analysis.Progress,
		resultsJSON,
		analysis.ErrorMessage,
		analysis.CreatedAt,
		analysis.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create analysis",
			"error", err,
			"analysis_id", analysis.ID)
		return MapError(err)
	}

	log.Debug("analysis created", "analysis_id", analysis.ID)
	return nil
}

// GetByID retrieves an analysis by its unique ID.
// Returns store.ErrAnalysisNotFound if the analysis does not exist.
func (s *PostgresAnalysisStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, main_url, comparison_urls, status, progress, results, error_message, created_at, updated_at
		FROM analyses
		WHERE id = $1
	`

	var (
		analysis       domain.Analysis
		comparisonJSON []byte
		resultsJSON    []byte
		errorMessage   sql.NullString
	)

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&analysis.ID,
		&analysis.MainURL,
		&comparisonJSON,
		&analysis.Status,
		&analysis.Progress,
		&resultsJSON,
		&errorMessage,
		&analysis.CreatedAt,
		&analysis.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("analysis not found", "analysis_id", id)
			return nil, store.ErrAnalysisNotFound
		}
		log.Error("failed to get analysis",
			"error", err,
			"analysis_id", id)
		return nil, MapError(err)
	}

	if err := json.Unmarshal(comparisonJSON, &analysis.ComparisonURLs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal comparison URLs: %w", err)
	}

	if err := json.Unmarshal(resultsJSON, &analysis.Results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal results: %w", err)
	}

	analysis.ErrorMessage = errorMessage.String

	return &analysis, nil
}

// Update saves changes to an existing analysis.
// Returns store.ErrAnalysisNotFound if the analysis does not exist.
func (s *PostgresAnalysisStore) Update(ctx context.Context, analysis *domain.Analysis) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := analysis.Validate(); err != nil {
		log.Warn("analysis validation failed during update",
			"error", err,
			"analysis_id", analysis.ID)
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	resultsJSON, err := json.Marshal(analysis.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	analysis.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE analyses
		SET status = $1, progress = $2, results = $3, error_message = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := s.db.ExecContext(ctx, query,
		analysis.Status,
		analysis.Progress,
		resultsJSON,
		analysis.ErrorMessage,
		analysis.UpdatedAt,
		analysis.ID,
	)
	if err != nil {
		log.Error("failed to update analysis",
			"error", err,
			"analysis_id", analysis.ID)
		return MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		log.Debug("analysis not found for update", "analysis_id", analysis.ID)
		return store.ErrAnalysisNotFound
	}

	log.Debug("analysis updated",
		"analysis_id", analysis.ID,
		"status", analysis.Status,
		"progress", analysis.Progress)
	return nil
}

// WithTx returns a new AnalysisStore instance that uses the provided transaction.
func (s *PostgresAnalysisStore) WithTx(tx *sql.Tx) store.AnalysisStore {
	return &PostgresAnalysisStore{
		db:     tx,
		logger: s.logger,
	}
}
