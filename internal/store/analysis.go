package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/PiyushChall/CogniSynapseRank/internal/domain"
)

// AnalysisStore defines the interface for analysis data persistence.
type AnalysisStore interface {
	// Create saves a new analysis to the store.
	// Returns ErrInvalidEntity if the analysis fails validation.
	Create(ctx context.Context, analysis *domain.Analysis) error

	// GetByID retrieves an analysis by its unique ID.
	// Returns ErrAnalysisNotFound if the analysis does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Analysis, error)

	// Update saves changes to an existing analysis.
	// Returns ErrAnalysisNotFound if the analysis does not exist.
	Update(ctx context.Context, analysis *domain.Analysis) error

	// WithTx returns a new AnalysisStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) AnalysisStore
}
