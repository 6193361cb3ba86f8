package service

import (
	"database/sql"

	"github.com/PiyushChall/CogniSynapseRank/internal/store"
)

// AnalysisRepository combines analysis persistence with access to the
// underlying database handle, so the service can run multi-statement
// operations in a transaction.
type AnalysisRepository interface {
	store.AnalysisStore

	// DB returns the underlying database connection for transaction management.
	DB() *sql.DB
}

// analysisRepositoryAdapter adapts a store.AnalysisStore and a *sql.DB
// into an AnalysisRepository.
type analysisRepositoryAdapter struct {
	store.AnalysisStore
	db *sql.DB
}

// NewAnalysisRepository creates an AnalysisRepository from a store and
// its database handle.
func NewAnalysisRepository(db *sql.DB, analysisStore store.AnalysisStore) AnalysisRepository {
	return &analysisRepositoryAdapter{
		AnalysisStore: analysisStore,
		db:            db,
	}
}

func (a *analysisRepositoryAdapter) DB() *sql.DB {
	return a.db
}
