package service_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/PiyushChall/CogniSynapseRank/internal/domain"
	"github.com/PiyushChall/CogniSynapseRank/internal/events"
	"github.com/PiyushChall/CogniSynapseRank/internal/store"
)

// fakeDriver is a minimal database/sql driver whose connections only
// support transactions. It lets transaction-wrapped service operations run
// against in-memory stores without a real database.
type fakeDriver struct{}

func (fakeDriver) Open(name string) (driver.Conn, error) { return &fakeConn{}, nil }

type fakeConn struct{}

func (*fakeConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("fake driver does not support statements")
}
func (*fakeConn) Close() error              { return nil }
func (*fakeConn) Begin() (driver.Tx, error) { return fakeTx{}, nil }

type fakeTx struct{}

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }

var registerFakeDriver sync.Once

func newFakeDB(t *testing.T) *sql.DB {
	t.Helper()
	registerFakeDriver.Do(func() {
		sql.Register("servicetest", fakeDriver{})
	})

	db, err := sql.Open("servicetest", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// memoryAnalysisRepository is an in-memory AnalysisRepository for service tests.
type memoryAnalysisRepository struct {
	mu        sync.Mutex
	analyses  map[uuid.UUID]*domain.Analysis
	db        *sql.DB
	createErr error
	updateErr error
}

func newMemoryAnalysisRepository(t *testing.T) *memoryAnalysisRepository {
	return &memoryAnalysisRepository{
		analyses: make(map[uuid.UUID]*domain.Analysis),
		db:       newFakeDB(t),
	}
}

func (r *memoryAnalysisRepository) Create(ctx context.Context, analysis *domain.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	copied := *analysis
	r.analyses[analysis.ID] = &copied
	return nil
}

func (r *memoryAnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	analysis, ok := r.analyses[id]
	if !ok {
		return nil, store.ErrAnalysisNotFound
	}
	copied := *analysis
	return &copied, nil
}

func (r *memoryAnalysisRepository) Update(ctx context.Context, analysis *domain.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.analyses[analysis.ID]; !ok {
		return store.ErrAnalysisNotFound
	}
	copied := *analysis
	r.analyses[analysis.ID] = &copied
	return nil
}

func (r *memoryAnalysisRepository) WithTx(tx *sql.Tx) store.AnalysisStore { return r }

func (r *memoryAnalysisRepository) DB() *sql.DB { return r.db }

func (r *memoryAnalysisRepository) stored(t *testing.T, id uuid.UUID) *domain.Analysis {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	analysis, ok := r.analyses[id]
	require.True(t, ok, "analysis %s not found in repository", id)
	copied := *analysis
	return &copied
}

// recordingEmitter captures emitted events and can simulate failures.
type recordingEmitter struct {
	mu      sync.Mutex
	events  []*events.TaskRequestEvent
	emitErr error
}

func (e *recordingEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.emitErr != nil {
		return e.emitErr
	}
	e.events = append(e.events, event)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
