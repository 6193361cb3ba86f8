package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/PiyushChall/CogniSynapseRank/internal/config"
	"github.com/PiyushChall/CogniSynapseRank/internal/events"
	"github.com/PiyushChall/CogniSynapseRank/internal/generation"
	"github.com/PiyushChall/CogniSynapseRank/internal/platform/gemini"
	"github.com/PiyushChall/CogniSynapseRank/internal/platform/postgres"
	"github.com/PiyushChall/CogniSynapseRank/internal/platform/webpage"
	"github.com/PiyushChall/CogniSynapseRank/internal/service"
	"github.com/PiyushChall/CogniSynapseRank/internal/store"
	"github.com/PiyushChall/CogniSynapseRank/internal/task"
)

// application holds the shared application dependencies so wiring and
// cleanup stay in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	analysisStore store.AnalysisStore
	taskStore     *postgres.PostgresTaskStore

	fetcher   *webpage.Fetcher
	generator generation.Generator

	analysisService service.AnalysisService
	eventEmitter    events.EventEmitter
	taskFactory     *task.AnalysisTaskFactory
	taskRunner      *task.TaskRunner
}

// newApplication creates the application with all dependencies initialized
// and the event handler chain registered.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Stores
	app.analysisStore = postgres.NewPostgresAnalysisStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db)

	// Platform services
	app.fetcher = webpage.NewFetcher(cfg.Fetch, logger)

	generator, err := gemini.NewGenerator(ctx, logger, cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generator: %w", err)
	}
	app.generator = generator
	logger.Info("generation service initialized", "model", cfg.LLM.ModelName)

	// Event system
	emitter := events.NewInMemoryEventEmitter(logger)
	app.eventEmitter = emitter

	// Analysis service
	repo := service.NewAnalysisRepository(db, app.analysisStore)
	app.analysisService, err = service.NewAnalysisService(repo, emitter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize analysis service: %w", err)
	}

	// Task infrastructure
	app.taskRunner = task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		WorkerCount:  cfg.Task.WorkerCount,
		QueueSize:    cfg.Task.QueueSize,
		StuckTaskAge: time.Duration(cfg.Task.StuckTaskAgeMinutes) * time.Minute,
	}, logger)

	app.taskFactory, err = task.NewAnalysisTaskFactory(app.analysisService, app.fetcher, app.generator, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize task factory: %w", err)
	}

	// Recovered tasks need their execution function rebound after a restart.
	app.taskStore.SetExecutorBinder(app.bindTaskExecutor)

	handler, err := task.NewTaskFactoryEventHandler(app.taskFactory, app.taskRunner, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event handler: %w", err)
	}
	emitter.RegisterHandler(handler)

	logger.Info("application initialized",
		"worker_count", cfg.Task.WorkerCount,
		"queue_size", cfg.Task.QueueSize)

	return app, nil
}

// bindTaskExecutor builds an execution function for a task row loaded from
// the database, so crash-recovered tasks run the same pipeline as freshly
// submitted ones.
func (app *application) bindTaskExecutor(taskType string, payload []byte) (func(ctx context.Context) error, error) {
	if taskType != task.TaskTypeSEOAnalysis {
		return nil, fmt.Errorf("unknown task type %q", taskType)
	}

	var decoded struct {
		AnalysisID uuid.UUID `json:"analysis_id"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode task payload: %w", err)
	}

	rebuilt, err := app.taskFactory.CreateTask(decoded.AnalysisID)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild task: %w", err)
	}

	return rebuilt.Execute, nil
}

// cleanup releases application resources during shutdown.
func (app *application) cleanup() {
	app.logger.Info("stopping task runner")
	app.taskRunner.Stop()
}
