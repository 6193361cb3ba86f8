package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/PiyushChall/CogniSynapseRank/internal/api"
	apiMiddleware "github.com/PiyushChall/CogniSynapseRank/internal/api/middleware"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	handler := api.NewAnalysisHandler(app.analysisService)

	r.Get("/", handler.Index)
	r.Post("/analyze", handler.Analyze)
	r.Get("/results/{task_id}", handler.Results)
	r.Get("/health", handler.Health)

	return r
}
