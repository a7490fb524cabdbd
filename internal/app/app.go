// Package app assembles the mosscap application: configuration, tracing,
// the database pool, the Genkit runtime, the conversation orchestrator and
// the HTTP API. Setup wires everything; Close releases it in reverse order.
package app

import (
	"net/http"

	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mosscap/mosscap/internal/api"
	"github.com/mosscap/mosscap/internal/config"
	"github.com/mosscap/mosscap/internal/orchestrator"
)

// App holds the initialized application components.
type App struct {
	Config  *config.Config
	Genkit  *genkit.Genkit
	DBPool  *pgxpool.Pool
	Service *orchestrator.Service
	Server  *api.Server

	otelCleanup func()
	dbCleanup   func()
}

// Handler returns the HTTP handler serving the API.
func (a *App) Handler() http.Handler {
	return a.Server.Handler()
}

// Close releases all resources held by the App. Safe to call on a
// partially initialized App and safe to call more than once.
func (a *App) Close() error {
	if a.dbCleanup != nil {
		a.dbCleanup()
		a.dbCleanup = nil
	}
	if a.otelCleanup != nil {
		a.otelCleanup()
		a.otelCleanup = nil
	}
	return nil
}
