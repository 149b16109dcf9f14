// Package server holds the shared application dependencies and the HTTP
// middleware stack.
package server

import (
	"millflow/internal/config"
	"millflow/internal/store"
	"millflow/internal/websocket"
	"millflow/internal/workflow"

	"go.uber.org/zap"
)

// App holds shared dependencies for the application.
type App struct {
	Config  *config.Config
	Store   *store.Store
	Service *workflow.Service
	Hub     *websocket.Hub
	Log     *zap.Logger
}

// NewApp wires the workflow service to the store and the websocket hub.
func NewApp(cfg *config.Config, st *store.Store, log *zap.Logger, opts ...workflow.Option) *App {
	hub := websocket.NewHub(log.Named("ws"))
	opts = append([]workflow.Option{workflow.WithBroadcaster(hub)}, opts...)
	return &App{
		Config:  cfg,
		Store:   st,
		Service: workflow.New(st, cfg, log.Named("workflow"), opts...),
		Hub:     hub,
		Log:     log,
	}
}
