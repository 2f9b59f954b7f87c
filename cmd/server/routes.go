package main

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/incontext-app/incontext/internal/agents"
	"github.com/incontext-app/incontext/internal/auth"
	"github.com/incontext-app/incontext/internal/config"
	"github.com/incontext-app/incontext/internal/conversations"
	"github.com/incontext-app/incontext/internal/web"
	"github.com/incontext-app/incontext/pkg/middleware"
)

// Application wires the domain systems and their HTTP handlers.
type Application struct {
	config        *config.Config
	logger        *slog.Logger
	auth          auth.System
	agents        *agents.Handler
	conversations *conversations.Handler
	authHandler   *auth.Handler
}

func newApplication(cfg *config.Config, db *sql.DB, logger *slog.Logger) (*Application, error) {
	renderer, err := web.NewRenderer(logger)
	if err != nil {
		return nil, err
	}

	authSys := auth.New(db, logger)
	agentSys := agents.New(db, logger)
	conversationSys := conversations.New(db, logger)

	return &Application{
		config:        cfg,
		logger:        logger,
		auth:          authSys,
		agents:        agents.NewHandler(agentSys, renderer, logger),
		conversations: conversations.NewHandler(conversationSys, agentSys, renderer, logger),
		authHandler:   auth.NewHandler(authSys, renderer, logger, cfg.Session.Cookie, cfg.Session.TTLDuration()),
	}, nil
}

func (app *Application) routes() http.Handler {
	mux := http.NewServeMux()

	gate := auth.RequireAuth(app.auth, app.config.Session.Cookie)

	app.authHandler.Register(mux)
	app.agents.Register(mux, gate)
	app.conversations.Register(mux, gate)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/agents/", http.StatusSeeOther)
	})
	mux.HandleFunc("GET /agents", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/agents/", http.StatusMovedPermanently)
	})
	mux.HandleFunc("GET /conversations", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/conversations/", http.StatusMovedPermanently)
	})

	var handler http.Handler = mux
	handler = middleware.MaxBody(app.config.Server.MaxFormMemoryBytes())(handler)
	handler = middleware.Logger(app.logger)(handler)

	return handler
}
