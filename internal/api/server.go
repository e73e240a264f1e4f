// Package api exposes the ledger over HTTP using Fiber.
package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tallyapp/tally/internal/analytics"
	"github.com/tallyapp/tally/internal/auth"
	"github.com/tallyapp/tally/internal/ledger"
)

// Server wires the HTTP routes to the ledger services.
type Server struct {
	app         *fiber.App
	auth        *auth.Service
	coordinator *ledger.Coordinator
	aggregator  *analytics.Aggregator
	reporter    *analytics.Reporter
}

// NewServer builds the fiber app and registers all routes.
func NewServer(authSvc *auth.Service, coordinator *ledger.Coordinator, aggregator *analytics.Aggregator, reporter *analytics.Reporter) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "tally",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})
	app.Use(recover.New())

	s := &Server{
		app:         app,
		auth:        authSvc,
		coordinator: coordinator,
		aggregator:  aggregator,
		reporter:    reporter,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	v1 := s.app.Group("/api/v1")

	v1.Post("/auth/register", s.handleRegister)
	v1.Post("/auth/login", s.handleLogin)

	authed := v1.Group("", s.auth.Middleware())
	authed.Get("/auth/me", s.handleMe)

	authed.Post("/accounts", s.handleCreateAccount)
	authed.Get("/accounts", s.handleListAccounts)
	authed.Get("/accounts/:id", s.handleGetAccount)
	authed.Put("/accounts/:id", s.handleUpdateAccount)
	authed.Delete("/accounts/:id", s.handleDeleteAccount)

	authed.Post("/categories", s.handleCreateCategory)
	authed.Get("/categories", s.handleListCategories)
	authed.Get("/categories/:id", s.handleGetCategory)
	authed.Put("/categories/:id", s.handleUpdateCategory)
	authed.Delete("/categories/:id", s.handleDeleteCategory)

	authed.Post("/transactions", s.handleCreateTransaction)
	authed.Get("/transactions", s.handleListTransactions)
	authed.Get("/transactions/:id", s.handleGetTransaction)
	authed.Put("/transactions/:id", s.handleUpdateTransaction)
	authed.Delete("/transactions/:id", s.handleDeleteTransaction)

	authed.Get("/analytics/summary", s.handleSummary)
	authed.Get("/analytics/balance", s.handleBalance)
	authed.Get("/reports/csv", s.handleReportCSV)
	authed.Get("/reports/summary", s.handleReportSummary)
	authed.Get("/reports/pdf", s.handleReportPDF)
}

// Listen serves HTTP on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	slog.Info("http server listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// App exposes the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}
