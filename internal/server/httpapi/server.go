// Package httpapi exposes the application services over HTTP. Routing is
// chi; the authorization gate and role checks are middleware on the
// protected subtrees.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/staffolio/staffolio/internal/logging"
	"github.com/staffolio/staffolio/internal/server/models"
	"github.com/staffolio/staffolio/internal/server/services"
)

type Server struct {
	address    string
	logger     logging.Logger
	users      *services.UserService
	employees  *services.EmployeeService
	portfolios *services.PortfolioService
	jwtSecret  []byte
}

func NewServer(address string, logger logging.Logger, us *services.UserService,
	es *services.EmployeeService, ps *services.PortfolioService, secretKey string) *Server {
	return &Server{
		address:    address,
		logger:     logger.With("module", "httpapi"),
		users:      us,
		employees:  es,
		portfolios: ps,
		jwtSecret:  []byte(secretKey),
	}
}

// Handler builds the route tree. /auth/register and /auth/login are public;
// everything else sits behind the authorization gate, with manager-only
// subtrees gated by requireRole.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.logRequests)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Get("/logout", s.handleLogout)
			r.Get("/status", s.handleStatus)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Group(func(r chi.Router) {
			r.Use(requireRole(models.RoleManager))
			r.Get("/employees", s.handleListEmployees)
			r.Get("/employees/{id}", s.handleGetEmployee)
			r.Get("/portfolio", s.handleListPortfolios)
			r.Post("/portfolio", s.handleCreatePortfolio)
			r.Put("/portfolio/{id}", s.handleUpdatePortfolio)
			r.Delete("/portfolio/{id}", s.handleDeletePortfolio)
		})

		// The {id} here is an EMPLOYEE id, unlike the manager routes above
		// where it is a portfolio id. Ownership (owner employee or any
		// manager) is checked by the service, so this route takes any
		// authenticated caller.
		r.Get("/portfolio/{id}", s.handleGetPortfolio)
	})

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
