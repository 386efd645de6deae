// Package server initializes and runs the application server: it wires the
// repositories, services and HTTP endpoint together and handles graceful
// shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/staffolio/staffolio/internal/logging"
	"github.com/staffolio/staffolio/internal/server/config"
	"github.com/staffolio/staffolio/internal/server/httpapi"
	"github.com/staffolio/staffolio/internal/server/repositories/repomanager"
	"github.com/staffolio/staffolio/internal/server/services"
	"github.com/staffolio/staffolio/internal/server/storage"
)

type App struct {
	config           *config.Config
	logger           logging.Logger
	userService      *services.UserService
	employeeService  *services.EmployeeService
	portfolioService *services.PortfolioService
}

func NewApp(c *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	rm, err := repomanager.NewPostgresRepositoryManager(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	pictures := storage.NewS3PictureStore(c)

	us := services.NewUserService(rm.Users(), c)
	es := services.NewEmployeeService(rm.Users())
	ps := services.NewPortfolioService(rm.Portfolios(), rm.Users(), pictures)

	return &App{
		config:           c,
		logger:           logger,
		userService:      us,
		employeeService:  es,
		portfolioService: ps,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger,
		app.userService, app.employeeService, app.portfolioService, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
