package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/mathsol/academy/core"
	"github.com/mathsol/academy/core/account"
	"github.com/mathsol/academy/core/classroom"
	"github.com/mathsol/academy/core/curriculum"
	"github.com/mathsol/academy/core/dashboard"
	"github.com/mathsol/academy/core/evaluation"
	"github.com/mathsol/academy/core/recommend"
	"github.com/mathsol/academy/core/student"
	exportsvc "github.com/mathsol/academy/services/export"
)

type (
	// Deps holds the services the API is built on.
	Deps struct {
		Validate   *validator.Validate
		Translator ut.Translator

		CurriculumSvc *curriculum.Service
		StudentSvc    *student.Service
		ClassSvc      *classroom.Service
		EvaluationSvc *evaluation.Service
		Engine        *recommend.Engine
		AccountSvc    *account.Service
		Aggregator    *dashboard.Aggregator
		Exporter      *exportsvc.Service
	}

	Server struct {
		app      *echo.Echo
		conf     *core.Config
		logger   core.Logger
		deps     Deps
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(conf *core.Config, logger core.Logger, deps Deps) *Server {
	s := &Server{
		app:      echo.New(),
		conf:     conf,
		logger:   logger,
		deps:     deps,
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Server.ReadTimeout = s.conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = s.conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	if !s.conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger, s.deps.Translator, s.SignalShutdown)
	s.app.Debug = s.conf.Debug && !s.conf.TestMode

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	registerCurriculumAPI(v1, s.deps.CurriculumSvc)
	registerStudentAPI(v1, s.deps)
	registerClassAPI(v1, s.deps.ClassSvc, s.conf.Timezone)
	registerAccountAPI(v1, s.deps.AccountSvc)
	registerDashboardAPI(v1, s.deps.Aggregator, s.conf.Timezone)
}

// Start listens on the configured address. Listen errors are sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.conf.Server.Address()); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// SignalShutdown asks the app to stop gracefully.
func (s *Server) SignalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.conf.AppName+" API!")
}
