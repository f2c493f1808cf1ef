// Package httpserver manages server creation and api routing.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/go-petr/bank-registry/internal/accountdelivery"
	"github.com/go-petr/bank-registry/internal/accountservice"
	"github.com/go-petr/bank-registry/internal/metrics"
	"github.com/go-petr/bank-registry/internal/middleware"
	"github.com/go-petr/bank-registry/internal/registry"
	"github.com/go-petr/bank-registry/internal/transferdelivery"
	"github.com/go-petr/bank-registry/internal/transferservice"
	"github.com/go-petr/bank-registry/internal/userdelivery"
	"github.com/go-petr/bank-registry/internal/userservice"
	"github.com/go-petr/bank-registry/pkg/configpkg"
	"github.com/go-petr/bank-registry/pkg/moneypkg"
	"github.com/go-petr/bank-registry/pkg/tokenpkg"
)

var (
	validatorsOnce sync.Once
	validatorsErr  error
)

// registerValidators adds the custom binding tags to gin's validator.
// The result of the first registration is returned on every call.
func registerValidators() error {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			validatorsErr = errors.New("unexpected binding validator engine")
			return
		}

		validatorsErr = v.RegisterValidation(moneypkg.Tag, moneypkg.ValidAmount)
	})

	return validatorsErr
}

// Server holds the registry, handlers router and configuration.
type Server struct {
	Registry   *registry.Registry
	Engine     *gin.Engine
	Config     configpkg.Config
	TokenMaker tokenpkg.Maker
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
// Collectors are registered with promReg and exposed on /metrics.
func New(reg *registry.Registry, logger zerolog.Logger, config configpkg.Config, promReg *prometheus.Registry) (*Server, error) {
	tokenMaker, err := tokenpkg.New(config.TokenKind, config.TokenSymmetricKey)
	if err != nil {
		return nil, fmt.Errorf("cannot create token maker: %w", err)
	}

	m, err := metrics.New(promReg)
	if err != nil {
		return nil, fmt.Errorf("cannot register metrics: %w", err)
	}

	if err := registerValidators(); err != nil {
		return nil, fmt.Errorf("cannot register validators: %w", err)
	}

	userService := userservice.New(reg)
	accountService := accountservice.New(reg)
	transferService := transferservice.New(reg, m)

	userHandler := userdelivery.NewHandler(userService, tokenMaker, config.AccessTokenDuration)
	accountHandler := accountdelivery.NewHandler(accountService)
	transferHandler := transferdelivery.NewHandler(transferService)

	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.RequestMetrics(m))
	engine.Use(gin.Recovery())

	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))

	engine.POST("/users", userHandler.Create)
	engine.POST("/users/login", userHandler.Login)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.GET("/users/me", userHandler.Me)

	authRoutes.POST("/accounts", accountHandler.Create)
	authRoutes.GET("/accounts/:requisite", accountHandler.Get)
	authRoutes.GET("/accounts", accountHandler.List)

	authRoutes.POST("/transfers", transferHandler.Create)
	authRoutes.GET("/transfers", transferHandler.List)

	server := &Server{
		Registry:   reg,
		Engine:     engine,
		Config:     config,
		TokenMaker: tokenMaker,
	}

	return server, nil
}

// Run serves http requests on the configured address until ctx is done,
// then waits up to the configured shutdown timeout for in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	l := zerolog.Ctx(ctx)

	srv := &http.Server{
		Addr:    s.Config.ServerAddress,
		Handler: s.Engine,
	}

	errCh := make(chan error, 1)

	go func() {
		l.Info().Str("address", srv.Addr).Msg("starting webserver...")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	l.Info().Msg("stopping webserver...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("could not stop webserver: %w", err)
	}

	return nil
}
