package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/groupnom/overture-import/domain/importrun"
	"github.com/groupnom/overture-import/domain/place"
	"github.com/groupnom/overture-import/infrastructure/api/jsonapi"
	apimiddleware "github.com/groupnom/overture-import/infrastructure/api/middleware"
	v1 "github.com/groupnom/overture-import/infrastructure/api/v1"
)

const (
	requestTimeout  = 30 * time.Second
	healthTimeout   = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Pinger checks the destination connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusServer exposes import runs and restaurant statistics over HTTP.
// It only reads; imports are started from the command line.
type StatusServer struct {
	runs        importrun.Store
	restaurants place.Reader
	pinger      Pinger
	serializer  *jsonapi.Serializer
	logger      *slog.Logger
}

// NewStatusServer creates a StatusServer. Running runs older than
// staleAfter are flagged stale in responses.
func NewStatusServer(
	runs importrun.Store,
	restaurants place.Reader,
	pinger Pinger,
	staleAfter time.Duration,
	logger *slog.Logger,
) *StatusServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusServer{
		runs:        runs,
		restaurants: restaurants,
		pinger:      pinger,
		serializer:  jsonapi.NewSerializer(staleAfter),
		logger:      logger,
	}
}

// mountRoutes wires the health check and v1 routes onto router.
func (a *StatusServer) mountRoutes(router chi.Router) {
	router.Use(apimiddleware.Logging(a.logger))
	router.Get("/health", a.health)

	runsRouter := v1.NewRunsRouter(a.runs, a.serializer, a.logger)
	statsRouter := v1.NewStatsRouter(a.restaurants, a.serializer, a.logger)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(requestTimeout))
		r.Mount("/runs", runsRouter.Routes())
		r.Mount("/stats", statsRouter.Routes())
	})
}

// health handles GET /health.
func (a *StatusServer) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := a.pinger.Ping(ctx); err != nil {
		a.logger.Warn("health check failed", slog.String("error", err.Error()))
		apimiddleware.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	apimiddleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Handler returns the fully routed handler, for tests and custom servers.
func (a *StatusServer) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	a.mountRoutes(router)
	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (a *StatusServer) Run(ctx context.Context, addr string) error {
	server := NewServer(addr, a.logger)
	a.mountRoutes(server.Router())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
