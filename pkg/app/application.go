package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/julienschmidt/httprouter"

	"motoagenda/pkg/config"
	"motoagenda/pkg/contracts"
	"motoagenda/pkg/middleware"
)

type shutdownHook struct {
	name string
	fn   func(ctx context.Context) error
}

type Application struct {
	cfg              *config.Config
	server           *http.Server
	handler          http.Handler
	idempotencyStore *middleware.InMemoryIdempotencyStore
	rateLimiter      *middleware.ClientRateLimiter
	shutdownHooks    []shutdownHook
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

// SetApp builds the routers and middleware chains. fallback receives every
// request the application router does not match.
func (a *Application) SetApp(appHandler, healthHandler contracts.Handler, fallback http.Handler) {
	health := a.buildHealthHandler(healthHandler)
	application := a.buildAppHandler(appHandler, fallback)

	mux := http.NewServeMux()
	mux.Handle("/health", health)
	mux.Handle("/ready", health)
	mux.Handle("/", application)
	a.handler = mux

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

// OnShutdown registers a release step. Hooks run after the server stopped
// accepting requests, in reverse registration order.
func (a *Application) OnShutdown(name string, fn func(ctx context.Context) error) {
	a.shutdownHooks = append(a.shutdownHooks, shutdownHook{name: name, fn: fn})
}

func (a *Application) Handler() http.Handler {
	return a.handler
}

func (a *Application) buildHealthHandler(healthHandler contracts.Handler) http.Handler {
	healthRouter := httprouter.New()
	healthHandler.RegisterRoutes(healthRouter)

	var h http.Handler = healthRouter
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
	return h
}

func (a *Application) buildAppHandler(appHandler contracts.Handler, fallback http.Handler) http.Handler {
	appRouter := httprouter.New()
	appRouter.HandleMethodNotAllowed = false
	appRouter.NotFound = fallback
	appHandler.RegisterRoutes(appRouter)

	a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
	proxies, err := middleware.ParseTrustedProxies(a.cfg.TrustedProxies)
	if err != nil {
		a.cfg.Log.Fatal("Invalid trusted proxies", "error", err)
	}
	a.rateLimiter = middleware.NewClientRateLimiter(
		a.cfg.RateLimitRequests,
		a.cfg.RateLimitWindow,
		proxies.ClientIP,
		a.cfg.Log,
	)

	// Recovery → Logging → CORS → MaxSize → ContentType → RateLimit → Timeout → Idempotency → Router
	var h http.Handler = appRouter
	h = middleware.Idempotency(a.idempotencyStore, middleware.IdempotencyKeyHeader, a.cfg.Log)(h)
	h = middleware.RequestTimeout(a.cfg.RequestTimeout, a.cfg.Log)(h)
	h = middleware.RateLimit(a.rateLimiter)(h)
	h = middleware.ContentTypeValidation(a.cfg.Log)(h)
	h = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize), a.cfg.Log)(h)
	h = middleware.CORS(a.cfg.CORSAllowedOrigins, a.cfg.Log)(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.cfg.Log.Info("Application endpoints configured with full middleware stack")
	return h
}

// Run serves until SIGINT or SIGTERM and then shuts down gracefully.
func (a *Application) Run() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		a.cfg.Log.Fatal("Failed to listen", "address", a.server.Addr, "error", err)
	}

	if err := a.Serve(ctx, listener); err != nil {
		a.cfg.Log.Fatal("HTTP server failed", "error", err)
	}
}

// Serve blocks until ctx is done or the server fails. Cancelling ctx is the
// normal way out and yields the result of the graceful shutdown.
func (a *Application) Serve(ctx context.Context, listener net.Listener) error {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", listener.Addr().String())
		serverErrors <- a.server.Serve(listener)
	}()

	select {
	case err := <-serverErrors:
		a.stopWorkers()
		a.runShutdownHooks(context.Background())
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		a.cfg.Log.Info("Shutdown signal received", "cause", context.Cause(ctx))
		return a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() error {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if closeErr := a.server.Close(); closeErr != nil {
			shutdownErr = errors.Join(err, closeErr)
		}
	}

	a.stopWorkers()

	if err := a.runShutdownHooks(ctx); err != nil {
		shutdownErr = errors.Join(shutdownErr, err)
	}

	if shutdownErr == nil {
		a.cfg.Log.Info("Server stopped gracefully")
	}
	return shutdownErr
}

func (a *Application) stopWorkers() {
	a.cfg.Log.Info("Stopping background workers...")
	if a.idempotencyStore != nil {
		a.idempotencyStore.Stop()
	}
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
	a.cfg.Log.Info("Background workers stopped")
}

func (a *Application) runShutdownHooks(ctx context.Context) error {
	var errs []error
	for i := len(a.shutdownHooks) - 1; i >= 0; i-- {
		hook := a.shutdownHooks[i]
		if err := hook.fn(ctx); err != nil {
			a.cfg.Log.Error("Shutdown step failed", "step", hook.name, "error", err)
			errs = append(errs, err)
			continue
		}
		a.cfg.Log.Info("Shutdown step completed", "step", hook.name)
	}
	return errors.Join(errs...)
}
