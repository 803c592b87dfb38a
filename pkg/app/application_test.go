package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"motoagenda/pkg/config"
	"motoagenda/pkg/logger"
)

type stubHandler struct {
	routes func(router *httprouter.Router)
}

func (s stubHandler) RegisterRoutes(router *httprouter.Router) {
	s.routes(router)
}

func testConfig() *config.Config {
	return &config.Config{
		Port:               "0",
		CORSAllowedOrigins: []string{"*"},
		RateLimitRequests:  100,
		RateLimitWindow:    time.Minute,
		RequestTimeout:     time.Second,
		IdempotencyTTL:     time.Hour,
		MaxRequestSize:     1024,
		ReadTimeout:        time.Second,
		WriteTimeout:       time.Second,
		IdleTimeout:        time.Second,
		ShutdownTimeout:    time.Second,
		Log:                logger.Discard(),
	}
}

func newTestApplication(cfg *config.Config) *Application {
	application := NewApplication(cfg)
	application.SetApp(
		stubHandler{routes: func(router *httprouter.Router) {
			router.POST("/agendar", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("booked"))
			})
		}},
		stubHandler{routes: func(router *httprouter.Router) {
			router.GET("/health", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
				_, _ = w.Write([]byte("ok"))
			})
		}},
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("fallback"))
		}),
	)
	return application
}

func TestApplication_Routing(t *testing.T) {
	application := newTestApplication(testConfig())
	defer application.stopWorkers()

	tests := []struct {
		name        string
		method      string
		path        string
		contentType string
		wantStatus  int
		wantBody    string
	}{
		{name: "booking route", method: http.MethodPost, path: "/agendar", contentType: "application/json", wantStatus: http.StatusOK, wantBody: "booked"},
		{name: "health route", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "unknown get falls back", method: http.MethodGet, path: "/sobre", wantStatus: http.StatusOK, wantBody: "fallback"},
		{name: "get on post route falls back", method: http.MethodGet, path: "/agendar", wantStatus: http.StatusOK, wantBody: "fallback"},
		{name: "post without json rejected", method: http.MethodPost, path: "/agendar", wantStatus: http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{}`))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			application.Handler().ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
			if w.Header().Get("X-Request-ID") == "" {
				t.Error("request id header missing")
			}
		})
	}
}

func TestApplication_ServeAndShutdown(t *testing.T) {
	application := newTestApplication(testConfig())

	var order []string
	application.OnShutdown("storage", func(ctx context.Context) error {
		order = append(order, "storage")
		return nil
	})
	application.OnShutdown("events", func(ctx context.Context) error {
		order = append(order, "events")
		return nil
	})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Serve(ctx, listener) }()

	resp, err := http.Get("http://" + listener.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d", resp.StatusCode)
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	if strings.Join(order, ",") != "events,storage" {
		t.Errorf("shutdown order = %v, want events,storage", order)
	}
}

func TestApplication_ShutdownHookErrorsReported(t *testing.T) {
	application := newTestApplication(testConfig())
	hookErr := errors.New("close failed")
	application.OnShutdown("storage", func(ctx context.Context) error { return hookErr })

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := application.Serve(ctx, listener); !errors.Is(err, hookErr) {
		t.Errorf("expected hook error, got %v", err)
	}
}
