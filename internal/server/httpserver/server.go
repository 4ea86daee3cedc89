// Package httpserver exposes health, Prometheus metrics and the websocket
// subscription endpoint.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/pointfeed/internal/logging"
	"github.com/dmitrijs2005/pointfeed/internal/server/auth"
	"github.com/dmitrijs2005/pointfeed/internal/server/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

type principalResolver interface {
	Resolve(ctx context.Context, token string) (*auth.Principal, error)
}

type subscriber interface {
	Subscribe(ctx context.Context, p *auth.Principal) (*events.Subscription, error)
}

type HTTPServer struct {
	address     string
	guard       principalResolver
	posts       subscriber
	logger      logging.Logger
	upgrader    websocket.Upgrader
	initTimeout time.Duration
}

func NewHTTPServer(a string, l logging.Logger, g principalResolver, ps subscriber) *HTTPServer {
	return &HTTPServer{
		address: a,
		guard:   g,
		posts:   ps,
		logger:  l.With("module", "http_server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			HandshakeTimeout: 10 * time.Second,
			Subprotocols:     []string{"graphql-ws"},
			CheckOrigin:      func(*http.Request) bool { return true },
		},
		initTimeout: 10 * time.Second,
	}
}

// Router returns the HTTP handler tree.
func (s *HTTPServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/subscriptions", s.handleSubscriptions)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(ctx, "HTTP shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
}
