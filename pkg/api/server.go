package api

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	MaxConcurrent int
	CORSOrigin    string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(addr string) ServerConfig {
	return ServerConfig{
		Addr:          addr,
		ReadTimeout:   5 * time.Second,
		WriteTimeout:  10 * time.Second,
		MaxConcurrent: runtime.NumCPU() * 2,
		CORSOrigin:    "",
	}
}

// middleware adapts one http.HandlerFunc into another; a chain of these
// composes the server's cross-cutting behavior (headers, limits,
// recovery, logging) around each route's actual handler.
type middleware func(http.HandlerFunc) http.HandlerFunc

// chain applies mws around h in the order given, so mws[0] is the
// outermost wrapper and runs first on every request.
func chain(h http.HandlerFunc, mws ...middleware) http.HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// NewServer creates an HTTP server with all routes and middleware.
func NewServer(cfg ServerConfig, handlers *Handlers) *http.Server {
	sem := make(chan struct{}, cfg.MaxConcurrent)
	stack := []middleware{
		withSecurityHeaders,
		withCORS(cfg.CORSOrigin),
		withConcurrencyLimit(sem),
		withRecovery,
		withAccessLog,
		withTimeout(cfg.WriteTimeout),
	}
	route := func(h http.HandlerFunc) http.HandlerFunc { return chain(h, stack...) }

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/match", route(handlers.HandleMatch))
	mux.HandleFunc("GET /api/v1/health", route(handlers.HandleHealth))
	mux.HandleFunc("GET /api/v1/stats", route(handlers.HandleStats))

	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// ListenAndServe starts srv and blocks until either it fails or the
// process receives SIGTERM/SIGINT, in which case it drains in-flight
// requests before returning.
func ListenAndServe(srv *http.Server) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", srv.Addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return err
	case sig := <-sigCh:
		log.Printf("caught %s, draining connections", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

func withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Cache-Control", "no-store")
		next(w, r)
	}
}

func withCORS(origin string) middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		if origin == "" {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			next(w, r)
		}
	}
}

// withConcurrencyLimit rejects a request outright once sem is full
// rather than queuing it, so a burst degrades with fast 503s instead of
// a pileup of slow ones.
func withConcurrencyLimit(sem chan struct{}) middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			select {
			case sem <- struct{}{}:
			default:
				w.Header().Set("Retry-After", "1")
				http.Error(w, `{"error":"service_unavailable"}`, http.StatusServiceUnavailable)
				return
			}
			defer func() { <-sem }()
			next(w, r)
		}
	}
}

func withRecovery(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("recovered panic serving %s: %v", r.URL.Path, rec)
				http.Error(w, `{"error":"internal_error"}`, http.StatusInternalServerError)
			}
		}()
		next(w, r)
	}
}

func withTimeout(d time.Duration) middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next(w, r.WithContext(ctx))
		}
	}
}

func withAccessLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start).Round(time.Microsecond))
	}
}
