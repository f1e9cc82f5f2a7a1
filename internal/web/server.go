package web

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hpungsan/charsheet/internal/config"
	"github.com/hpungsan/charsheet/internal/logger"
	"github.com/hpungsan/charsheet/internal/manager"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// NewServer creates the HTTP server for the character sheet UI. view must be
// the Surface mgr renders to.
func NewServer(mgr *manager.Manager, view *manager.StateSurface, cfg *config.Config, log *logger.Logger, version string) *http.Server {
	h := newHandlers(mgr, view, cfg, log, version)
	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Bind, cfg.Port),
		Handler:           h.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func newHandlers(mgr *manager.Manager, view *manager.StateSurface, cfg *config.Config, log *logger.Logger, version string) *Handlers {
	if log == nil {
		log = logger.NewNop()
	}
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(fmt.Sprintf("failed to create template sub-FS: %v", err))
	}
	return &Handlers{
		mgr:      mgr,
		view:     view,
		cfg:      cfg,
		log:      log,
		renderer: NewRenderer(templateSub, version, log),
	}
}

func (h *Handlers) routes() http.Handler {
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to create static sub-FS: %v", err))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.HandleSheet)
	mux.HandleFunc("GET /characters.json", h.HandleState)
	mux.HandleFunc("POST /characters", h.HandleSubmit)
	mux.HandleFunc("POST /select", h.HandleSelect)
	mux.HandleFunc("GET /delete", h.HandleDeleteConfirm)
	mux.HandleFunc("POST /delete", h.HandleDelete)
	mux.HandleFunc("POST /clear", h.HandleClear)
	mux.HandleFunc("POST /image", h.HandleImage)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	return securityHeaders(mux)
}

// securityHeaders adds security-related HTTP headers to all responses.
// Uploaded pictures are shown inline as data URLs.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self' data:")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server, log *logger.Logger) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("charsheet UI running", zap.String("url", "http://"+srv.Addr))
	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
