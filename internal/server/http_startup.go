package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"interviewcoach/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const shutdownTimeout = 30 * time.Second

// Start runs the HTTP server until SIGINT or SIGTERM
func (s *Server) Start() error {
	om, err := s.initializeObservability()
	if err != nil {
		return err
	}
	defer s.shutdownObservability(om)

	httpServer := s.setupHTTPServer(om)

	if err := s.configureTLS(httpServer, om); err != nil {
		return err
	}

	watchers := s.startWatchers(om)
	defer stopWatchers(watchers, s)

	s.displayServerInfo()

	return s.startWithGracefulShutdown(httpServer)
}

// initializeObservability sets up observability components
func (s *Server) initializeObservability() (*observability.ObservabilityManager, error) {
	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(s.AppConfig, s.Version))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	return om, nil
}

func (s *Server) shutdownObservability(om *observability.ObservabilityManager) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := om.Shutdown(ctx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown observability")
	}
}

// Handler returns the fully wrapped handler tree
func (s *Server) Handler(om *observability.ObservabilityManager) http.Handler {
	return om.HTTPMiddleware()(s.setupRoutes(om))
}

func (s *Server) setupHTTPServer(om *observability.ObservabilityManager) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.Host, s.Port),
		Handler:      s.Handler(om),
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		IdleTimeout:  s.IdleTimeout,
	}
}

// startWatchers starts the prompt and certificate file watchers that are enabled
func (s *Server) startWatchers(om *observability.ObservabilityManager) []*FileWatcher {
	var watchers []*FileWatcher

	if s.AppConfig != nil && s.AppConfig.AI.WatchPromptFiles {
		if files := s.AppConfig.Prompts.Files(); len(files) > 0 {
			w := NewFileWatcher("prompts", files, time.Second, s.promptReloader(om), s.Logger)
			watchers = appendStarted(watchers, w, s)
		}
	}

	if s.CertificateManager != nil && s.TLSConfig.AutoReload.Enabled {
		if files := s.CertificateManager.WatchedFiles(); len(files) > 0 {
			w := NewFileWatcher("certificates", files, s.TLSConfig.AutoReload.DebounceDelay,
				func([]string) { _ = s.CertificateManager.Reload() }, s.Logger)
			watchers = appendStarted(watchers, w, s)
		}
	}

	return watchers
}

// promptReloader refreshes every prompt backed by a changed file
func (s *Server) promptReloader(om *observability.ObservabilityManager) func([]string) {
	return func(changed []string) {
		metrics := om.GetMetrics()
		for _, path := range changed {
			updated, err := s.AppConfig.Prompts.ReloadFile(path)
			metrics.RecordBusinessMetric(context.Background(), observability.MetricPromptReloaded, err == nil,
				attribute.String("file", path))
			if err != nil {
				s.Logger.LogError(err, "Failed to reload prompt file, keeping previous prompt", "file", path)
				continue
			}
			s.Logger.Info("Prompt file reloaded", "file", path, "prompts_updated", updated)
		}
	}
}

func appendStarted(watchers []*FileWatcher, w *FileWatcher, s *Server) []*FileWatcher {
	if err := w.Start(); err != nil {
		s.Logger.LogError(err, "Failed to start file watcher")
		return watchers
	}
	return append(watchers, w)
}

func stopWatchers(watchers []*FileWatcher, s *Server) {
	for _, w := range watchers {
		if err := w.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop file watcher")
		}
	}
}

// startWithGracefulShutdown starts the HTTP server and handles graceful shutdown
func (s *Server) startWithGracefulShutdown(server *http.Server) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.Logger.Info("Starting HTTP server",
			"address", server.Addr,
			"tls_enabled", server.TLSConfig != nil)

		var err error
		if server.TLSConfig != nil {
			// Certificates come from TLSConfig.GetCertificate.
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}

		if err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		s.Logger.Info("Received shutdown signal, starting graceful shutdown",
			"signal", sig.String())
		return s.performGracefulShutdown(server)
	}
}

func (s *Server) performGracefulShutdown(server *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.RateLimiter != nil {
		s.RateLimiter.Close()
	}

	s.Logger.Info("Shutting down HTTP server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}
