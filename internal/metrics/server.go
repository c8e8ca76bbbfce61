package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerConfig holds configuration for the metrics HTTP server.
type ServerConfig struct {
	// Addr is the listen address, e.g. "127.0.0.1:9464". Empty disables
	// the server.
	Addr string

	// Path is the path to serve metrics on.
	Path string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns the default metrics server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Path:         "/metrics",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Server serves a Recorder's registry over HTTP.
type Server struct {
	config   ServerConfig
	recorder *Recorder
	server   *http.Server
	listener net.Listener
}

// NewServer creates a metrics server for recorder.
func NewServer(config ServerConfig, recorder *Recorder) *Server {
	if config.Path == "" {
		config.Path = "/metrics"
	}
	return &Server{config: config, recorder: recorder}
}

// Start begins serving in the background. It is a no-op when no address is
// configured.
func (s *Server) Start() error {
	if s.config.Addr == "" || s.recorder == nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	s.listener = ln

	mux := http.NewServeMux()
	mux.Handle(s.config.Path, promhttp.HandlerFor(s.recorder.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	go func() {
		// metrics are non-critical; Serve errors after Shutdown are expected
		_ = s.server.Serve(ln)
	}()

	return nil
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Addr returns the bound address, or "" when not running.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
