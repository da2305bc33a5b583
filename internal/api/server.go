package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"pairIndex/internal/metrics"
	"pairIndex/internal/model"
)

// TokenQuerier looks up stored token records by token address.
type TokenQuerier interface {
	QueryByAddress(ctx context.Context, addr string) ([]model.TokenRecord, error)
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
}

// Server provides the read-only token info HTTP API.
type Server struct {
	store   TokenQuerier
	symbols *SymbolTable
	metrics *metrics.Metrics
	logger  *zap.Logger
	server  *http.Server

	mu       sync.Mutex
	listener net.Listener
}

func NewServer(cfg ServerConfig, store TokenQuerier, symbols *SymbolTable, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		store:   store,
		symbols: symbols,
		metrics: m,
		logger:  logger,
	}
	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.setupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start binds the listen address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.server.Addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		err := s.server.Serve(ln)
		switch err {
		case nil, http.ErrServerClosed:
			s.logger.Info("http server closed")
		default:
			s.logger.Error("http server error", zap.Error(err))
		}
	}()

	s.logger.Info("http server listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
