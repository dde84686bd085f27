package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/kerraform/kota/internal/metric"
	"github.com/kerraform/kota/internal/middleware"
	v1 "github.com/kerraform/kota/internal/v1"
	"go.uber.org/zap"
)

type Server struct {
	logger *zap.Logger
	metric *metric.OTAMetrics
	mux    *mux.Router
	server *http.Server

	v1 *v1.Handler
}

type ServerConfig struct {
	Logger *zap.Logger
	Metric *metric.OTAMetrics
	V1     *v1.Handler
}

func NewServer(cfg *ServerConfig) *Server {
	s := &Server{
		logger: cfg.Logger,
		metric: cfg.Metric,
		mux:    mux.NewRouter(),
		v1:     cfg.V1,
	}

	s.server = &http.Server{
		WriteTimeout: time.Second * 60,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      s.mux,
	}

	s.metric.RegisterAllMetrics()

	s.mux.Use(middleware.AccessLog(s.logger))
	s.registerOTAHandler()
	s.registerUtilHandler()
	s.registerMetricsHandler()

	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Serve(ctx context.Context, conn net.Listener) error {
	s.logger.Debug("serving", zap.String("address", conn.Addr().String()))
	if err := s.server.Serve(conn); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
