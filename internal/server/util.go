package server

import (
	"errors"
	"net/http"

	kerrors "github.com/kerraform/kota/internal/errors"
	"github.com/kerraform/kota/internal/handler"
	"github.com/kerraform/kota/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerUtilHandler() {
	s.mux.Methods(http.MethodGet).Path("/healthz").Handler(s.HealthCheck())

	s.mux.NotFoundHandler = middleware.AccessLog(s.logger)(s.NotFound())
	s.mux.MethodNotAllowedHandler = middleware.AccessLog(s.logger)(s.MethodNotAllowed())
}

func (s *Server) registerMetricsHandler() {
	s.mux.Methods(http.MethodGet).Path("/metrics").Handler(promhttp.HandlerFor(s.metric.Gatherer(), promhttp.HandlerOpts{}))
}

func (s *Server) HealthCheck() http.Handler {
	return handler.NewHandler(s.logger, func(w http.ResponseWriter, _ *http.Request) error {
		w.WriteHeader(http.StatusOK)
		return nil
	})
}

func (s *Server) NotFound() http.Handler {
	return handler.NewHandler(s.logger, func(w http.ResponseWriter, _ *http.Request) error {
		return kerrors.Wrap(errors.New("not found"), kerrors.WithNotFound())
	})
}

func (s *Server) MethodNotAllowed() http.Handler {
	return handler.NewHandler(s.logger, func(w http.ResponseWriter, _ *http.Request) error {
		return kerrors.Wrap(errors.New("method not allowed"), kerrors.WithStatusCode(http.StatusMethodNotAllowed))
	})
}
