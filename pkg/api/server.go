// Package api exposes a capture file over HTTP: summary statistics, a
// record stream, health and Prometheus metrics.
package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/tracebus/canlog/pkg/csvlog"
	"github.com/tracebus/canlog/pkg/logfile"
)

// Server serves one capture file. The file is reopened per request, so a
// capture still being appended to is always served current.
type Server struct {
	capturePath string
	metrics     *Metrics
	log         *logrus.Entry
}

// NewServer creates a Server for the capture at capturePath.
func NewServer(capturePath string, logger *logrus.Entry) *Server {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = logrus.NewEntry(l)
	}
	return &Server{
		capturePath: capturePath,
		metrics:     NewMetrics(),
		log:         logger,
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.metrics.instrument("/healthz", s.handleHealth))
	r.Get("/v1/stats", s.metrics.instrument("/v1/stats", s.handleStats))
	r.Get("/v1/records", s.metrics.instrument("/v1/records", s.handleRecords))
	r.Handle("/metrics", s.metrics.Handler())

	return r
}

// ListenAndServe runs the server on bind:port until the listener fails.
func (s *Server) ListenAndServe(bind string, port int) error {
	addr := fmt.Sprintf("%s:%d", bind, port)
	s.log.WithField("addr", addr).Info("capture server listening")

	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}
	return srv.ListenAndServe()
}

// openCapture opens a fresh reader over the capture file.
func (s *Server) openCapture() (*csvlog.Reader, io.Closer, error) {
	in, err := logfile.OpenInput(s.capturePath)
	if err != nil {
		return nil, nil, err
	}
	return csvlog.NewReader(in), in, nil
}
