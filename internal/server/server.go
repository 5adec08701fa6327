// Package server exposes the catalog over HTTP as grid payloads.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"golang.org/x/text/message"

	"griddemo/internal/catalog"
	"griddemo/internal/grid"
	"griddemo/internal/metrics"
	"griddemo/pkg/records"
)

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-ID"

// Datasets is the read side of catalog.Catalog.
type Datasets interface {
	Get(name string) (records.Dataset, error)
	List() []catalog.Entry
}

// Options configures a Server.
type Options struct {
	Datasets Datasets

	// MaxRows is the guard ceiling (grid.MaxRows when <= 0).
	MaxRows int

	// Printer formats guard messages; nil uses the host locale.
	Printer *message.Printer

	Metrics metrics.Backend
	Logger  *log.Logger
}

// Server serves the dataset API.
type Server struct {
	datasets Datasets
	maxRows  int
	printer  *message.Printer
	metrics  metrics.Backend
	logger   *log.Logger
	handler  http.Handler
}

// New builds a Server and its routes.
func New(opts Options) *Server {
	s := &Server{
		datasets: opts.Datasets,
		maxRows:  grid.Limit(opts.MaxRows),
		printer:  opts.Printer,
		metrics:  metrics.OrNop(opts.Metrics),
		logger:   opts.Logger,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/datasets", s.handleList)
	mux.HandleFunc("GET /api/datasets/{name}", s.handleDataset)
	mux.HandleFunc("GET /api/datasets/{name}/schema", s.handleSchema)
	s.handler = s.instrument(mux)
	return s
}

// Handler returns the instrumented router.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully, waiting up to five seconds for in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Printf("server: listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Printf("server: stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.datasets.List())
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.lookup(w, r)
	if !ok {
		return
	}

	p := grid.Prepare(ds, grid.PrepareOptions{
		MaxRows:         s.maxRows,
		Printer:         s.printer,
		TextFiltersOnly: r.URL.Query().Get("filters") == "text",
	})

	s.metrics.IncCounter(metrics.GuardTotal, 1, metrics.Labels{
		"dataset": ds.Name,
		"result":  metrics.GuardResult(p.Guard.Accepted),
	})
	if p.Guard.Accepted {
		s.metrics.IncCounter(metrics.RowsServedTotal, float64(len(p.RowData)), metrics.Labels{"dataset": ds.Name})
	} else {
		s.logger.Printf("server: %s: %s", ds.Name, p.Error)
	}

	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, grid.InferSchema(ds))
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (records.Dataset, bool) {
	name := r.PathValue("name")
	ds, err := s.datasets.Get(name)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "dataset "+name+" not found")
		return records.Dataset{}, false
	case err != nil:
		s.logger.Printf("server: get %s: %v", name, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return records.Dataset{}, false
	}
	return ds, true
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
