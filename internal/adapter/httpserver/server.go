// Package httpserver exposes the monitor over HTTP: health, readiness, and
// Prometheus endpoints plus the JSON API consumed by the dashboard frontend.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sunwolf-labs/supt-monitor/internal/domain"
	"github.com/sunwolf-labs/supt-monitor/internal/monitor"
)

// BundleProvider is the slice of the monitor service the HTTP layer needs.
type BundleProvider interface {
	CheckReadiness(ctx context.Context) error
	LatestBundle() (domain.MetricBundle, bool)
	Evaluate(ctx context.Context, psiS float64) domain.MetricBundle
}

// Server exposes health, readiness, metrics, and dashboard API endpoints.
type Server struct {
	httpServer *http.Server
	provider   BundleProvider
	defaultPsi float64
	logger     *slog.Logger
}

// NewServer creates the HTTP server. defaultPsi is used when a request does
// not carry its own ψₛ.
func NewServer(addr string, provider BundleProvider, defaultPsi float64, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		provider:   provider,
		defaultPsi: defaultPsi,
		logger:     logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/v1/bundle", s.handleBundle)
	mux.HandleFunc("GET /api/v1/forecast", s.handleForecast)
	mux.HandleFunc("GET /api/v1/psi/history", s.handlePsiHistory)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.provider.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleBundle serves the latest bundle. A psi query parameter triggers an
// on-demand evaluation with that ψₛ, mirroring the dashboard slider.
func (s *Server) handleBundle(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("psi"); raw != "" {
		psi, err := parsePsi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, s.provider.Evaluate(r.Context(), psi))
		return
	}

	bundle, ok := s.provider.LatestBundle()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no evaluation has completed yet"})
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	psi := s.defaultPsi
	if raw := r.URL.Query().Get("psi"); raw != "" {
		parsed, err := parsePsi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		psi = parsed
	}

	hours := monitor.DefaultForecastHours
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 168 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "hours must be an integer in [1, 168]"})
			return
		}
		hours = parsed
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"psi_s":    psi,
		"forecast": monitor.ForecastWave(psi, hours),
	})
}

// handlePsiHistory serves the synthetic ψₛ history chart data. The noise is
// redrawn per request; the history is presentation data, not monitor state.
func (s *Server) handlePsiHistory(w http.ResponseWriter, r *http.Request) {
	psi := s.defaultPsi
	if raw := r.URL.Query().Get("psi"); raw != "" {
		parsed, err := parsePsi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		psi = parsed
	}

	samples := domain.DefaultCoherenceSamples
	if raw := r.URL.Query().Get("samples"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 2 || parsed > 1000 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "samples must be an integer in [2, 1000]"})
			return
		}
		samples = parsed
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	writeJSON(w, http.StatusOK, map[string]any{
		"psi_s":   psi,
		"history": domain.PsiHistory(psi, samples, rng),
	})
}

func parsePsi(raw string) (float64, error) {
	psi, err := strconv.ParseFloat(raw, 64)
	if err != nil || psi < 0 || psi > 1 {
		return 0, errors.New("psi must be a number in [0, 1]")
	}
	return psi, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
