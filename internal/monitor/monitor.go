// Package monitor orchestrates one evaluation cycle: fetch the seismic
// catalog and K-index, normalize, compute the SUPT indicators, classify, and
// hand the bundle to the serving and publishing layers. Each cycle is one
// linear pass; recoverable input failures degrade to fallbacks and are
// recorded as notices on the bundle, never surfaced as hard errors.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sunwolf-labs/supt-monitor/internal/adapter/ingv"
	"github.com/sunwolf-labs/supt-monitor/internal/config"
	"github.com/sunwolf-labs/supt-monitor/internal/domain"
	"github.com/sunwolf-labs/supt-monitor/internal/observability"
)

// CatalogSource fetches the raw live catalog table for a query.
type CatalogSource interface {
	FetchCatalog(ctx context.Context, q ingv.Query) (domain.Table, error)
}

// FallbackSource reads the local catalog table used when the live source fails.
type FallbackSource interface {
	ReadCatalog() (domain.Table, error)
}

// KpSource fetches the current planetary K-index.
type KpSource interface {
	FetchKp(ctx context.Context) (float64, error)
}

// BundlePublisher forwards evaluated bundles to downstream consumers.
type BundlePublisher interface {
	PublishBundle(ctx context.Context, bundle domain.MetricBundle) error
}

// Service runs the evaluation cycle and holds the latest bundle.
type Service struct {
	catalog   CatalogSource
	fallback  FallbackSource
	kp        KpSource
	publisher BundlePublisher // nil disables publishing

	cfg     *config.Config
	hints   domain.ColumnHints
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
	rng     *rand.Rand

	// evalMu serializes evaluation; a refresh is never concurrent with itself.
	evalMu sync.Mutex

	mu     sync.RWMutex
	latest *domain.MetricBundle

	ready atomic.Bool
}

// New creates a Service. Pass a nil publisher to disable bundle publishing
// and a nil rng to use a time-seeded source.
func New(catalog CatalogSource, fallback FallbackSource, kp KpSource, publisher BundlePublisher,
	cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		catalog:   catalog,
		fallback:  fallback,
		kp:        kp,
		publisher: publisher,
		cfg:       cfg,
		hints: domain.ColumnHints{
			Time:      cfg.TimeColumn,
			Magnitude: cfg.MagnitudeColumn,
			Depth:     cfg.DepthColumn,
		},
		logger:  logger,
		metrics: metrics,
		clock:   clockwork.NewRealClock(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetClock swaps the time source used for query windows and bundle
// timestamps. Tests inject a fake for deterministic output.
func (s *Service) SetClock(c clockwork.Clock) { s.clock = c }

// SetRand swaps the noise source feeding the coherence estimator.
func (s *Service) SetRand(rng *rand.Rand) { s.rng = rng }

// CheckReadiness returns nil once at least one evaluation has completed.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no evaluation has completed yet")
	}
	return nil
}

// LatestBundle returns the most recent bundle, if any evaluation has run.
func (s *Service) LatestBundle() (domain.MetricBundle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return domain.MetricBundle{}, false
	}
	return *s.latest, true
}

// Run executes the refresh loop until the context is cancelled. The first
// evaluation happens immediately, then once per refresh interval.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("monitor started",
		"interval", s.cfg.RefreshInterval,
		"psi_s", s.cfg.PsiS,
		"publishing", s.publisher != nil,
	)
	s.metrics.MonitorRunning.Set(1)
	defer s.metrics.MonitorRunning.Set(0)

	s.Evaluate(ctx, s.cfg.PsiS)

	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("monitor stopping", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			s.Evaluate(ctx, s.cfg.PsiS)
		}
	}
}

// Evaluate runs one complete cycle with the given pressure proxy and stores
// the result as the latest bundle. It always produces a bundle: recoverable
// input failures degrade to fallback data or defined empty-set values.
func (s *Service) Evaluate(ctx context.Context, psiS float64) domain.MetricBundle {
	s.evalMu.Lock()
	defer s.evalMu.Unlock()

	start := time.Now()

	events, catalogSource, notices := s.loadEvents(ctx)
	kp, kpSource, kpNotice := s.loadKp(ctx)
	if kpNotice != "" {
		notices = append(notices, kpNotice)
	}

	metrics := domain.ComputeMetrics(events, psiS)
	cci := domain.ComputeCoherence(events, psiS, s.cfg.CoherenceSamples, s.rng)
	assessment := domain.Classify(metrics.EII, cci, kp)

	bundle := domain.MetricBundle{
		Metrics:        metrics,
		CCI:            cci,
		Kp:             kp,
		PsiS:           psiS,
		Phase:          assessment.Phase,
		CoherenceLabel: assessment.CoherenceLabel,
		GeomagLabel:    assessment.GeomagLabel,
		DiagnosticText: assessment.DiagnosticText,
		CatalogSource:  catalogSource,
		KpSource:       kpSource,
		EventCount:     len(events),
		Notices:        notices,
		EvaluatedAt:    s.clock.Now().UTC(),
	}

	s.mu.Lock()
	s.latest = &bundle
	s.mu.Unlock()
	s.ready.Store(true)

	s.metrics.EvaluationsTotal.Inc()
	s.metrics.EvaluationDuration.Observe(time.Since(start).Seconds())
	s.metrics.CurrentEII.Set(bundle.EII)
	s.metrics.CurrentCCI.Set(bundle.CCI)
	s.metrics.CurrentKp.Set(bundle.Kp)
	s.metrics.CurrentEventCount.Set(float64(bundle.EventCount))

	s.logger.Info("evaluation complete",
		"eii", bundle.EII,
		"cci", bundle.CCI,
		"kp", bundle.Kp,
		"phase", bundle.Phase,
		"events", bundle.EventCount,
		"catalog_source", bundle.CatalogSource,
	)

	s.publish(ctx, bundle)
	return bundle
}

// loadEvents resolves the normalized event set through the fallback chain:
// live catalog, then local file, then an empty set with a "no data" notice.
func (s *Service) loadEvents(ctx context.Context) (domain.EventSet, string, []string) {
	var notices []string

	table, err := s.catalog.FetchCatalog(ctx, s.buildQuery())
	if err == nil {
		events, normErr := domain.Normalize(table, s.hints)
		if normErr == nil {
			return events, domain.SourceLive, notices
		}
		err = normErr
	}

	s.logger.Warn("live catalog unavailable, using local fallback", "error", err)
	s.metrics.FetchFailures.WithLabelValues("catalog").Inc()
	s.metrics.FallbacksTotal.WithLabelValues("catalog").Inc()
	notices = append(notices, fmt.Sprintf("live catalog unavailable (%v); using local fallback", err))

	table, err = s.fallback.ReadCatalog()
	if err == nil {
		events, normErr := domain.Normalize(table, s.hints)
		if normErr == nil {
			return events, domain.SourceFallback, notices
		}
		err = normErr
	}

	s.logger.Warn("local catalog fallback failed", "error", err)
	notices = append(notices, fmt.Sprintf("no catalog data available (%v)", err))
	return nil, domain.SourceNone, notices
}

// loadKp fetches the K-index, substituting the configured fallback constant
// on any failure.
func (s *Service) loadKp(ctx context.Context) (float64, string, string) {
	kp, err := s.kp.FetchKp(ctx)
	if err != nil {
		s.logger.Warn("kp fetch failed, using fallback constant", "error", err, "fallback", s.cfg.KpFallback)
		s.metrics.FetchFailures.WithLabelValues("kp").Inc()
		s.metrics.FallbacksTotal.WithLabelValues("kp").Inc()
		return s.cfg.KpFallback, domain.SourceFallback, fmt.Sprintf("kp feed unavailable (%v); using fallback %.1f", err, s.cfg.KpFallback)
	}
	return kp, domain.SourceLive, ""
}

// buildQuery derives the rolling catalog window from the configured bounding
// box and lookback.
func (s *Service) buildQuery() ingv.Query {
	now := s.clock.Now().UTC()
	return ingv.Query{
		MinLat: s.cfg.MinLat,
		MaxLat: s.cfg.MaxLat,
		MinLon: s.cfg.MinLon,
		MaxLon: s.cfg.MaxLon,
		Start:  now.Add(-s.cfg.Lookback),
		End:    now,
	}
}

func (s *Service) publish(ctx context.Context, bundle domain.MetricBundle) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishBundle(ctx, bundle); err != nil {
		s.logger.Warn("bundle publish failed", "error", err)
		s.metrics.PublishErrors.Inc()
		return
	}
	s.metrics.BundlesPublished.Inc()
}
