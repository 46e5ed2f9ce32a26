// Package research wires configuration, the inference fallback chain,
// the agent registry, and the supervisor into one analysis system.
package research

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/avinier/multibagger/config"
	"github.com/avinier/multibagger/internal/agents"
	"github.com/avinier/multibagger/internal/backend"
	"github.com/avinier/multibagger/internal/models"
	"github.com/avinier/multibagger/internal/supervisor"
)

// System is the top-level entry point for analysis runs. Construct it
// once at startup; it is safe for concurrent use afterwards.
type System struct {
	cfg        *config.Config
	chain      *backend.Chain
	registry   *agents.Registry
	supervisor *supervisor.Supervisor
	batch      *supervisor.BatchCoordinator
	results    *ResultsWriter

	mu          sync.RWMutex
	initialized bool
	startedAt   time.Time
}

// Status is the operational snapshot reported by the status endpoint.
type Status struct {
	Initialized  bool                      `json:"initialized"`
	DegradedMode bool                      `json:"degraded_mode"`
	Backends     map[string]backend.Status `json:"backends"`
	AgentWeights map[string]float64        `json:"agent_weights"`
	Thresholds   Thresholds                `json:"thresholds"`
	BatchWorkers int                       `json:"batch_workers"`
	UptimeSec    float64                   `json:"uptime_seconds"`
}

type Thresholds struct {
	HighConviction float64 `json:"high_conviction"`
	Watchlist      float64 `json:"watchlist"`
	StrongAgent    float64 `json:"strong_agent"`
}

// New validates configuration and wires the full pipeline. A config
// error here is fatal to startup; missing inference credentials are
// not, they only put the system into degraded mode.
func New(ctx context.Context, cfg *config.Config) (*System, error) {
	return NewWithProvider(ctx, cfg, NewProvider(cfg))
}

// NewWithProvider wires the system around a caller-supplied input
// provider.
func NewWithProvider(ctx context.Context, cfg *config.Config, provider supervisor.BundleProvider) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("preparing directories: %w", err)
	}

	chain, err := backend.BuildChain(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("building backend chain: %w", err)
	}

	registry, err := agents.NewRegistry(cfg, chain)
	if err != nil {
		return nil, fmt.Errorf("building agent registry: %w", err)
	}

	sup := supervisor.New(cfg, registry)

	system := &System{
		cfg:        cfg,
		chain:      chain,
		registry:   registry,
		supervisor: sup,
		batch:      supervisor.NewBatchCoordinator(cfg, sup, provider),
		results:    NewResultsWriter(cfg),
		startedAt:  time.Now(),
	}

	if !cfg.HasInferenceCredentials() {
		log.Printf("[research] running in degraded mode: no inference credentials configured")
	}

	system.mu.Lock()
	system.initialized = true
	system.mu.Unlock()
	return system, nil
}

// AnalyzeOne runs the full agent panel over a single symbol.
func (s *System) AnalyzeOne(ctx context.Context, symbol string) models.CompositeResult {
	results := s.batch.EvaluateMany(ctx, []string{symbol})
	return results[0]
}

// AnalyzeBatch runs the panel over every symbol and returns the ranked
// report. The report is also persisted to the results directory; a
// persistence failure is logged, not returned.
func (s *System) AnalyzeBatch(ctx context.Context, symbols []string) *models.Report {
	results := s.batch.EvaluateMany(ctx, symbols)
	report := models.BuildReport(results)

	if path, err := s.results.SaveReport(report); err != nil {
		log.Printf("[research] could not persist report: %v", err)
	} else {
		log.Printf("[research] report saved to %s", path)
	}
	return report
}

// Status reports backend health, weights, and thresholds.
func (s *System) Status() Status {
	s.mu.RLock()
	initialized := s.initialized
	s.mu.RUnlock()

	return Status{
		Initialized:  initialized,
		DegradedMode: !s.cfg.HasInferenceCredentials(),
		Backends:     s.chain.Health().Snapshot(s.chain.Names()),
		AgentWeights: s.registry.Weights(),
		Thresholds: Thresholds{
			HighConviction: s.cfg.HighConvictionThreshold,
			Watchlist:      s.cfg.WatchlistThreshold,
			StrongAgent:    s.cfg.StrongAgentThreshold,
		},
		BatchWorkers: s.cfg.BatchWorkers,
		UptimeSec:    time.Since(s.startedAt).Seconds(),
	}
}

// Initialized reports whether startup wiring completed.
func (s *System) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// ResetBackends clears unusable marks so quota-cooled providers get
// another chance without a restart.
func (s *System) ResetBackends() {
	s.chain.Health().Reset()
	log.Printf("[research] backend health marks cleared")
}

