package supervisor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/avinier/multibagger/internal/models"
)

// stubProvider returns a shared healthy bundle, failing the symbols
// listed in bad.
type stubProvider struct {
	bad map[string]bool

	mu       sync.Mutex
	inFlight int32
	peak     int32
}

func (p *stubProvider) Bundle(ctx context.Context, symbol string) (*models.RawInputBundle, error) {
	cur := atomic.AddInt32(&p.inFlight, 1)
	defer atomic.AddInt32(&p.inFlight, -1)
	p.mu.Lock()
	if cur > p.peak {
		p.peak = cur
	}
	p.mu.Unlock()

	if p.bad[symbol] {
		return nil, fmt.Errorf("quote lookup failed for %s", symbol)
	}
	bundle := evalBundle()
	bundle.Symbol = symbol
	return bundle, nil
}

func TestEvaluateManyPreservesOrderAndIsolatesFailures(t *testing.T) {
	sup, cfg := newSupervisor(t, healthyRunner())
	provider := &stubProvider{bad: map[string]bool{"BROKEN.NS": true}}
	coordinator := NewBatchCoordinator(cfg, sup, provider)

	symbols := []string{"A.NS", "B.NS", "BROKEN.NS", "D.NS", "E.NS"}
	results := coordinator.EvaluateMany(context.Background(), symbols)

	if len(results) != len(symbols) {
		t.Fatalf("expected %d results, got %d", len(symbols), len(results))
	}
	for i, symbol := range symbols {
		if results[i].Symbol != symbol {
			t.Fatalf("result %d is %s, want %s", i, results[i].Symbol, symbol)
		}
	}

	broken := results[2]
	if !broken.Degraded || len(broken.Records) != 0 {
		t.Fatalf("bad subject must degrade with empty records: %+v", broken)
	}
	for i, result := range results {
		if i == 2 {
			continue
		}
		if result.Degraded {
			t.Fatalf("healthy subject %s degraded: %+v", result.Symbol, result)
		}
		if len(result.Records) != 5 {
			t.Fatalf("subject %s records = %d", result.Symbol, len(result.Records))
		}
	}
}

func TestEvaluateManyBoundsConcurrency(t *testing.T) {
	sup, cfg := newSupervisor(t, healthyRunner())
	cfg.BatchWorkers = 2
	provider := &stubProvider{}
	coordinator := NewBatchCoordinator(cfg, sup, provider)

	symbols := make([]string, 12)
	for i := range symbols {
		symbols[i] = fmt.Sprintf("SYM%d.NS", i)
	}
	coordinator.EvaluateMany(context.Background(), symbols)

	if provider.peak > int32(cfg.BatchWorkers) {
		t.Fatalf("peak concurrency %d exceeds worker bound %d", provider.peak, cfg.BatchWorkers)
	}
}

func TestEvaluateManyCanceledContext(t *testing.T) {
	sup, cfg := newSupervisor(t, healthyRunner())
	coordinator := NewBatchCoordinator(cfg, sup, &stubProvider{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := coordinator.EvaluateMany(ctx, []string{"A.NS", "B.NS"})
	for _, result := range results {
		if !result.Degraded {
			t.Fatalf("canceled batch must degrade every subject: %+v", result)
		}
	}
}

func TestEvaluateManyEmptyInput(t *testing.T) {
	sup, cfg := newSupervisor(t, healthyRunner())
	coordinator := NewBatchCoordinator(cfg, sup, &stubProvider{})

	if results := coordinator.EvaluateMany(context.Background(), nil); len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}
