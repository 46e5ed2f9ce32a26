package supervisor

import (
	"context"
	"log"
	"sync"

	"github.com/avinier/multibagger/config"
	"github.com/avinier/multibagger/internal/models"
)

// BundleProvider assembles the raw inputs for one subject.
type BundleProvider interface {
	Bundle(ctx context.Context, symbol string) (*models.RawInputBundle, error)
}

// BatchCoordinator fans a list of symbols across a bounded worker pool.
// Failures are isolated per subject and the output order matches the
// input order.
type BatchCoordinator struct {
	supervisor *Supervisor
	provider   BundleProvider
	workers    int
}

func NewBatchCoordinator(cfg *config.Config, sup *Supervisor, provider BundleProvider) *BatchCoordinator {
	workers := cfg.BatchWorkers
	if workers < 1 {
		workers = 1
	}
	return &BatchCoordinator{supervisor: sup, provider: provider, workers: workers}
}

// EvaluateMany analyzes every symbol and returns one result per input
// position. A bad subject yields a degraded entry in its slot; it never
// aborts the batch.
func (bc *BatchCoordinator) EvaluateMany(ctx context.Context, symbols []string) []models.CompositeResult {
	results := make([]models.CompositeResult, len(symbols))

	sem := make(chan struct{}, bc.workers)
	var wg sync.WaitGroup
	for i, symbol := range symbols {
		wg.Add(1)
		go func(idx int, symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[idx] = bc.evaluateOne(ctx, symbol)
		}(i, symbol)
	}
	wg.Wait()

	return results
}

func (bc *BatchCoordinator) evaluateOne(ctx context.Context, symbol string) (result models.CompositeResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[batch] evaluation of %s panicked: %v", symbol, r)
			result = InputFailure(symbol, nil)
		}
	}()

	if err := ctx.Err(); err != nil {
		return InputFailure(symbol, err)
	}

	bundle, err := bc.provider.Bundle(ctx, symbol)
	if err != nil {
		log.Printf("[batch] input assembly failed for %s: %v", symbol, err)
		return InputFailure(symbol, err)
	}
	return bc.supervisor.Evaluate(ctx, bundle)
}
