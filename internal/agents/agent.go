// Package agents contains the independent analytical units. Each agent
// builds a deterministic prompt from the raw input bundle, calls the
// backend fallback chain, and normalizes the reply into a partial score.
// Agents never call each other and share no mutable state.
package agents

import (
	"context"
	"fmt"

	"github.com/avinier/multibagger/internal/backend"
	"github.com/avinier/multibagger/internal/models"
)

// Agent produces one partial score for one subject. A backend outage is
// reported through Succeeded=false, never as an error.
type Agent interface {
	Name() string
	Analyze(ctx context.Context, bundle *models.RawInputBundle) models.PartialScore
}

type baseAgent struct {
	name   string
	runner backend.Runner
}

func (b *baseAgent) Name() string {
	return b.name
}

// failed builds the partial score for an agent whose backends were all
// exhausted. The failure reason is preserved as evidence for the audit
// trail.
func (b *baseAgent) failed(err error) models.PartialScore {
	return models.PartialScore{
		AgentName: b.name,
		Succeeded: false,
		Evidence:  []string{fmt.Sprintf("analysis unavailable: %v", err)},
		RedFlags:  []string{},
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
