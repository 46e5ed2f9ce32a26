package agents

import (
	"fmt"

	"github.com/avinier/multibagger/config"
	"github.com/avinier/multibagger/internal/backend"
)

// Registry is the fixed set of agents and their declared weights: the
// source of truth for which agents exist and how much each counts.
type Registry struct {
	agents  []Agent
	weights map[string]float64
}

// NewRegistry builds the five analysts against one shared fallback chain
// and binds them to the configured weights. Every registered agent must
// carry a weight and vice versa.
func NewRegistry(cfg *config.Config, runner backend.Runner) (*Registry, error) {
	agents := []Agent{
		NewFundamentalsAgent(runner),
		NewManagementAgent(runner),
		NewPolicyAgent(runner),
		NewSmartMoneyAgent(runner),
		NewTechnicalsAgent(runner),
	}

	weights := make(map[string]float64, len(agents))
	for _, agent := range agents {
		w, ok := cfg.AgentWeights[agent.Name()]
		if !ok {
			return nil, fmt.Errorf("no weight configured for agent %s", agent.Name())
		}
		weights[agent.Name()] = w
	}
	for name := range cfg.AgentWeights {
		if _, ok := weights[name]; !ok {
			return nil, fmt.Errorf("weight configured for unknown agent %s", name)
		}
	}

	return &Registry{agents: agents, weights: weights}, nil
}

// Agents returns the registered agents in a stable order.
func (r *Registry) Agents() []Agent {
	return r.agents
}

// Size is the number of registered agents.
func (r *Registry) Size() int {
	return len(r.agents)
}

// Weight returns the declared weight for an agent.
func (r *Registry) Weight(name string) float64 {
	return r.weights[name]
}

// Weights returns a copy of the weight table.
func (r *Registry) Weights() map[string]float64 {
	out := make(map[string]float64, len(r.weights))
	for k, v := range r.weights {
		out[k] = v
	}
	return out
}
