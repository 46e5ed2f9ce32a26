package backend

import (
	"context"
	"fmt"
	"log"

	"github.com/avinier/multibagger/config"
)

// BuildChain assembles the fallback chain from the configured preference
// order, skipping providers without credentials. An empty chain is not an
// error here: the caller decides whether to run in degraded mode.
func BuildChain(ctx context.Context, cfg *config.Config) (*Chain, error) {
	health := NewHealth()
	var adapters []Adapter

	for _, name := range cfg.BackendOrder {
		switch name {
		case "groq":
			if cfg.GroqAPIKey == "" {
				continue
			}
			adapters = append(adapters, NewGroq(cfg))
		case "deepseek":
			if cfg.DeepSeekAPIKey == "" {
				continue
			}
			adapter, err := NewDeepSeek(ctx, cfg)
			if err != nil {
				return nil, err
			}
			adapters = append(adapters, adapter)
		case "openai":
			if cfg.OpenAIAPIKey == "" {
				continue
			}
			adapter, err := NewOpenAI(ctx, cfg)
			if err != nil {
				return nil, err
			}
			adapters = append(adapters, adapter)
		default:
			return nil, fmt.Errorf("unknown backend %q in BACKEND_ORDER", name)
		}
	}

	if len(adapters) == 0 {
		log.Printf("[backend] no inference credentials configured, chain is empty (degraded mode)")
	}

	return NewChain(health, adapters...), nil
}
