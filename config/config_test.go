package config

import (
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRejectsBadWeights(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AgentWeights[AgentFundamentals] = 0.50 // sum now 1.15
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for weights not summing to 1.0")
	}

	cfg = DefaultConfig()
	cfg.AgentWeights[AgentTechnicals] = -0.15
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for negative weight")
	}
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WatchlistThreshold = 0.70
	cfg.HighConvictionThreshold = 0.60
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for inverted thresholds")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BACKEND_ORDER", "deepseek, openai")
	t.Setenv("HIGH_CONVICTION_THRESHOLD", "0.75")
	t.Setenv("WATCHLIST_THRESHOLD", "0.60")
	t.Setenv("AGENT_TIMEOUT_SECONDS", "30")
	t.Setenv("WEIGHT_FUNDAMENTALS", "0.40")
	t.Setenv("WEIGHT_POLICY_MACRO", "0.15")

	cfg := DefaultConfig()

	if len(cfg.BackendOrder) != 2 || cfg.BackendOrder[0] != "deepseek" || cfg.BackendOrder[1] != "openai" {
		t.Fatalf("backend order not parsed: %v", cfg.BackendOrder)
	}
	if cfg.HighConvictionThreshold != 0.75 || cfg.WatchlistThreshold != 0.60 {
		t.Fatalf("thresholds not overridden: %f %f", cfg.HighConvictionThreshold, cfg.WatchlistThreshold)
	}
	if cfg.AgentTimeout != 30*time.Second {
		t.Fatalf("agent timeout not overridden: %v", cfg.AgentTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("overridden weights should still sum to 1.0: %v", err)
	}
}

func TestHasInferenceCredentials(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GroqAPIKey = ""
	cfg.DeepSeekAPIKey = ""
	cfg.OpenAIAPIKey = ""
	if cfg.HasInferenceCredentials() {
		t.Fatalf("expected no credentials")
	}

	cfg.DeepSeekAPIKey = "sk-test"
	if !cfg.HasInferenceCredentials() {
		t.Fatalf("expected credentials after setting deepseek key")
	}
}
