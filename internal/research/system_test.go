package research

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avinier/multibagger/config"
	"github.com/avinier/multibagger/internal/models"
)

type fixedProvider struct{}

func (fixedProvider) Bundle(ctx context.Context, symbol string) (*models.RawInputBundle, error) {
	if symbol == "BROKEN.NS" {
		return nil, fmt.Errorf("no data upstream")
	}
	return &models.RawInputBundle{
		Symbol:      symbol,
		CompanyName: "Test Co",
		Financials: []models.YearFinancials{
			{Year: 2024, TotalRevenue: 1000, NetIncome: 100},
		},
		Prices: []models.PricePoint{
			{Date: time.Now(), Close: decimal.NewFromInt(100), Volume: 1000},
		},
		FetchedAt: time.Now(),
	}, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.ResultsDir = t.TempDir()
	cfg.DataCacheDir = t.TempDir()
	// No credentials: the system must still start, in degraded mode.
	cfg.GroqAPIKey = ""
	cfg.DeepSeekAPIKey = ""
	cfg.OpenAIAPIKey = ""
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.AgentWeights[config.AgentFundamentals] = 0.99

	if _, err := NewWithProvider(context.Background(), cfg, fixedProvider{}); err == nil {
		t.Fatalf("expected startup failure for bad weights")
	}
}

func TestMissingCredentialsMeansDegradedNotFatal(t *testing.T) {
	system, err := NewWithProvider(context.Background(), testConfig(t), fixedProvider{})
	if err != nil {
		t.Fatalf("missing credentials must not fail startup: %v", err)
	}

	status := system.Status()
	if !status.Initialized {
		t.Fatalf("system should report initialized")
	}
	if !status.DegradedMode {
		t.Fatalf("system should report degraded mode without credentials")
	}
	if len(status.Backends) != 0 {
		t.Fatalf("no backends expected without credentials: %+v", status.Backends)
	}
	if status.AgentWeights[config.AgentFundamentals] != 0.35 {
		t.Fatalf("weights missing from status: %+v", status.AgentWeights)
	}
}

func TestAnalyzeBatchInDegradedMode(t *testing.T) {
	system, err := NewWithProvider(context.Background(), testConfig(t), fixedProvider{})
	if err != nil {
		t.Fatalf("NewWithProvider: %v", err)
	}

	report := system.AnalyzeBatch(context.Background(), []string{"A.NS", "BROKEN.NS"})

	// Without backends every agent fails, so both land in rejected with
	// the degraded marker set.
	if report.Summary.TotalAnalyzed != 2 {
		t.Fatalf("summary = %+v", report.Summary)
	}
	if len(report.Rejected) != 2 {
		t.Fatalf("expected 2 rejected, got %d", len(report.Rejected))
	}
	for _, result := range report.Rejected {
		if !result.Degraded {
			t.Fatalf("degraded flag missing: %+v", result)
		}
	}
}

func TestAnalyzeOneReturnsSubjectResult(t *testing.T) {
	system, err := NewWithProvider(context.Background(), testConfig(t), fixedProvider{})
	if err != nil {
		t.Fatalf("NewWithProvider: %v", err)
	}

	result := system.AnalyzeOne(context.Background(), "TANLA.NS")
	if result.Symbol != "TANLA.NS" {
		t.Fatalf("symbol = %s", result.Symbol)
	}
	if len(result.Records) != 5 {
		t.Fatalf("records = %d", len(result.Records))
	}
}
