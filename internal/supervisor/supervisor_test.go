package supervisor

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avinier/multibagger/config"
	"github.com/avinier/multibagger/internal/agents"
	"github.com/avinier/multibagger/internal/backend"
	"github.com/avinier/multibagger/internal/models"
)

// schemaRunner answers each agent by schema name, so one runner can
// drive all five analysts in a single evaluation.
type schemaRunner struct {
	fields map[string]map[string]interface{}
	errs   map[string]error
}

func (s *schemaRunner) Run(ctx context.Context, prompt string, sc *backend.Schema) (*backend.Reply, error) {
	if err := s.errs[sc.Name]; err != nil {
		return nil, err
	}
	fields, ok := s.fields[sc.Name]
	if !ok {
		return nil, fmt.Errorf("no scripted reply for %s", sc.Name)
	}
	return &backend.Reply{Backend: "stub", Fields: fields}, nil
}

func healthyRunner() *schemaRunner {
	return &schemaRunner{
		fields: map[string]map[string]interface{}{
			config.AgentFundamentals: {
				"score":     8.0,
				"strengths": []string{"consistent revenue growth", "improving margins"},
				"red_flags": []string{"customer concentration"},
			},
			config.AgentManagement: {
				"score":              7.0,
				"evidence_of_change": []string{"new growth-focused CEO"},
				"alignment":          "HIGH",
			},
			config.AgentPolicyMacro: {
				"strength": "STRONG",
				"horizon":  "LONG",
				"drivers":  []string{"production-linked incentives"},
			},
			config.AgentSmartMoney: {
				"score":        7.0,
				"investors":    []string{"Quant Small Cap Fund"},
				"accumulation": "YES",
			},
			config.AgentTechnicals: {
				"stage":       "BREAKOUT",
				"risk_reward": "1:2",
				"signals":     []string{"volume surge on breakout"},
			},
		},
		errs: map[string]error{},
	}
}

func evalBundle() *models.RawInputBundle {
	return &models.RawInputBundle{
		Symbol:      "KPIT.NS",
		CompanyName: "KPIT Technologies",
		Sector:      "Technology",
		MarketCap:   40_000_000_000,
		Financials: []models.YearFinancials{
			{Year: 2024, TotalRevenue: 4800, NetIncome: 600, OperatingIncome: 750, TotalDebt: 120, TotalEquity: 2100, OperatingCF: 640},
			{Year: 2021, TotalRevenue: 2100, NetIncome: 150, OperatingIncome: 210, TotalDebt: 300, TotalEquity: 1100, OperatingCF: 190},
		},
		Prices: []models.PricePoint{
			{Date: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), Close: decimal.NewFromInt(1500), Volume: 100000},
		},
		FetchedAt: time.Now(),
	}
}

func newSupervisor(t *testing.T, runner backend.Runner) (*Supervisor, *config.Config) {
	t.Helper()
	cfg := config.DefaultConfig()
	reg, err := agents.NewRegistry(cfg, runner)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return New(cfg, reg), cfg
}

func TestEvaluateAllAgentsSucceed(t *testing.T) {
	sup, _ := newSupervisor(t, healthyRunner())

	result := sup.Evaluate(context.Background(), evalBundle())

	if len(result.Records) != 5 {
		t.Fatalf("expected 5 records, got %d", len(result.Records))
	}
	if result.Degraded {
		t.Fatalf("healthy run must not be degraded: %+v", result)
	}

	// .35*.8 + .15*.7 + .20*.99 + .15*.7 + .15*.99
	want := 0.8365
	if math.Abs(result.CompositeScore-want) > 1e-9 {
		t.Fatalf("composite = %f, want %f", result.CompositeScore, want)
	}
	if result.Tier != models.TierHighConviction {
		t.Fatalf("tier = %s", result.Tier)
	}
	if result.Consensus != "STRONG BUY (High Conviction)" {
		t.Fatalf("consensus = %s", result.Consensus)
	}
	if result.ExpectedTimeframe != "2-3 years" {
		t.Fatalf("timeframe = %s", result.ExpectedTimeframe)
	}
	if len(result.KeyTriggers) == 0 || len(result.KeyTriggers) > 5 {
		t.Fatalf("triggers = %+v", result.KeyTriggers)
	}
	if len(result.MajorRisks) == 0 || len(result.MajorRisks) > 4 {
		t.Fatalf("risks = %+v", result.MajorRisks)
	}
}

func TestEvaluateRenormalizesOverSuccessfulAgents(t *testing.T) {
	runner := healthyRunner()
	runner.errs[config.AgentManagement] = backend.ErrAllBackendsFailed
	sup, _ := newSupervisor(t, runner)

	result := sup.Evaluate(context.Background(), evalBundle())

	if len(result.Records) != 5 {
		t.Fatalf("failed agents must still produce a record, got %d", len(result.Records))
	}
	succeeded := 0
	for _, rec := range result.Records {
		if rec.Succeeded {
			succeeded++
		} else if rec.AgentName != config.AgentManagement {
			t.Fatalf("unexpected failed agent %s", rec.AgentName)
		}
	}
	if succeeded != 4 {
		t.Fatalf("succeeded = %d", succeeded)
	}

	// Remaining weight mass .85, so the composite is scaled up rather
	// than dragged toward zero by the outage.
	want := (0.35*0.8 + 0.20*0.99 + 0.15*0.7 + 0.15*0.99) / 0.85
	if math.Abs(result.CompositeScore-want) > 1e-9 {
		t.Fatalf("composite = %f, want %f", result.CompositeScore, want)
	}
	if result.Degraded {
		t.Fatalf("partial failure must not flag degraded")
	}
}

func TestEvaluateZeroSuccessesDegrades(t *testing.T) {
	runner := healthyRunner()
	for name := range runner.fields {
		runner.errs[name] = backend.ErrAllBackendsFailed
	}
	sup, _ := newSupervisor(t, runner)

	result := sup.Evaluate(context.Background(), evalBundle())

	if !result.Degraded {
		t.Fatalf("total outage must flag degraded")
	}
	if result.Tier != models.TierRejected {
		t.Fatalf("tier = %s", result.Tier)
	}
	if result.CompositeScore != 0 {
		t.Fatalf("composite = %f", result.CompositeScore)
	}
	if result.Consensus != "AVOID (Low Conviction)" {
		t.Fatalf("consensus = %s", result.Consensus)
	}
	if len(result.Records) != 5 {
		t.Fatalf("records = %d", len(result.Records))
	}
}

func TestEvaluateEmptyBundle(t *testing.T) {
	sup, _ := newSupervisor(t, healthyRunner())

	result := sup.Evaluate(context.Background(), &models.RawInputBundle{Symbol: "GHOST.NS"})
	if !result.Degraded {
		t.Fatalf("empty bundle must degrade")
	}
	if len(result.Records) != 0 {
		t.Fatalf("input failure carries no records: %+v", result.Records)
	}
	if result.Symbol != "GHOST.NS" {
		t.Fatalf("symbol = %s", result.Symbol)
	}
}

func TestClassifyBoundaries(t *testing.T) {
	sup, _ := newSupervisor(t, healthyRunner())

	cases := []struct {
		score float64
		want  models.Tier
	}{
		{0.60, models.TierHighConviction},
		{0.5999, models.TierWatchlist},
		{0.45, models.TierWatchlist},
		{0.4499, models.TierRejected},
		{0.0, models.TierRejected},
		{1.0, models.TierHighConviction},
	}
	for _, tc := range cases {
		if got := sup.classify(tc.score); got != tc.want {
			t.Fatalf("classify(%f) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestCompositeMonotonicInAgentScore(t *testing.T) {
	low := healthyRunner()
	low.fields[config.AgentFundamentals]["score"] = 4.0
	supLow, _ := newSupervisor(t, low)
	resultLow := supLow.Evaluate(context.Background(), evalBundle())

	high := healthyRunner()
	high.fields[config.AgentFundamentals]["score"] = 9.0
	supHigh, _ := newSupervisor(t, high)
	resultHigh := supHigh.Evaluate(context.Background(), evalBundle())

	if resultHigh.CompositeScore <= resultLow.CompositeScore {
		t.Fatalf("raising one sub-score must raise the composite: %f vs %f",
			resultHigh.CompositeScore, resultLow.CompositeScore)
	}
}

func TestConsensusLabels(t *testing.T) {
	cases := []struct {
		tier   models.Tier
		strong int
		want   string
	}{
		{models.TierHighConviction, 3, "STRONG BUY (High Conviction)"},
		{models.TierHighConviction, 2, "BUY (High Conviction)"},
		{models.TierWatchlist, 2, "BUY (Medium Conviction)"},
		{models.TierWatchlist, 0, "HOLD (Low Conviction)"},
		{models.TierRejected, 4, "AVOID (Low Conviction)"},
	}
	for _, tc := range cases {
		if got := consensusLabel(tc.tier, tc.strong); got != tc.want {
			t.Fatalf("consensusLabel(%s, %d) = %s, want %s", tc.tier, tc.strong, got, tc.want)
		}
	}
}
