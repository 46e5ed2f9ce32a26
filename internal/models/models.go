// Package models holds the data types shared across the analysis pipeline.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tier is the discrete outcome classification for a subject.
type Tier string

const (
	TierHighConviction Tier = "HIGH_CONVICTION"
	TierWatchlist      Tier = "WATCHLIST"
	TierRejected       Tier = "REJECTED"
)

// PricePoint is one bar of price/volume history.
type PricePoint struct {
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// NewsItem is a headline relevant to a subject.
type NewsItem struct {
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	URL         string    `json:"url"`
}

// YearFinancials holds one fiscal year of statement figures, in the
// reporting currency. Zero values mean "not reported".
type YearFinancials struct {
	Year            int     `json:"year"`
	TotalRevenue    float64 `json:"total_revenue"`
	NetIncome       float64 `json:"net_income"`
	OperatingIncome float64 `json:"operating_income"`
	TotalDebt       float64 `json:"total_debt"`
	TotalEquity     float64 `json:"total_equity"`
	OperatingCF     float64 `json:"operating_cf"`
}

// HoldingRecord is one institutional position or deal in a subject.
type HoldingRecord struct {
	Investor  string  `json:"investor"`
	Kind      string  `json:"kind"` // "FII", "DII", "MF", "BULK_DEAL"
	SharePct  float64 `json:"share_pct"`
	ChangePct float64 `json:"change_pct"` // quarter-over-quarter
}

// ShareholdingPattern summarizes ownership structure over recent quarters.
type ShareholdingPattern struct {
	PromoterPct        float64 `json:"promoter_pct"`
	PromoterPledgedPct float64 `json:"promoter_pledged_pct"`
	PromoterTrend      float64 `json:"promoter_trend"` // pct-point change over 4 quarters
	InstitutionalPct   float64 `json:"institutional_pct"`
}

// RawInputBundle carries the collaborator-supplied data for one subject.
// It is built by the data layer and read-only to agents.
type RawInputBundle struct {
	Symbol       string              `json:"symbol"`
	CompanyName  string              `json:"company_name"`
	Sector       string              `json:"sector"`
	Industry     string              `json:"industry"`
	MarketCap    float64             `json:"market_cap"`
	Financials   []YearFinancials    `json:"financials"` // newest first
	Shareholding ShareholdingPattern `json:"shareholding"`
	Prices       []PricePoint        `json:"prices"` // oldest first
	Holdings     []HoldingRecord     `json:"holdings"`
	News         []NewsItem          `json:"news"`
	FetchedAt    time.Time           `json:"fetched_at"`
}

// Empty reports whether the bundle carries no usable data at all.
func (b *RawInputBundle) Empty() bool {
	return b == nil || (len(b.Financials) == 0 && len(b.Prices) == 0 &&
		len(b.Holdings) == 0 && len(b.News) == 0)
}

// PartialScore is one agent's assessment of one subject. It is created
// once per analysis call and never mutated afterwards.
type PartialScore struct {
	AgentName string `json:"agent_name"`

	// Score is the agent's native-scale value (0-10 for numeric agents,
	// unused for stage agents). Normalized maps it to [0,1].
	Score      float64 `json:"score"`
	Normalized float64 `json:"normalized"`

	// Stage is set by enumerated-stage agents (technicals, policy_macro).
	Stage string `json:"stage,omitempty"`

	Evidence []string `json:"evidence"`
	RedFlags []string `json:"red_flags"`

	// Succeeded is false when every backend failed for this agent; such
	// records are excluded from the composite but kept for auditability.
	Succeeded bool   `json:"succeeded"`
	Backend   string `json:"backend,omitempty"` // provider that produced the reply
}

// CompositeResult is the supervisor's output for one subject.
type CompositeResult struct {
	Symbol         string  `json:"symbol"`
	Sector         string  `json:"sector"`
	MarketCap      float64 `json:"market_cap"`
	CompositeScore float64 `json:"composite_score"` // [0,1]
	Tier           Tier    `json:"tier"`
	Consensus      string  `json:"consensus"`

	// Records always has one entry per registered agent, failures included.
	Records []PartialScore `json:"records"`

	ExpectedTimeframe string   `json:"expected_timeframe"`
	KeyTriggers       []string `json:"key_triggers"`
	MajorRisks        []string `json:"major_risks"`

	// Degraded marks results produced despite total agent failure or a
	// malformed input bundle; it distinguishes outages from low scores.
	Degraded      bool   `json:"degraded"`
	DegradedCause string `json:"degraded_cause,omitempty"`

	AnalyzedAt time.Time `json:"analyzed_at"`
}

// StrongAgents counts successful agents whose normalized score reaches
// the given threshold.
func (r *CompositeResult) StrongAgents(threshold float64) int {
	n := 0
	for _, rec := range r.Records {
		if rec.Succeeded && rec.Normalized >= threshold {
			n++
		}
	}
	return n
}

// SubScores returns the per-agent normalized scores for successful agents.
func (r *CompositeResult) SubScores() map[string]float64 {
	scores := make(map[string]float64, len(r.Records))
	for _, rec := range r.Records {
		if rec.Succeeded {
			scores[rec.AgentName] = rec.Normalized
		}
	}
	return scores
}
