package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/avinier/multibagger/config"
	"github.com/avinier/multibagger/internal/backend"
	"github.com/avinier/multibagger/internal/models"
)

// FundamentalsAgent scores financial quality and growth inflection on a
// 0-10 scale.
type FundamentalsAgent struct {
	baseAgent
}

func NewFundamentalsAgent(runner backend.Runner) *FundamentalsAgent {
	return &FundamentalsAgent{baseAgent{name: config.AgentFundamentals, runner: runner}}
}

func fundamentalsSchema() *backend.Schema {
	return &backend.Schema{
		Name: config.AgentFundamentals,
		Fields: []backend.Field{
			{Name: "score", Type: backend.FieldNumber},
			{Name: "strengths", Type: backend.FieldStringList},
			{Name: "red_flags", Type: backend.FieldStringList},
		},
	}
}

func (a *FundamentalsAgent) Analyze(ctx context.Context, bundle *models.RawInputBundle) models.PartialScore {
	reply, err := a.runner.Run(ctx, a.buildPrompt(bundle), fundamentalsSchema())
	if err != nil {
		return a.failed(err)
	}

	score := clamp(reply.Number("score"), 0, 10)
	return models.PartialScore{
		AgentName:  a.name,
		Score:      score,
		Normalized: score / 10,
		Evidence:   reply.Strings("strengths"),
		RedFlags:   reply.Strings("red_flags"),
		Succeeded:  true,
		Backend:    reply.Backend,
	}
}

func (a *FundamentalsAgent) buildPrompt(bundle *models.RawInputBundle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "As a fundamental analyst, rate this stock's multibagger potential on a 0-10 scale.\n\n")
	fmt.Fprintf(&b, "Company: %s (%s)\nSector: %s\nIndustry: %s\nMarket Cap: %.0f\n\n",
		bundle.CompanyName, bundle.Symbol, orUnknown(bundle.Sector), orUnknown(bundle.Industry), bundle.MarketCap)

	b.WriteString("Financial metrics:\n")
	if cagr, ok := revenueCAGR(bundle.Financials); ok {
		fmt.Fprintf(&b, "- Revenue CAGR: %.1f%%\n", cagr)
	}
	if cagr, ok := profitCAGR(bundle.Financials); ok {
		fmt.Fprintf(&b, "- PAT CAGR: %.1f%%\n", cagr)
	}
	if latest, earliest, ok := operatingMargins(bundle.Financials); ok {
		trend := "contracting"
		if latest > earliest {
			trend = "expanding"
		}
		fmt.Fprintf(&b, "- Operating margin: %.1f%% (%s from %.1f%%)\n", latest, trend, earliest)
	}
	if de, ok := debtToEquity(bundle.Financials); ok {
		fmt.Fprintf(&b, "- Debt/Equity: %.2f\n", de)
	}
	if ratio, ok := ocfToPAT(bundle.Financials); ok {
		fmt.Fprintf(&b, "- OCF/PAT: %.2f\n", ratio)
	}
	if len(bundle.Financials) < 2 {
		b.WriteString("- Limited financial history available\n")
	}

	b.WriteString("\nProvide a 0-10 fundamental score, top 3 strengths, and top 2 red flags.\n")
	b.WriteString("Focus on: scalability, competitive moats, earnings quality, growth inflection.\n")
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
