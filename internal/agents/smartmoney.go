package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/avinier/multibagger/config"
	"github.com/avinier/multibagger/internal/backend"
	"github.com/avinier/multibagger/internal/models"
)

// SmartMoneyAgent scores institutional conviction on a 0-10 scale from
// FII/DII flows, fund holdings, and bulk deals.
type SmartMoneyAgent struct {
	baseAgent
}

func NewSmartMoneyAgent(runner backend.Runner) *SmartMoneyAgent {
	return &SmartMoneyAgent{baseAgent{name: config.AgentSmartMoney, runner: runner}}
}

func smartMoneySchema() *backend.Schema {
	return &backend.Schema{
		Name: config.AgentSmartMoney,
		Fields: []backend.Field{
			{Name: "score", Type: backend.FieldNumber},
			{Name: "investors", Type: backend.FieldStringList},
			{Name: "accumulation", Type: backend.FieldString, Enum: []string{"YES", "NO"}},
		},
	}
}

func (a *SmartMoneyAgent) Analyze(ctx context.Context, bundle *models.RawInputBundle) models.PartialScore {
	reply, err := a.runner.Run(ctx, a.buildPrompt(bundle), smartMoneySchema())
	if err != nil {
		return a.failed(err)
	}

	score := clamp(reply.Number("score"), 0, 10)

	var evidence []string
	if investors := reply.Strings("investors"); len(investors) > 0 {
		if len(investors) > 2 {
			investors = investors[:2]
		}
		evidence = append(evidence, fmt.Sprintf("Smart money: %s", strings.Join(investors, ", ")))
	}
	if reply.String("accumulation") == "YES" {
		evidence = append(evidence, "Institutional accumulation trend")
	}

	return models.PartialScore{
		AgentName:  a.name,
		Score:      score,
		Normalized: score / 10,
		Evidence:   evidence,
		RedFlags:   []string{},
		Succeeded:  true,
		Backend:    reply.Backend,
	}
}

func (a *SmartMoneyAgent) buildPrompt(bundle *models.RawInputBundle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "As a smart-money analyst, rate institutional conviction in %s (%s) on a 0-10 scale.\n\n",
		bundle.CompanyName, bundle.Symbol)

	if len(bundle.Holdings) == 0 {
		b.WriteString("No institutional holding records available.\n")
	} else {
		b.WriteString("Institutional activity:\n")
		for i, h := range bundle.Holdings {
			if i >= 10 {
				break
			}
			fmt.Fprintf(&b, "- %s (%s): %.2f%% held, %+.2f%% QoQ\n", h.Investor, h.Kind, h.SharePct, h.ChangePct)
		}
	}
	fmt.Fprintf(&b, "\nInstitutional holding overall: %.1f%%\n", bundle.Shareholding.InstitutionalPct)

	b.WriteString("\nProvide a 0-10 conviction score, the notable investors detected (marquee funds,\n")
	b.WriteString("FII/DII with rising stakes), and whether a sustained accumulation trend exists (YES or NO).\n")
	return b.String()
}
