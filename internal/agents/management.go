package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/avinier/multibagger/config"
	"github.com/avinier/multibagger/internal/backend"
	"github.com/avinier/multibagger/internal/models"
)

// ManagementAgent scores promoter quality and minority shareholder
// alignment on a 0-10 scale.
type ManagementAgent struct {
	baseAgent
}

func NewManagementAgent(runner backend.Runner) *ManagementAgent {
	return &ManagementAgent{baseAgent{name: config.AgentManagement, runner: runner}}
}

func managementSchema() *backend.Schema {
	return &backend.Schema{
		Name: config.AgentManagement,
		Fields: []backend.Field{
			{Name: "score", Type: backend.FieldNumber},
			{Name: "evidence_of_change", Type: backend.FieldStringList},
			{Name: "alignment", Type: backend.FieldString, Enum: []string{"HIGH", "MEDIUM", "LOW"}},
		},
	}
}

func (a *ManagementAgent) Analyze(ctx context.Context, bundle *models.RawInputBundle) models.PartialScore {
	reply, err := a.runner.Run(ctx, a.buildPrompt(bundle), managementSchema())
	if err != nil {
		return a.failed(err)
	}

	score := clamp(reply.Number("score"), 0, 10)
	evidence := reply.Strings("evidence_of_change")
	alignment := reply.String("alignment")
	evidence = append(evidence, fmt.Sprintf("Minority shareholder alignment: %s", alignment))

	var redFlags []string
	if alignment == "LOW" {
		redFlags = append(redFlags, "Poor minority shareholder alignment")
	}
	if bundle.Shareholding.PromoterPledgedPct > 20 {
		redFlags = append(redFlags, fmt.Sprintf("High promoter pledging: %.1f%%", bundle.Shareholding.PromoterPledgedPct))
	}

	return models.PartialScore{
		AgentName:  a.name,
		Score:      score,
		Normalized: score / 10,
		Evidence:   evidence,
		RedFlags:   redFlags,
		Succeeded:  true,
		Backend:    reply.Backend,
	}
}

func (a *ManagementAgent) buildPrompt(bundle *models.RawInputBundle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "As a governance analyst, rate the management quality of %s (%s) on a 0-10 scale.\n\n",
		bundle.CompanyName, bundle.Symbol)

	sh := bundle.Shareholding
	b.WriteString("Shareholding pattern:\n")
	fmt.Fprintf(&b, "- Promoter holding: %.1f%%\n", sh.PromoterPct)
	fmt.Fprintf(&b, "- Promoter pledged: %.1f%%\n", sh.PromoterPledgedPct)
	fmt.Fprintf(&b, "- Promoter holding trend (4 quarters): %+.1f pct points\n", sh.PromoterTrend)
	fmt.Fprintf(&b, "- Institutional holding: %.1f%%\n", sh.InstitutionalPct)

	if len(bundle.News) > 0 {
		b.WriteString("\nRecent headlines:\n")
		for i, item := range bundle.News {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "- %s (%s)\n", item.Title, item.Source)
		}
	}

	b.WriteString("\nProvide a 0-10 management quality score, concrete evidence of positive change,\n")
	b.WriteString("and minority shareholder alignment (HIGH, MEDIUM, or LOW).\n")
	b.WriteString("Watch for: pledging, dilution, related-party concerns, capital allocation discipline.\n")
	return b.String()
}
