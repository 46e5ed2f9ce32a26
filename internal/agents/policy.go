package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/avinier/multibagger/config"
	"github.com/avinier/multibagger/internal/backend"
	"github.com/avinier/multibagger/internal/models"
)

// PolicyAgent assesses policy and macro tailwinds. It is a stage agent:
// the reply is an enumerated strength/horizon pair, mapped onto [0,1].
type PolicyAgent struct {
	baseAgent
}

func NewPolicyAgent(runner backend.Runner) *PolicyAgent {
	return &PolicyAgent{baseAgent{name: config.AgentPolicyMacro, runner: runner}}
}

func policySchema() *backend.Schema {
	return &backend.Schema{
		Name: config.AgentPolicyMacro,
		Fields: []backend.Field{
			{Name: "strength", Type: backend.FieldString, Enum: []string{"STRONG", "MODERATE", "WEAK"}},
			{Name: "horizon", Type: backend.FieldString, Enum: []string{"LONG", "MEDIUM", "SHORT"}},
			{Name: "drivers", Type: backend.FieldStringList},
		},
	}
}

var policyStrengthScores = map[string]float64{
	"STRONG":   0.9,
	"MODERATE": 0.7,
	"WEAK":     0.4,
}

var policyHorizonMultipliers = map[string]float64{
	"LONG":   1.1,
	"MEDIUM": 1.0,
	"SHORT":  0.9,
}

// normalizePolicy maps a strength/horizon pair onto [0,1].
func normalizePolicy(strength, horizon string) float64 {
	base, ok := policyStrengthScores[strength]
	if !ok {
		base = 0.4
	}
	mult, ok := policyHorizonMultipliers[horizon]
	if !ok {
		mult = 1.0
	}
	return clamp(base*mult, 0, 1)
}

func (a *PolicyAgent) Analyze(ctx context.Context, bundle *models.RawInputBundle) models.PartialScore {
	reply, err := a.runner.Run(ctx, a.buildPrompt(bundle), policySchema())
	if err != nil {
		return a.failed(err)
	}

	strength := reply.String("strength")
	horizon := reply.String("horizon")
	normalized := normalizePolicy(strength, horizon)

	evidence := reply.Strings("drivers")
	if strength == "STRONG" || strength == "MODERATE" {
		evidence = append(evidence, fmt.Sprintf("Policy tailwinds: %s", strings.ToLower(strength)))
	}
	evidence = append(evidence, fmt.Sprintf("Time horizon: %s", horizon))

	return models.PartialScore{
		AgentName:  a.name,
		Normalized: normalized,
		Stage:      strength,
		Evidence:   evidence,
		RedFlags:   []string{},
		Succeeded:  true,
		Backend:    reply.Backend,
	}
}

func (a *PolicyAgent) buildPrompt(bundle *models.RawInputBundle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "As a policy and macro analyst, assess the regulatory and macro tailwinds for %s (%s).\n\n",
		bundle.CompanyName, bundle.Symbol)
	fmt.Fprintf(&b, "Sector: %s\nIndustry: %s\n", orUnknown(bundle.Sector), orUnknown(bundle.Industry))

	if len(bundle.News) > 0 {
		b.WriteString("\nRecent headlines:\n")
		for i, item := range bundle.News {
			if i >= 8 {
				break
			}
			fmt.Fprintf(&b, "- %s (%s)\n", item.Title, item.Source)
		}
	} else {
		b.WriteString("\nNo recent news available; rely on sector-level policy knowledge.\n")
	}

	b.WriteString("\nClassify the policy tailwind strength (STRONG, MODERATE, or WEAK), the time\n")
	b.WriteString("horizon over which it plays out (LONG, MEDIUM, or SHORT), and list the concrete\n")
	b.WriteString("policy or macro drivers.\n")
	return b.String()
}
