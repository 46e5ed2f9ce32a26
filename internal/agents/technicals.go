package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/avinier/multibagger/config"
	"github.com/avinier/multibagger/internal/backend"
	"github.com/avinier/multibagger/internal/models"
)

// TechnicalsAgent classifies the price structure into a stage and a
// risk-reward bucket, mapped onto [0,1].
type TechnicalsAgent struct {
	baseAgent
}

func NewTechnicalsAgent(runner backend.Runner) *TechnicalsAgent {
	return &TechnicalsAgent{baseAgent{name: config.AgentTechnicals, runner: runner}}
}

func technicalsSchema() *backend.Schema {
	return &backend.Schema{
		Name: config.AgentTechnicals,
		Fields: []backend.Field{
			{Name: "stage", Type: backend.FieldString, Enum: []string{"BREAKOUT", "BASE", "EXTENDED"}},
			{Name: "risk_reward", Type: backend.FieldString, Enum: []string{"1:3+", "1:2", "1:1.5", "1:1"}},
			{Name: "signals", Type: backend.FieldStringList},
		},
	}
}

var stageScores = map[string]float64{
	"BREAKOUT": 0.9,
	"BASE":     0.7,
	"EXTENDED": 0.4,
}

var riskRewardMultipliers = map[string]float64{
	"1:3+":  1.2,
	"1:2":   1.1,
	"1:1.5": 1.0,
	"1:1":   0.95,
}

// normalizeTechnicals maps a stage/risk-reward pair onto [0,1].
func normalizeTechnicals(stage, riskReward string) float64 {
	base, ok := stageScores[stage]
	if !ok {
		base = 0.6
	}
	mult, ok := riskRewardMultipliers[riskReward]
	if !ok {
		mult = 1.0
	}
	return clamp(base*mult, 0, 1)
}

func (a *TechnicalsAgent) Analyze(ctx context.Context, bundle *models.RawInputBundle) models.PartialScore {
	reply, err := a.runner.Run(ctx, a.buildPrompt(bundle), technicalsSchema())
	if err != nil {
		return a.failed(err)
	}

	stage := reply.String("stage")
	riskReward := reply.String("risk_reward")

	evidence := reply.Strings("signals")
	evidence = append(evidence, fmt.Sprintf("Technical stage: %s, risk-reward %s", stage, riskReward))

	var redFlags []string
	if stage == "EXTENDED" {
		redFlags = append(redFlags, "Technically extended levels")
	}

	return models.PartialScore{
		AgentName:  a.name,
		Normalized: normalizeTechnicals(stage, riskReward),
		Stage:      stage,
		Evidence:   evidence,
		RedFlags:   redFlags,
		Succeeded:  true,
		Backend:    reply.Backend,
	}
}

func (a *TechnicalsAgent) buildPrompt(bundle *models.RawInputBundle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "As a technical analyst, classify the price structure of %s.\n\n", bundle.Symbol)

	if stats, ok := computePriceStats(bundle.Prices); ok {
		b.WriteString("Price statistics:\n")
		fmt.Fprintf(&b, "- Last close: %.2f\n", stats.LastClose)
		fmt.Fprintf(&b, "- Off 52-week high: %.1f%%\n", stats.PctOff52wHigh)
		fmt.Fprintf(&b, "- 50-day MA: %.2f, 200-day MA: %.2f\n", stats.MA50, stats.MA200)
		if stats.VolumeRatio > 0 {
			fmt.Fprintf(&b, "- Volume ratio (20d vs prior 60d): %.2f\n", stats.VolumeRatio)
		}
	} else {
		b.WriteString("No price history available; classify conservatively.\n")
	}

	b.WriteString("\nClassify the stage (BREAKOUT: emerging from a base on volume; BASE: consolidating\n")
	b.WriteString("in a range; EXTENDED: far above support after a long run), estimate the\n")
	b.WriteString("risk-reward ratio (1:3+, 1:2, 1:1.5, or 1:1), and list the supporting signals.\n")
	return b.String()
}
