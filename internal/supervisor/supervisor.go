// Package supervisor aggregates the independent agents into one
// classified composite result per subject.
package supervisor

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/avinier/multibagger/config"
	"github.com/avinier/multibagger/internal/agents"
	"github.com/avinier/multibagger/internal/models"
)

type Supervisor struct {
	cfg      *config.Config
	registry *agents.Registry
}

func New(cfg *config.Config, registry *agents.Registry) *Supervisor {
	return &Supervisor{cfg: cfg, registry: registry}
}

// Evaluate runs every registered agent concurrently over the bundle and
// synthesizes the weighted composite. Agent failures degrade the result;
// they never surface as errors.
func (s *Supervisor) Evaluate(ctx context.Context, bundle *models.RawInputBundle) models.CompositeResult {
	if bundle.Empty() {
		symbol := ""
		if bundle != nil {
			symbol = bundle.Symbol
		}
		return InputFailure(symbol, fmt.Errorf("empty input bundle"))
	}

	agentList := s.registry.Agents()
	records := make([]models.PartialScore, len(agentList))

	var wg sync.WaitGroup
	for i, agent := range agentList {
		wg.Add(1)
		go func(idx int, agent agents.Agent) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[supervisor] agent %s panicked for %s: %v", agent.Name(), bundle.Symbol, r)
					records[idx] = models.PartialScore{
						AgentName: agent.Name(),
						Evidence:  []string{fmt.Sprintf("analysis unavailable: internal error: %v", r)},
						RedFlags:  []string{},
					}
				}
			}()

			// Each agent gets its own deadline covering its full
			// fallback-chain traversal.
			agentCtx, cancel := context.WithTimeout(ctx, s.cfg.AgentTimeout)
			defer cancel()
			records[idx] = agent.Analyze(agentCtx, bundle)
		}(i, agent)
	}
	wg.Wait()

	return s.synthesize(bundle, records)
}

func (s *Supervisor) synthesize(bundle *models.RawInputBundle, records []models.PartialScore) models.CompositeResult {
	result := models.CompositeResult{
		Symbol:     bundle.Symbol,
		Sector:     bundle.Sector,
		MarketCap:  bundle.MarketCap,
		Records:    records,
		AnalyzedAt: time.Now(),
	}

	// Renormalize weights over the successful agents so one outage does
	// not drag the composite toward zero.
	weightSum := 0.0
	for _, rec := range records {
		if rec.Succeeded {
			weightSum += s.registry.Weight(rec.AgentName)
		}
	}

	if weightSum == 0 {
		// Total outage: must be distinguishable from a genuinely low score.
		result.Tier = models.TierRejected
		result.Degraded = true
		result.DegradedCause = "all agents failed"
		result.Consensus = "AVOID (Low Conviction)"
		result.ExpectedTimeframe = "unknown"
		result.KeyTriggers = []string{"Analysis incomplete"}
		result.MajorRisks = []string{"Analysis incomplete"}
		return result
	}

	composite := 0.0
	for _, rec := range records {
		if rec.Succeeded {
			effective := s.registry.Weight(rec.AgentName) / weightSum
			composite += effective * rec.Normalized
		}
	}
	result.CompositeScore = clamp01(composite)

	result.Tier = s.classify(result.CompositeScore)
	result.Consensus = consensusLabel(result.Tier, result.StrongAgents(s.cfg.StrongAgentThreshold))
	result.ExpectedTimeframe = expectedTimeframe(records)
	result.KeyTriggers = keyTriggers(records)
	result.MajorRisks = majorRisks(records)
	return result
}

// classify maps the composite score onto a tier. Lower bounds are
// inclusive: exactly 0.60 is high conviction, exactly 0.45 watchlist.
func (s *Supervisor) classify(score float64) models.Tier {
	switch {
	case score >= s.cfg.HighConvictionThreshold:
		return models.TierHighConviction
	case score >= s.cfg.WatchlistThreshold:
		return models.TierWatchlist
	default:
		return models.TierRejected
	}
}

// consensusLabel derives the human-readable consensus from the tier and
// the count of individually strong agents.
func consensusLabel(tier models.Tier, strongAgents int) string {
	switch tier {
	case models.TierHighConviction:
		if strongAgents >= 3 {
			return "STRONG BUY (High Conviction)"
		}
		return "BUY (High Conviction)"
	case models.TierWatchlist:
		if strongAgents >= 2 {
			return "BUY (Medium Conviction)"
		}
		return "HOLD (Low Conviction)"
	default:
		return "AVOID (Low Conviction)"
	}
}

// expectedTimeframe estimates how long the thesis needs to play out,
// combining fundamental strength, technical stage, and policy tailwinds.
func expectedTimeframe(records []models.PartialScore) string {
	fundScore := 0.0
	techStage := ""
	policyStrong := false

	for _, rec := range records {
		if !rec.Succeeded {
			continue
		}
		switch rec.AgentName {
		case config.AgentFundamentals:
			fundScore = rec.Score
		case config.AgentTechnicals:
			techStage = rec.Stage
		case config.AgentPolicyMacro:
			policyStrong = rec.Normalized >= 0.7
		}
	}

	switch {
	case fundScore >= 7 && techStage == "BREAKOUT" && policyStrong:
		return "2-3 years"
	case fundScore >= 6 && (techStage == "BREAKOUT" || techStage == "BASE"):
		return "3-5 years"
	default:
		return "5+ years"
	}
}

// keyTriggers collects the strongest positive findings across agents,
// capped at five.
func keyTriggers(records []models.PartialScore) []string {
	var triggers []string
	take := func(evidence []string, n int) {
		for i, e := range evidence {
			if i >= n {
				break
			}
			triggers = append(triggers, e)
		}
	}

	for _, rec := range records {
		if !rec.Succeeded {
			continue
		}
		switch rec.AgentName {
		case config.AgentFundamentals:
			take(rec.Evidence, 2)
		case config.AgentManagement:
			take(rec.Evidence, 1)
		case config.AgentSmartMoney:
			for _, e := range rec.Evidence {
				if strings.HasPrefix(e, "Smart money: ") {
					triggers = append(triggers, e)
					break
				}
			}
		case config.AgentPolicyMacro:
			for _, e := range rec.Evidence {
				if strings.HasPrefix(e, "Policy tailwinds: ") {
					triggers = append(triggers, e)
					break
				}
			}
		}
	}

	if len(triggers) > 5 {
		triggers = triggers[:5]
	}
	return triggers
}

// majorRisks collects red flags across agents, capped at four, with
// generic fallbacks when no agent raised any.
func majorRisks(records []models.PartialScore) []string {
	var risks []string
	for _, rec := range records {
		if !rec.Succeeded {
			continue
		}
		flags := rec.RedFlags
		if rec.AgentName == config.AgentFundamentals && len(flags) > 2 {
			flags = flags[:2]
		}
		risks = append(risks, flags...)
	}

	if len(risks) == 0 {
		risks = []string{"Market volatility", "Execution risk"}
	}
	if len(risks) > 4 {
		risks = risks[:4]
	}
	return risks
}

// InputFailure builds the degraded result for a subject whose raw data
// could not be assembled. It carries an empty contributing set.
func InputFailure(symbol string, err error) models.CompositeResult {
	cause := "input bundle unavailable"
	if err != nil {
		cause = fmt.Sprintf("input bundle unavailable: %v", err)
	}
	return models.CompositeResult{
		Symbol:            symbol,
		Tier:              models.TierRejected,
		Consensus:         "AVOID (Low Conviction)",
		Records:           []models.PartialScore{},
		Degraded:          true,
		DegradedCause:     cause,
		ExpectedTimeframe: "unknown",
		KeyTriggers:       []string{"Analysis incomplete"},
		MajorRisks:        []string{"Data insufficient"},
		AnalyzedAt:        time.Now(),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
