// Package display renders analysis reports for the terminal.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/avinier/multibagger/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	highConvictionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#10B981"))

	watchlistStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	rejectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	degradedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF"))
)

func tierStyle(tier models.Tier) lipgloss.Style {
	switch tier {
	case models.TierHighConviction:
		return highConvictionStyle
	case models.TierWatchlist:
		return watchlistStyle
	default:
		return rejectedStyle
	}
}

// RenderReport formats the full ranked report.
func RenderReport(report *models.Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("MULTIBAGGER DISCOVERY REPORT"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s\n\n", dimStyle.Render(fmt.Sprintf(
		"Analyzed %d | High conviction %d | Watchlist %d | Rejected %d | %s",
		report.Summary.TotalAnalyzed,
		report.Summary.HighConvictionCount,
		report.Summary.WatchlistCount,
		report.Summary.RejectedCount,
		report.Summary.AnalysisDate)))

	renderBucket(&b, "HIGH PROBABILITY MULTIBAGGERS", report.HighProbability)
	renderBucket(&b, "EARLY WATCHLIST", report.Watchlist)
	renderBucket(&b, "REJECTED", report.Rejected)

	b.WriteString(dimStyle.Render(report.Disclaimer))
	b.WriteString("\n")
	return b.String()
}

func renderBucket(b *strings.Builder, heading string, results []models.CompositeResult) {
	b.WriteString(sectionStyle.Render(heading))
	b.WriteString("\n")
	if len(results) == 0 {
		b.WriteString(dimStyle.Render("  (none)"))
		b.WriteString("\n\n")
		return
	}
	for i, result := range results {
		fmt.Fprintf(b, "%2d. %s\n", i+1, renderResultLine(result))
	}
	b.WriteString("\n")
}

func renderResultLine(result models.CompositeResult) string {
	style := tierStyle(result.Tier)
	line := fmt.Sprintf("%-12s %.3f  %s", result.Symbol, result.CompositeScore, result.Consensus)
	if result.Degraded {
		line += "  " + degradedStyle.Render("[degraded: "+result.DegradedCause+"]")
	}
	return style.Render(line)
}

// RenderResult formats one subject in detail, sub-scores included.
func RenderResult(result *models.CompositeResult) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(result.Symbol))
	b.WriteString("\n")
	style := tierStyle(result.Tier)
	fmt.Fprintf(&b, "%s\n", style.Render(fmt.Sprintf("%s  %.3f  %s", result.Tier, result.CompositeScore, result.Consensus)))
	if result.Degraded {
		fmt.Fprintf(&b, "%s\n", degradedStyle.Render("degraded: "+result.DegradedCause))
	}
	fmt.Fprintf(&b, "Expected timeframe: %s\n\n", result.ExpectedTimeframe)

	b.WriteString(sectionStyle.Render("AGENT SCORES"))
	b.WriteString("\n")
	for _, rec := range result.Records {
		if !rec.Succeeded {
			fmt.Fprintf(&b, "  %-14s %s\n", rec.AgentName, degradedStyle.Render("failed"))
			continue
		}
		detail := fmt.Sprintf("%.2f", rec.Normalized)
		if rec.Stage != "" {
			detail += "  " + rec.Stage
		}
		if rec.Backend != "" {
			detail += dimStyle.Render("  via " + rec.Backend)
		}
		fmt.Fprintf(&b, "  %-14s %s\n", rec.AgentName, detail)
	}
	b.WriteString("\n")

	if len(result.KeyTriggers) > 0 {
		b.WriteString(sectionStyle.Render("KEY TRIGGERS"))
		b.WriteString("\n")
		for _, trigger := range result.KeyTriggers {
			fmt.Fprintf(&b, "  + %s\n", trigger)
		}
		b.WriteString("\n")
	}
	if len(result.MajorRisks) > 0 {
		b.WriteString(sectionStyle.Render("MAJOR RISKS"))
		b.WriteString("\n")
		for _, risk := range result.MajorRisks {
			fmt.Fprintf(&b, "  - %s\n", risk)
		}
		b.WriteString("\n")
	}

	return b.String()
}
