package models

import (
	"sort"
	"time"
)

// maxRejectedEntries caps the rejected list so responses stay readable;
// the full count is still reported in the summary.
const maxRejectedEntries = 10

// ReportSummary carries the aggregate counts for one analysis run.
type ReportSummary struct {
	TotalAnalyzed      int    `json:"total_stocks_analyzed"`
	HighConvictionCount int   `json:"high_conviction_count"`
	WatchlistCount     int    `json:"watchlist_count"`
	RejectedCount      int    `json:"rejected_count"`
	AnalysisDate       string `json:"analysis_date"`
}

// Report is the final ranked document returned to callers.
type Report struct {
	HighProbability []CompositeResult `json:"high_probability_multibaggers"`
	Watchlist       []CompositeResult `json:"early_watchlist"`
	Rejected        []CompositeResult `json:"rejected_stocks"`
	Summary         ReportSummary     `json:"analysis_summary"`
	Disclaimer      string            `json:"disclaimer"`
}

// BuildReport partitions results by tier, sorts each bucket by composite
// score descending, and caps the rejected list.
func BuildReport(results []CompositeResult) *Report {
	report := &Report{
		HighProbability: []CompositeResult{},
		Watchlist:       []CompositeResult{},
		Rejected:        []CompositeResult{},
		Disclaimer:      "For research & learning only. Not financial advice.",
	}

	for _, r := range results {
		switch r.Tier {
		case TierHighConviction:
			report.HighProbability = append(report.HighProbability, r)
		case TierWatchlist:
			report.Watchlist = append(report.Watchlist, r)
		default:
			report.Rejected = append(report.Rejected, r)
		}
	}

	byScore := func(list []CompositeResult) func(i, j int) bool {
		return func(i, j int) bool {
			return list[i].CompositeScore > list[j].CompositeScore
		}
	}
	sort.SliceStable(report.HighProbability, byScore(report.HighProbability))
	sort.SliceStable(report.Watchlist, byScore(report.Watchlist))
	sort.SliceStable(report.Rejected, byScore(report.Rejected))

	report.Summary = ReportSummary{
		TotalAnalyzed:       len(results),
		HighConvictionCount: len(report.HighProbability),
		WatchlistCount:      len(report.Watchlist),
		RejectedCount:       len(report.Rejected),
		AnalysisDate:        time.Now().Format("2006-01-02 15:04:05"),
	}

	if len(report.Rejected) > maxRejectedEntries {
		report.Rejected = report.Rejected[:maxRejectedEntries]
	}

	return report
}
