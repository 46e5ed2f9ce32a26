package agents

import (
	"math"

	"github.com/avinier/multibagger/internal/models"
)

// revenueCAGR computes the compound annual revenue growth rate in percent
// across the available fiscal years (newest first). Returns 0 with ok
// false when fewer than two years are usable.
func revenueCAGR(financials []models.YearFinancials) (float64, bool) {
	if len(financials) < 2 {
		return 0, false
	}
	newest := financials[0]
	oldest := financials[len(financials)-1]
	years := float64(newest.Year - oldest.Year)
	if years <= 0 || oldest.TotalRevenue <= 0 || newest.TotalRevenue <= 0 {
		return 0, false
	}
	cagr := (math.Pow(newest.TotalRevenue/oldest.TotalRevenue, 1/years) - 1) * 100
	return cagr, true
}

// profitCAGR computes net income CAGR in percent, same conventions as
// revenueCAGR.
func profitCAGR(financials []models.YearFinancials) (float64, bool) {
	if len(financials) < 2 {
		return 0, false
	}
	newest := financials[0]
	oldest := financials[len(financials)-1]
	years := float64(newest.Year - oldest.Year)
	if years <= 0 || oldest.NetIncome <= 0 || newest.NetIncome <= 0 {
		return 0, false
	}
	return (math.Pow(newest.NetIncome/oldest.NetIncome, 1/years) - 1) * 100, true
}

// operatingMargins returns the newest and oldest operating margin in
// percent. Margin expansion is a key inflection signal.
func operatingMargins(financials []models.YearFinancials) (latest, earliest float64, ok bool) {
	if len(financials) < 2 {
		return 0, 0, false
	}
	newest := financials[0]
	oldest := financials[len(financials)-1]
	if newest.TotalRevenue <= 0 || oldest.TotalRevenue <= 0 {
		return 0, 0, false
	}
	return newest.OperatingIncome / newest.TotalRevenue * 100,
		oldest.OperatingIncome / oldest.TotalRevenue * 100, true
}

// debtToEquity returns the most recent debt/equity ratio.
func debtToEquity(financials []models.YearFinancials) (float64, bool) {
	if len(financials) == 0 || financials[0].TotalEquity <= 0 {
		return 0, false
	}
	return financials[0].TotalDebt / financials[0].TotalEquity, true
}

// ocfToPAT is the cash-conversion ratio: operating cash flow over net
// income for the latest year. Values well below 1 suggest poor earnings
// quality.
func ocfToPAT(financials []models.YearFinancials) (float64, bool) {
	if len(financials) == 0 || financials[0].NetIncome <= 0 {
		return 0, false
	}
	return financials[0].OperatingCF / financials[0].NetIncome, true
}

// priceStats summarizes the price series for the technicals prompt.
type priceStats struct {
	LastClose     float64
	PctOff52wHigh float64
	MA50          float64
	MA200         float64
	VolumeRatio   float64 // recent 20-bar avg over prior 60-bar avg
}

func computePriceStats(prices []models.PricePoint) (priceStats, bool) {
	if len(prices) == 0 {
		return priceStats{}, false
	}

	var stats priceStats
	stats.LastClose = prices[len(prices)-1].Close.InexactFloat64()

	high := 0.0
	for _, p := range prices {
		if c := p.Close.InexactFloat64(); c > high {
			high = c
		}
	}
	if high > 0 {
		stats.PctOff52wHigh = (high - stats.LastClose) / high * 100
	}

	stats.MA50 = movingAverage(prices, 50)
	stats.MA200 = movingAverage(prices, 200)

	recent := avgVolume(prices, 20)
	prior := avgVolume(prices[:maxInt(0, len(prices)-20)], 60)
	if prior > 0 {
		stats.VolumeRatio = recent / prior
	}

	return stats, true
}

func movingAverage(prices []models.PricePoint, window int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if window > len(prices) {
		window = len(prices)
	}
	sum := 0.0
	for _, p := range prices[len(prices)-window:] {
		sum += p.Close.InexactFloat64()
	}
	return sum / float64(window)
}

func avgVolume(prices []models.PricePoint, window int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if window > len(prices) {
		window = len(prices)
	}
	sum := 0.0
	for _, p := range prices[len(prices)-window:] {
		sum += float64(p.Volume)
	}
	return sum / float64(window)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
