package dataflows

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/equity"
	"github.com/shopspring/decimal"

	"github.com/avinier/multibagger/config"
	"github.com/avinier/multibagger/internal/models"
)

// YahooClient fetches quotes and daily price history from Yahoo Finance.
type YahooClient struct {
	cache *CacheManager
	retry *RetryConfig
}

func NewYahooClient(cfg *config.Config) *YahooClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "yahoo_finance")
	return &YahooClient{
		cache: NewCacheManager(cacheDir, 24*time.Hour, cfg.CacheEnabled),
		retry: DefaultRetryConfig(),
	}
}

// QuoteInfo is the subset of the Yahoo quote the analysis needs.
type QuoteInfo struct {
	Symbol      string    `json:"symbol"`
	CompanyName string    `json:"company_name"`
	Exchange    string    `json:"exchange"`
	Price       float64   `json:"price"`
	MarketCap   float64   `json:"market_cap"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// GetQuote returns the latest quote for a symbol.
func (yc *YahooClient) GetQuote(ctx context.Context, symbol string) (*QuoteInfo, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	var cached QuoteInfo
	if yc.cache.Get("yahoo", "quote", symbol, &cached) {
		return &cached, nil
	}

	var result *QuoteInfo
	err := WithRetry(ctx, yc.retry, func() error {
		q, err := equity.Get(symbol)
		if err != nil {
			return fmt.Errorf("quote lookup for %s: %w", symbol, err)
		}
		if q == nil {
			return fmt.Errorf("no quote returned for %s", symbol)
		}

		result = &QuoteInfo{
			Symbol:      symbol,
			CompanyName: q.ShortName,
			Exchange:    q.FullExchangeName,
			Price:       q.RegularMarketPrice,
			MarketCap:   float64(q.MarketCap),
			FetchedAt:   time.Now(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	yc.cache.Set("yahoo", "quote", symbol, result)
	return result, nil
}

// GetDailyPrices returns up to `days` of daily candles ending today.
func (yc *YahooClient) GetDailyPrices(ctx context.Context, symbol string, days int) ([]models.PricePoint, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	end := time.Now()
	start := end.AddDate(0, 0, -days)
	cacheKey := map[string]interface{}{
		"symbol": symbol,
		"start":  start.Format("2006-01-02"),
		"end":    end.Format("2006-01-02"),
	}

	var cached []models.PricePoint
	if yc.cache.Get("yahoo", "historical", cacheKey, &cached) {
		return cached, nil
	}

	var result []models.PricePoint
	err := WithRetry(ctx, yc.retry, func() error {
		params := &chart.Params{
			Symbol:   symbol,
			Start:    datetime.New(&start),
			End:      datetime.New(&end),
			Interval: datetime.OneDay,
		}

		iter := chart.Get(params)
		result = result[:0]
		for iter.Next() {
			bar := iter.Bar()
			result = append(result, models.PricePoint{
				Date:   time.Unix(int64(bar.Timestamp), 0),
				Open:   bar.Open,
				High:   bar.High,
				Low:    bar.Low,
				Close:  bar.Close,
				Volume: int64(bar.Volume),
			})
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("price history for %s: %w", symbol, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, fmt.Errorf("no price history for %s", symbol)
	}

	yc.cache.Set("yahoo", "historical", cacheKey, result)
	return result, nil
}

// LastClose returns the most recent close as a decimal, zero when the
// series is empty.
func LastClose(prices []models.PricePoint) decimal.Decimal {
	if len(prices) == 0 {
		return decimal.Zero
	}
	return prices[len(prices)-1].Close
}
