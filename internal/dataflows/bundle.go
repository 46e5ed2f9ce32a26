// Package dataflows assembles the raw inputs for analysis: Yahoo
// Finance quotes and price history, curated company records, and
// recent news.
package dataflows

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/avinier/multibagger/config"
	"github.com/avinier/multibagger/internal/models"
)

const priceWindowDays = 400 // enough history for a 200-day average

// Builder assembles one RawInputBundle per symbol from all sources,
// tolerating partial data. It satisfies the batch coordinator's
// provider contract.
type Builder struct {
	yahoo *YahooClient
	news  *NewsClient
	local *LocalStore
}

func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{
		yahoo: NewYahooClient(cfg),
		news:  NewNewsClient(cfg),
		local: NewLocalStore(cfg),
	}
}

// Bundle fetches every source for the symbol. Quote and price failures
// are tolerated individually; the call errors only when no source
// produced anything usable.
func (b *Builder) Bundle(ctx context.Context, symbol string) (*models.RawInputBundle, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	bundle := &models.RawInputBundle{
		Symbol:    symbol,
		FetchedAt: time.Now(),
	}

	quote, err := b.yahoo.GetQuote(ctx, symbol)
	if err != nil {
		log.Printf("[dataflows] quote unavailable for %s: %v", symbol, err)
	} else {
		bundle.CompanyName = quote.CompanyName
		bundle.MarketCap = quote.MarketCap
	}

	prices, err := b.yahoo.GetDailyPrices(ctx, symbol, priceWindowDays)
	if err != nil {
		log.Printf("[dataflows] price history unavailable for %s: %v", symbol, err)
	} else {
		bundle.Prices = prices
	}

	record, err := b.local.Load(symbol)
	if err != nil {
		log.Printf("[dataflows] company record unreadable for %s: %v", symbol, err)
	} else if record != nil {
		bundle.Financials = record.Financials
		bundle.Shareholding = record.Shareholding
		bundle.Holdings = record.Holdings
		bundle.Sector = record.Sector
		bundle.Industry = record.Industry
		if bundle.CompanyName == "" {
			bundle.CompanyName = record.CompanyName
		}
	}

	if bundle.CompanyName == "" {
		bundle.CompanyName = symbol
	}

	news, err := b.news.RecentNews(ctx, bundle.CompanyName, 10)
	if err != nil {
		log.Printf("[dataflows] news unavailable for %s: %v", symbol, err)
	} else {
		bundle.News = news
	}

	if bundle.Empty() {
		return nil, fmt.Errorf("no usable data for %s from any source", symbol)
	}
	return bundle, nil
}
