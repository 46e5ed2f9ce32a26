package dataflows

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/avinier/multibagger/config"
	"github.com/avinier/multibagger/internal/models"
)

const newsAPIBaseURL = "https://newsapi.org/v2"

// NewsClient pulls recent company headlines from NewsAPI. Without an
// API key it degrades to returning no items.
type NewsClient struct {
	client *resty.Client
	apiKey string
	cache  *CacheManager
}

func NewNewsClient(cfg *config.Config) *NewsClient {
	client := resty.New().
		SetBaseURL(newsAPIBaseURL).
		SetTimeout(cfg.RequestTimeout).
		SetHeader("User-Agent", "multibagger/1.0")

	cacheDir := filepath.Join(cfg.DataCacheDir, "newsapi")
	return &NewsClient{
		client: client,
		apiKey: cfg.NewsAPIKey,
		cache:  NewCacheManager(cacheDir, 6*time.Hour, cfg.CacheEnabled),
	}
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		URL         string    `json:"url"`
		PublishedAt time.Time `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// RecentNews returns up to `limit` recent articles mentioning the
// company.
func (nc *NewsClient) RecentNews(ctx context.Context, company string, limit int) ([]models.NewsItem, error) {
	if nc.apiKey == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}

	cacheKey := map[string]interface{}{"company": company, "limit": limit}
	var cached []models.NewsItem
	if nc.cache.Get("newsapi", "everything", cacheKey, &cached) {
		return cached, nil
	}

	var body newsAPIResponse
	resp, err := nc.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":        company,
			"language": "en",
			"sortBy":   "publishedAt",
			"pageSize": fmt.Sprintf("%d", limit),
			"from":     time.Now().AddDate(0, 0, -30).Format("2006-01-02"),
		}).
		SetHeader("X-Api-Key", nc.apiKey).
		SetResult(&body).
		Get("/everything")
	if err != nil {
		return nil, fmt.Errorf("news lookup for %s: %w", company, err)
	}
	if resp.IsError() || body.Status != "ok" {
		return nil, fmt.Errorf("news lookup for %s: status %d: %s", company, resp.StatusCode(), body.Message)
	}

	items := make([]models.NewsItem, 0, len(body.Articles))
	for _, article := range body.Articles {
		items = append(items, models.NewsItem{
			Title:       article.Title,
			URL:         article.URL,
			Source:      article.Source.Name,
			PublishedAt: article.PublishedAt,
		})
	}

	nc.cache.Set("newsapi", "everything", cacheKey, items)
	return items, nil
}
