package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Agent names used as keys for weights and per-agent scores.
const (
	AgentFundamentals = "fundamentals"
	AgentManagement   = "management"
	AgentPolicyMacro  = "policy_macro"
	AgentSmartMoney   = "smart_money"
	AgentTechnicals   = "technicals"
)

// weightEpsilon is the tolerance for the weight-sum invariant.
const weightEpsilon = 1e-9

type Config struct {
	ResultsDir   string `json:"results_dir"`
	DataCacheDir string `json:"data_cache_dir"`

	// Inference provider credentials. An empty key disables that provider.
	GroqAPIKey     string `json:"groq_api_key"`
	DeepSeekAPIKey string `json:"deepseek_api_key"`
	OpenAIAPIKey   string `json:"openai_api_key"`

	GroqModel     string `json:"groq_model"`
	DeepSeekModel string `json:"deepseek_model"`
	OpenAIModel   string `json:"openai_model"`
	OpenAIBaseURL string `json:"openai_base_url"`

	// BackendOrder is the fallback preference list, most preferred first.
	BackendOrder []string `json:"backend_order"`

	// Market/news data API keys
	NewsAPIKey string `json:"newsapi_key"`

	// AgentWeights maps agent name to its share of the composite score.
	// Weights must sum to 1.0.
	AgentWeights map[string]float64 `json:"agent_weights"`

	// Classification thresholds on the composite score, inclusive lower
	// bounds. watchlist < high conviction.
	HighConvictionThreshold float64 `json:"high_conviction_threshold"`
	WatchlistThreshold      float64 `json:"watchlist_threshold"`

	// StrongAgentThreshold is the normalized score at which a single
	// agent counts as individually strong for the consensus label.
	StrongAgentThreshold float64 `json:"strong_agent_threshold"`

	// AgentTimeout bounds one agent's full fallback-chain traversal.
	AgentTimeout   time.Duration `json:"agent_timeout"`
	RequestTimeout time.Duration `json:"request_timeout"`

	// BatchWorkers bounds concurrent subjects in a batch run.
	BatchWorkers int `json:"batch_workers"`

	// HTTPAddr is the listen address for the bridge server.
	HTTPAddr string `json:"http_addr"`

	CacheEnabled bool `json:"cache_enabled"`
	Debug        bool `json:"debug"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := &Config{
		ResultsDir:   filepath.Join(currentDir, "results"),
		DataCacheDir: filepath.Join(currentDir, "data", "cache"),

		GroqModel:     "llama-3.1-8b-instant",
		DeepSeekModel: "deepseek-chat",
		OpenAIModel:   "gpt-4o-mini",
		OpenAIBaseURL: "https://api.openai.com/v1",

		BackendOrder: []string{"groq", "deepseek", "openai"},

		AgentWeights: map[string]float64{
			AgentFundamentals: 0.35,
			AgentManagement:   0.15,
			AgentPolicyMacro:  0.20,
			AgentSmartMoney:   0.15,
			AgentTechnicals:   0.15,
		},

		HighConvictionThreshold: 0.60,
		WatchlistThreshold:      0.45,
		StrongAgentThreshold:    0.75,

		AgentTimeout:   90 * time.Second,
		RequestTimeout: 30 * time.Second,
		BatchWorkers:   3,

		HTTPAddr: ":8089",

		CacheEnabled: true,
		Debug:        false,
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("RESULTS_DIR"); val != "" {
		c.ResultsDir = val
	}
	if val := os.Getenv("DATA_CACHE_DIR"); val != "" {
		c.DataCacheDir = val
	}

	if val := os.Getenv("GROQ_API_KEY"); val != "" {
		c.GroqAPIKey = val
	}
	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.DeepSeekAPIKey = val
	}
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := os.Getenv("GROQ_MODEL"); val != "" {
		c.GroqModel = val
	}
	if val := os.Getenv("DEEPSEEK_MODEL"); val != "" {
		c.DeepSeekModel = val
	}
	if val := os.Getenv("OPENAI_MODEL"); val != "" {
		c.OpenAIModel = val
	}
	if val := os.Getenv("OPENAI_BASE_URL"); val != "" {
		c.OpenAIBaseURL = val
	}

	if val := os.Getenv("BACKEND_ORDER"); val != "" {
		var order []string
		for _, name := range strings.Split(val, ",") {
			name = strings.TrimSpace(strings.ToLower(name))
			if name != "" {
				order = append(order, name)
			}
		}
		if len(order) > 0 {
			c.BackendOrder = order
		}
	}

	if val := os.Getenv("NEWSAPI_KEY"); val != "" {
		c.NewsAPIKey = val
	}

	weightEnvs := map[string]string{
		AgentFundamentals: "WEIGHT_FUNDAMENTALS",
		AgentManagement:   "WEIGHT_MANAGEMENT",
		AgentPolicyMacro:  "WEIGHT_POLICY_MACRO",
		AgentSmartMoney:   "WEIGHT_SMART_MONEY",
		AgentTechnicals:   "WEIGHT_TECHNICALS",
	}
	for agent, env := range weightEnvs {
		if val := os.Getenv(env); val != "" {
			if w, err := strconv.ParseFloat(val, 64); err == nil {
				c.AgentWeights[agent] = w
			}
		}
	}

	if val := os.Getenv("HIGH_CONVICTION_THRESHOLD"); val != "" {
		if t, err := strconv.ParseFloat(val, 64); err == nil {
			c.HighConvictionThreshold = t
		}
	}
	if val := os.Getenv("WATCHLIST_THRESHOLD"); val != "" {
		if t, err := strconv.ParseFloat(val, 64); err == nil {
			c.WatchlistThreshold = t
		}
	}
	if val := os.Getenv("STRONG_AGENT_THRESHOLD"); val != "" {
		if t, err := strconv.ParseFloat(val, 64); err == nil {
			c.StrongAgentThreshold = t
		}
	}

	if val := os.Getenv("AGENT_TIMEOUT_SECONDS"); val != "" {
		if secs, err := strconv.Atoi(val); err == nil && secs > 0 {
			c.AgentTimeout = time.Duration(secs) * time.Second
		}
	}
	if val := os.Getenv("REQUEST_TIMEOUT_SECONDS"); val != "" {
		if secs, err := strconv.Atoi(val); err == nil && secs > 0 {
			c.RequestTimeout = time.Duration(secs) * time.Second
		}
	}
	if val := os.Getenv("BATCH_WORKERS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.BatchWorkers = n
		}
	}

	if val := os.Getenv("HTTP_ADDR"); val != "" {
		c.HTTPAddr = val
	}

	if val := os.Getenv("CACHE_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.CacheEnabled = enabled
		}
	}
	if val := os.Getenv("MULTIBAGGER_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
}

// Validate checks the invariants that make scoring meaningful. A config
// failing here is a startup error; the system refuses to serve requests.
func (c *Config) Validate() error {
	sum := 0.0
	for agent, w := range c.AgentWeights {
		if w < 0 {
			return fmt.Errorf("agent weight for %s is negative: %f", agent, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightEpsilon {
		return fmt.Errorf("agent weights must sum to 1.0, got %f", sum)
	}

	if c.WatchlistThreshold <= 0 || c.HighConvictionThreshold >= 1 {
		return fmt.Errorf("thresholds must lie in (0,1): watchlist=%f high=%f",
			c.WatchlistThreshold, c.HighConvictionThreshold)
	}
	if c.WatchlistThreshold >= c.HighConvictionThreshold {
		return fmt.Errorf("watchlist threshold %f must be below high conviction threshold %f",
			c.WatchlistThreshold, c.HighConvictionThreshold)
	}

	if c.BatchWorkers <= 0 {
		return fmt.Errorf("batch workers must be positive, got %d", c.BatchWorkers)
	}
	if len(c.BackendOrder) == 0 {
		return fmt.Errorf("backend order is empty")
	}

	return nil
}

// HasInferenceCredentials reports whether at least one inference provider
// is configured. Without any, the system starts in degraded mode: every
// analysis completes but is flagged degraded.
func (c *Config) HasInferenceCredentials() bool {
	return c.GroqAPIKey != "" || c.DeepSeekAPIKey != "" || c.OpenAIAPIKey != ""
}

func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.ResultsDir, c.DataCacheDir} {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
