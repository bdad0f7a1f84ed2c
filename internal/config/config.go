package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `json:"server"`
	LLM        LLMConfig        `json:"llm"`
	MarketData MarketDataConfig `json:"market_data"`
	Weaviate   WeaviateConfig   `json:"weaviate"`
	Cache      CacheConfig      `json:"cache"`
	RateLimit  RateLimitConfig  `json:"rate_limit"`
	Store      StoreConfig      `json:"store"`
}

type ServerConfig struct {
	Port         string        `json:"port"`
	Host         string        `json:"host"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	CORSOrigins  string        `json:"cors_origins"`
}

type LLMConfig struct {
	Provider        string `json:"provider"`
	OpenAIAPIKey    string `json:"openai_api_key,omitempty"`
	OpenAIModel     string `json:"openai_model,omitempty"`
	GroqAPIKey      string `json:"groq_api_key,omitempty"`
	GroqModel       string `json:"groq_model,omitempty"`
	OllamaBaseURL   string `json:"ollama_base_url,omitempty"`
	EmbeddingModel  string `json:"embedding_model,omitempty"`
	CompletionModel string `json:"completion_model,omitempty"`
}

type MarketDataConfig struct {
	AlphaVantageAPIKey  string `json:"alpha_vantage_api_key,omitempty"`
	AlphaVantageBaseURL string `json:"alpha_vantage_base_url"`
}

type WeaviateConfig struct {
	URL    string `json:"url"`
	APIKey string `json:"api_key,omitempty"`
}

type CacheConfig struct {
	Type      string        `json:"type"` // simple or redis
	TTL       time.Duration `json:"ttl"`
	RedisAddr string        `json:"redis_addr,omitempty"`
}

type RateLimitConfig struct {
	Requests int           `json:"requests"`
	Window   time.Duration `json:"window"`
}

type StoreConfig struct {
	DataDir string `json:"data_dir"`
}

// Load reads configuration from environment variables with defaults
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("READ_TIMEOUT", 30*time.Second)
	v.SetDefault("WRITE_TIMEOUT", 30*time.Second)
	v.SetDefault("CORS_ORIGINS", "*")

	v.SetDefault("LLM_PROVIDER", "openai")
	v.SetDefault("OPENAI_MODEL", "gpt-4-turbo-preview")
	v.SetDefault("GROQ_MODEL", "llama3-8b-8192")
	v.SetDefault("OLLAMA_BASE_URL", "http://localhost:11434")
	v.SetDefault("EMBEDDING_MODEL", "text-embedding-3-small")
	v.SetDefault("COMPLETION_MODEL", "llama3")

	v.SetDefault("ALPHA_VANTAGE_BASE_URL", "https://www.alphavantage.co/query")

	v.SetDefault("WEAVIATE_URL", "http://localhost:8080")

	v.SetDefault("CACHE_TYPE", "simple")
	v.SetDefault("CACHE_TTL", "1h")
	v.SetDefault("REDIS_ADDR", "localhost:6379")

	v.SetDefault("RATE_LIMIT", 100)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")

	v.SetDefault("DATA_DIR", "data")

	cacheTTL, err := parseWindow(v.GetString("CACHE_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	rateLimitWindow, err := parseWindow(v.GetString("RATE_LIMIT_WINDOW"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			Host:         v.GetString("HOST"),
			ReadTimeout:  v.GetDuration("READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("WRITE_TIMEOUT"),
			CORSOrigins:  v.GetString("CORS_ORIGINS"),
		},
		LLM: LLMConfig{
			Provider:        v.GetString("LLM_PROVIDER"),
			OpenAIAPIKey:    v.GetString("OPENAI_API_KEY"),
			OpenAIModel:     v.GetString("OPENAI_MODEL"),
			GroqAPIKey:      v.GetString("GROQ_API_KEY"),
			GroqModel:       v.GetString("GROQ_MODEL"),
			OllamaBaseURL:   v.GetString("OLLAMA_BASE_URL"),
			EmbeddingModel:  v.GetString("EMBEDDING_MODEL"),
			CompletionModel: v.GetString("COMPLETION_MODEL"),
		},
		MarketData: MarketDataConfig{
			AlphaVantageAPIKey:  v.GetString("ALPHA_VANTAGE_API_KEY"),
			AlphaVantageBaseURL: v.GetString("ALPHA_VANTAGE_BASE_URL"),
		},
		Weaviate: WeaviateConfig{
			URL:    v.GetString("WEAVIATE_URL"),
			APIKey: v.GetString("WEAVIATE_API_KEY"),
		},
		Cache: CacheConfig{
			Type:      v.GetString("CACHE_TYPE"),
			TTL:       cacheTTL,
			RedisAddr: v.GetString("REDIS_ADDR"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT"),
			Window:   rateLimitWindow,
		},
		Store: StoreConfig{
			DataDir: v.GetString("DATA_DIR"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// parseWindow reads a duration given either as a Go duration string ("1h")
// or as a bare number of seconds ("3600"), the form legacy env files use.
func parseWindow(raw string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(raw); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return time.ParseDuration(raw)
}

func (c *Config) validate() error {
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when using OpenAI provider")
		}
	case "groq":
		if c.LLM.GroqAPIKey == "" {
			return fmt.Errorf("GROQ_API_KEY is required when using Groq provider")
		}
	case "ollama":
		if c.LLM.OllamaBaseURL == "" {
			return fmt.Errorf("OLLAMA_BASE_URL is required when using Ollama provider")
		}
	default:
		return fmt.Errorf("unsupported LLM provider: %s (supported: openai, groq, ollama)", c.LLM.Provider)
	}

	switch c.Cache.Type {
	case "simple":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when using Redis cache")
		}
	default:
		return fmt.Errorf("unsupported cache type: %s (supported: simple, redis)", c.Cache.Type)
	}

	if c.RateLimit.Requests <= 0 {
		return fmt.Errorf("RATE_LIMIT must be positive")
	}

	return nil
}
