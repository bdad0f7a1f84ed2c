// Advisor Engine - AI-powered investment advisory service
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tmc/langchaingo/llms"

	"github.com/quantfolio/advisor-engine/internal/advisor"
	"github.com/quantfolio/advisor-engine/internal/api"
	"github.com/quantfolio/advisor-engine/internal/config"
	"github.com/quantfolio/advisor-engine/internal/knowledge"
	"github.com/quantfolio/advisor-engine/internal/platform/cache"
	"github.com/quantfolio/advisor-engine/internal/platform/llm"
	"github.com/quantfolio/advisor-engine/internal/platform/marketdata"
	"github.com/quantfolio/advisor-engine/internal/platform/weaviate"
	"github.com/quantfolio/advisor-engine/internal/store"
)

const (
	serviceName    = "advisor-engine"
	serviceVersion = "v1.0.0"

	maxConcurrentPipelines = 4
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model, embedder := buildLLMClients(cfg)

	marketService := buildMarketService(cfg)

	log.Printf("Initializing Weaviate client at: %s", cfg.Weaviate.URL)
	weaviateClient, err := weaviate.NewClient(weaviate.Config{
		URL:    cfg.Weaviate.URL,
		APIKey: cfg.Weaviate.APIKey,
	})
	if err != nil {
		log.Fatalf("Failed to create Weaviate client: %v", err)
	}

	if err := weaviateClient.EnsureSchema(ctx); err != nil {
		log.Printf("Warning: Failed to ensure Weaviate schema: %v", err)
	}

	memory := knowledge.NewService(embedder, weaviateClient)
	if err := memory.HealthCheck(ctx); err != nil {
		log.Printf("Warning: Report memory health check failed: %v", err)
		log.Println("Continuing startup, past-report recall may not work")
	}

	profiles, err := store.NewProfileStore(cfg.Store.DataDir)
	if err != nil {
		log.Fatalf("Failed to create profile store: %v", err)
	}
	journal, err := store.NewJournalStore(cfg.Store.DataDir)
	if err != nil {
		log.Fatalf("Failed to create journal store: %v", err)
	}
	holdings, err := store.NewHoldingsStore(cfg.Store.DataDir)
	if err != nil {
		log.Fatalf("Failed to create holdings store: %v", err)
	}

	marketAgent := advisor.NewMarketAgent(marketService)
	coordinator := advisor.NewCoordinator(model, profiles, marketAgent, memory)
	workflow := advisor.NewWorkflow(coordinator, marketAgent, maxConcurrentPipelines)

	handler := api.NewHandler(coordinator, workflow, marketService, profiles, journal, holdings, memory)
	app := api.Router(handler, api.RouterConfig{
		CORSOrigins:       cfg.Server.CORSOrigins,
		RateLimitRequests: cfg.RateLimit.Requests,
		RateLimitWindow:   cfg.RateLimit.Window,
	})

	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Starting %s %s on %s", serviceName, serviceVersion, addr)
		log.Printf("LLM provider: %s, cache: %s", cfg.LLM.Provider, cfg.Cache.Type)

		if err := app.Listen(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// buildLLMClients creates the completion model and the embedding client for
// the configured provider.
func buildLLMClients(cfg *config.Config) (llms.Model, llm.EmbeddingClient) {
	log.Printf("Initializing LLM clients with provider: %s", cfg.LLM.Provider)

	switch cfg.LLM.Provider {
	case "openai":
		client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			APIKey:          cfg.LLM.OpenAIAPIKey,
			CompletionModel: cfg.LLM.OpenAIModel,
		})
		if err != nil {
			log.Fatalf("Failed to create OpenAI client: %v", err)
		}
		embedder, err := llm.NewOpenAIEmbedder(cfg.LLM.OpenAIAPIKey, cfg.LLM.EmbeddingModel)
		if err != nil {
			log.Fatalf("Failed to create OpenAI embedder: %v", err)
		}
		log.Printf("✓ Completion provider: OpenAI (model: %s)", cfg.LLM.OpenAIModel)
		return client.Model(), embedder

	case "groq":
		client, err := llm.NewGroqClient(llm.GroqConfig{
			APIKey:          cfg.LLM.GroqAPIKey,
			CompletionModel: cfg.LLM.GroqModel,
		})
		if err != nil {
			log.Fatalf("Failed to create Groq client: %v", err)
		}
		// Groq has no embeddings endpoint, embeddings run on local Ollama.
		embedder := llm.NewOllamaClient(llm.OllamaConfig{
			BaseURL:        cfg.LLM.OllamaBaseURL,
			EmbeddingModel: cfg.LLM.EmbeddingModel,
		})
		log.Printf("✓ Completion provider: Groq (model: %s)", cfg.LLM.GroqModel)
		return llm.NewLangChainAdapter(client), embedder

	case "ollama":
		client := llm.NewOllamaClient(llm.OllamaConfig{
			BaseURL:         cfg.LLM.OllamaBaseURL,
			EmbeddingModel:  cfg.LLM.EmbeddingModel,
			CompletionModel: cfg.LLM.CompletionModel,
		})
		log.Printf("✓ Completion provider: Ollama (model: %s)", cfg.LLM.CompletionModel)
		return llm.NewLangChainAdapter(client), client

	default:
		log.Fatalf("Invalid LLM_PROVIDER specified: %s (supported: openai, groq, ollama)", cfg.LLM.Provider)
		return nil, nil
	}
}

// buildMarketService wires the quote providers behind the configured cache.
// Alpha Vantage is the primary source when a key is configured, Yahoo Finance
// serves as fallback and history provider either way.
func buildMarketService(cfg *config.Config) *marketdata.Service {
	var primary marketdata.QuoteProvider
	if cfg.MarketData.AlphaVantageAPIKey != "" {
		client, err := marketdata.NewAlphaVantageClient(marketdata.AlphaVantageConfig{
			APIKey:  cfg.MarketData.AlphaVantageAPIKey,
			BaseURL: cfg.MarketData.AlphaVantageBaseURL,
		})
		if err != nil {
			log.Fatalf("Failed to create Alpha Vantage client: %v", err)
		}
		primary = client
		log.Println("✓ Market data: Alpha Vantage primary, Yahoo Finance fallback")
	} else {
		log.Println("✓ Market data: Yahoo Finance only (no Alpha Vantage key)")
	}

	yahoo := marketdata.NewYahooClient(marketdata.YahooConfig{})

	var quoteCache cache.Cache
	switch cfg.Cache.Type {
	case "redis":
		redisCache := cache.NewRedis(cfg.Cache.RedisAddr)
		if err := redisCache.Ping(context.Background()); err != nil {
			log.Printf("Warning: Redis unreachable, falling back to in-memory cache: %v", err)
			quoteCache = cache.NewMemory()
		} else {
			quoteCache = redisCache
			log.Printf("✓ Quote cache: Redis (%s)", cfg.Cache.RedisAddr)
		}
	default:
		quoteCache = cache.NewMemory()
		log.Println("✓ Quote cache: in-memory")
	}

	return marketdata.NewService(primary, yahoo, yahoo, quoteCache, marketdata.ServiceConfig{
		CacheTTL: cfg.Cache.TTL,
	})
}
