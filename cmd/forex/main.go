package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/agents-play/server/internal/agent/model"
	"github.com/agents-play/server/internal/agent/registry"
	"github.com/agents-play/server/internal/chat"
	"github.com/agents-play/server/internal/forex"
	logx "github.com/agents-play/server/pkg/logger"
	pkgredis "github.com/agents-play/server/pkg/redis"
)

// AppConfig defines the parameters needed to exercise the currency graph
// standalone, sourced from environment variables.
type AppConfig struct {
	Redis pkgredis.Config

	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	Classifier model.ClassifierModelConfig
	Response   model.ResponseModelConfig
	Forex      model.ForexConfig
}

func main() {
	fmt.Println("Testing currency graph...")
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init()

	rdb, err := cfg.Redis.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

	fmt.Println("Connected to Redis successfully")

	cacheTTL, err := time.ParseDuration(cfg.Forex.CacheTTL)
	if err != nil {
		log.Fatalf("Invalid FOREX_CACHE_TTL '%s': %v", cfg.Forex.CacheTTL, err)
	}

	agent, err := registry.NewGeminiAgent(ctx, registry.GeminiAgentConfig{
		APIKey:             cfg.APIKey,
		BaseURL:            cfg.BaseURL,
		Classifier:         &cfg.Classifier,
		Response:           &cfg.Response,
		IntentSystemPrompt: chat.IntentSystemPrompt,
		IntentLabels:       chat.IntentLabels,
	})
	if err != nil {
		log.Fatalf("Failed to build agent: %v", err)
	}

	rateSource := forex.NewCachedRateSource(forex.NewClient(cfg.Forex.BaseURL), rdb, cacheTTL)
	runner, err := forex.BuildGraph(ctx, forex.Config{
		Model: agent.Responder,
		Tool:  forex.NewRatesTool(rateSource),
	})
	if err != nil {
		log.Fatalf("Failed to build currency graph: %v", err)
	}

	testQueries := []struct {
		description string
		query       string
	}{
		{
			description: "Explicit currency pair",
			query:       "What's the USD to EUR exchange rate?",
		},
		{
			description: "Currency by name",
			query:       "How much is the Japanese yen worth right now?",
		},
		{
			description: "Ambiguous input that must be rejected",
			query:       "hello",
		},
	}

	for i, test := range testQueries {
		fmt.Printf("\nTest %d: %s\n", i+1, test.description)
		fmt.Printf("Query: %q\n", test.query)

		result, err := runner.Invoke(ctx, test.query)
		if err != nil {
			log.Fatalf("Failed to invoke currency graph for test %d: %v", i+1, err)
		}

		if result.IsOK() {
			fmt.Printf("Base currency: %s\n", result.Currency)
			fmt.Printf("Rates: %v\n", result.Rates)
		} else {
			fmt.Printf("Rejected: %s\n", result.FailureMessage)
		}
		fmt.Println("------------------------------------------------")

		time.Sleep(500 * time.Millisecond)
	}
}
