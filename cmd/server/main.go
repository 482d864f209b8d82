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
	"github.com/agents-play/server/internal/core"
	"github.com/agents-play/server/internal/forex"
	"github.com/agents-play/server/internal/server"
	"github.com/agents-play/server/internal/storage"
	"github.com/agents-play/server/internal/todos"
	logx "github.com/agents-play/server/pkg/logger"
	pkgredis "github.com/agents-play/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the server, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	Port        int    `envconfig:"PORT" default:"8000"`

	// Infrastructure
	Redis    pkgredis.Config
	Database model.DatabaseConfig

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Classifier model.ClassifierModelConfig
	Response   model.ResponseModelConfig
	Agent      model.AgentConfig

	// External rate source
	Forex model.ForexConfig
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	env := core.ParseEnvironment(cfg.Environment)
	logx.Init(logx.LoggerOpts{Environment: env})

	db, err := storage.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	rdb, err := cfg.Redis.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

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

	reg := registry.New()
	reg.Register(agent)

	rateSource := forex.NewCachedRateSource(forex.NewClient(cfg.Forex.BaseURL), rdb, cacheTTL)
	forexRunner, err := forex.BuildGraph(ctx, forex.Config{
		Model: agent.Responder,
		Tool:  forex.NewRatesTool(rateSource),
	})
	if err != nil {
		log.Fatalf("Failed to build currency graph: %v", err)
	}

	todoRunner, err := todos.BuildGraph(ctx, todos.Config{
		Model: agent.Responder,
		Repo:  storage.NewTodoStore(db),
	})
	if err != nil {
		log.Fatalf("Failed to build todo graph: %v", err)
	}

	chatRunner, err := chat.BuildGraph(ctx, &chat.Config{
		Registry:     reg,
		TodoGraph:    todoRunner,
		ExchangeTool: chat.NewExchangeRatesTool(forexRunner),
		MaxToolCalls: cfg.Agent.Tools.MaxCalls,
	})
	if err != nil {
		log.Fatalf("Failed to build orchestrator graph: %v", err)
	}

	controller := chat.NewController(
		storage.NewChatRoomStore(db),
		chatRunner,
		model.AgentKey{Provider: cfg.Agent.Provider, ModelKey: cfg.Agent.ModelKey},
	)

	router := server.SetupRouter(env, controller)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logx.Info().Str("addr", addr).Str("environment", string(env)).Msg("Server starting")
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
