package registry

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/agents-play/server/internal/agent/classify"
	"github.com/agents-play/server/internal/agent/model"
	logx "github.com/agents-play/server/pkg/logger"
)

// GeminiAgentConfig holds the configuration for building a Gemini-backed agent.
type GeminiAgentConfig struct {
	APIKey  string
	BaseURL string

	Classifier *model.ClassifierModelConfig
	Response   *model.ResponseModelConfig

	// IntentSystemPrompt and IntentLabels configure the intent classifier.
	// The last label is the fallback for off-label completions.
	IntentSystemPrompt string
	IntentLabels       []string
}

// NewGeminiAgent builds classifier and responder chat models sharing one
// Gemini client and assembles them into an Agent keyed by provider "google"
// and the response model name.
func NewGeminiAgent(ctx context.Context, cfg GeminiAgentConfig) (*Agent, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	classifierModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Classifier.Model,
		Temperature: &cfg.Classifier.Temperature,
		MaxTokens:   &cfg.Classifier.MaxTokens,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating classifier model")
		return nil, fmt.Errorf("error creating classifier model: %w", err)
	}

	responseModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Response.Model,
		Temperature: &cfg.Response.Temperature,
		MaxTokens:   &cfg.Response.MaxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(int32(0)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating response model")
		return nil, fmt.Errorf("error creating response model: %w", err)
	}

	intent, err := classify.New(classify.Config{
		Model:        classifierModel,
		SystemPrompt: cfg.IntentSystemPrompt,
		Labels:       cfg.IntentLabels,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating intent classifier: %w", err)
	}

	return &Agent{
		Key: model.AgentKey{
			Provider: model.ProviderGoogle,
			ModelKey: cfg.Response.Model,
		},
		Intent:             intent,
		Responder:          responseModel,
		ResponderModelName: cfg.Response.Model,
	}, nil
}
