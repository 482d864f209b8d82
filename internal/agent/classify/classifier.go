// Package classify maps free text onto one label from a small closed set via
// a constrained completion call.
package classify

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	logx "github.com/agents-play/server/pkg/logger"
)

// Classifier assigns one label from a fixed closed set to free text.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// Config describes a model-backed classifier instance. Labels is the closed
// set; the last label is the designated fallback returned when the model
// produces anything outside the set.
type Config struct {
	Model        einomodel.BaseChatModel
	SystemPrompt string
	Labels       []string
}

// ModelClassifier implements Classifier with a single completion call
// constrained to emit exactly one label token.
type ModelClassifier struct {
	model    einomodel.BaseChatModel
	prompt   string
	labels   []string
	fallback string
}

func New(cfg Config) (*ModelClassifier, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("classifier model is nil")
	}
	if len(cfg.Labels) < 2 {
		return nil, fmt.Errorf("classifier needs at least two labels")
	}
	if strings.TrimSpace(cfg.SystemPrompt) == "" {
		return nil, fmt.Errorf("classifier system prompt is empty")
	}

	return &ModelClassifier{
		model:    cfg.Model,
		prompt:   cfg.SystemPrompt,
		labels:   cfg.Labels,
		fallback: cfg.Labels[len(cfg.Labels)-1],
	}, nil
}

// Classify runs the completion call. A transport or provider error is
// returned as-is and is never retried here; it propagates as a graph-level
// failure. Output that does not exactly match an allowed label yields the
// fallback label rather than an error.
func (c *ModelClassifier) Classify(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("classification input is empty")
	}

	out, err := c.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(c.prompt),
		schema.UserMessage(text),
	})
	if err != nil {
		return "", fmt.Errorf("classification call: %w", err)
	}
	if out == nil {
		return "", fmt.Errorf("classification call returned no message")
	}

	label := strings.TrimSpace(out.Content)
	for _, allowed := range c.labels {
		if label == allowed {
			return label, nil
		}
	}

	logx.Debug().
		Str("raw_label", label).
		Str("fallback", c.fallback).
		Msg("Classifier output outside allowed labels; using fallback")
	return c.fallback, nil
}

var _ Classifier = (*ModelClassifier)(nil)
