// Package registry resolves configured agent instances by provider and model
// key. Lookups use a value-typed key rather than ad-hoc strings so unknown
// agents fail in exactly one place.
package registry

import (
	"errors"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/agents-play/server/internal/agent/classify"
	"github.com/agents-play/server/internal/agent/model"
)

// ErrUnsupportedAgent is returned for provider/model keys with no registered
// agent. Fatal per request; no completion calls are made.
var ErrUnsupportedAgent = errors.New("unsupported llm agent")

// Agent bundles the capability instances configured for one provider/model key.
type Agent struct {
	Key model.AgentKey

	// Intent routes a user utterance between the todo and general paths.
	Intent classify.Classifier

	// Responder is the tool-enabled conversational model. Tools are bound
	// during orchestrator graph construction.
	Responder einomodel.ToolCallingChatModel

	// ResponderModelName is used for usage cost resolution and logging.
	ResponderModelName string
}

// Registry maps agent keys to configured agent instances.
type Registry struct {
	agents map[model.AgentKey]*Agent
}

func New() *Registry {
	return &Registry{agents: make(map[model.AgentKey]*Agent)}
}

func (r *Registry) Register(a *Agent) {
	r.agents[a.Key] = a
}

// Resolve returns the agent for the key, or ErrUnsupportedAgent.
func (r *Registry) Resolve(key model.AgentKey) (*Agent, error) {
	a, ok := r.agents[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAgent, key)
	}
	return a, nil
}

// Keys lists the registered agent keys.
func (r *Registry) Keys() []model.AgentKey {
	keys := make([]model.AgentKey, 0, len(r.agents))
	for k := range r.agents {
		keys = append(keys, k)
	}
	return keys
}

// BindResponderTools rebinds every registered responder with the given tool
// infos. Called once during orchestrator graph construction.
func (r *Registry) BindResponderTools(infos []*schema.ToolInfo) error {
	for key, a := range r.agents {
		bound, err := a.Responder.WithTools(infos)
		if err != nil {
			return fmt.Errorf("bind tools to responder %s: %w", key, err)
		}
		a.Responder = bound
	}
	return nil
}
