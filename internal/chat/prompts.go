package chat

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/agents-play/server/internal/todos"
)

//go:embed template/general_prompt.txt
var generalSystemPrompt string

//go:embed template/narration_prompt.txt
var narrationSystemPrompt string

//go:embed template/intent_prompt.txt
var intentSystemPrompt string

// IntentSystemPrompt is the system prompt for the intent classifier.
// Exported for agent construction during wiring.
var IntentSystemPrompt = strings.TrimSpace(intentSystemPrompt)

// renderGeneralSystem renders the general-purpose agent system prompt via the
// Eino prompt component (enables prompt callbacks).
func renderGeneralSystem(ctx context.Context) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(generalSystemPrompt),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"RatesTool": ToolGetExchangeRates,
	})
	if err != nil {
		return "", fmt.Errorf("general prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("general prompt render: empty result")
	}
	return strings.TrimSpace(msgs[0].Content), nil
}

// renderNarrationSystem renders the system prompt that asks the responder to
// narrate a completed todo action back to the user.
func renderNarrationSystem(ctx context.Context, question string, res *todos.Result) (string, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(narrationSystemPrompt),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"Question": question,
		"Outcome":  narrationOutcome(res),
	})
	if err != nil {
		return "", fmt.Errorf("narration prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("narration prompt render: empty result")
	}
	return strings.TrimSpace(msgs[0].Content), nil
}

// narrationOutcome describes a completed todo action in plain text for the
// narration prompt.
func narrationOutcome(res *todos.Result) string {
	switch res.Action {
	case todos.ActionCreate:
		return fmt.Sprintf("A new todo titled %q was created successfully. It is not completed yet.", res.NewTodo.Title)
	case todos.ActionList:
		if len(res.Todos) == 0 {
			return "The user's todo list is empty."
		}
		var b strings.Builder
		b.WriteString("The user's todo list, most recently updated first:\n")
		for _, t := range res.Todos {
			mark := " "
			if t.Completed {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", mark, t.Title)
		}
		return strings.TrimRight(b.String(), "\n")
	default:
		return "The requested todo action is not supported. Only creating a todo and listing todos are available."
	}
}
