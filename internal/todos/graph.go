package todos

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/agents-play/server/internal/agent/classify"
	"github.com/agents-play/server/internal/agent/model"
	logx "github.com/agents-play/server/pkg/logger"
)

// Graph node names.
const (
	NodeEntry  = "todos_entry_node"
	NodeCreate = "todos_create_node"
	NodeList   = "todos_list_node"
	NodeFinish = "todos_finish_node"
)

// Runner executes the compiled todo graph for one raw user utterance.
type Runner interface {
	Invoke(ctx context.Context, userInput string) (*Result, error)
}

// Config holds everything needed to compose the todo graph.
type Config struct {
	// Model handles both action planning and title extraction.
	Model einomodel.BaseChatModel
	// Repo is the todo store.
	Repo model.TodoRepository
}

type graphRunner struct {
	runnable compose.Runnable[string, *Result]
}

func (r *graphRunner) Invoke(ctx context.Context, userInput string) (*Result, error) {
	out, err := r.runnable.Invoke(ctx, userInput)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("todo graph finished without a result")
	}
	return out, nil
}

// BuildGraph composes and compiles the todo graph:
// entry -> {create, list} -> finish, with unknown short-circuiting to finish.
func BuildGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("todo model is nil")
	}
	if cfg.Repo == nil {
		return nil, fmt.Errorf("todo repository is nil")
	}

	planner, err := classify.New(classify.Config{
		Model:        cfg.Model,
		SystemPrompt: planningPrompt,
		Labels:       []string{string(ActionCreate), string(ActionList), string(ActionUnknown)},
	})
	if err != nil {
		return nil, fmt.Errorf("build todo planner: %w", err)
	}

	g := compose.NewGraph[string, *Result](
		compose.WithGenLocalState(func(ctx context.Context) *graphState {
			return &graphState{}
		}),
	)

	g.AddLambdaNode(NodeEntry, newEntryNode(planner))
	g.AddLambdaNode(NodeCreate, newCreateNode(cfg.Model, cfg.Repo))
	g.AddLambdaNode(NodeList, newListNode(cfg.Repo))
	g.AddLambdaNode(NodeFinish, newFinishNode())

	g.AddEdge(compose.START, NodeEntry)
	g.AddEdge(NodeCreate, NodeFinish)
	g.AddEdge(NodeList, NodeFinish)
	g.AddEdge(NodeFinish, compose.END)

	entryBranch := compose.NewGraphBranch(
		newEntryCondition(),
		map[string]bool{
			NodeCreate: true,
			NodeList:   true,
			NodeFinish: true,
		},
	)
	if err := g.AddBranch(NodeEntry, entryBranch); err != nil {
		return nil, fmt.Errorf("error adding todo entry branch: %w", err)
	}

	runnable, err := g.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("error compiling todo graph: %w", err)
	}

	logx.Debug().Msg("Todo graph compiled successfully")
	return &graphRunner{runnable: runnable}, nil
}

// newEntryNode classifies the utterance into create, list or unknown.
// Classification errors and the unknown action both resolve the outcome here;
// only create and list continue to their store-touching nodes.
func newEntryNode(planner classify.Classifier) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, userInput string) (string, error) {
		label, classifyErr := planner.Classify(ctx, userInput)

		err := compose.ProcessState(ctx, func(_ context.Context, s *graphState) error {
			s.userInput = userInput
			if classifyErr != nil {
				s.result.Resolve(failed(FailureAgentInvocation, classifyErr))
				return nil
			}
			s.action = Action(label)
			if s.action == ActionUnknown {
				s.result.Resolve(unknownSuccess())
			}
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("failed to access state: %w", err)
		}
		if classifyErr != nil {
			logx.Error().Err(classifyErr).Msg("Todo action planning failed")
			return "", nil
		}

		logx.Debug().Str("action", label).Msg("Todo action planned")
		return label, nil
	})
}

func newEntryCondition() func(context.Context, string) (string, error) {
	return func(ctx context.Context, label string) (string, error) {
		var resolved bool
		compose.ProcessState(ctx, func(_ context.Context, s *graphState) error {
			resolved = s.result.Resolved()
			return nil
		})
		if resolved {
			return NodeFinish, nil
		}

		switch Action(label) {
		case ActionCreate:
			return NodeCreate, nil
		case ActionList:
			return NodeList, nil
		default:
			return NodeFinish, nil
		}
	}
}

// newCreateNode extracts a short imperative title from the raw utterance via
// a second completion call, then persists the new todo.
func newCreateNode(m einomodel.BaseChatModel, repo model.TodoRepository) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ string) (*Result, error) {
		var userInput string
		if err := compose.ProcessState(ctx, func(_ context.Context, s *graphState) error {
			userInput = s.userInput
			return nil
		}); err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		resolve := func(r *Result) (*Result, error) {
			err := compose.ProcessState(ctx, func(_ context.Context, s *graphState) error {
				s.result.Resolve(r)
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("failed to access state: %w", err)
			}
			return r, nil
		}

		out, err := m.Generate(ctx, []*schema.Message{
			schema.SystemMessage(titleExtractionPrompt),
			schema.UserMessage(userInput),
		})
		if err != nil {
			logx.Error().Err(err).Msg("Todo title extraction failed")
			return resolve(failed(FailureAgentInvocation, err))
		}

		title := strings.TrimSpace(out.Content)

		todo, err := repo.Create(ctx, title)
		if err != nil {
			logx.Error().Err(err).Str("title", title).Msg("Todo creation failed")
			return resolve(failed(FailureStore, err))
		}

		logx.Debug().Str("title", todo.Title).Msg("Todo created")
		return resolve(createSuccess(todo))
	})
}

func newListNode(repo model.TodoRepository) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ string) (*Result, error) {
		resolve := func(r *Result) (*Result, error) {
			err := compose.ProcessState(ctx, func(_ context.Context, s *graphState) error {
				s.result.Resolve(r)
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("failed to access state: %w", err)
			}
			return r, nil
		}

		items, err := repo.List(ctx)
		if err != nil {
			logx.Error().Err(err).Msg("Todo listing failed")
			return resolve(failed(FailureStore, err))
		}

		return resolve(listSuccess(items))
	})
}

// newFinishNode reads the resolved outcome. It accepts any input because the
// entry short-circuit hands it a label while create and list hand it results.
func newFinishNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, _ any) (*Result, error) {
		var result *Result
		err := compose.ProcessState(ctx, func(_ context.Context, s *graphState) error {
			result = s.result.MustGet()
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}
		return result, nil
	})
}
