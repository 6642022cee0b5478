// Package agent runs the conversation loop: it sends the turn history
// to the model, executes any tool calls the model requests, feeds the
// results back, and repeats until the model produces a final answer.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kodell/finchat/internal/llm"
	"github.com/kodell/finchat/internal/logger"
	"github.com/kodell/finchat/internal/tools"
)

// ErrLoopBudgetExceeded is returned when the model keeps requesting
// tools past the configured iteration limit
var ErrLoopBudgetExceeded = errors.New("tool iteration limit exceeded")

const defaultMaxToolIterations = 10

// ToolCallHandler observes each tool invocation as it happens
type ToolCallHandler func(name string, args json.RawMessage, result tools.Result)

// Agent drives the model/tool loop for one conversation
type Agent struct {
	client            *llm.Client
	registry          *tools.Registry
	maxToolIterations int
	history           []llm.Turn
	sessionID         string
	onToolCall        ToolCallHandler
}

// Option configures an Agent
type Option func(*Agent)

// WithToolCallHandler registers a callback invoked after each tool
// execution, before the result is sent back to the model
func WithToolCallHandler(h ToolCallHandler) Option {
	return func(a *Agent) {
		a.onToolCall = h
	}
}

// WithMaxToolIterations overrides the tool loop budget
func WithMaxToolIterations(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxToolIterations = n
		}
	}
}

// New creates an agent with an empty history
func New(client *llm.Client, registry *tools.Registry, opts ...Option) *Agent {
	a := &Agent{
		client:            client,
		registry:          registry,
		maxToolIterations: defaultMaxToolIterations,
		sessionID:         uuid.New().String(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SessionID returns the identifier for this conversation
func (a *Agent) SessionID() string {
	return a.sessionID
}

// History returns a copy of the committed turn history
func (a *Agent) History() []llm.Turn {
	out := make([]llm.Turn, len(a.history))
	copy(out, a.history)
	return out
}

// HistoryLen returns the number of committed turns
func (a *Agent) HistoryLen() int {
	return len(a.history)
}

// Clear discards the conversation and starts a fresh session
func (a *Agent) Clear() {
	a.history = nil
	a.sessionID = uuid.New().String()
	logger.Info("conversation cleared, new session %s", a.sessionID)
}

// Chat processes one user input and returns the model's final answer.
// The loop works on a private copy of the history and commits it only
// on success, so a failed model call leaves the conversation exactly
// as it was and the input can be retried.
func (a *Agent) Chat(ctx context.Context, input string) (string, error) {
	working := make([]llm.Turn, len(a.history), len(a.history)+2)
	copy(working, a.history)
	working = append(working, llm.UserTurn(input))

	defs := a.toolDefs()

	for iteration := 0; ; iteration++ {
		resp, err := a.client.Chat(ctx, working, defs)
		if err != nil {
			logger.Error("model call failed (session %s): %v", a.sessionID, err)
			return "", err
		}
		working = append(working, resp.Param)

		if !resp.HasToolCalls() {
			a.history = working
			return resp.Text, nil
		}

		if iteration >= a.maxToolIterations {
			logger.Warn("session %s exceeded %d tool iterations", a.sessionID, a.maxToolIterations)
			return "", fmt.Errorf("%w (%d)", ErrLoopBudgetExceeded, a.maxToolIterations)
		}

		results := make([]llm.ToolResult, 0, len(resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			result := a.execute(ctx, call)
			results = append(results, llm.ToolResult{
				CallID:  call.ID,
				Content: result.Content,
				IsError: result.IsError,
			})
		}
		working = append(working, llm.ToolResultsTurn(results))
	}
}

// execute runs one tool call, decoding the model-supplied arguments
func (a *Agent) execute(ctx context.Context, call llm.ToolCall) tools.Result {
	args := map[string]any{}
	if len(call.Input) > 0 {
		if err := json.Unmarshal(call.Input, &args); err != nil {
			logger.Warn("tool %s: bad input payload: %v", call.Name, err)
			args = map[string]any{}
		}
	}

	logger.Debug("session %s: executing tool %s", a.sessionID, call.Name)
	result := a.registry.Dispatch(ctx, call.Name, args)
	if result.IsError {
		logger.Warn("tool %s returned error: %s", call.Name, result.Content)
	}

	if a.onToolCall != nil {
		a.onToolCall(call.Name, call.Input, result)
	}
	return result
}

// toolDefs converts the registry catalog to model tool definitions
func (a *Agent) toolDefs() []llm.ToolDef {
	schemas := a.registry.Schemas()
	defs := make([]llm.ToolDef, 0, len(schemas))
	for _, s := range schemas {
		defs = append(defs, llm.ToolDef{
			Name:        s.Name,
			Description: s.Description,
			Properties:  s.Properties,
			Required:    s.Required,
		})
	}
	return defs
}
