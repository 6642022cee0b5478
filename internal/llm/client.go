// Package llm wraps the Anthropic Messages API. It exposes the
// conversation as an ordered turn history and classifies each model
// response as either final text or a batch of tool invocations.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Turn is one entry of the conversation history. The assistant turn
// returned by the model is appended verbatim so the model sees its own
// prior tool requests on the next round.
type Turn = anthropic.MessageParam

// ToolDef describes one tool advertised to the model
type ToolDef struct {
	Name        string
	Description string
	Properties  map[string]any
	Required    []string
}

// ToolCall is one tool invocation requested by the model
type ToolCall struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// ToolResult is the outcome of one executed tool call, correlated by
// the model-assigned call ID
type ToolResult struct {
	CallID  string
	Content string
	IsError bool
}

// Response is one model turn. ToolCalls is non-empty exactly when the
// model stopped to use tools; Param carries the raw assistant turn for
// history append.
type Response struct {
	Text      string
	ToolCalls []ToolCall
	Param     anthropic.MessageParam
}

// HasToolCalls reports whether the model requested tool execution
func (r *Response) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// Options configures the client
type Options struct {
	APIKey       string
	BaseURL      string // Override for testing; empty uses the production API
	Model        string
	MaxTokens    int
	SystemPrompt string
}

// Client Anthropic Messages API client
type Client struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	system    string
}

// New creates a new model client
func New(opts Options) *Client {
	requestOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(opts.BaseURL))
	}

	maxTokens := int64(opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &Client{
		client:    anthropic.NewClient(requestOpts...),
		model:     opts.Model,
		maxTokens: maxTokens,
		system:    opts.SystemPrompt,
	}
}

// UserTurn builds a user text turn
func UserTurn(text string) Turn {
	return anthropic.NewUserMessage(anthropic.NewTextBlock(text))
}

// ToolResultsTurn batches tool results into one user turn, preserving
// the call-ID correlation the model expects
func ToolResultsTurn(results []ToolResult) Turn {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(results))
	for _, result := range results {
		blocks = append(blocks, anthropic.NewToolResultBlock(result.CallID, result.Content, result.IsError))
	}
	return anthropic.NewUserMessage(blocks...)
}

// Chat sends the turn history and tool catalog to the model
func (c *Client) Chat(ctx context.Context, history []Turn, tools []ToolDef) (*Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  history,
	}
	if c.system != "" {
		params.System = []anthropic.TextBlockParam{{Text: c.system}}
	}
	if len(tools) > 0 {
		params.Tools = convertTools(tools)
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("model request failed: %w", err)
	}

	resp := &Response{Param: message.ToParam()}

	var text strings.Builder
	for _, block := range message.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(variant.Text)
		case anthropic.ToolUseBlock:
			resp.ToolCalls = append(resp.ToolCalls, ToolCall{
				ID:    variant.ID,
				Name:  variant.Name,
				Input: json.RawMessage(variant.JSON.Input.Raw()),
			})
		}
	}
	resp.Text = text.String()

	return resp, nil
}

// ChatWithRetry retries transient model failures with linear backoff
func (c *Client) ChatWithRetry(ctx context.Context, history []Turn, tools []ToolDef, maxRetries int) (*Response, error) {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		resp, err := c.Chat(ctx, history, tools)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(i+1) * time.Second):
		}
	}
	return nil, fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

// convertTools builds the Anthropic tool definitions
func convertTools(tools []ToolDef) []anthropic.ToolUnionParam {
	params := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, tool := range tools {
		params = append(params, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name,
				Description: anthropic.String(tool.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: tool.Properties,
					Required:   tool.Required,
				},
			},
		})
	}
	return params
}
