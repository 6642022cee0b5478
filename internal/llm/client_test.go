package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModelServer(t *testing.T, gotBody *map[string]any, responseBody string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/messages", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-api-key"))

		if gotBody != nil {
			body := map[string]any{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			*gotBody = body
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, responseBody)
	}))
}

func textResponse(text string) string {
	return fmt.Sprintf(`{
		"id":"msg_1","type":"message","role":"assistant","model":"test-model",
		"content":[{"type":"text","text":%q}],
		"stop_reason":"end_turn",
		"usage":{"input_tokens":10,"output_tokens":5}
	}`, text)
}

func newTestClient(serverURL string) *Client {
	return New(Options{
		APIKey:       "test-key",
		BaseURL:      serverURL,
		Model:        "test-model",
		MaxTokens:    1024,
		SystemPrompt: "You are a test assistant.",
	})
}

func TestChatText(t *testing.T) {
	var gotBody map[string]any
	server := newModelServer(t, &gotBody, textResponse("Hello there"))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.Chat(context.Background(), []Turn{UserTurn("Hi")}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Hello there", resp.Text)
	assert.False(t, resp.HasToolCalls())

	assert.Equal(t, "test-model", gotBody["model"])
	assert.Equal(t, float64(1024), gotBody["max_tokens"])

	system, ok := gotBody["system"].([]any)
	require.True(t, ok)
	require.Len(t, system, 1)

	messages, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 1)
	first := messages[0].(map[string]any)
	assert.Equal(t, "user", first["role"])
}

func TestChatSendsToolCatalog(t *testing.T) {
	var gotBody map[string]any
	server := newModelServer(t, &gotBody, textResponse("ok"))
	defer server.Close()

	client := newTestClient(server.URL)
	tools := []ToolDef{{
		Name:        "get_city_weather",
		Description: "Get current weather for a city",
		Properties: map[string]any{
			"city": map[string]any{"type": "string", "description": "City name"},
		},
		Required: []string{"city"},
	}}

	_, err := client.Chat(context.Background(), []Turn{UserTurn("weather?")}, tools)
	require.NoError(t, err)

	sent, ok := gotBody["tools"].([]any)
	require.True(t, ok)
	require.Len(t, sent, 1)

	tool := sent[0].(map[string]any)
	assert.Equal(t, "get_city_weather", tool["name"])
	assert.Equal(t, "Get current weather for a city", tool["description"])

	schema := tool["input_schema"].(map[string]any)
	assert.Equal(t, "object", schema["type"])
	assert.Contains(t, schema["properties"], "city")
	assert.Equal(t, []any{"city"}, schema["required"])
}

func TestChatToolUse(t *testing.T) {
	response := `{
		"id":"msg_2","type":"message","role":"assistant","model":"test-model",
		"content":[
			{"type":"text","text":"Let me check."},
			{"type":"tool_use","id":"toolu_1","name":"get_city_weather","input":{"city":"Paris"}},
			{"type":"tool_use","id":"toolu_2","name":"get_stock_quote","input":{"symbol":"AAPL"}}
		],
		"stop_reason":"tool_use",
		"usage":{"input_tokens":10,"output_tokens":5}
	}`
	server := newModelServer(t, nil, response)
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.Chat(context.Background(), []Turn{UserTurn("weather and a quote")}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Let me check.", resp.Text)
	require.True(t, resp.HasToolCalls())
	require.Len(t, resp.ToolCalls, 2)

	first := resp.ToolCalls[0]
	assert.Equal(t, "toolu_1", first.ID)
	assert.Equal(t, "get_city_weather", first.Name)
	assert.JSONEq(t, `{"city":"Paris"}`, string(first.Input))

	assert.Equal(t, "toolu_2", resp.ToolCalls[1].ID)
	assert.Equal(t, "get_stock_quote", resp.ToolCalls[1].Name)
}

func TestChatHistoryRoundTrip(t *testing.T) {
	var gotBody map[string]any
	server := newModelServer(t, &gotBody, textResponse("done"))
	defer server.Close()

	client := newTestClient(server.URL)
	history := []Turn{
		UserTurn("weather in Paris?"),
		ToolResultsTurn([]ToolResult{
			{CallID: "toolu_1", Content: `{"temperature": 15}`},
			{CallID: "toolu_2", Content: `{"error":"boom"}`, IsError: true},
		}),
	}

	_, err := client.Chat(context.Background(), history, nil)
	require.NoError(t, err)

	messages := gotBody["messages"].([]any)
	require.Len(t, messages, 2)

	resultTurn := messages[1].(map[string]any)
	assert.Equal(t, "user", resultTurn["role"])

	blocks := resultTurn["content"].([]any)
	require.Len(t, blocks, 2)

	okBlock := blocks[0].(map[string]any)
	assert.Equal(t, "tool_result", okBlock["type"])
	assert.Equal(t, "toolu_1", okBlock["tool_use_id"])

	errBlock := blocks[1].(map[string]any)
	assert.Equal(t, "toolu_2", errBlock["tool_use_id"])
	assert.Equal(t, true, errBlock["is_error"])
}

func TestChatUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"type":"error","error":{"type":"invalid_request_error","message":"bad request"}}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.Chat(context.Background(), []Turn{UserTurn("hi")}, nil)
	assert.Error(t, err)
}

func TestChatWithRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"type":"error","error":{"type":"invalid_request_error","message":"transient"}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, textResponse("recovered"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.ChatWithRetry(context.Background(), []Turn{UserTurn("hi")}, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Text)
	assert.Equal(t, int32(2), calls.Load())
}
