package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kodell/finchat/internal/providers"
)

// stubTool records the arguments it was executed with
type stubTool struct {
	name    string
	params  []ParameterDef
	gotArgs map[string]any
	result  string
	err     error
}

func (s *stubTool) Name() string               { return s.name }
func (s *stubTool) Description() string        { return "stub tool" }
func (s *stubTool) Parameters() []ParameterDef { return s.params }

func (s *stubTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	s.gotArgs = args
	return s.result, s.err
}

func decodeErrorPayload(t *testing.T, result Result) map[string]string {
	t.Helper()
	require.True(t, result.IsError)
	payload := map[string]string{}
	require.NoError(t, json.Unmarshal([]byte(result.Content), &payload))
	return payload
}

func TestRegisterDuplicate(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&stubTool{name: "echo"}))
	assert.Error(t, registry.Register(&stubTool{name: "echo"}))
}

func TestListSorted(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&stubTool{name: "zeta"}))
	require.NoError(t, registry.Register(&stubTool{name: "alpha"}))
	require.NoError(t, registry.Register(&stubTool{name: "mid"}))

	list := registry.List()
	require.Len(t, list, 3)
	assert.Equal(t, "alpha", list[0].Name())
	assert.Equal(t, "mid", list[1].Name())
	assert.Equal(t, "zeta", list[2].Name())
}

func TestDispatchUnknownTool(t *testing.T) {
	registry := NewRegistry()

	result := registry.Dispatch(context.Background(), "no_such_tool", nil)
	payload := decodeErrorPayload(t, result)

	assert.Equal(t, "invalid_argument", payload["kind"])
	assert.Contains(t, payload["error"], "no_such_tool")
}

func TestDispatchMissingRequired(t *testing.T) {
	registry := NewRegistry()
	tool := &stubTool{
		name:   "echo",
		params: []ParameterDef{{Name: "text", Type: "string", Required: true}},
	}
	require.NoError(t, registry.Register(tool))

	result := registry.Dispatch(context.Background(), "echo", map[string]any{})
	payload := decodeErrorPayload(t, result)

	assert.Equal(t, "invalid_argument", payload["kind"])
	assert.Contains(t, payload["error"], "text")
	assert.Nil(t, tool.gotArgs, "tool must not execute on validation failure")
}

func TestDispatchEmptyRequiredString(t *testing.T) {
	registry := NewRegistry()
	tool := &stubTool{
		name:   "echo",
		params: []ParameterDef{{Name: "text", Type: "string", Required: true}},
	}
	require.NoError(t, registry.Register(tool))

	result := registry.Dispatch(context.Background(), "echo", map[string]any{"text": ""})
	payload := decodeErrorPayload(t, result)
	assert.Equal(t, "invalid_argument", payload["kind"])
}

func TestDispatchFillsDefaults(t *testing.T) {
	registry := NewRegistry()
	tool := &stubTool{
		name: "echo",
		params: []ParameterDef{
			{Name: "text", Type: "string", Required: true},
			{Name: "mode", Type: "string", Default: "plain"},
		},
		result: "ok",
	}
	require.NoError(t, registry.Register(tool))

	args := map[string]any{"text": "hi"}
	result := registry.Dispatch(context.Background(), "echo", args)

	assert.False(t, result.IsError)
	assert.Equal(t, "plain", tool.gotArgs["mode"])
	_, mutated := args["mode"]
	assert.False(t, mutated, "caller's map must not be mutated")
}

func TestDispatchEmptyOptionalTreatedAsAbsent(t *testing.T) {
	registry := NewRegistry()
	tool := &stubTool{
		name: "echo",
		params: []ParameterDef{
			{Name: "mode", Type: "string", Enum: []string{"plain", "loud"}, Default: "plain"},
			{Name: "tag", Type: "string"},
		},
		result: "ok",
	}
	require.NoError(t, registry.Register(tool))

	result := registry.Dispatch(context.Background(), "echo", map[string]any{
		"mode": "",
		"tag":  "",
	})

	assert.False(t, result.IsError, result.Content)
	assert.Equal(t, "plain", tool.gotArgs["mode"], "empty optional must fall back to the default")
	_, present := tool.gotArgs["tag"]
	assert.False(t, present, "empty optional without a default must be dropped")
}

func TestDispatchEnumViolation(t *testing.T) {
	registry := NewRegistry()
	tool := &stubTool{
		name:   "echo",
		params: []ParameterDef{{Name: "mode", Type: "string", Enum: []string{"plain", "loud"}}},
	}
	require.NoError(t, registry.Register(tool))

	result := registry.Dispatch(context.Background(), "echo", map[string]any{"mode": "whisper"})
	payload := decodeErrorPayload(t, result)
	assert.Equal(t, "invalid_argument", payload["kind"])
}

func TestDispatchExecutionError(t *testing.T) {
	registry := NewRegistry()
	tool := &stubTool{name: "flaky", err: providers.NotFoundf("nothing here")}
	require.NoError(t, registry.Register(tool))

	result := registry.Dispatch(context.Background(), "flaky", nil)
	payload := decodeErrorPayload(t, result)

	assert.Equal(t, "not_found", payload["kind"])
	assert.Equal(t, "nothing here", payload["error"])
}

func TestDispatchUnclassifiedError(t *testing.T) {
	registry := NewRegistry()
	tool := &stubTool{name: "flaky", err: errors.New("boom")}
	require.NoError(t, registry.Register(tool))

	result := registry.Dispatch(context.Background(), "flaky", nil)
	payload := decodeErrorPayload(t, result)
	assert.Equal(t, "upstream_unavailable", payload["kind"])
}

func TestSchemas(t *testing.T) {
	registry := NewRegistry()
	tool := &stubTool{
		name: "echo",
		params: []ParameterDef{
			{Name: "text", Type: "string", Description: "text to echo", Required: true},
			{Name: "mode", Type: "string", Enum: []string{"plain", "loud"}},
		},
	}
	require.NoError(t, registry.Register(tool))

	schemas := registry.Schemas()
	require.Len(t, schemas, 1)

	schema := schemas[0]
	assert.Equal(t, "echo", schema.Name)
	assert.Equal(t, []string{"text"}, schema.Required)

	text, ok := schema.Properties["text"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", text["type"])
	assert.Equal(t, "text to echo", text["description"])

	mode, ok := schema.Properties["mode"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []string{"plain", "loud"}, mode["enum"])
}

func TestDefaultRegistryCatalog(t *testing.T) {
	registry := NewDefaultRegistry(Providers{})

	names := []string{}
	for _, tool := range registry.List() {
		names = append(names, tool.Name())
	}

	want := []string{
		"browse_economic_categories",
		"get_city_weather",
		"get_crypto_rate",
		"get_economic_indicator",
		"get_fx_rate",
		"get_release_dates",
		"get_release_info",
		"get_release_series",
		"get_rsi",
		"get_series_info",
		"get_series_updates",
		"get_series_vintagedates",
		"get_sma",
		"get_stock_daily",
		"get_stock_quote",
		"search_economic_series",
		"search_series_related_tags",
		"search_series_tags",
	}
	assert.Equal(t, want, names)
}
