package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool tool interface
type Tool interface {
	Name() string                                                     // Tool name
	Description() string                                              // Tool description (for the model)
	Parameters() []ParameterDef                                       // Parameter definitions
	Execute(ctx context.Context, args map[string]any) (string, error) // Execute
}

// ParameterDef parameter definition
type ParameterDef struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"` // "string" | "integer" | "number" | "boolean"
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Enum        []string `json:"enum,omitempty"`    // Allowed values, when constrained
	Default     any      `json:"default,omitempty"` // Applied when an optional argument is absent
}

// encodeRecord serializes a normalized record for the model
func encodeRecord(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(data), nil
}

// stringArg extracts a trimmed string argument
func stringArg(args map[string]any, name string) string {
	value, _ := args[name].(string)
	return value
}

// intArg extracts an integer argument. Model-provided JSON numbers
// arrive as float64.
func intArg(args map[string]any, name string, def int) int {
	switch v := args[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}
