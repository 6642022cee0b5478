package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/kodell/finchat/internal/logger"
	"github.com/kodell/finchat/internal/providers"
)

// Registry tool registry. The catalog is built once at startup and read
// only afterwards.
type Registry struct {
	tools map[string]Tool
	mu    sync.RWMutex
}

// NewRegistry creates a new tool registry
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register registers a tool
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already exists", name)
	}

	r.tools[name] = tool
	return nil
}

// Get gets a tool by name
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, exists := r.tools[name]
	return tool, exists
}

// List lists all tools sorted by name
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// Result is the outcome of a dispatched tool call. A failed call yields
// a serialized error payload instead of a Go error, so the model can
// react to the failure.
type Result struct {
	Content string
	IsError bool
}

// Dispatch validates arguments, applies declared defaults, and executes
// the named tool. It never returns a Go error: every failure becomes a
// structured error result.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) Result {
	tool, exists := r.Get(name)
	if !exists {
		return errorResult(providers.InvalidArgumentf("unknown tool: %s", name))
	}

	prepared, err := prepareArgs(tool.Parameters(), args)
	if err != nil {
		logger.Warn("tool %s rejected arguments: %v", name, err)
		return errorResult(err)
	}

	content, err := tool.Execute(ctx, prepared)
	if err != nil {
		logger.Warn("tool %s failed: %v", name, err)
		return errorResult(err)
	}
	return Result{Content: content}
}

// prepareArgs checks required and enum constraints and fills defaults.
// The input map is not mutated.
func prepareArgs(params []ParameterDef, args map[string]any) (map[string]any, error) {
	prepared := make(map[string]any, len(args))
	for k, v := range args {
		prepared[k] = v
	}

	for _, param := range params {
		value, present := prepared[param.Name]

		// Models sometimes send "" for an omitted optional argument
		if present {
			if s, ok := value.(string); ok && s == "" {
				present = false
				delete(prepared, param.Name)
			}
		}

		if !present {
			if param.Required {
				return nil, providers.InvalidArgumentf("missing required parameter: %s", param.Name)
			}
			if param.Default != nil {
				prepared[param.Name] = param.Default
			}
			continue
		}

		if len(param.Enum) > 0 {
			s, ok := value.(string)
			if !ok || !containsString(param.Enum, s) {
				return nil, providers.InvalidArgumentf("parameter %s must be one of %v", param.Name, param.Enum)
			}
		}
	}
	return prepared, nil
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

// errorResult serializes a classified failure for the model
func errorResult(err error) Result {
	payload, marshalErr := json.Marshal(map[string]string{
		"error": err.Error(),
		"kind":  string(providers.KindOf(err)),
	})
	if marshalErr != nil {
		payload = []byte(fmt.Sprintf(`{"error":%q}`, err.Error()))
	}
	return Result{Content: string(payload), IsError: true}
}

// Schema is the JSON-Schema-like tool description advertised to the
// model. It is stable for the life of a session.
type Schema struct {
	Name        string
	Description string
	Properties  map[string]any
	Required    []string
}

// Schemas builds the schema catalog for all registered tools
func (r *Registry) Schemas() []Schema {
	tools := r.List()

	schemas := make([]Schema, 0, len(tools))
	for _, tool := range tools {
		properties := make(map[string]any)
		var required []string

		for _, param := range tool.Parameters() {
			prop := map[string]any{
				"type":        param.Type,
				"description": param.Description,
			}
			if len(param.Enum) > 0 {
				prop["enum"] = param.Enum
			}
			properties[param.Name] = prop
			if param.Required {
				required = append(required, param.Name)
			}
		}

		schemas = append(schemas, Schema{
			Name:        tool.Name(),
			Description: tool.Description(),
			Properties:  properties,
			Required:    required,
		})
	}
	return schemas
}

// Providers bundles the adapters the default catalog is built from
type Providers struct {
	Weather *providers.OpenMeteo
	Market  *providers.AlphaVantage
	Econ    *providers.FRED
}

// NewDefaultRegistry creates and registers the full tool catalog
func NewDefaultRegistry(p Providers) *Registry {
	registry := NewRegistry()

	all := []Tool{
		NewCityWeatherTool(p.Weather),
		NewStockQuoteTool(p.Market),
		NewStockDailyTool(p.Market),
		NewSMATool(p.Market),
		NewRSITool(p.Market),
		NewFXRateTool(p.Market),
		NewCryptoRateTool(p.Market),
		NewSearchSeriesTool(p.Econ),
		NewSeriesInfoTool(p.Econ),
		NewBrowseCategoriesTool(p.Econ),
		NewEconomicIndicatorTool(p.Econ),
		NewSearchTagsTool(p.Econ),
		NewSearchRelatedTagsTool(p.Econ),
		NewSeriesUpdatesTool(p.Econ),
		NewReleaseInfoTool(p.Econ),
		NewReleaseSeriesTool(p.Econ),
		NewReleaseDatesTool(p.Econ),
		NewVintageDatesTool(p.Econ),
	}

	for _, tool := range all {
		_ = registry.Register(tool) // Catalog names are fixed and unique
	}

	return registry
}
