package tools

import (
	"context"

	"github.com/kodell/finchat/internal/providers"
)

// CityWeatherTool reports current weather conditions for a city
type CityWeatherTool struct {
	weather *providers.OpenMeteo
}

// NewCityWeatherTool creates the city weather tool
func NewCityWeatherTool(weather *providers.OpenMeteo) *CityWeatherTool {
	return &CityWeatherTool{weather: weather}
}

func (t *CityWeatherTool) Name() string {
	return "get_city_weather"
}

func (t *CityWeatherTool) Description() string {
	return "Get current weather information for a specified city. Returns temperature, humidity, wind speed, and weather conditions."
}

func (t *CityWeatherTool) Parameters() []ParameterDef {
	return []ParameterDef{
		{
			Name:        "city",
			Type:        "string",
			Description: "Name of the city (e.g., 'New York', 'London', 'Tokyo')",
			Required:    true,
		},
	}
}

func (t *CityWeatherTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	city := stringArg(args, "city")
	if city == "" {
		return "", providers.InvalidArgumentf("missing required parameter: city")
	}

	report, err := t.weather.CurrentWeather(ctx, city)
	if err != nil {
		return "", err
	}
	return encodeRecord(report)
}
