package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kodell/finchat/internal/logger"
)

// WeatherReport is the normalized current-conditions record for a city
type WeatherReport struct {
	Location     string  `json:"location"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	TemperatureC float64 `json:"temperature"`
	TemperatureF float64 `json:"temperature_fahrenheit"`
	Humidity     float64 `json:"humidity"`
	WindSpeed    float64 `json:"wind_speed"`
	WeatherCode  int     `json:"weather_code"`
	Conditions   string  `json:"conditions"`
}

// weatherCodes maps WMO interpretation codes to readable conditions
var weatherCodes = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Slight snow",
	73: "Moderate snow",
	75: "Heavy snow",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// OpenMeteo resolves city names and fetches current weather conditions.
// No API key is required by the provider.
type OpenMeteo struct {
	geocodingBaseURL string
	weatherBaseURL   string
	userAgent        string
	client           *http.Client
}

// NewOpenMeteo creates an Open-Meteo adapter
func NewOpenMeteo(geocodingBaseURL, weatherBaseURL, userAgent string, timeout time.Duration) *OpenMeteo {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = "FinChat/0.1"
	}
	return &OpenMeteo{
		geocodingBaseURL: strings.TrimRight(geocodingBaseURL, "/"),
		weatherBaseURL:   strings.TrimRight(weatherBaseURL, "/"),
		userAgent:        userAgent,
		client:           &http.Client{Timeout: timeout},
	}
}

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Admin1    string  `json:"admin1"`
		Country   string  `json:"country"`
	} `json:"results"`
}

type forecastResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
		WindSpeed   float64 `json:"wind_speed_10m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
}

// Geocode resolves a city name to coordinates and a display name.
// Fails not-found when the provider returns zero matches.
func (p *OpenMeteo) Geocode(ctx context.Context, city string) (lat, lon float64, location string, err error) {
	query := url.Values{}
	query.Set("name", city)
	query.Set("count", "1")
	query.Set("language", "en")
	query.Set("format", "json")

	var resp geocodeResponse
	if err := p.getJSON(ctx, p.geocodingBaseURL+"/v1/search", query, &resp); err != nil {
		return 0, 0, "", err
	}

	if len(resp.Results) == 0 {
		return 0, 0, "", NotFoundf("city '%s' not found", city)
	}

	result := resp.Results[0]

	// Build full location name: city, region, country
	parts := []string{result.Name}
	if result.Admin1 != "" {
		parts = append(parts, result.Admin1)
	}
	if result.Country != "" {
		parts = append(parts, result.Country)
	}

	return result.Latitude, result.Longitude, strings.Join(parts, ", "), nil
}

// CurrentWeather resolves a city and fetches its current conditions
func (p *OpenMeteo) CurrentWeather(ctx context.Context, city string) (*WeatherReport, error) {
	logger.Info("fetching weather for city: %s", city)

	lat, lon, location, err := p.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}
	logger.Debug("resolved %s to %.4f,%.4f (%s)", city, lat, lon, location)

	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%g", lat))
	query.Set("longitude", fmt.Sprintf("%g", lon))
	query.Set("current", "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code")
	query.Set("temperature_unit", "celsius")
	query.Set("wind_speed_unit", "kmh")

	var resp forecastResponse
	if err := p.getJSON(ctx, p.weatherBaseURL+"/v1/forecast", query, &resp); err != nil {
		return nil, err
	}

	current := resp.Current
	conditions, ok := weatherCodes[current.WeatherCode]
	if !ok {
		conditions = "Unknown"
	}

	return &WeatherReport{
		Location:     location,
		Latitude:     lat,
		Longitude:    lon,
		TemperatureC: current.Temperature,
		TemperatureF: fahrenheit(current.Temperature),
		Humidity:     current.Humidity,
		WindSpeed:    current.WindSpeed,
		WeatherCode:  current.WeatherCode,
		Conditions:   conditions,
	}, nil
}

// fahrenheit converts celsius, rounded to one decimal
func fahrenheit(celsius float64) float64 {
	return math.Round((celsius*9/5+32)*10) / 10
}

// getJSON issues a GET request and decodes the JSON response
func (p *OpenMeteo) getJSON(ctx context.Context, endpoint string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return Unavailablef("failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return Unavailablef("open-meteo request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Unavailablef("open-meteo returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return Unavailablef("failed to parse open-meteo response: %v", err)
	}
	return nil
}
