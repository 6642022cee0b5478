package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWeatherServer(t *testing.T, geocodeBody, forecastBody string, forecastCalls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/search":
			fmt.Fprint(w, geocodeBody)
		case "/v1/forecast":
			if forecastCalls != nil {
				*forecastCalls++
			}
			fmt.Fprint(w, forecastBody)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestCurrentWeather(t *testing.T) {
	geocode := `{"results":[{"name":"Tokyo","latitude":35.6895,"longitude":139.6917,"admin1":"Tokyo","country":"Japan"}]}`
	forecast := `{"current":{"temperature_2m":21.5,"relative_humidity_2m":60,"wind_speed_10m":12.3,"weather_code":2}}`
	server := newWeatherServer(t, geocode, forecast, nil)
	defer server.Close()

	p := NewOpenMeteo(server.URL, server.URL, "test-agent", 5*time.Second)
	report, err := p.CurrentWeather(context.Background(), "Tokyo")
	require.NoError(t, err)

	assert.Equal(t, "Tokyo, Tokyo, Japan", report.Location)
	assert.Equal(t, 35.6895, report.Latitude)
	assert.Equal(t, 21.5, report.TemperatureC)
	assert.Equal(t, 70.7, report.TemperatureF)
	assert.Equal(t, 60.0, report.Humidity)
	assert.Equal(t, 12.3, report.WindSpeed)
	assert.Equal(t, 2, report.WeatherCode)
	assert.Equal(t, "Partly cloudy", report.Conditions)
}

func TestCurrentWeatherCityNotFound(t *testing.T) {
	forecastCalls := 0
	server := newWeatherServer(t, `{"results":[]}`, `{}`, &forecastCalls)
	defer server.Close()

	p := NewOpenMeteo(server.URL, server.URL, "", 5*time.Second)
	_, err := p.CurrentWeather(context.Background(), "Nowhereville")
	require.Error(t, err)

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, 0, forecastCalls, "forecast must not be called when geocoding finds nothing")
}

func TestCurrentWeatherUnknownCode(t *testing.T) {
	geocode := `{"results":[{"name":"Lima","latitude":-12.04,"longitude":-77.03,"country":"Peru"}]}`
	forecast := `{"current":{"temperature_2m":18.0,"relative_humidity_2m":80,"wind_speed_10m":5.0,"weather_code":42}}`
	server := newWeatherServer(t, geocode, forecast, nil)
	defer server.Close()

	p := NewOpenMeteo(server.URL, server.URL, "", 5*time.Second)
	report, err := p.CurrentWeather(context.Background(), "Lima")
	require.NoError(t, err)

	assert.Equal(t, "Lima, Peru", report.Location)
	assert.Equal(t, "Unknown", report.Conditions)
}

func TestCurrentWeatherUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewOpenMeteo(server.URL, server.URL, "", 5*time.Second)
	_, err := p.CurrentWeather(context.Background(), "Tokyo")
	require.Error(t, err)
	assert.Equal(t, KindUnavailable, KindOf(err))
}

func TestGeocodeSendsUserAgent(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, `{"results":[{"name":"Oslo","latitude":59.91,"longitude":10.75,"country":"Norway"}]}`)
	}))
	defer server.Close()

	p := NewOpenMeteo(server.URL, server.URL, "custom-agent", 5*time.Second)
	_, _, location, err := p.Geocode(context.Background(), "Oslo")
	require.NoError(t, err)

	assert.Equal(t, "custom-agent", gotAgent)
	assert.Equal(t, "Oslo, Norway", location)
}

func TestFahrenheitRounding(t *testing.T) {
	tests := []struct {
		celsius float64
		want    float64
	}{
		{0, 32},
		{100, 212},
		{21.5, 70.7},
		{-40, -40},
		{36.6, 97.9},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fahrenheit(tt.celsius), "celsius %v", tt.celsius)
	}
}
