package capability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	contractx "github.com/prajwalh/krishi-mitra/agent/contract"
)

const weatherPayload = `{
  "current": {"temp_c": 28.4, "condition": {"text": "Partly cloudy"}},
  "forecast": {"forecastday": [
    {"date": "2026-03-01", "day": {"avgtemp_c": 27.0, "condition": {"text": "Patchy rain nearby"}}},
    {"date": "2026-03-02", "day": {"avgtemp_c": 29.5, "condition": {"text": "Sunny"}}}
  ]}
}`

func TestWeatherClientForecast(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		fmt.Fprint(w, weatherPayload)
	}))
	t.Cleanup(server.Close)

	client := NewWeatherClient(
		WeatherConfig{BaseURL: server.URL, APIKey: "key-1", ForecastDays: 7},
		WithWeatherHTTPClient(server.Client()),
	)

	res, err := client.Forecast(context.Background(), contractx.WeatherRequest{City: "Mysuru"})
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if res.Status != contractx.StatusSuccess {
		t.Fatalf("status = %s", res.Status)
	}
	if !strings.Contains(res.Report, "Mysuru") || !strings.Contains(res.Report, "28") {
		t.Fatalf("report = %q", res.Report)
	}
	if len(res.Forecast) != 2 {
		t.Fatalf("forecast days = %d, want 2", len(res.Forecast))
	}
	if res.Forecast[0].Date != "2026-03-01" {
		t.Fatalf("forecast[0] = %+v", res.Forecast[0])
	}

	if gotPath != "/forecast.json" {
		t.Fatalf("path = %q", gotPath)
	}
	if got := gotQuery["q"]; len(got) != 1 || got[0] != "Mysuru" {
		t.Fatalf("q = %v", got)
	}
	if got := gotQuery["days"]; len(got) != 1 || got[0] != "7" {
		t.Fatalf("days = %v", got)
	}
}

func TestWeatherClientRequiresAPIKey(t *testing.T) {
	t.Parallel()

	client := NewWeatherClient(WeatherConfig{})
	res, err := client.Forecast(context.Background(), contractx.WeatherRequest{City: "Mysuru"})
	if !errors.Is(err, contractx.ErrCapability) {
		t.Fatalf("error = %v, want ErrCapability", err)
	}
	if res.Status != contractx.StatusError {
		t.Fatalf("status = %s, want error", res.Status)
	}
}

func TestWeatherClientUpstreamError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	client := NewWeatherClient(
		WeatherConfig{BaseURL: server.URL, APIKey: "bad"},
		WithWeatherHTTPClient(server.Client()),
	)

	if _, err := client.Forecast(context.Background(), contractx.WeatherRequest{City: "Mysuru"}); !errors.Is(err, contractx.ErrCapability) {
		t.Fatalf("error = %v, want ErrCapability", err)
	}
}
