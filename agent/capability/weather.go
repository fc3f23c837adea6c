package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/prajwalh/krishi-mitra/agent/contract"
)

type WeatherConfig struct {
	BaseURL      string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.weatherapi.com/v1"`
	APIKey       string        `envconfig:"API_KEY" split_words:"true"`
	ForecastDays int           `envconfig:"FORECAST_DAYS" split_words:"true" default:"7"`
	Timeout      time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"15s"`
}

// WeatherClient wraps the weatherapi.com forecast endpoint.
type WeatherClient struct {
	baseURL string
	apiKey  string
	days    int
	httpc   *http.Client
}

type WeatherOption func(*WeatherClient)

func WithWeatherHTTPClient(c *http.Client) WeatherOption {
	return func(w *WeatherClient) {
		if c != nil {
			w.httpc = c
		}
	}
}

func NewWeatherClient(cfg WeatherConfig, opts ...WeatherOption) *WeatherClient {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.weatherapi.com/v1"
	}
	days := cfg.ForecastDays
	if days <= 0 {
		days = 7
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	w := &WeatherClient{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		days:    days,
		httpc:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

type weatherAPIResponse struct {
	Current struct {
		TempC     float64 `json:"temp_c"`
		Condition struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				AvgTempC  float64 `json:"avgtemp_c"`
				Condition struct {
					Text string `json:"text"`
				} `json:"condition"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (w *WeatherClient) Forecast(ctx context.Context, req contractx.WeatherRequest) (contractx.WeatherResult, error) {
	if w.apiKey == "" {
		return contractx.WeatherResult{Status: contractx.StatusError},
			fmt.Errorf("%w: weather api key not configured", contractx.ErrCapability)
	}
	city := strings.TrimSpace(req.City)
	if city == "" {
		return contractx.WeatherResult{Status: contractx.StatusError},
			fmt.Errorf("%w: city is required", contractx.ErrCapability)
	}

	query := url.Values{}
	query.Set("key", w.apiKey)
	query.Set("q", city)
	query.Set("days", fmt.Sprintf("%d", w.days))
	query.Set("tp", "24")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/forecast.json?"+query.Encode(), nil)
	if err != nil {
		return contractx.WeatherResult{Status: contractx.StatusError},
			fmt.Errorf("%w: build weather request: %v", contractx.ErrCapability, err)
	}

	resp, err := w.httpc.Do(httpReq)
	if err != nil {
		return contractx.WeatherResult{Status: contractx.StatusError},
			fmt.Errorf("%w: fetch weather: %v", contractx.ErrCapability, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return contractx.WeatherResult{Status: contractx.StatusError},
			fmt.Errorf("%w: weather service returned status %d", contractx.ErrCapability, resp.StatusCode)
	}

	var data weatherAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return contractx.WeatherResult{Status: contractx.StatusError},
			fmt.Errorf("%w: decode weather response: %v", contractx.ErrCapability, err)
	}

	report := fmt.Sprintf("The weather in %s is %s with a temperature of %.0f°C.",
		city, strings.ToLower(data.Current.Condition.Text), data.Current.TempC)

	forecast := make([]contractx.DailyForecast, 0, len(data.Forecast.ForecastDay))
	for _, day := range data.Forecast.ForecastDay {
		forecast = append(forecast, contractx.DailyForecast{
			Date:    day.Date,
			Summary: fmt.Sprintf("%s, around %.0f°C", day.Day.Condition.Text, day.Day.AvgTempC),
		})
	}

	return contractx.WeatherResult{
		Status:   contractx.StatusSuccess,
		Report:   report,
		Forecast: forecast,
	}, nil
}
