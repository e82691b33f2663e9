package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/soyeahso/voyant/internal/logging"
)

// WeatherUnavailable is returned as the tool output whenever the forecast
// cannot be fetched. It is a degradation value, not an error: the model folds
// it into its answer and the turn continues.
const WeatherUnavailable = "Current weather data is unavailable at the moment."

const (
	weatherToolName   = "get_weather_forecast"
	weatherDefaultURL = "http://api.weatherapi.com/v1"
	weatherDays       = 14
)

// WeatherTool looks up a 14-day forecast for a location via weatherapi.com.
type WeatherTool struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     *logging.Logger
}

// NewWeatherTool creates the forecast tool. baseURL is overridable for tests;
// empty selects the public API.
func NewWeatherTool(apiKey, baseURL string, timeout time.Duration, log *logging.Logger) *WeatherTool {
	if baseURL == "" {
		baseURL = weatherDefaultURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &WeatherTool{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log.Sub("tools.weather"),
	}
}

func (w *WeatherTool) Name() string { return weatherToolName }

func (w *WeatherTool) Description() string {
	return "Get the weather forecast for a given location. Can only give the forecast for the next 14 days."
}

func (w *WeatherTool) InputSchema() string {
	return `{"type":"object","properties":{"location":{"type":"string","description":"The location to get the forecast for."}},"required":["location"]}`
}

type weatherInput struct {
	Location string `json:"location"`
}

type weatherForecastDay struct {
	Date string `json:"date"`
	Day  struct {
		MaxTempC     float64         `json:"maxtemp_c"`
		MinTempC     float64         `json:"mintemp_c"`
		ChanceOfRain json.RawMessage `json:"daily_chance_of_rain"`
	} `json:"day"`
}

type weatherResponse struct {
	Forecast struct {
		ForecastDay []weatherForecastDay `json:"forecastday"`
	} `json:"forecast"`
}

// Execute fetches the forecast and renders one line per day. Any upstream
// failure (missing key, network error, bad status, malformed body) yields
// the WeatherUnavailable sentinel with a nil error.
func (w *WeatherTool) Execute(ctx context.Context, input string) (string, error) {
	var in weatherInput
	if err := json.Unmarshal([]byte(input), &in); err != nil || in.Location == "" {
		w.log.Debug().Str("input", input).Msg("bad weather tool input")
		return WeatherUnavailable, nil
	}
	if w.apiKey == "" {
		w.log.Debug().Msg("weather API key not configured")
		return WeatherUnavailable, nil
	}

	q := url.Values{}
	q.Set("key", w.apiKey)
	q.Set("q", in.Location)
	q.Set("days", fmt.Sprint(weatherDays))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"/forecast.json?"+q.Encode(), nil)
	if err != nil {
		return WeatherUnavailable, nil
	}

	resp, err := w.client.Do(req)
	if err != nil {
		w.log.Debug().Err(err).Str("location", in.Location).Msg("weather request failed")
		return WeatherUnavailable, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil || resp.StatusCode != http.StatusOK {
		w.log.Debug().Int("status", resp.StatusCode).Msg("weather API error")
		return WeatherUnavailable, nil
	}

	var fc weatherResponse
	if err := json.Unmarshal(body, &fc); err != nil || len(fc.Forecast.ForecastDay) == 0 {
		w.log.Debug().Err(err).Msg("malformed weather response")
		return WeatherUnavailable, nil
	}

	lines := make([]string, 0, len(fc.Forecast.ForecastDay))
	for _, day := range fc.Forecast.ForecastDay {
		chance := strings.Trim(string(day.Day.ChanceOfRain), `"`)
		lines = append(lines, fmt.Sprintf("[%s] High: %.1f°C, Low: %.1f°C, Chance of rain: %s",
			day.Date, day.Day.MaxTempC, day.Day.MinTempC, chance))
	}
	return strings.Join(lines, "\n"), nil
}
