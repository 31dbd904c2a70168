package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zen-systems/askroute/pkg/adapter"
)

const defaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherMap looks up current conditions by place name.
type OpenWeatherMap struct {
	apiKey     string
	baseURL    string
	units      string
	httpClient *http.Client
}

// OpenWeatherOption configures an OpenWeatherMap client.
type OpenWeatherOption func(*OpenWeatherMap)

// WithBaseURL overrides the API root.
func WithBaseURL(baseURL string) OpenWeatherOption {
	return func(o *OpenWeatherMap) {
		if baseURL != "" {
			o.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithUnits sets metric, imperial or standard units.
func WithUnits(units string) OpenWeatherOption {
	return func(o *OpenWeatherMap) {
		if units != "" {
			o.units = units
		}
	}
}

// WithTimeout bounds each HTTP round-trip.
func WithTimeout(d time.Duration) OpenWeatherOption {
	return func(o *OpenWeatherMap) {
		o.httpClient.Timeout = d
	}
}

// NewOpenWeatherMap creates a client. The API key is required.
func NewOpenWeatherMap(apiKey string, opts ...OpenWeatherOption) (*OpenWeatherMap, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openweather API key is required")
	}
	o := &OpenWeatherMap{
		apiKey:     apiKey,
		baseURL:    defaultOpenWeatherURL,
		units:      "metric",
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

type owmResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Rain map[string]float64 `json:"rain"`
	Snow map[string]float64 `json:"snow"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
}

type owmError struct {
	Message string `json:"message"`
}

// Lookup fetches current weather for a location. HTTP 404 is reported as
// StatusNotFound; every other failure as StatusFailed.
func (o *OpenWeatherMap) Lookup(ctx context.Context, location string) Lookup {
	ctx, span := tracer.Start(ctx, "weather.lookup")
	defer span.End()
	span.SetAttributes(attribute.String("location", location))

	q := url.Values{}
	q.Set("q", location)
	q.Set("appid", o.apiKey)
	q.Set("units", o.units)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return Failed(location, fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return Failed(location, fmt.Errorf("openweather request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Failed(location, fmt.Errorf("failed to read response body: %w", err))
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return NotFound(location, errors.New(errorMessage(body, "city not found")))
	case resp.StatusCode != http.StatusOK:
		return Failed(location, &adapter.AdapterError{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("openweather returned status %d: %s", resp.StatusCode, errorMessage(body, http.StatusText(resp.StatusCode))),
		})
	}

	var data owmResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return Failed(location, fmt.Errorf("failed to parse response: %w", err))
	}
	return Found(location, formatReport(location, &data, o.units))
}

func errorMessage(body []byte, fallback string) string {
	var e owmError
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	return fallback
}

// formatReport renders the response as the plain-text report handed to the
// summarizer.
func formatReport(location string, d *owmResponse, units string) string {
	tempUnit, speedUnit := "°C", "m/s"
	switch units {
	case "imperial":
		tempUnit, speedUnit = "°F", "mph"
	case "standard":
		tempUnit = "K"
	}

	status := "unknown"
	if len(d.Weather) > 0 {
		status = d.Weather[0].Description
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "In %s, the current weather is as follows:\n", location)
	if d.Name != "" {
		place := d.Name
		if d.Sys.Country != "" {
			place += ", " + d.Sys.Country
		}
		fmt.Fprintf(&sb, "Resolved place: %s\n", place)
	}
	fmt.Fprintf(&sb, "Detailed status: %s\n", status)
	fmt.Fprintf(&sb, "Wind speed: %g %s, direction: %d°\n", d.Wind.Speed, speedUnit, d.Wind.Deg)
	fmt.Fprintf(&sb, "Humidity: %d%%\n", d.Main.Humidity)
	sb.WriteString("Temperature:\n")
	fmt.Fprintf(&sb, "  - Current: %.1f%s\n", d.Main.Temp, tempUnit)
	fmt.Fprintf(&sb, "  - High: %.1f%s\n", d.Main.TempMax, tempUnit)
	fmt.Fprintf(&sb, "  - Low: %.1f%s\n", d.Main.TempMin, tempUnit)
	fmt.Fprintf(&sb, "  - Feels like: %.1f%s\n", d.Main.FeelsLike, tempUnit)
	fmt.Fprintf(&sb, "Rain: %s\n", formatPrecip(d.Rain))
	fmt.Fprintf(&sb, "Snow: %s\n", formatPrecip(d.Snow))
	fmt.Fprintf(&sb, "Cloud cover: %d%%", d.Clouds.All)
	return sb.String()
}

func formatPrecip(p map[string]float64) string {
	if len(p) == 0 {
		return "none"
	}
	var parts []string
	for _, window := range []string{"1h", "3h"} {
		if v, ok := p[window]; ok {
			parts = append(parts, fmt.Sprintf("%g mm in the last %s", v, window))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}
