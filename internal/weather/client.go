package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/AnshRaj112/clima-backend/internal/observability"
)

// DefaultBaseURL is the Open-Meteo forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// Open-Meteo returns hourly times without a zone; with no timezone
// parameter they are GMT.
const openMeteoTimeLayout = "2006-01-02T15:04"

var _ Provider = (*Client)(nil)

// Client implements Provider using the Open-Meteo forecast API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	latitude   float64
	longitude  float64
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	BaseURL   string
	Latitude  float64
	Longitude float64
	Timeout   time.Duration
}

// NewClient creates an Open-Meteo client.
func NewClient(opts Options, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Latitude == 0 && opts.Longitude == 0 {
		opts.Latitude, opts.Longitude = DefaultLatitude, DefaultLongitude
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    opts.BaseURL,
		latitude:   opts.Latitude,
		longitude:  opts.Longitude,
		metrics:    metrics,
		logger:     logger,
	}
}

// Current fetches current conditions plus the hourly UV index, whose first
// value stands in for the current UV index.
func (c *Client) Current(ctx context.Context) (Current, error) {
	params := c.baseParams()
	params.Set("current", "temperature_2m,relative_humidity_2m,precipitation,weather_code,wind_speed_10m")
	params.Set("hourly", "uv_index")

	var resp forecastResponse
	if err := c.doRequest(ctx, params, "current", &resp); err != nil {
		return Current{}, err
	}
	if resp.Current == nil {
		c.observe("current", "error")
		return Current{}, fmt.Errorf("open-meteo response has no current block")
	}

	var uv float64
	if len(resp.Hourly.UVIndex) > 0 && resp.Hourly.UVIndex[0] != nil {
		uv = *resp.Hourly.UVIndex[0]
	}

	cur := resp.Current
	c.observe("current", "success")
	return Current{
		Temperature:   cur.Temperature,
		Humidity:      cur.RelativeHumidity,
		Precipitation: cur.Precipitation,
		Condition:     Condition(cur.WeatherCode),
		UVIndex:       uv,
		WindSpeed:     cur.WindSpeed,
	}, nil
}

// Hourly fetches up to hours entries of the hourly forecast.
func (c *Client) Hourly(ctx context.Context, hours int) ([]HourlyForecast, error) {
	if hours <= 0 {
		hours = DefaultForecastHours
	}
	params := c.baseParams()
	params.Set("hourly", "temperature_2m,precipitation,weather_code")
	params.Set("forecast_hours", strconv.Itoa(hours))

	var resp forecastResponse
	if err := c.doRequest(ctx, params, "hourly", &resp); err != nil {
		return nil, err
	}

	h := resp.Hourly
	n := min(hours, len(h.Time))
	forecast := make([]HourlyForecast, 0, n)
	for i := range n {
		ts, err := time.ParseInLocation(openMeteoTimeLayout, h.Time[i], time.UTC)
		if err != nil {
			c.observe("hourly", "error")
			return nil, fmt.Errorf("parse forecast time %q: %w", h.Time[i], err)
		}
		forecast = append(forecast, HourlyForecast{
			Time:          ts,
			Temperature:   valueAt(h.Temperature, i),
			Precipitation: valueAt(h.Precipitation, i),
			Condition:     Condition(int(valueAt(h.WeatherCode, i))),
		})
	}

	c.observe("hourly", "success")
	return forecast, nil
}

func (c *Client) baseParams() url.Values {
	return url.Values{
		"latitude":  {strconv.FormatFloat(c.latitude, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(c.longitude, 'f', -1, 64)},
	}
}

func (c *Client) doRequest(ctx context.Context, params url.Values, method string, out *forecastResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.logger.Debug("open-meteo request", "method", method, "duration", time.Since(start))
	if err != nil {
		c.observe(method, "error")
		return fmt.Errorf("%s weather request: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.observe(method, "error")
		return fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.observe(method, "error")
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) observe(method, outcome string) {
	if c.metrics != nil {
		c.metrics.WeatherRequests.WithLabelValues(method, outcome).Inc()
	}
}

func valueAt(values []*float64, i int) float64 {
	if i < len(values) && values[i] != nil {
		return *values[i]
	}
	return 0
}

// Open-Meteo API response types. Hourly series may contain nulls.

type forecastResponse struct {
	Current *currentBlock `json:"current"`
	Hourly  hourlyBlock   `json:"hourly"`
}

type currentBlock struct {
	Temperature      float64 `json:"temperature_2m"`
	RelativeHumidity float64 `json:"relative_humidity_2m"`
	Precipitation    float64 `json:"precipitation"`
	WeatherCode      int     `json:"weather_code"`
	WindSpeed        float64 `json:"wind_speed_10m"`
}

type hourlyBlock struct {
	Time          []string   `json:"time"`
	Temperature   []*float64 `json:"temperature_2m"`
	Precipitation []*float64 `json:"precipitation"`
	WeatherCode   []*float64 `json:"weather_code"`
	UVIndex       []*float64 `json:"uv_index"`
}
