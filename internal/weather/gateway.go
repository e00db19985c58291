package weather

import (
	"context"
	"fmt"
)

// Gateway assembles dashboard reports and stations from a Provider.
type Gateway struct {
	provider  Provider
	latitude  float64
	longitude float64
	jitter    Jitter
}

// NewGateway creates a gateway for the given coordinates. jitter may be nil.
func NewGateway(provider Provider, latitude, longitude float64, jitter Jitter) *Gateway {
	if latitude == 0 && longitude == 0 {
		latitude, longitude = DefaultLatitude, DefaultLongitude
	}
	return &Gateway{provider: provider, latitude: latitude, longitude: longitude, jitter: jitter}
}

// Report fetches current conditions and the 48h forecast, then derives alerts
// and recommendations from them. Either provider call failing fails the report.
func (g *Gateway) Report(ctx context.Context) (Report, error) {
	current, err := g.provider.Current(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("current conditions: %w", err)
	}
	hourly, err := g.provider.Hourly(ctx, DefaultForecastHours)
	if err != nil {
		return Report{}, fmt.Errorf("hourly forecast: %w", err)
	}
	if hourly == nil {
		hourly = []HourlyForecast{}
	}

	return Report{
		Current:         current,
		Hourly:          hourly,
		Alerts:          Alerts(current, hourly),
		Recommendations: Recommendations(current, hourly),
	}, nil
}

// Stations returns the virtual campus stations.
func (g *Gateway) Stations(ctx context.Context) ([]Station, error) {
	current, err := g.provider.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("current conditions: %w", err)
	}
	return Stations(current, g.latitude, g.longitude, g.jitter), nil
}
