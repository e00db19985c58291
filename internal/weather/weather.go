// Package weather talks to the Open-Meteo forecast API and derives the
// campus view from it: alerts, recommendations and virtual stations.
package weather

import (
	"context"
	"time"
)

// Default campus coordinates.
const (
	DefaultLatitude  = 9.3468229
	DefaultLongitude = -65.3365034

	// DefaultForecastHours is the horizon shown on the dashboard.
	DefaultForecastHours = 48
	// AlertWindowHours is the horizon alerts are computed over.
	AlertWindowHours = 24
	// RecommendationWindowHours is the horizon the umbrella advice looks at.
	RecommendationWindowHours = 8
)

// Provider supplies raw conditions. The Open-Meteo client and its cache
// decorator both implement it.
type Provider interface {
	Current(ctx context.Context) (Current, error)
	Hourly(ctx context.Context, hours int) ([]HourlyForecast, error)
}

// Current conditions at the campus coordinates.
type Current struct {
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	Precipitation float64 `json:"precipitation"`
	Condition     string  `json:"condition"`
	UVIndex       float64 `json:"uvIndex"`
	WindSpeed     float64 `json:"windSpeed"`
}

// HourlyForecast is one hour of the forecast.
type HourlyForecast struct {
	Time          time.Time `json:"time"`
	Temperature   float64   `json:"temperature"`
	Precipitation float64   `json:"precipitation"`
	Condition     string    `json:"condition"`
}

// Alert types.
const (
	AlertWarning = "warning"
	AlertSevere  = "severe"
)

// Alert is a derived weather warning. ID is stable across requests so
// clients can remember dismissals.
type Alert struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Recommendation is a derived piece of advice for students.
type Recommendation struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Location is a position on the campus map, in percent of its width/height.
type Location struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Coordinates are geographic coordinates.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Station is a virtual measurement point on the campus map.
type Station struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Location    Location    `json:"location"`
	Temperature float64     `json:"temperature"`
	Condition   string      `json:"condition"`
	Humidity    float64     `json:"humidity"`
	Coordinates Coordinates `json:"coordinates"`
}

// Report is everything the dashboard needs in one response.
type Report struct {
	Current         Current          `json:"current"`
	Hourly          []HourlyForecast `json:"hourly"`
	Alerts          []Alert          `json:"alerts"`
	Recommendations []Recommendation `json:"recommendations"`
}
