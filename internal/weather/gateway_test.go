package weather

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateway_Report(t *testing.T) {
	forecast := flat(48, 27, 0)
	forecast[3].Precipitation = 6.2
	inner := &stubProvider{
		current: Current{Temperature: 27, Humidity: 88, UVIndex: 4, Condition: "Lluvia"},
		hourly:  forecast,
	}
	g := NewGateway(inner, 0, 0, constJitter(0.5))

	report, err := g.Report(context.Background())
	require.NoError(t, err)

	assert.Len(t, report.Hourly, DefaultForecastHours)
	assert.Equal(t, []string{"heavy-rain"}, alertIDs(report.Alerts))
	assert.Equal(t, []string{"umbrella", "humidity"}, recIDs(report.Recommendations))
}

func TestGateway_ReportFailsOnProviderError(t *testing.T) {
	g := NewGateway(&stubProvider{currentErr: errors.New("dial tcp: timeout")}, 0, 0, nil)
	_, err := g.Report(context.Background())
	require.Error(t, err)

	g = NewGateway(&stubProvider{hourlyErr: errors.New("status 502")}, 0, 0, nil)
	_, err = g.Report(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hourly forecast")
}

func TestGateway_ReportEmptyForecast(t *testing.T) {
	g := NewGateway(&stubProvider{current: Current{Temperature: 22}}, 0, 0, nil)
	report, err := g.Report(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, report.Hourly)
	assert.Empty(t, report.Alerts)
}

func TestGateway_Stations(t *testing.T) {
	g := NewGateway(&stubProvider{current: Current{Temperature: 30, Humidity: 65}}, 10.5, -66.9, constJitter(0.5))

	stations, err := g.Stations(context.Background())
	require.NoError(t, err)
	require.Len(t, stations, 5)
	assert.Equal(t, Coordinates{Lat: 10.5, Lng: -66.9}, stations[0].Coordinates)

	g = NewGateway(&stubProvider{currentErr: errors.New("down")}, 0, 0, nil)
	_, err = g.Stations(context.Background())
	require.Error(t, err)
}
