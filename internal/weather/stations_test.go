package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constJitter(v float64) Jitter {
	return func() float64 { return v }
}

func TestStations_Layout(t *testing.T) {
	cur := Current{Temperature: 28, Humidity: 70, Condition: "Nublado"}
	stations := Stations(cur, DefaultLatitude, DefaultLongitude, constJitter(0.5))
	require.Len(t, stations, 5)

	names := []string{"Main Campus", "Science Building", "Student Center", "Sports Complex", "Library"}
	for i, st := range stations {
		assert.Equal(t, i+1, st.ID)
		assert.Equal(t, names[i], st.Name)
		assert.Equal(t, "Nublado", st.Condition)
		// Midpoint jitter means no variation.
		assert.InDelta(t, 28, st.Temperature, 1e-9)
		assert.InDelta(t, 70, st.Humidity, 1e-9)
	}

	assert.Equal(t, Location{X: 30, Y: 40}, stations[0].Location)
	assert.Equal(t, Coordinates{Lat: DefaultLatitude, Lng: DefaultLongitude}, stations[0].Coordinates)
	assert.InDelta(t, DefaultLatitude+0.02, stations[3].Coordinates.Lat, 1e-9)
	assert.InDelta(t, DefaultLongitude-0.01, stations[3].Coordinates.Lng, 1e-9)
}

func TestStations_JitterBounds(t *testing.T) {
	cur := Current{Temperature: 28, Humidity: 70}

	low := Stations(cur, 0, 0, constJitter(0))
	high := Stations(cur, 0, 0, constJitter(0.999999))

	assert.InDelta(t, 28, low[0].Temperature, 0, "main campus is exact")
	for i := 1; i < 5; i++ {
		assert.InDelta(t, 27, low[i].Temperature, 1e-9)
		assert.InDelta(t, 67.5, low[i].Humidity, 1e-9)
		assert.InDelta(t, 29, high[i].Temperature, 1e-5)
		assert.InDelta(t, 72.5, high[i].Humidity, 1e-5)
	}
}

func TestStations_DefaultJitterStaysInRange(t *testing.T) {
	cur := Current{Temperature: 20, Humidity: 50}
	for range 50 {
		for _, st := range Stations(cur, 0, 0, nil)[1:] {
			assert.InDelta(t, 20, st.Temperature, 1)
			assert.InDelta(t, 50, st.Humidity, 2.5)
		}
	}
}
