package weather

import "math/rand/v2"

type stationSite struct {
	name     string
	location Location
	dLat     float64
	dLng     float64
}

var campusSites = []stationSite{
	{name: "Main Campus", location: Location{X: 30, Y: 40}},
	{name: "Science Building", location: Location{X: 60, Y: 30}, dLat: 0.01, dLng: 0.01},
	{name: "Student Center", location: Location{X: 45, Y: 70}, dLat: -0.01, dLng: -0.01},
	{name: "Sports Complex", location: Location{X: 80, Y: 60}, dLat: 0.02, dLng: -0.01},
	{name: "Library", location: Location{X: 20, Y: 60}, dLat: -0.02, dLng: 0.01},
}

// Jitter returns a value in [0, 1).
type Jitter func() float64

// Stations builds the virtual campus stations around (lat, lng). The main
// campus station reports current conditions exactly; the others vary by up
// to ±1 °C and ±2.5 % humidity.
func Stations(current Current, lat, lng float64, jitter Jitter) []Station {
	if jitter == nil {
		jitter = rand.Float64
	}

	stations := make([]Station, 0, len(campusSites))
	for i, site := range campusSites {
		st := Station{
			ID:          i + 1,
			Name:        site.name,
			Location:    site.location,
			Temperature: current.Temperature,
			Condition:   current.Condition,
			Humidity:    current.Humidity,
			Coordinates: Coordinates{Lat: lat + site.dLat, Lng: lng + site.dLng},
		}
		if i > 0 {
			st.Temperature += jitter()*2 - 1
			st.Humidity += jitter()*5 - 2.5
		}
		stations = append(stations, st)
	}
	return stations
}
