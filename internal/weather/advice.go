package weather

import (
	"fmt"
	"strconv"
)

// Alert and recommendation thresholds.
const (
	highTemperatureC  = 30.0
	lowTemperatureC   = 10.0
	heavyRainMM       = 5.0
	umbrellaRainMM    = 0.5
	highUVIndex       = 5.0
	veryHighUVIndex   = 8.0
	strongWindKmh     = 20.0
	highHumidityPct   = 80.0
	maxRecommendation = 3
	minRecommendation = 2
)

// Alerts derives warnings from the next 24 hours of forecast and the current
// UV index. It never fails; an empty forecast yields only the UV check.
func Alerts(current Current, forecast []HourlyForecast) []Alert {
	window := truncate(forecast, AlertWindowHours)
	alerts := []Alert{}

	if maxTemp, ok := maxOf(window, func(h HourlyForecast) float64 { return h.Temperature }); ok && maxTemp > highTemperatureC {
		alerts = append(alerts, Alert{
			ID:    "high-temperature",
			Type:  AlertWarning,
			Title: "Alerta de Temperaturas Altas",
			Description: fmt.Sprintf("Se espera que la temperatura alcance los %.1f°C hoy. "+
				"Mantente hidratado y evita exponerte al sol por mucho tiempo.", maxTemp),
		})
	}

	if maxPrecip, ok := maxOf(window, func(h HourlyForecast) float64 { return h.Precipitation }); ok && maxPrecip > heavyRainMM {
		alerts = append(alerts, Alert{
			ID:    "heavy-rain",
			Type:  AlertSevere,
			Title: "Se prevén fuertes lluvias",
			Description: fmt.Sprintf("Se esperan fuertes lluvias de hasta %.1fmm. "+
				"Considera llevar contigo un paraguas, y toma previsiones para evitar retrasos.", maxPrecip),
		})
	}

	if current.UVIndex > veryHighUVIndex {
		alerts = append(alerts, Alert{
			ID:    "high-uv",
			Type:  AlertWarning,
			Title: "Indice UV Alto",
			Description: fmt.Sprintf("El indice UV es muy alto: (%s). "+
				"Usa protector solar y ponte ropa que te proteja contra los rayos del sol si planeas pasar tiempo al aire libre.",
				strconv.FormatFloat(current.UVIndex, 'f', -1, 64)),
		})
	}

	return alerts
}

// Recommendations derives at most three pieces of advice. When fewer than
// two specific ones apply, a generic one naming the current condition is added.
func Recommendations(current Current, forecast []HourlyForecast) []Recommendation {
	recs := []Recommendation{}

	switch {
	case current.Temperature > highTemperatureC:
		recs = append(recs, Recommendation{
			ID:          "hydrate",
			Kind:        "temperature",
			Title:       "Mantente hidratado",
			Description: "Hoy habrán altas temperaturas, bebe agua constantemente",
		})
	case current.Temperature < lowTemperatureC:
		recs = append(recs, Recommendation{
			ID:          "coat",
			Kind:        "temperature",
			Title:       "Usa abrigo",
			Description: "Se esperan bajas temperaturas, cubrete.",
		})
	}

	window := truncate(forecast, RecommendationWindowHours)
	if maxPrecip, ok := maxOf(window, func(h HourlyForecast) float64 { return h.Precipitation }); ok && maxPrecip > umbrellaRainMM {
		recs = append(recs, Recommendation{
			ID:          "umbrella",
			Kind:        "precipitation",
			Title:       "Trae un paraguas",
			Description: fmt.Sprintf("Se esperan precipitaciones de %.1fmm", maxPrecip),
		})
	}

	if current.UVIndex > highUVIndex {
		level := "Alto"
		if current.UVIndex > veryHighUVIndex {
			level = "Muy Alto"
		}
		recs = append(recs, Recommendation{
			ID:          "sun-protection",
			Kind:        "uv",
			Title:       "Protegete del sol",
			Description: fmt.Sprintf("Indice UV es %.0f (%s).", current.UVIndex, level),
		})
	}

	if current.WindSpeed > strongWindKmh {
		recs = append(recs, Recommendation{
			ID:          "wind",
			Kind:        "wind",
			Title:       "Fuertes vientos",
			Description: "Toma previsiones contra el fuerte viento.",
		})
	}

	if current.Humidity > highHumidityPct {
		recs = append(recs, Recommendation{
			ID:          "humidity",
			Kind:        "humidity",
			Title:       "Humedad Alta",
			Description: "Los niveles de humedad pueden afectar la sensación de confort.",
		})
	}

	if len(recs) < minRecommendation {
		recs = append(recs, Recommendation{
			ID:          "check-conditions",
			Kind:        "general",
			Title:       "Revisa las condiciones climaticas frecuentemente.",
			Description: "Condición climatica actual: " + current.Condition,
		})
	}

	return truncate(recs, maxRecommendation)
}

func truncate[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func maxOf(forecast []HourlyForecast, value func(HourlyForecast) float64) (float64, bool) {
	if len(forecast) == 0 {
		return 0, false
	}
	m := value(forecast[0])
	for _, h := range forecast[1:] {
		m = max(m, value(h))
	}
	return m, true
}
