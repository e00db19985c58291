package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/AnshRaj112/clima-backend/internal/weather"
)

// WeatherService produces the dashboard weather data.
type WeatherService interface {
	Report(ctx context.Context) (weather.Report, error)
	Stations(ctx context.Context) ([]weather.Station, error)
}

// WeatherHandler serves the weather dashboard endpoints.
type WeatherHandler struct {
	service WeatherService
	logger  *slog.Logger
}

func NewWeatherHandler(service WeatherService, logger *slog.Logger) *WeatherHandler {
	return &WeatherHandler{service: service, logger: logger}
}

// GetWeather handles GET /api/weather: current conditions, hourly forecast,
// alerts and recommendations.
func (h *WeatherHandler) GetWeather(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Report(r.Context())
	if err != nil {
		h.logger.Error("weather report", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch weather data")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GetStations handles GET /api/weather/stations.
func (h *WeatherHandler) GetStations(w http.ResponseWriter, r *http.Request) {
	stations, err := h.service.Stations(r.Context())
	if err != nil {
		h.logger.Error("weather stations", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch weather stations")
		return
	}
	writeJSON(w, http.StatusOK, stations)
}
