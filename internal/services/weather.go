package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// WeatherService pre-fills a new round's conditions text when the player
// doesn't supply one. Best effort only: any failure yields an empty string
// and the round simply starts without conditions.
type WeatherService struct {
	httpClient *http.Client
	logger     *logrus.Logger
	baseURL    string
	latitude   float64
	longitude  float64
}

func NewWeatherService(latitude, longitude float64, logger *logrus.Logger) *WeatherService {
	return &WeatherService{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		baseURL:    "https://api.open-meteo.com/v1",
		latitude:   latitude,
		longitude:  longitude,
	}
}

type openMeteoResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
}

// CurrentConditions fetches current weather and renders it as the short
// free-text conditions string a Round carries.
func (ws *WeatherService) CurrentConditions(ctx context.Context) string {
	url := fmt.Sprintf("%s/forecast?latitude=%.4f&longitude=%.4f&current_weather=true&temperature_unit=fahrenheit&windspeed_unit=mph",
		ws.baseURL, ws.latitude, ws.longitude)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ""
	}

	resp, err := ws.httpClient.Do(req)
	if err != nil {
		ws.logger.WithError(err).Warn("Weather lookup failed")
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		ws.logger.WithField("status", resp.StatusCode).Warn("Weather lookup rejected")
		return ""
	}

	var weather openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&weather); err != nil {
		ws.logger.WithError(err).Warn("Weather response unreadable")
		return ""
	}

	return fmt.Sprintf("%s, %.0f°F, wind %.0f mph",
		describeWeatherCode(weather.CurrentWeather.WeatherCode),
		weather.CurrentWeather.Temperature,
		weather.CurrentWeather.WindSpeed)
}

// describeWeatherCode maps WMO weather codes to the handful of phrases a
// caddie would actually say.
func describeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "Clear"
	case code <= 3:
		return "Partly cloudy"
	case code <= 48:
		return "Foggy"
	case code <= 57:
		return "Drizzle"
	case code <= 67:
		return "Rain"
	case code <= 77:
		return "Snow"
	case code <= 82:
		return "Rain showers"
	default:
		return "Stormy"
	}
}
