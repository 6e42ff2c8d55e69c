package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestWeatherService(baseURL string) *WeatherService {
	ws := NewWeatherService(35.1932, -79.4675, quietLogger())
	ws.baseURL = baseURL
	return ws
}

func TestCurrentConditions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "latitude=35.1932")
		assert.Contains(t, r.URL.RawQuery, "current_weather=true")
		w.Write([]byte(`{"current_weather": {"temperature": 72.4, "windspeed": 10.2, "weathercode": 0}}`))
	}))
	defer server.Close()

	ws := newTestWeatherService(server.URL)
	assert.Equal(t, "Clear, 72°F, wind 10 mph", ws.CurrentConditions(context.Background()))
}

func TestCurrentConditionsBestEffort(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "Server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "Garbage body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			ws := newTestWeatherService(server.URL)
			assert.Empty(t, ws.CurrentConditions(context.Background()), "weather failures must stay silent")
		})
	}
}

func TestDescribeWeatherCode(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{0, "Clear"},
		{2, "Partly cloudy"},
		{45, "Foggy"},
		{53, "Drizzle"},
		{63, "Rain"},
		{73, "Snow"},
		{80, "Rain showers"},
		{95, "Stormy"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, describeWeatherCode(tt.code), "code %d", tt.code)
	}
}
