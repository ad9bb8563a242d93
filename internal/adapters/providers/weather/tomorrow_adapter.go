package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sitebrief/toolboxtalk/backend/internal/domain/entities"
	"github.com/sitebrief/toolboxtalk/backend/internal/domain/providers"
	apperrors "github.com/sitebrief/toolboxtalk/backend/pkg/errors"
)

const (
	tomorrowRealtimeURL = "https://api.tomorrow.io/v4/weather/realtime"
	defaultHTTPTimeout  = 8 * time.Second
)

// TomorrowWeatherProvider implements the WeatherProvider using the
// Tomorrow.io realtime weather API.
type TomorrowWeatherProvider struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewTomorrowWeatherProvider creates a new Tomorrow.io weather provider.
func NewTomorrowWeatherProvider(apiKey string) providers.WeatherProvider {
	return NewTomorrowWeatherProviderWithOptions(apiKey, tomorrowRealtimeURL, nil)
}

// NewTomorrowWeatherProviderWithOptions allows overriding base URL and HTTP client (used for tests).
func NewTomorrowWeatherProviderWithOptions(apiKey, baseURL string, httpClient *http.Client) providers.WeatherProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = tomorrowRealtimeURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &TomorrowWeatherProvider{
		apiKey:     apiKey,
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// Current fetches the realtime conditions for the given coordinates and
// maps them to the site weather shape the meeting form expects.
func (t *TomorrowWeatherProvider) Current(ctx context.Context, coords entities.Coordinates) (*entities.SiteWeather, error) {
	if t.apiKey == "" {
		return nil, apperrors.NewExternalError("weather api key is required", nil)
	}

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", coords.Latitude, coords.Longitude))
	params.Set("units", "metric")
	params.Set("apikey", t.apiKey)

	reqURL := fmt.Sprintf("%s?%s", t.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build weather request", err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalError("weather request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewExternalError(fmt.Sprintf("weather request returned status %d", resp.StatusCode), nil)
	}

	var payload realtimeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.NewExternalError("failed to decode weather response", err)
	}

	values := payload.Data.Values
	return &entities.SiteWeather{
		WeatherConditions: DescribeWeatherCode(values.WeatherCode),
		Temperature:       values.Temperature,
		RoadConditions:    DeriveRoadConditions(values.WeatherCode, values.PrecipitationProbability),
	}, nil
}

type realtimeResponse struct {
	Data realtimeData `json:"data"`
}

type realtimeData struct {
	Values realtimeValues `json:"values"`
}

type realtimeValues struct {
	Temperature              float64 `json:"temperature"`
	WeatherCode              int     `json:"weatherCode"`
	PrecipitationProbability float64 `json:"precipitationProbability"`
}
