package thermometer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultEndpoint = "http://127.0.0.1:8000/temperature"

// JSONWebService fetches {"temperature": "21.5"} from an HTTP endpoint.
type JSONWebService struct {
	Endpoint string

	client *http.Client
}

func NewJSONWebService(endpoint string) *JSONWebService {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &JSONWebService{Endpoint: endpoint, client: &http.Client{Timeout: 10 * time.Second}}
}

// TemperatureReading is the payload served by the endpoint. The value is a string.
type TemperatureReading struct {
	Temperature *string `json:"temperature"`
}

func (meter *JSONWebService) ReadTemperature(ctx context.Context) (float64, error) {
	temp, err := meter.fetch(ctx)
	if err != nil {
		log.Warn().Err(err).Str("endpoint", meter.Endpoint).Msg("Failed to get data from resource")
		return 0, fmt.Errorf("%w: %v", ErrTempReading, err)
	}
	return temp, nil
}

func (meter *JSONWebService) fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, meter.Endpoint, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Add("Accept", "application/json")

	resp, err := meter.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("request failed with status %s", resp.Status)
	}

	reading := new(TemperatureReading)
	if err = json.NewDecoder(resp.Body).Decode(reading); err != nil {
		return 0, fmt.Errorf("failed to parse json: %w", err)
	}
	if reading.Temperature == nil {
		return 0, fmt.Errorf("value temperature does not exist")
	}

	temp, err := strconv.ParseFloat(*reading.Temperature, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse temperature: %w", err)
	}
	return temp, nil
}

func (meter *JSONWebService) Shutdown() {
	meter.client.CloseIdleConnections()
}
