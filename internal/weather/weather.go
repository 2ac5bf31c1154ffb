// Package weather fetches current conditions from an Open-Meteo compatible
// forecast API.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrUnavailable wraps every failure. Callers show one message regardless of cause.
var ErrUnavailable = errors.New("weather unavailable")

// Message is what users see when a lookup fails.
const Message = "Something went wrong while fetching the weather."

// Current is the subset of current_weather the pages display.
type Current struct {
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"windspeed"`
	Time        string  `json:"time"`
}

type forecastResponse struct {
	CurrentWeather *Current `json:"current_weather"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Current looks up the weather at the given coordinates, passed as the user typed them.
func (c *Client) Current(ctx context.Context, latitude, longitude string) (Current, error) {
	lat, err := parseCoordinate(latitude, 90)
	if err != nil {
		return Current{}, fmt.Errorf("%w: latitude: %v", ErrUnavailable, err)
	}
	lon, err := parseCoordinate(longitude, 180)
	if err != nil {
		return Current{}, fmt.Errorf("%w: longitude: %v", ErrUnavailable, err)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return Current{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current_weather", "true")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Current{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Current{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Current{}, fmt.Errorf("%w: forecast API returned %d", ErrUnavailable, resp.StatusCode)
	}

	var body forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Current{}, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if body.CurrentWeather == nil {
		return Current{}, fmt.Errorf("%w: response has no current_weather", ErrUnavailable)
	}
	return *body.CurrentWeather, nil
}

func parseCoordinate(s string, limit float64) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || v < -limit || v > limit {
		return 0, fmt.Errorf("%v out of range", v)
	}
	return v, nil
}
