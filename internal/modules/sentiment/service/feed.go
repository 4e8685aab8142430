package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const feedURL = "https://api.alternative.me/fng/"

// Point — одна точка индекса страха/жадности, значения приходят строками.
type Point struct {
	Value           int
	TimeUntilUpdate int
}

type Feed interface {
	// Fetch возвращает точки как их отдаёт API: самая свежая первой.
	Fetch(ctx context.Context, limit int) ([]Point, error)
}

type fngPoint struct {
	Value           string `json:"value"`
	TimeUntilUpdate string `json:"time_until_update,omitempty"`
}

type fngResponse struct {
	Data     []fngPoint `json:"data"`
	Metadata struct {
		Error *string `json:"error,omitempty"`
	} `json:"metadata"`
}

type HTTPFeed struct {
	http *http.Client
}

func NewHTTPFeed() *HTTPFeed {
	return &HTTPFeed{http: &http.Client{Timeout: 5 * time.Second}}
}

func (f *HTTPFeed) Fetch(ctx context.Context, limit int) ([]Point, error) {
	url := fmt.Sprintf("%s?limit=%d&format=json", feedURL, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fng new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fng do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("fng http %d", resp.StatusCode)
	}

	var raw fngResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("fng decode: %w", err)
	}
	if raw.Metadata.Error != nil {
		return nil, fmt.Errorf("fng api error: %s", *raw.Metadata.Error)
	}

	points := make([]Point, 0, len(raw.Data))
	for _, d := range raw.Data {
		v, err := strconv.Atoi(d.Value)
		if err != nil {
			return nil, fmt.Errorf("fng bad value %q: %w", d.Value, err)
		}
		t, _ := strconv.Atoi(d.TimeUntilUpdate) // поле есть только у первой точки
		points = append(points, Point{Value: v, TimeUntilUpdate: t})
	}
	return points, nil
}
