package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var ErrNotFound = errors.New("location not found")

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geocoder resolves Brazilian postal codes (CEP) and city names to
// coordinates. Resolution failure is recoverable: callers degrade to a
// coarser estimate, never fail a listing because of it.
type Geocoder interface {
	Resolve(ctx context.Context, postalCode string) (Coordinates, error)
	ResolveCity(ctx context.Context, city, state string) (Coordinates, error)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type cepResponse struct {
	Cep  string `json:"cep"`
	Lat  string `json:"lat"`
	Lng  string `json:"lng"`
	City string `json:"city"`
}

func (c *Client) Resolve(ctx context.Context, postalCode string) (Coordinates, error) {
	cep := normalizeCEP(postalCode)
	if len(cep) != 8 {
		return Coordinates{}, fmt.Errorf("invalid postal code %q: %w", postalCode, ErrNotFound)
	}

	var body cepResponse
	if err := c.getJSON(ctx, c.baseURL+"/json/"+cep, &body); err != nil {
		return Coordinates{}, err
	}
	return parseCoords(body.Lat, body.Lng)
}

func (c *Client) ResolveCity(ctx context.Context, city, state string) (Coordinates, error) {
	if strings.TrimSpace(city) == "" {
		return Coordinates{}, ErrNotFound
	}

	q := url.Values{}
	q.Set("city", city)
	if state != "" {
		q.Set("state", state)
	}

	var body cepResponse
	if err := c.getJSON(ctx, c.baseURL+"/json/city?"+q.Encode(), &body); err != nil {
		return Coordinates{}, err
	}
	return parseCoords(body.Lat, body.Lng)
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func parseCoords(lat, lng string) (Coordinates, error) {
	latF, err1 := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	lngF, err2 := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err1 != nil || err2 != nil || (latF == 0 && lngF == 0) {
		return Coordinates{}, ErrNotFound
	}
	return Coordinates{Latitude: latF, Longitude: lngF}, nil
}

func normalizeCEP(cep string) string {
	var b strings.Builder
	for _, r := range cep {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
