package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/anishmaharjan/caremap/internal/core/domain"
)

// DefaultEndpoint is the public Overpass API interpreter.
const DefaultEndpoint = "https://overpass-api.de/api/interpreter"

// Client fetches hospital elements from an Overpass API endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// New creates a Client. An empty endpoint falls back to the public
// interpreter.
func New(endpoint string, timeout time.Duration) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type   string            `json:"type"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *overpassCenter   `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type overpassCenter struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// FetchHospitals queries hospital nodes, ways, and relations around the
// center. A transport failure means the provider is unreachable; a non-2xx
// status is treated as "nothing available" and returns an empty result so
// the caller can still finish its run.
func (c *Client) FetchHospitals(ctx context.Context, center domain.GeoPoint, radiusKm float64) ([]domain.SourceElement, error) {
	radius := int(radiusKm * 1000)
	query := fmt.Sprintf(`[out:json][timeout:25];
(
  node["amenity"="hospital"](around:%d,%f,%f);
  way["amenity"="hospital"](around:%d,%f,%f);
  relation["amenity"="hospital"](around:%d,%f,%f);
);
out center tags;`,
		radius, center.Lat, center.Lon,
		radius, center.Lat, center.Lon,
		radius, center.Lat, center.Lon)

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		slog.Warn("overpass returned non-success status, treating as empty",
			"status", resp.StatusCode)
		return nil, nil
	}

	var parsed overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrProviderUnreachable, err)
	}

	elements := make([]domain.SourceElement, 0, len(parsed.Elements))
	for _, e := range parsed.Elements {
		el := domain.SourceElement{
			Type: e.Type,
			Lat:  e.Lat,
			Lon:  e.Lon,
			Tags: e.Tags,
		}
		if e.Center != nil {
			el.Center = &domain.GeoPoint{Lat: e.Center.Lat, Lon: e.Center.Lon}
		}
		elements = append(elements, el)
	}
	return elements, nil
}
