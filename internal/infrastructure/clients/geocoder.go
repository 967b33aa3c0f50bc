package clients

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/location-manager/zone-service/internal/domain"
)

// DefaultGeocodingURL is the Google Maps geocoding endpoint
const DefaultGeocodingURL = "https://maps.googleapis.com/maps/api/geocode/json"

type geocodeReply struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// GoogleGeocoder resolves addresses with the Google Maps geocoding API
type GoogleGeocoder struct {
	apiKey string
	url    string
	caller *caller
}

// NewGoogleGeocoder creates a geocoder. An empty endpoint uses DefaultGeocodingURL.
func NewGoogleGeocoder(apiKey, endpoint string, opts Options) *GoogleGeocoder {
	if endpoint == "" {
		endpoint = DefaultGeocodingURL
	}
	return &GoogleGeocoder{
		apiKey: apiKey,
		url:    endpoint,
		caller: newCaller("geocoding", opts),
	}
}

// Geocode returns the first match for address, or nil when Google finds none
func (g *GoogleGeocoder) Geocode(ctx context.Context, address, city, country string) (*domain.GeocodedAddress, error) {
	if g.apiKey == "" {
		return nil, domain.ErrGeocodingNotConfigured
	}

	query := url.Values{}
	query.Set("address", fullAddress(address, city, country))
	query.Set("key", g.apiKey)

	resp, err := g.caller.do(ctx, "geocode", http.MethodGet, g.url+"?"+query.Encode(), nil, nil, true)
	if err != nil {
		return nil, err
	}

	var reply geocodeReply
	if err := resp.decode(&reply); err != nil {
		return nil, err
	}
	if reply.Status != "OK" || len(reply.Results) == 0 {
		g.caller.logger.Debug("Address not geocoded", "status", reply.Status, "message", reply.ErrorMessage)
		return nil, nil
	}

	first := reply.Results[0]
	formatted := first.FormattedAddress
	if formatted == "" {
		formatted = address
	}
	return &domain.GeocodedAddress{
		Latitude:         first.Geometry.Location.Lat,
		Longitude:        first.Geometry.Location.Lng,
		FormattedAddress: formatted,
	}, nil
}

func fullAddress(address, city, country string) string {
	parts := []string{address}
	for _, p := range []string{city, country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
