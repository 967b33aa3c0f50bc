package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/location-manager/zone-service/internal/geo"
)

// DefaultZoneColor is used when a zone is created without a color
const DefaultZoneColor = "#FF0000"

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Zone is a delivery polygon optionally bound to one site
type Zone struct {
	ID          int64       `bson:"_id" json:"id"`
	Name        string      `bson:"name" json:"name"`
	Description string      `bson:"description,omitempty" json:"description,omitempty"`
	Coordinates []geo.Point `bson:"coordinates" json:"coordinates"`
	Color       string      `bson:"color" json:"color"`
	SiteID      *int64      `bson:"site_id,omitempty" json:"site_id,omitempty"`
	Country     *Country    `bson:"country,omitempty" json:"country,omitempty"`
	CreatedAt   time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt   *time.Time  `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// NewZone builds and validates a zone
func NewZone(name, description string, coordinates []geo.Point, color string, siteID *int64, country *Country) (*Zone, error) {
	if color == "" {
		color = DefaultZoneColor
	}
	zone := &Zone{
		Name:        strings.TrimSpace(name),
		Description: description,
		Coordinates: coordinates,
		Color:       color,
		SiteID:      siteID,
		Country:     country,
		CreatedAt:   time.Now().UTC(),
	}
	if err := zone.Validate(); err != nil {
		return nil, err
	}
	return zone, nil
}

// Validate checks the zone invariants
func (z *Zone) Validate() error {
	if z.Name == "" {
		return ErrZoneNameRequired
	}
	if !hexColor.MatchString(z.Color) {
		return fmt.Errorf("%w: %q", ErrInvalidColor, z.Color)
	}
	if err := geo.ValidateVertices(z.Coordinates); err != nil {
		return fmt.Errorf("invalid coordinates: %w", err)
	}
	if z.Country != nil && !z.Country.IsKnown() {
		return fmt.Errorf("%w: %q", ErrInvalidCountryFilter, *z.Country)
	}
	return nil
}

// Touch stamps the update time
func (z *Zone) Touch() {
	now := time.Now().UTC()
	z.UpdatedAt = &now
}

// Contains reports whether the point lies inside the zone
func (z *Zone) Contains(lat, lng float64) bool {
	return geo.PointInPolygon(lat, lng, z.Coordinates)
}

// CentroidDistanceKm returns the Haversine distance from the point to the zone centroid
func (z *Zone) CentroidDistanceKm(lat, lng float64) float64 {
	cLat, cLng := geo.Centroid(z.Coordinates)
	return geo.HaversineKm(lat, lng, cLat, cLng)
}

// BelongsTo reports whether the zone is bound to siteID
func (z *Zone) BelongsTo(siteID int64) bool {
	return z.SiteID != nil && *z.SiteID == siteID
}

// ResolveCountry returns the explicit country, else the country of the bound site.
// It returns CountryUnknown when neither is available.
func (z *Zone) ResolveCountry(sites map[int64]Site) Country {
	if z.Country != nil && z.Country.IsKnown() {
		return *z.Country
	}
	if z.SiteID == nil {
		return CountryUnknown
	}
	site, ok := sites[*z.SiteID]
	if !ok {
		return CountryUnknown
	}
	return site.Country()
}

// PlaceholderOffset is the half side, in degrees, of the placeholder square drawn around a site
const PlaceholderOffset = 0.001

// PlaceholderZone synthesises a small display-only square centred on a site with no zone.
// Callers must check HasLocation first.
func PlaceholderZone(site Site) *Zone {
	lat, lng := site.LatLng()
	o := PlaceholderOffset
	siteID := site.SiteID
	return &Zone{
		ID:          0,
		Name:        "Sede más cercana: " + site.DisplayName(),
		Description: "Sede seleccionada automáticamente por proximidad",
		Coordinates: []geo.Point{
			{lat + o, lng + o},
			{lat + o, lng - o},
			{lat - o, lng - o},
			{lat - o, lng + o},
			{lat + o, lng + o},
		},
		Color:     "#FFA500",
		SiteID:    &siteID,
		CreatedAt: time.Now().UTC(),
	}
}

// ToPoints converts raw [lat, lng] pairs. Each pair must have exactly two values.
func ToPoints(raw [][]float64) ([]geo.Point, error) {
	points := make([]geo.Point, len(raw))
	for i, pair := range raw {
		if len(pair) != 2 {
			return nil, fmt.Errorf("invalid coordinates: vertex %d must be a [lat, lng] pair", i)
		}
		points[i] = geo.Point{pair[0], pair[1]}
	}
	return points, nil
}

// FromPoints converts points back to raw pairs
func FromPoints(points []geo.Point) [][]float64 {
	raw := make([][]float64, len(points))
	for i, p := range points {
		raw[i] = []float64{p[0], p[1]}
	}
	return raw
}
