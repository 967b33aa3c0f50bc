package application

import (
	"time"

	"github.com/location-manager/zone-service/internal/domain"
)

// ZoneDTO represents a zone in responses
type ZoneDTO struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Coordinates [][]float64 `json:"coordinates"`
	Color       string      `json:"color"`
	SiteID      *int64      `json:"site_id"`
	Country     *string     `json:"country"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   *time.Time  `json:"updated_at,omitempty"`
}

// LocationDTO represents a location in responses
type LocationDTO struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Address     string     `json:"address,omitempty"`
	ZoneID      *int64     `json:"polygon_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// ZoneMatchDTO is one zone considered by an address resolution
type ZoneMatchDTO struct {
	Zone     ZoneDTO      `json:"zone"`
	IsInside bool         `json:"is_inside"`
	Site     *domain.Site `json:"site"`
}

// DecisionResult is the outcome of resolving an address. At most one of
// LogisticsValidation and DeliveryPricing is set.
type DecisionResult struct {
	Address             string                      `json:"address"`
	FormattedAddress    *string                     `json:"formatted_address"`
	Latitude            *float64                    `json:"latitude"`
	Longitude           *float64                    `json:"longitude"`
	Geocoded            bool                        `json:"geocoded"`
	IsInsideAny         bool                        `json:"is_inside_any"`
	MatchingZones       []ZoneMatchDTO              `json:"matching_zones"`
	LogisticsValidation *domain.LogisticsValidation `json:"logistics_validation"`
	DeliveryPricing     *domain.Quote               `json:"delivery_pricing"`
	ExceedsMaxDistance  *bool                       `json:"exceeds_max_distance"`
	DistanceToSiteKm    *float64                    `json:"distance_to_site_km"`
}

// TariffDTO represents a site tariff in responses
type TariffDTO struct {
	SiteID         int64      `json:"site_id"`
	TariffMode     string     `json:"tariff_mode"`
	PricePerKm     float64    `json:"price_per_km"`
	MinFee         float64    `json:"min_fee"`
	MaxFee         *float64   `json:"max_fee"`
	BaseDistanceKm *float64   `json:"base_distance_km"`
	SurchargePerKm *float64   `json:"surcharge_per_km"`
	Country        string     `json:"country"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// PickupPointDTO represents a pickup point in responses
type PickupPointDTO struct {
	ID                     int64      `json:"id"`
	SiteID                 int64      `json:"site_id"`
	ProviderPickingPointID *int64     `json:"provider_picking_point_id"`
	ExternalID             string     `json:"external_id"`
	Name                   string     `json:"name"`
	Address                string     `json:"address"`
	Lat                    float64    `json:"lat"`
	Lng                    float64    `json:"lng"`
	City                   string     `json:"city"`
	Phone                  string     `json:"phone"`
	Status                 int        `json:"status"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              *time.Time `json:"updated_at,omitempty"`
}

// OrderDTO represents an order in responses
type OrderDTO struct {
	ID               int64     `json:"id"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	Address          string    `json:"address"`
	FormattedAddress string    `json:"formatted_address,omitempty"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email"`
	Complement       string    `json:"complement,omitempty"`
	City             string    `json:"city,omitempty"`
	Country          string    `json:"country,omitempty"`
	Comments         string    `json:"comments,omitempty"`
	OrderDate        time.Time `json:"order_date"`
	CreatedAt        time.Time `json:"created_at"`
}

// OrderListDTO is a filtered order listing with per-zone counts
type OrderListDTO struct {
	Orders    []OrderDTO     `json:"orders"`
	Total     int            `json:"total"`
	ZoneStats map[string]int `json:"zone_stats"`
}

// AppConfigDTO represents the operator configuration in responses
type AppConfigDTO struct {
	ValidationMode        string     `json:"validation_mode"`
	ColombiaDeliveryMode  string     `json:"colombia_delivery_mode"`
	MaxDeliveryDistanceKm *float64   `json:"max_delivery_distance_km"`
	UpdatedAt             *time.Time `json:"updated_at,omitempty"`
}
