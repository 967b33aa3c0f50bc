package application

import "time"

// ListZonesQuery pages through zones, optionally scoped to a country
type ListZonesQuery struct {
	Skip    int
	Limit   int
	Country string
}

// CreateZoneCommand creates a delivery zone
type CreateZoneCommand struct {
	Name        string
	Description string
	Coordinates [][]float64
	Color       string
	SiteID      *int64
	Country     *string
}

// UpdateZoneCommand changes a zone. Nil fields keep their current value.
type UpdateZoneCommand struct {
	ID          int64
	Name        *string
	Description *string
	Coordinates [][]float64
	Color       *string
	SiteID      *int64
	Country     *string
}

// ListLocationsQuery pages through locations, optionally those of one zone
type ListLocationsQuery struct {
	Skip   int
	Limit  int
	ZoneID *int64
}

// CreateLocationCommand creates a location
type CreateLocationCommand struct {
	Name        string
	Description string
	Latitude    float64
	Longitude   float64
	Address     string
	ZoneID      *int64
}

// UpdateLocationCommand changes a location. Nil fields keep their current value.
type UpdateLocationCommand struct {
	ID          int64
	Name        *string
	Description *string
	Latitude    *float64
	Longitude   *float64
	Address     *string
	ZoneID      *int64
}

// ListTariffsQuery lists tariffs by site or country
type ListTariffsQuery struct {
	SiteID  *int64
	Country string
}

// CreateTariffCommand creates the tariff of a site
type CreateTariffCommand struct {
	SiteID         int64
	TariffMode     string
	PricePerKm     float64
	MinFee         float64
	MaxFee         *float64
	BaseDistanceKm *float64
	SurchargePerKm *float64
}

// UpdateTariffCommand changes a tariff. Nil fields keep their current value.
type UpdateTariffCommand struct {
	SiteID         int64
	TariffMode     *string
	PricePerKm     *float64
	MinFee         *float64
	MaxFee         *float64
	BaseDistanceKm *float64
	SurchargePerKm *float64
}

// ListPickupPointsQuery lists pickup points by site or country
type ListPickupPointsQuery struct {
	SiteID  *int64
	Country string
}

// PickupPointAttributes are the provider attributes of a registration.
// Blank values are completed from the site on relink.
type PickupPointAttributes struct {
	Lat              float64
	Lng              float64
	Address          string
	City             string
	Phone            string
	ZipCode          string
	Status           int
	Name             string
	ContactName      string
	ContactEmail     string
	PreparationTime  int
	ExternalID       string
	StoreID          *int64
	DefaultTip       *int
	HandshakeEnabled *bool
	ReturnEnabled    *bool
	HandoffEnabled   *bool
}

// CreatePickupPointCommand registers a site as a pickup point
type CreatePickupPointCommand struct {
	SiteID int64
	PickupPointAttributes
}

// RelinkPickupPointCommand pushes updated attributes of a registered pickup point
type RelinkPickupPointCommand struct {
	ID     int64
	SiteID int64
	PickupPointAttributes
}

// CreateOrderCommand records a storefront order
type CreateOrderCommand struct {
	Latitude         float64
	Longitude        float64
	Address          string
	FormattedAddress string
	FirstName        string
	LastName         string
	Phone            string
	Email            string
	Complement       string
	City             string
	Country          string
	Comments         string
	OrderDate        *time.Time
}

// ListOrdersQuery filters the order listing
type ListOrdersQuery struct {
	StartDate string
	EndDate   string
	Cities    []string
	Country   string
}
