package domain

import "context"

// ZoneRepository defines persistence operations for zones.
// Find methods return nil, nil when no record matches.
type ZoneRepository interface {
	// Create assigns the next zone id and stores the zone
	Create(ctx context.Context, zone *Zone) error
	Update(ctx context.Context, zone *Zone) error
	FindByID(ctx context.Context, id int64) (*Zone, error)
	FindBySiteID(ctx context.Context, siteID int64) (*Zone, error)
	// FindAll lists zones by id. A limit of zero returns every zone.
	FindAll(ctx context.Context, skip, limit int) ([]Zone, error)
	Delete(ctx context.Context, id int64) error
}

// LocationRepository defines persistence operations for locations.
// FindByID returns nil, nil when no record matches.
type LocationRepository interface {
	// Create assigns the next location id and stores the location
	Create(ctx context.Context, location *Location) error
	Update(ctx context.Context, location *Location) error
	FindByID(ctx context.Context, id int64) (*Location, error)
	// FindAll lists locations by id, restricted to zoneID when it is set.
	// A limit of zero returns every match.
	FindAll(ctx context.Context, zoneID *int64, skip, limit int) ([]Location, error)
	Delete(ctx context.Context, id int64) error
}

// TariffRepository defines persistence operations for tariffs, keyed by site id
type TariffRepository interface {
	Create(ctx context.Context, tariff *Tariff) error
	Update(ctx context.Context, tariff *Tariff) error
	FindBySiteID(ctx context.Context, siteID int64) (*Tariff, error)
	FindAll(ctx context.Context) ([]Tariff, error)
	Delete(ctx context.Context, siteID int64) error
}

// PickupPointRepository defines persistence operations for pickup points
type PickupPointRepository interface {
	Create(ctx context.Context, pp *PickupPoint) error
	Update(ctx context.Context, pp *PickupPoint) error
	FindByID(ctx context.Context, id int64) (*PickupPoint, error)
	FindBySiteID(ctx context.Context, siteID int64) (*PickupPoint, error)
	FindAll(ctx context.Context) ([]PickupPoint, error)
	Delete(ctx context.Context, id int64) error
}

// OrderRepository defines persistence operations for orders
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	FindAll(ctx context.Context) ([]Order, error)
}

// ConfigRepository stores the AppConfig singleton.
// Get returns nil, nil until a configuration has been saved.
type ConfigRepository interface {
	Get(ctx context.Context) (*AppConfig, error)
	Save(ctx context.Context, cfg *AppConfig) error
}
