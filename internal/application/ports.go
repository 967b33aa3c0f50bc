package application

import (
	"context"
	"time"

	"github.com/location-manager/zone-service/internal/domain"
)

// SitesSource fetches the unfiltered site list from the upstream sites API
type SitesSource interface {
	FetchAll(ctx context.Context) ([]domain.Site, error)
}

// SiteProvider serves the current filtered site list. SiteCache implements it.
type SiteProvider interface {
	GetAvailableSites(ctx context.Context, forceRefresh bool) ([]domain.Site, error)
}

// Snapshot is one materialised site list and the time it was fetched
type Snapshot struct {
	Sites     []domain.Site `json:"sites"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// SnapshotStore mirrors the last good snapshot outside the process.
// Load returns nil, nil when nothing has been mirrored yet.
type SnapshotStore interface {
	Save(ctx context.Context, snapshot Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
}

// Geocoder resolves a free-text address.
// It returns nil, nil when the address cannot be geocoded and
// domain.ErrGeocodingNotConfigured when no credential is set.
type Geocoder interface {
	Geocode(ctx context.Context, address, city, country string) (*domain.GeocodedAddress, error)
}

// LogisticsValidator asks the logistics provider whether it can serve a delivery
type LogisticsValidator interface {
	Validate(ctx context.Context, req domain.ValidationRequest) (*domain.LogisticsValidation, error)
}

// PickupPointProvider manages pickup point registrations at the logistics provider
type PickupPointProvider interface {
	Create(ctx context.Context, reg domain.ProviderPickupPoint) (int64, error)
	Update(ctx context.Context, providerID int64, reg domain.ProviderPickupPoint) error
	Delete(ctx context.Context, providerID int64) error
	List(ctx context.Context) ([]map[string]interface{}, error)
}

// EventRecorder writes domain events to the outbox
type EventRecorder interface {
	Record(ctx context.Context, aggregateType, aggregateID, eventType string, data interface{}) error
}

// Aggregate types used as outbox partition keys
const (
	aggregateZone        = "zone"
	aggregateLocation    = "location"
	aggregateTariff      = "tariff"
	aggregatePickupPoint = "pickup-point"
	aggregateOrder       = "order"
	aggregateConfig      = "config"
	aggregateSite        = "site"
)
