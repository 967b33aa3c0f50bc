package cloudevents

import (
	"time"
)

// Event types published by the zone service
const (
	ZoneCreated = "zones.zone.created"
	ZoneUpdated = "zones.zone.updated"
	ZoneDeleted = "zones.zone.deleted"

	LocationCreated = "zones.location.created"
	LocationUpdated = "zones.location.updated"
	LocationDeleted = "zones.location.deleted"

	TariffUpserted = "zones.tariff.upserted"
	TariffDeleted  = "zones.tariff.deleted"

	PickupPointCreated  = "zones.pickup-point.created"
	PickupPointRelinked = "zones.pickup-point.relinked"
	PickupPointDeleted  = "zones.pickup-point.deleted"

	OrderRecorded = "zones.order.recorded"
	ConfigUpdated = "zones.config.updated"
	SiteChanged   = "zones.site.changed"
)

// SourceZoneService is the CloudEvents source of every event emitted here
const SourceZoneService = "/zones/zone-service"

// TopicZoneEvents is the Kafka topic all zone events are written to
const TopicZoneEvents = "zone-service.events"

// ZoneCloudEvent is a CloudEvents v1.0 envelope
type ZoneCloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	Type            string      `json:"type"`
	Source          string      `json:"source"`
	Subject         string      `json:"subject,omitempty"`
	ID              string      `json:"id"`
	Time            time.Time   `json:"time"`
	DataContentType string      `json:"datacontenttype"`
	Data            interface{} `json:"data"`

	CorrelationID string `json:"correlationid,omitempty"`
}

// EntityData is the payload for create, update and delete events keyed by integer id
type EntityData struct {
	ID     int64       `json:"id"`
	SiteID *int64      `json:"site_id,omitempty"`
	Entity interface{} `json:"entity,omitempty"`
}

// SiteChangedData is emitted when a refresh detects a changed site
type SiteChangedData struct {
	SiteID        int64    `json:"site_id"`
	ChangedFields []string `json:"changed_fields"`
	Relinked      bool     `json:"relinked"`
}
