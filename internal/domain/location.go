package domain

import (
	"fmt"
	"strings"
	"time"
)

// Location is a named point of interest, optionally placed inside a zone
type Location struct {
	ID          int64      `bson:"_id" json:"id"`
	Name        string     `bson:"name" json:"name"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	Latitude    float64    `bson:"latitude" json:"latitude"`
	Longitude   float64    `bson:"longitude" json:"longitude"`
	Address     string     `bson:"address,omitempty" json:"address,omitempty"`
	ZoneID      *int64     `bson:"polygon_id,omitempty" json:"polygon_id,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// NewLocation builds and validates a location
func NewLocation(name, description string, lat, lng float64, address string, zoneID *int64) (*Location, error) {
	location := &Location{
		Name:        strings.TrimSpace(name),
		Description: description,
		Latitude:    lat,
		Longitude:   lng,
		Address:     address,
		ZoneID:      zoneID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := location.Validate(); err != nil {
		return nil, err
	}
	return location, nil
}

// Validate checks the location invariants
func (l *Location) Validate() error {
	if l.Name == "" {
		return ErrLocationNameRequired
	}
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v", ErrInvalidLocationPoint, l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v", ErrInvalidLocationPoint, l.Longitude)
	}
	return nil
}

// Touch stamps the update time
func (l *Location) Touch() {
	now := time.Now().UTC()
	l.UpdatedAt = &now
}

// InZone reports whether the location is assigned to zoneID
func (l *Location) InZone(zoneID int64) bool {
	return l.ZoneID != nil && *l.ZoneID == zoneID
}
