package domain

import (
	"fmt"
	"strings"
	"time"
)

// Provider defaults for pickup points
const (
	DefaultPreparationTime   = 30
	DefaultTip               = 500
	DefaultPickupPointStatus = 1
	DefaultContactName       = "Contacto"
	externalIDPrefix         = "PP_"
)

// PickupPoint is the local mirror of a site's registration with the logistics provider
type PickupPoint struct {
	ID         int64      `bson:"_id" json:"id"`
	SiteID     int64      `bson:"site_id" json:"site_id"`
	ProviderID *int64     `bson:"provider_id,omitempty" json:"provider_picking_point_id,omitempty"`
	ExternalID string     `bson:"external_id" json:"external_id"`
	Name       string     `bson:"name" json:"name"`
	Address    string     `bson:"address" json:"address"`
	Lat        float64    `bson:"lat" json:"lat"`
	Lng        float64    `bson:"lng" json:"lng"`
	City       string     `bson:"city" json:"city"`
	Phone      string     `bson:"phone" json:"phone"`
	Status     int        `bson:"status" json:"status"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt  *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// IsLinked reports whether the pickup point is registered with the provider
func (p *PickupPoint) IsLinked() bool {
	return p.ProviderID != nil && *p.ProviderID != 0
}

// ExternalIDOrDefault returns the external id, falling back to PP_<site_id>
func (p *PickupPoint) ExternalIDOrDefault() string {
	if p.ExternalID != "" {
		return p.ExternalID
	}
	return fmt.Sprintf("%s%d", externalIDPrefix, p.SiteID)
}

// ApplyRegistration copies the registered attributes onto the local record
func (p *PickupPoint) ApplyRegistration(reg ProviderPickupPoint, siteID int64) {
	p.SiteID = siteID
	p.ExternalID = reg.ExternalID
	p.Name = reg.Name
	p.Address = reg.Address
	p.Lat = reg.Lat
	p.Lng = reg.Lng
	p.City = reg.City
	p.Phone = reg.Phone
	p.Status = reg.Status
	if p.Status == 0 {
		p.Status = DefaultPickupPointStatus
	}
	now := time.Now().UTC()
	p.UpdatedAt = &now
}

// ProviderPickupPoint is the attribute set pushed to the logistics provider
type ProviderPickupPoint struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	Address          string  `json:"address"`
	City             string  `json:"city"`
	Phone            string  `json:"phone"`
	ZipCode          string  `json:"zip_code"`
	Status           int     `json:"status"`
	Name             string  `json:"name"`
	ContactName      string  `json:"contact_name"`
	ContactEmail     string  `json:"contact_email"`
	PreparationTime  int     `json:"preparation_time"`
	ExternalID       string  `json:"external_id"`
	StoreID          *int64  `json:"rappi_store_id,omitempty"`
	DefaultTip       int     `json:"default_tip"`
	HandshakeEnabled bool    `json:"handshake_enabled"`
	ReturnEnabled    bool    `json:"return_enabled"`
	HandoffEnabled   bool    `json:"handoff_enabled"`
}

// Validate checks the minimum attributes the provider needs
func (r ProviderPickupPoint) Validate() error {
	if r.Status < 0 {
		return ErrInvalidPickupPointStatus
	}
	if r.Lat < -90 || r.Lat > 90 || r.Lng < -180 || r.Lng > 180 {
		return fmt.Errorf("invalid pickup point location: %v,%v", r.Lat, r.Lng)
	}
	return nil
}

// RegistrationFromSite derives the provider attributes of an existing pickup point
// from the current site data. It is used by the automatic relink after a site change.
func RegistrationFromSite(site Site, pp *PickupPoint) ProviderPickupPoint {
	var lat, lng float64
	if len(site.Location) == 2 {
		lat, lng = site.Location[0], site.Location[1]
	}
	status := pp.Status
	if status == 0 {
		status = DefaultPickupPointStatus
	}
	contactName := site.SiteName
	if contactName == "" {
		contactName = DefaultContactName
	}
	return ProviderPickupPoint{
		Lat:              lat,
		Lng:              lng,
		Address:          site.SiteAddress,
		City:             site.CityName,
		Phone:            site.PhoneDigits(),
		Status:           status,
		Name:             site.SiteName,
		ContactName:      contactName,
		ContactEmail:     site.EmailAddress,
		PreparationTime:  DefaultPreparationTime,
		ExternalID:       pp.ExternalIDOrDefault(),
		DefaultTip:       DefaultTip,
		HandshakeEnabled: true,
		ReturnEnabled:    true,
		HandoffEnabled:   true,
	}
}

// FillFromSite completes blank attributes of a manual relink request with site data
func (r *ProviderPickupPoint) FillFromSite(site Site) {
	if len(site.Location) == 2 {
		if r.Lat == 0 {
			r.Lat = site.Location[0]
		}
		if r.Lng == 0 {
			r.Lng = site.Location[1]
		}
	}
	if strings.TrimSpace(r.Address) == "" && site.SiteAddress != "" {
		r.Address = site.SiteAddress
	}
	if strings.TrimSpace(r.City) == "" && site.CityName != "" {
		r.City = site.CityName
	}
	if strings.TrimSpace(r.Phone) == "" && site.SitePhone != "" {
		r.Phone = site.PhoneDigits()
	}
	if strings.TrimSpace(r.Name) == "" && site.SiteName != "" {
		r.Name = site.SiteName
	}
	if strings.TrimSpace(r.ContactEmail) == "" && site.EmailAddress != "" {
		r.ContactEmail = site.EmailAddress
	}
	if r.ContactName == "" {
		r.ContactName = site.SiteName
		if r.ContactName == "" {
			r.ContactName = DefaultContactName
		}
	}
	if r.Status == 0 {
		r.Status = DefaultPickupPointStatus
	}
}
