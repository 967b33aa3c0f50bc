package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// LocationTolerance is the per-axis drift in degrees below which a site has not moved
const LocationTolerance = 0.0001

// FlexString decodes a JSON string or number into a string. The sites source
// sends phone numbers either way.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// SiteLocation is a [lat, lng] pair as sent by the sites source. Malformed values
// decode to nil so a single bad site never fails the whole list.
type SiteLocation []float64

// UnmarshalJSON implements json.Unmarshaler
func (l *SiteLocation) UnmarshalJSON(data []byte) error {
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		*l = nil
		return nil
	}
	*l = coords
	return nil
}

// Site is a fulfilment location fetched from the upstream sites source
type Site struct {
	SiteID         int64        `json:"site_id" bson:"site_id"`
	SiteName       string       `json:"site_name" bson:"site_name"`
	SiteAddress    string       `json:"site_address" bson:"site_address"`
	SitePhone      FlexString   `json:"site_phone" bson:"site_phone"`
	EmailAddress   string       `json:"email_address" bson:"email_address"`
	CityName       string       `json:"city_name" bson:"city_name"`
	TimeZone       string       `json:"time_zone" bson:"time_zone"`
	ShowOnWeb      bool         `json:"show_on_web" bson:"show_on_web"`
	Location       SiteLocation `json:"location" bson:"location"`
	PricePerKm     *float64     `json:"price_per_km,omitempty" bson:"price_per_km,omitempty"`
	MinDeliveryFee *float64     `json:"min_delivery_fee,omitempty" bson:"min_delivery_fee,omitempty"`

	// PickingPointExternalID is filled at read time from the local pickup point
	PickingPointExternalID string `json:"picking_point_external_id,omitempty" bson:"-"`
}

// Country derives the market from the site's timezone
func (s Site) Country() Country {
	return CountryFromTimezone(s.TimeZone)
}

// HasLocation reports whether the site carries exactly one [lat, lng] pair
func (s Site) HasLocation() bool {
	return len(s.Location) == 2
}

// LatLng returns the site coordinates. Call HasLocation first.
func (s Site) LatLng() (float64, float64) {
	return s.Location[0], s.Location[1]
}

// PhoneDigits returns the phone without a leading plus sign
func (s Site) PhoneDigits() string {
	return strings.TrimPrefix(string(s.SitePhone), "+")
}

// DisplayName returns the site name or "N/A"
func (s Site) DisplayName() string {
	if s.SiteName == "" {
		return "N/A"
	}
	return s.SiteName
}

// SiteFilter decides which upstream sites are served
type SiteFilter struct {
	AllowedTimezones []string
	ExcludedIDs      []int64
}

// DefaultSiteFilter allows the three market timezones and excludes nothing
func DefaultSiteFilter() SiteFilter {
	return SiteFilter{AllowedTimezones: AllowedTimezones()}
}

// Apply keeps sites in an allowed timezone that are visible on the web and not excluded
func (f SiteFilter) Apply(sites []Site) []Site {
	allowed := make(map[string]struct{}, len(f.AllowedTimezones))
	for _, tz := range f.AllowedTimezones {
		allowed[tz] = struct{}{}
	}
	excluded := make(map[int64]struct{}, len(f.ExcludedIDs))
	for _, id := range f.ExcludedIDs {
		excluded[id] = struct{}{}
	}

	filtered := make([]Site, 0, len(sites))
	for _, site := range sites {
		if _, ok := allowed[site.TimeZone]; !ok {
			continue
		}
		if !site.ShowOnWeb {
			continue
		}
		if _, ok := excluded[site.SiteID]; ok {
			continue
		}
		filtered = append(filtered, site)
	}
	return filtered
}

// ParseSiteIDs parses a comma separated id list such as "18, 14,20"
func ParseSiteIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid site id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ChangedFields lists the attributes that differ materially between two
// versions of the same site. Location drift within LocationTolerance is ignored.
func ChangedFields(previous, current Site) []string {
	var changed []string
	if previous.SiteName != current.SiteName {
		changed = append(changed, "site_name")
	}
	if previous.SiteAddress != current.SiteAddress {
		changed = append(changed, "site_address")
	}
	if previous.SitePhone != current.SitePhone {
		changed = append(changed, "site_phone")
	}
	if previous.EmailAddress != current.EmailAddress {
		changed = append(changed, "email_address")
	}
	if previous.CityName != current.CityName {
		changed = append(changed, "city_name")
	}
	if locationMoved(previous.Location, current.Location) {
		changed = append(changed, "location")
	}
	return changed
}

func locationMoved(previous, current SiteLocation) bool {
	if len(previous) == 2 && len(current) == 2 {
		return math.Abs(previous[0]-current[0]) > LocationTolerance ||
			math.Abs(previous[1]-current[1]) > LocationTolerance
	}
	if len(previous) != len(current) {
		return true
	}
	for i := range previous {
		if previous[i] != current[i] {
			return true
		}
	}
	return false
}

// FindSite returns the site with the given id
func FindSite(sites []Site, siteID int64) (Site, bool) {
	for _, s := range sites {
		if s.SiteID == siteID {
			return s, true
		}
	}
	return Site{}, false
}

// IndexSites maps sites by id
func IndexSites(sites []Site) map[int64]Site {
	index := make(map[int64]Site, len(sites))
	for _, s := range sites {
		index[s.SiteID] = s
	}
	return index
}
