package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestCountryFromTimezone(t *testing.T) {
	tests := []struct {
		tz   string
		want Country
	}{
		{"America/Bogota", CountryColombia},
		{"America/New_York", CountryUSA},
		{"Europe/Madrid", CountrySpain},
		{"America/Lima", CountryUnknown},
		{"", CountryUnknown},
	}

	for _, tt := range tests {
		if got := CountryFromTimezone(tt.tz); got != tt.want {
			t.Errorf("CountryFromTimezone(%q) = %v, want %v", tt.tz, got, tt.want)
		}
	}
}

func TestParseCountryHint(t *testing.T) {
	tests := []struct {
		hint   string
		want   Country
		wantOK bool
	}{
		{"Colombia", CountryColombia, true},
		{"colombia", CountryColombia, true},
		{"Estados Unidos", CountryUSA, true},
		{"USA", CountryUSA, true},
		{"España", CountrySpain, true},
		{"Spain", CountrySpain, true},
		{"Madrid, España", CountrySpain, true},
		{"Peru", CountryUnknown, false},
		{"", CountryUnknown, false},
	}

	for _, tt := range tests {
		got, ok := ParseCountryHint(tt.hint)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseCountryHint(%q) = %v, %v, want %v, %v", tt.hint, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSite_DecodesLooseUpstreamPayload(t *testing.T) {
	payload := `[
		{"site_id": 1, "site_name": "Norte", "site_phone": 573001112233, "time_zone": "America/Bogota", "show_on_web": true, "location": [4.7, -74.04]},
		{"site_id": 2, "site_name": "Sur", "site_phone": "+573004445566", "time_zone": "America/Bogota", "show_on_web": true, "location": null},
		{"site_id": 3, "site_name": "Roto", "site_phone": null, "time_zone": "America/Bogota", "show_on_web": true, "location": "n/a"}
	]`

	var sites []Site
	if err := json.Unmarshal([]byte(payload), &sites); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if sites[0].SitePhone != "573001112233" {
		t.Errorf("numeric phone = %q", sites[0].SitePhone)
	}
	if !sites[0].HasLocation() {
		t.Error("site 1 should have a location")
	}
	if sites[1].PhoneDigits() != "573004445566" {
		t.Errorf("PhoneDigits() = %q", sites[1].PhoneDigits())
	}
	if sites[1].HasLocation() || sites[2].HasLocation() {
		t.Error("null and malformed locations should decode to no location")
	}
}

func TestSite_HasLocation(t *testing.T) {
	tests := []struct {
		name     string
		location SiteLocation
		want     bool
	}{
		{"pair", SiteLocation{4.7, -74.04}, true},
		{"missing", nil, false},
		{"single value", SiteLocation{4.7}, false},
		{"three values", SiteLocation{4.7, -74.04, 2600}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Site{Location: tt.location}).HasLocation(); got != tt.want {
				t.Errorf("HasLocation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSiteFilter_Apply(t *testing.T) {
	sites := []Site{
		{SiteID: 1, TimeZone: TimezoneBogota, ShowOnWeb: true},
		{SiteID: 2, TimeZone: TimezoneNewYork, ShowOnWeb: false},
		{SiteID: 3, TimeZone: "America/Lima", ShowOnWeb: true},
		{SiteID: 32, TimeZone: TimezoneMadrid, ShowOnWeb: true},
		{SiteID: 4, TimeZone: TimezoneMadrid, ShowOnWeb: true},
	}
	filter := DefaultSiteFilter()
	filter.ExcludedIDs = []int64{32}

	got := filter.Apply(sites)

	var ids []int64
	for _, s := range got {
		ids = append(ids, s.SiteID)
	}
	if !reflect.DeepEqual(ids, []int64{1, 4}) {
		t.Errorf("Apply() ids = %v, want [1 4]", ids)
	}
}

func TestParseSiteIDs(t *testing.T) {
	ids, err := ParseSiteIDs(" 18, 14,,20 ")
	if err != nil {
		t.Fatalf("ParseSiteIDs() error = %v", err)
	}
	if !reflect.DeepEqual(ids, []int64{18, 14, 20}) {
		t.Errorf("ParseSiteIDs() = %v", ids)
	}

	if _, err := ParseSiteIDs("18,abc"); err == nil || !strings.Contains(err.Error(), `"abc"`) {
		t.Errorf("ParseSiteIDs() error = %v, want it to name the bad id", err)
	}
}

func TestChangedFields(t *testing.T) {
	base := Site{
		SiteID:       1,
		SiteName:     "Norte",
		SiteAddress:  "Calle 1",
		SitePhone:    "+57300",
		EmailAddress: "norte@example.com",
		CityName:     "Bogota",
		Location:     SiteLocation{4.7, -74.04},
	}

	tests := []struct {
		name   string
		mutate func(s *Site)
		want   []string
	}{
		{"identical", func(s *Site) {}, nil},
		{"name", func(s *Site) { s.SiteName = "Norte 2" }, []string{"site_name"}},
		{"address and city", func(s *Site) { s.SiteAddress = "Calle 2"; s.CityName = "Chia" }, []string{"site_address", "city_name"}},
		{"phone", func(s *Site) { s.SitePhone = "+57301" }, []string{"site_phone"}},
		{"email", func(s *Site) { s.EmailAddress = "x@example.com" }, []string{"email_address"}},
		{"drift within tolerance", func(s *Site) { s.Location = SiteLocation{4.70005, -74.04005} }, nil},
		{"moved beyond tolerance", func(s *Site) { s.Location = SiteLocation{4.7002, -74.04} }, []string{"location"}},
		{"location removed", func(s *Site) { s.Location = nil }, []string{"location"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := base
			current.Location = append(SiteLocation(nil), base.Location...)
			tt.mutate(&current)
			if got := ChangedFields(base, current); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ChangedFields() = %v, want %v", got, tt.want)
			}
		})
	}
}
