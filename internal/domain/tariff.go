package domain

import (
	"time"
)

// TariffMode selects how distance is priced
type TariffMode string

const (
	// TariffModeFixed charges price_per_km for every kilometre
	TariffModeFixed TariffMode = "fixed"
	// TariffModeSurcharge charges price_per_km up to base_distance_km and surcharge_per_km beyond it
	TariffModeSurcharge TariffMode = "surcharge"
)

// IsValid checks if the mode is valid
func (m TariffMode) IsValid() bool {
	return m == TariffModeFixed || m == TariffModeSurcharge
}

// Tariff is a per-site pricing override, keyed by site id
type Tariff struct {
	SiteID         int64      `bson:"_id" json:"site_id"`
	Mode           TariffMode `bson:"tariff_mode" json:"tariff_mode"`
	PricePerKm     float64    `bson:"price_per_km" json:"price_per_km"`
	MinFee         float64    `bson:"min_fee" json:"min_fee"`
	MaxFee         *float64   `bson:"max_fee,omitempty" json:"max_fee,omitempty"`
	BaseDistanceKm *float64   `bson:"base_distance_km,omitempty" json:"base_distance_km,omitempty"`
	SurchargePerKm *float64   `bson:"surcharge_per_km,omitempty" json:"surcharge_per_km,omitempty"`
	Country        Country    `bson:"country" json:"country"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt      *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// NewTariff builds and validates a tariff for site. An empty mode means fixed.
func NewTariff(site Site, mode TariffMode, pricePerKm, minFee float64, maxFee, baseDistanceKm, surchargePerKm *float64) (*Tariff, error) {
	country := site.Country()
	if !country.IsKnown() {
		return nil, ErrUnknownSiteCountry
	}
	if mode == "" {
		mode = TariffModeFixed
	}

	tariff := &Tariff{
		SiteID:         site.SiteID,
		Mode:           mode,
		PricePerKm:     pricePerKm,
		MinFee:         minFee,
		MaxFee:         maxFee,
		BaseDistanceKm: baseDistanceKm,
		SurchargePerKm: surchargePerKm,
		Country:        country,
		CreatedAt:      time.Now().UTC(),
	}
	if err := tariff.Validate(); err != nil {
		return nil, err
	}
	return tariff, nil
}

// Validate checks the tariff invariants
func (t *Tariff) Validate() error {
	if !t.Mode.IsValid() {
		return ErrInvalidTariffMode
	}
	if t.PricePerKm <= 0 {
		return ErrInvalidPricePerKm
	}
	if t.MinFee <= 0 {
		return ErrInvalidMinFee
	}
	if t.MaxFee != nil && *t.MaxFee < t.MinFee {
		return ErrMaxFeeBelowMinFee
	}
	if (t.BaseDistanceKm != nil && *t.BaseDistanceKm <= 0) || (t.SurchargePerKm != nil && *t.SurchargePerKm <= 0) {
		return ErrInvalidSurchargeValue
	}
	if t.Mode == TariffModeSurcharge && (t.BaseDistanceKm == nil || t.SurchargePerKm == nil) {
		return ErrSurchargeFieldsRequired
	}
	return nil
}

// TariffPatch carries the fields of a partial tariff update
type TariffPatch struct {
	Mode           *TariffMode
	PricePerKm     *float64
	MinFee         *float64
	MaxFee         *float64
	BaseDistanceKm *float64
	SurchargePerKm *float64
}

// Apply merges the patch into the tariff and re-validates the merged record.
// The tariff is left untouched when validation fails.
func (t *Tariff) Apply(patch TariffPatch) error {
	merged := *t
	if patch.Mode != nil {
		merged.Mode = *patch.Mode
	}
	if patch.PricePerKm != nil {
		merged.PricePerKm = *patch.PricePerKm
	}
	if patch.MinFee != nil {
		merged.MinFee = *patch.MinFee
	}
	if patch.MaxFee != nil {
		merged.MaxFee = patch.MaxFee
	}
	if patch.BaseDistanceKm != nil {
		merged.BaseDistanceKm = patch.BaseDistanceKm
	}
	if patch.SurchargePerKm != nil {
		merged.SurchargePerKm = patch.SurchargePerKm
	}
	if err := merged.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	merged.UpdatedAt = &now
	*t = merged
	return nil
}
