package domain

import "time"

// ValidationMode selects how the resolver matches an address to a site
type ValidationMode string

const (
	ValidationModePolygons    ValidationMode = "polygons"
	ValidationModeNearestSite ValidationMode = "nearest_site"
)

// IsValid checks if the mode is valid
func (m ValidationMode) IsValid() bool {
	return m == ValidationModePolygons || m == ValidationModeNearestSite
}

// ColombiaDeliveryMode selects the colombian delivery policy
type ColombiaDeliveryMode string

const (
	ColombiaModeCargo      ColombiaDeliveryMode = "cargo"
	ColombiaModeCalculated ColombiaDeliveryMode = "calculated"
)

// IsValid checks if the mode is valid
func (m ColombiaDeliveryMode) IsValid() bool {
	return m == ColombiaModeCargo || m == ColombiaModeCalculated
}

// AppConfig is the process-wide operator configuration singleton
type AppConfig struct {
	ValidationMode        ValidationMode       `bson:"validation_mode" json:"validation_mode"`
	ColombiaDeliveryMode  ColombiaDeliveryMode `bson:"colombia_delivery_mode" json:"colombia_delivery_mode"`
	MaxDeliveryDistanceKm *float64             `bson:"max_delivery_distance_km,omitempty" json:"max_delivery_distance_km"`
	UpdatedAt             *time.Time           `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// DefaultAppConfig is served until an operator stores a configuration
func DefaultAppConfig() AppConfig {
	return AppConfig{
		ValidationMode:       ValidationModePolygons,
		ColombiaDeliveryMode: ColombiaModeCargo,
	}
}

// Normalize fills blank modes with their defaults
func (c *AppConfig) Normalize() {
	if c.ValidationMode == "" {
		c.ValidationMode = ValidationModePolygons
	}
	if c.ColombiaDeliveryMode == "" {
		c.ColombiaDeliveryMode = ColombiaModeCargo
	}
}

// AppConfigPatch is an operator update. Nil optional fields keep their current value.
type AppConfigPatch struct {
	ValidationMode        ValidationMode
	ColombiaDeliveryMode  *ColombiaDeliveryMode
	MaxDeliveryDistanceKm *float64
}

// Apply validates and merges the patch
func (c *AppConfig) Apply(patch AppConfigPatch) error {
	if !patch.ValidationMode.IsValid() {
		return ErrInvalidValidationMode
	}
	if patch.ColombiaDeliveryMode != nil && !patch.ColombiaDeliveryMode.IsValid() {
		return ErrInvalidColombiaMode
	}
	if patch.MaxDeliveryDistanceKm != nil && *patch.MaxDeliveryDistanceKm < 0 {
		return ErrInvalidMaxDistance
	}

	c.ValidationMode = patch.ValidationMode
	if patch.ColombiaDeliveryMode != nil {
		c.ColombiaDeliveryMode = *patch.ColombiaDeliveryMode
	}
	if patch.MaxDeliveryDistanceKm != nil {
		c.MaxDeliveryDistanceKm = patch.MaxDeliveryDistanceKm
	}
	now := time.Now().UTC()
	c.UpdatedAt = &now
	return nil
}

// UsesCalculatedTariff reports whether deliveries in country are priced internally.
// USA and Spain always are; Colombia only in calculated mode.
func (c AppConfig) UsesCalculatedTariff(country Country) bool {
	switch country {
	case CountryUSA, CountrySpain:
		return true
	case CountryColombia:
		return c.ColombiaDeliveryMode == ColombiaModeCalculated
	default:
		return false
	}
}

// UsesCargo reports whether deliveries in country are validated by the logistics provider
func (c AppConfig) UsesCargo(country Country) bool {
	return country == CountryColombia && c.ColombiaDeliveryMode != ColombiaModeCalculated
}
