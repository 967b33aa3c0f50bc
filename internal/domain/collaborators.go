package domain

// GeocodedAddress is a geocoding match
type GeocodedAddress struct {
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	FormattedAddress string  `json:"formatted_address"`
}

// ValidationRequest asks the logistics provider whether a delivery is feasible
type ValidationRequest struct {
	Address                string
	Latitude               float64
	Longitude              float64
	City                   string
	ExternalPickingPointID string
}

// LogisticsError is a business rejection returned by the logistics provider
type LogisticsError struct {
	Code                     FlexString `json:"code"`
	I18nCode                 FlexString `json:"i18n_code"`
	Message                  string     `json:"message"`
	InternationalizedMessage string     `json:"internationalized_message"`
	Status                   int        `json:"status"`
}

// LogisticsValidation is the provider's feasibility answer for a delivery.
// A business rejection leaves every field empty except Error.
type LogisticsValidation struct {
	ServiceDelivery                 []string          `json:"service_delivery,omitempty"`
	Active                          *bool             `json:"active,omitempty"`
	InternalValidations             map[string]string `json:"internal_validations,omitempty"`
	ETAForImmediateDelivery         *int              `json:"eta_for_immediate_delivery,omitempty"`
	ETAIntervalForImmediateDelivery map[string]int    `json:"eta_interval_for_immediate_delivery,omitempty"`
	TripDistance                    *float64          `json:"trip_distance,omitempty"`
	EstimatedPrice                  *float64          `json:"estimated_price,omitempty"`
	RainCharge                      *bool             `json:"rain_charge,omitempty"`
	HighDemandCharge                *float64          `json:"high_demand_charge,omitempty"`
	RainingCharge                   *float64          `json:"raining_charge,omitempty"`
	Error                           *LogisticsError   `json:"error,omitempty"`
}

// Rejected reports whether the provider refused the delivery
func (v *LogisticsValidation) Rejected() bool {
	return v != nil && v.Error != nil
}
