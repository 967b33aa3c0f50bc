package domain

import "errors"

// Lookup errors
var (
	ErrZoneNotFound        = errors.New("zone not found")
	ErrSiteNotFound        = errors.New("site not found or not available")
	ErrTariffNotFound      = errors.New("tariff not found")
	ErrPickupPointNotFound = errors.New("pickup point not found")
	ErrLocationNotFound    = errors.New("location not found")
)

// One-to-one association errors
var (
	ErrSiteAlreadyHasZone        = errors.New("site already has a zone")
	ErrSiteAlreadyHasPickupPoint = errors.New("site already has a pickup point")
	ErrSiteAlreadyHasTariff      = errors.New("site already has a tariff")
)

// Invariant errors
var (
	ErrZoneNameRequired         = errors.New("zone name is required")
	ErrInvalidColor             = errors.New("invalid zone color")
	ErrLocationNameRequired     = errors.New("location name is required")
	ErrInvalidLocationPoint     = errors.New("invalid location coordinates")
	ErrInvalidTariffMode        = errors.New("invalid tariff mode")
	ErrInvalidPricePerKm        = errors.New("invalid price per km: must be greater than zero")
	ErrInvalidMinFee            = errors.New("invalid min fee: must be greater than zero")
	ErrMaxFeeBelowMinFee        = errors.New("invalid max fee: must be greater than or equal to min fee")
	ErrInvalidSurchargeValue    = errors.New("invalid surcharge settings: values must be greater than zero")
	ErrSurchargeFieldsRequired  = errors.New("base distance and surcharge per km are required in surcharge mode")
	ErrUnknownSiteCountry       = errors.New("invalid site: country cannot be derived from its timezone")
	ErrTariffNeedsCalculated    = errors.New("invalid tariff: colombian sites only accept tariffs in calculated delivery mode")
	ErrInvalidValidationMode    = errors.New("invalid validation mode")
	ErrInvalidColombiaMode      = errors.New("invalid colombia delivery mode")
	ErrInvalidMaxDistance       = errors.New("invalid max delivery distance: must not be negative")
	ErrPickupPointNotLinked     = errors.New("invalid pickup point: it has no provider id")
	ErrGeocodingNotConfigured   = errors.New("geocoding api key is not configured")
	ErrSitesSourceUnavailable   = errors.New("sites source unavailable and no snapshot cached")
	ErrProviderRejected         = errors.New("logistics provider rejected the request")
	ErrInvalidDateFilter        = errors.New("invalid date filter: expected YYYY-MM-DD")
	ErrInvalidCountryFilter     = errors.New("invalid country filter")
	ErrInvalidPickupPointStatus = errors.New("invalid pickup point status")
)
