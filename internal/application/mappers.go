package application

import "github.com/location-manager/zone-service/internal/domain"

// ToZoneDTO converts a domain Zone to ZoneDTO
func ToZoneDTO(zone *domain.Zone) *ZoneDTO {
	if zone == nil {
		return nil
	}

	var country *string
	if zone.Country != nil {
		c := string(*zone.Country)
		country = &c
	}

	return &ZoneDTO{
		ID:          zone.ID,
		Name:        zone.Name,
		Description: zone.Description,
		Coordinates: domain.FromPoints(zone.Coordinates),
		Color:       zone.Color,
		SiteID:      zone.SiteID,
		Country:     country,
		CreatedAt:   zone.CreatedAt,
		UpdatedAt:   zone.UpdatedAt,
	}
}

// ToZoneDTOs converts a slice of domain Zones to ZoneDTOs
func ToZoneDTOs(zones []domain.Zone) []ZoneDTO {
	dtos := make([]ZoneDTO, 0, len(zones))
	for i := range zones {
		dtos = append(dtos, *ToZoneDTO(&zones[i]))
	}
	return dtos
}

// ToLocationDTO converts a domain Location to LocationDTO
func ToLocationDTO(location *domain.Location) *LocationDTO {
	if location == nil {
		return nil
	}
	return &LocationDTO{
		ID:          location.ID,
		Name:        location.Name,
		Description: location.Description,
		Latitude:    location.Latitude,
		Longitude:   location.Longitude,
		Address:     location.Address,
		ZoneID:      location.ZoneID,
		CreatedAt:   location.CreatedAt,
		UpdatedAt:   location.UpdatedAt,
	}
}

// ToLocationDTOs converts a slice of domain Locations to LocationDTOs
func ToLocationDTOs(locations []domain.Location) []LocationDTO {
	dtos := make([]LocationDTO, 0, len(locations))
	for i := range locations {
		dtos = append(dtos, *ToLocationDTO(&locations[i]))
	}
	return dtos
}

// ToTariffDTO converts a domain Tariff to TariffDTO
func ToTariffDTO(t *domain.Tariff) *TariffDTO {
	if t == nil {
		return nil
	}

	return &TariffDTO{
		SiteID:         t.SiteID,
		TariffMode:     string(t.Mode),
		PricePerKm:     t.PricePerKm,
		MinFee:         t.MinFee,
		MaxFee:         t.MaxFee,
		BaseDistanceKm: t.BaseDistanceKm,
		SurchargePerKm: t.SurchargePerKm,
		Country:        string(t.Country),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// ToTariffDTOs converts a slice of domain Tariffs to TariffDTOs
func ToTariffDTOs(tariffs []domain.Tariff) []TariffDTO {
	dtos := make([]TariffDTO, 0, len(tariffs))
	for i := range tariffs {
		dtos = append(dtos, *ToTariffDTO(&tariffs[i]))
	}
	return dtos
}

// ToPickupPointDTO converts a domain PickupPoint to PickupPointDTO
func ToPickupPointDTO(pp *domain.PickupPoint) *PickupPointDTO {
	if pp == nil {
		return nil
	}

	return &PickupPointDTO{
		ID:                     pp.ID,
		SiteID:                 pp.SiteID,
		ProviderPickingPointID: pp.ProviderID,
		ExternalID:             pp.ExternalID,
		Name:                   pp.Name,
		Address:                pp.Address,
		Lat:                    pp.Lat,
		Lng:                    pp.Lng,
		City:                   pp.City,
		Phone:                  pp.Phone,
		Status:                 pp.Status,
		CreatedAt:              pp.CreatedAt,
		UpdatedAt:              pp.UpdatedAt,
	}
}

// ToPickupPointDTOs converts a slice of domain PickupPoints to PickupPointDTOs
func ToPickupPointDTOs(points []domain.PickupPoint) []PickupPointDTO {
	dtos := make([]PickupPointDTO, 0, len(points))
	for i := range points {
		dtos = append(dtos, *ToPickupPointDTO(&points[i]))
	}
	return dtos
}

// ToOrderDTO converts a domain Order to OrderDTO
func ToOrderDTO(o *domain.Order) *OrderDTO {
	if o == nil {
		return nil
	}

	return &OrderDTO{
		ID:               o.ID,
		Latitude:         o.Latitude,
		Longitude:        o.Longitude,
		Address:          o.Address,
		FormattedAddress: o.FormattedAddress,
		FirstName:        o.FirstName,
		LastName:         o.LastName,
		Phone:            o.Phone,
		Email:            o.Email,
		Complement:       o.Complement,
		City:             o.City,
		Country:          o.Country,
		Comments:         o.Comments,
		OrderDate:        o.OrderDate,
		CreatedAt:        o.CreatedAt,
	}
}

// ToOrderDTOs converts a slice of domain Orders to OrderDTOs
func ToOrderDTOs(orders []domain.Order) []OrderDTO {
	dtos := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		dtos = append(dtos, *ToOrderDTO(&orders[i]))
	}
	return dtos
}

// ToAppConfigDTO converts a domain AppConfig to AppConfigDTO
func ToAppConfigDTO(cfg domain.AppConfig) *AppConfigDTO {
	return &AppConfigDTO{
		ValidationMode:        string(cfg.ValidationMode),
		ColombiaDeliveryMode:  string(cfg.ColombiaDeliveryMode),
		MaxDeliveryDistanceKm: cfg.MaxDeliveryDistanceKm,
		UpdatedAt:             cfg.UpdatedAt,
	}
}
