package application

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/location-manager/zone-service/internal/domain"
	"github.com/location-manager/zone-service/pkg/cloudevents"
)

func tariffSites() []domain.Site {
	miami := bogotaSite(1, "Miami", 25.76, -80.19)
	miami.TimeZone = domain.TimezoneNewYork
	madrid := bogotaSite(2, "Sol", 40.41, -3.70)
	madrid.TimeZone = domain.TimezoneMadrid
	lima := bogotaSite(4, "Lima", -12.04, -77.04)
	lima.TimeZone = "America/Lima"
	return []domain.Site{miami, madrid, bogotaSite(3, "Norte", 4.65, -74.05), lima}
}

func newTariffService(sites []domain.Site, cfg *domain.AppConfig, tariffs ...domain.Tariff) (*TariffApplicationService, *fakeTariffRepo, *fakeRecorder) {
	repo := newFakeTariffRepo(tariffs...)
	recorder := &fakeRecorder{}
	service := NewTariffApplicationService(repo, &fakeSiteProvider{sites: sites}, &fakeConfigRepo{cfg: cfg}, recorder, testLogger())
	return service, repo, recorder
}

func TestTariffService_CreateTariff(t *testing.T) {
	service, repo, recorder := newTariffService(tariffSites(), nil)

	dto, err := service.CreateTariff(context.Background(), CreateTariffCommand{
		SiteID:     2,
		PricePerKm: 1.2,
		MinFee:     4,
		MaxFee:     ptrFloat(20),
	})

	require.NoError(t, err)
	assert.Equal(t, "spain", dto.Country)
	assert.Equal(t, "fixed", dto.TariffMode)
	assert.Equal(t, 1.2, repo.tariffs[2].PricePerKm)
	assert.Equal(t, []string{cloudevents.TariffUpserted}, recorder.types())
}

func TestTariffService_CreateTariffRules(t *testing.T) {
	calculated := domain.DefaultAppConfig()
	calculated.ColombiaDeliveryMode = domain.ColombiaModeCalculated

	tests := []struct {
		name   string
		cfg    *domain.AppConfig
		cmd    CreateTariffCommand
		status int
	}{
		{"unknown site", nil, CreateTariffCommand{SiteID: 99, PricePerKm: 1, MinFee: 1}, http.StatusNotFound},
		{"unknown country", nil, CreateTariffCommand{SiteID: 4, PricePerKm: 1, MinFee: 1}, http.StatusBadRequest},
		{"colombia in cargo mode", nil, CreateTariffCommand{SiteID: 3, PricePerKm: 1000, MinFee: 4000}, http.StatusBadRequest},
		{"zero price", nil, CreateTariffCommand{SiteID: 1, PricePerKm: 0, MinFee: 1}, http.StatusBadRequest},
		{"zero min fee", nil, CreateTariffCommand{SiteID: 1, PricePerKm: 1, MinFee: 0}, http.StatusBadRequest},
		{"max below min", nil, CreateTariffCommand{SiteID: 1, PricePerKm: 1, MinFee: 5, MaxFee: ptrFloat(4)}, http.StatusBadRequest},
		{"surcharge without base", nil, CreateTariffCommand{SiteID: 1, TariffMode: "surcharge", PricePerKm: 1, MinFee: 5, SurchargePerKm: ptrFloat(2)}, http.StatusBadRequest},
		{"bad mode", nil, CreateTariffCommand{SiteID: 1, TariffMode: "flat", PricePerKm: 1, MinFee: 5}, http.StatusBadRequest},
		{"colombia in calculated mode", &calculated, CreateTariffCommand{SiteID: 3, PricePerKm: 1000, MinFee: 4000}, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, _ := newTariffService(tariffSites(), tt.cfg)

			_, err := service.CreateTariff(context.Background(), tt.cmd)

			if tt.status == http.StatusCreated {
				require.NoError(t, err)
				assert.Len(t, repo.tariffs, 1)
				return
			}
			requireStatus(t, err, tt.status)
			assert.Empty(t, repo.tariffs)
		})
	}
}

func TestTariffService_OneTariffPerSite(t *testing.T) {
	service, _, _ := newTariffService(tariffSites(), nil, domain.Tariff{SiteID: 1, Mode: domain.TariffModeFixed, PricePerKm: 1, MinFee: 1})

	_, err := service.CreateTariff(context.Background(), CreateTariffCommand{SiteID: 1, PricePerKm: 2, MinFee: 2})

	requireStatus(t, err, http.StatusConflict)
}

func TestTariffService_UpdateTariff(t *testing.T) {
	existing := domain.Tariff{SiteID: 1, Mode: domain.TariffModeFixed, PricePerKm: 2, MinFee: 5, Country: domain.CountryUSA}

	t.Run("merged record is validated", func(t *testing.T) {
		service, repo, _ := newTariffService(tariffSites(), nil, existing)

		_, err := service.UpdateTariff(context.Background(), UpdateTariffCommand{SiteID: 1, MaxFee: ptrFloat(4)})

		requireStatus(t, err, http.StatusBadRequest)
		assert.Nil(t, repo.tariffs[1].MaxFee)
	})

	t.Run("switch to surcharge needs both fields", func(t *testing.T) {
		service, _, _ := newTariffService(tariffSites(), nil, existing)
		mode := "surcharge"

		_, err := service.UpdateTariff(context.Background(), UpdateTariffCommand{SiteID: 1, TariffMode: &mode, BaseDistanceKm: ptrFloat(3)})

		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("partial update keeps the rest", func(t *testing.T) {
		service, repo, recorder := newTariffService(tariffSites(), nil, existing)
		mode := "surcharge"

		dto, err := service.UpdateTariff(context.Background(), UpdateTariffCommand{
			SiteID:         1,
			TariffMode:     &mode,
			BaseDistanceKm: ptrFloat(3),
			SurchargePerKm: ptrFloat(4),
		})

		require.NoError(t, err)
		assert.Equal(t, "surcharge", dto.TariffMode)
		assert.Equal(t, 2.0, repo.tariffs[1].PricePerKm)
		assert.NotNil(t, repo.tariffs[1].UpdatedAt)
		assert.Equal(t, []string{cloudevents.TariffUpserted}, recorder.types())
	})

	t.Run("missing tariff", func(t *testing.T) {
		service, _, _ := newTariffService(tariffSites(), nil)

		_, err := service.UpdateTariff(context.Background(), UpdateTariffCommand{SiteID: 1})

		requireStatus(t, err, http.StatusNotFound)
	})
}

func TestTariffService_ListAndDelete(t *testing.T) {
	tariffs := []domain.Tariff{
		{SiteID: 1, Mode: domain.TariffModeFixed, PricePerKm: 2, MinFee: 5, Country: domain.CountryUSA},
		{SiteID: 2, Mode: domain.TariffModeFixed, PricePerKm: 1, MinFee: 3, Country: domain.CountrySpain},
	}
	service, repo, recorder := newTariffService(tariffSites(), nil, tariffs...)
	ctx := context.Background()

	all, err := service.ListTariffs(ctx, ListTariffsQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	spain, err := service.ListTariffs(ctx, ListTariffsQuery{Country: "spain"})
	require.NoError(t, err)
	require.Len(t, spain, 1)
	assert.Equal(t, int64(2), spain[0].SiteID)

	bySite, err := service.ListTariffs(ctx, ListTariffsQuery{SiteID: ptrInt64(3)})
	require.NoError(t, err)
	assert.Empty(t, bySite)

	require.NoError(t, service.DeleteTariff(ctx, 1))
	assert.NotContains(t, repo.tariffs, int64(1))
	assert.Equal(t, []string{cloudevents.TariffDeleted}, recorder.types())
	requireStatus(t, service.DeleteTariff(ctx, 1), http.StatusNotFound)
}
