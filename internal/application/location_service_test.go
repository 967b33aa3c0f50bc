package application

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/location-manager/zone-service/internal/domain"
	"github.com/location-manager/zone-service/pkg/cloudevents"
)

func newLocationService(locations ...domain.Location) (*LocationApplicationService, *fakeLocationRepo, *fakeRecorder) {
	repo := newFakeLocationRepo(locations...)
	zones := newFakeZoneRepo(zoneFor(4, "Chapinero", square(4.65, -74.05, 0.02), 7))
	recorder := &fakeRecorder{}
	return NewLocationApplicationService(repo, zones, recorder, testLogger()), repo, recorder
}

func locationAt(id int64, name string, zoneID *int64) domain.Location {
	return domain.Location{ID: id, Name: name, Latitude: 4.65, Longitude: -74.05, ZoneID: zoneID}
}

func TestLocationService_CreateLocation(t *testing.T) {
	service, repo, recorder := newLocationService()

	dto, err := service.CreateLocation(context.Background(), CreateLocationCommand{
		Name:      " Bodega ",
		Latitude:  4.65,
		Longitude: -74.05,
		Address:   "Cra 7 # 72-41",
		ZoneID:    ptrInt64(4),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), dto.ID)
	assert.Equal(t, "Bodega", dto.Name)
	require.NotNil(t, dto.ZoneID)
	assert.Equal(t, int64(4), *dto.ZoneID)
	assert.Nil(t, dto.UpdatedAt)
	assert.Len(t, repo.locations, 1)
	assert.Equal(t, []string{cloudevents.LocationCreated}, recorder.types())
	assert.Equal(t, "location", recorder.events[0].AggregateType)
}

func TestLocationService_CreateLocationRejected(t *testing.T) {
	tests := []struct {
		name   string
		cmd    CreateLocationCommand
		status int
	}{
		{"blank name", CreateLocationCommand{Name: " "}, http.StatusBadRequest},
		{"latitude out of range", CreateLocationCommand{Name: "a", Latitude: -91}, http.StatusBadRequest},
		{"longitude out of range", CreateLocationCommand{Name: "a", Longitude: 181}, http.StatusBadRequest},
		{"unknown zone", CreateLocationCommand{Name: "a", ZoneID: ptrInt64(99)}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, recorder := newLocationService()

			_, err := service.CreateLocation(context.Background(), tt.cmd)

			requireStatus(t, err, tt.status)
			assert.Empty(t, repo.locations)
			assert.Empty(t, recorder.types())
		})
	}

	service, _, _ := newLocationService()
	_, err := service.CreateLocation(context.Background(), CreateLocationCommand{Name: "a", ZoneID: ptrInt64(99)})
	assert.ErrorIs(t, err, domain.ErrZoneNotFound)
}

func TestLocationService_ListLocations(t *testing.T) {
	service, _, _ := newLocationService(
		locationAt(1, "Bodega", ptrInt64(4)),
		locationAt(2, "Oficina", nil),
		locationAt(3, "Punto", ptrInt64(4)),
		locationAt(4, "Tienda", ptrInt64(4)),
	)
	ctx := context.Background()

	all, err := service.ListLocations(ctx, ListLocationsQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	inZone, err := service.ListLocations(ctx, ListLocationsQuery{ZoneID: ptrInt64(4), Skip: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, inZone, 1)
	assert.Equal(t, "Punto", inZone[0].Name)

	none, err := service.ListLocations(ctx, ListLocationsQuery{ZoneID: ptrInt64(8)})
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)
}

func TestLocationService_ListLocationsStoreError(t *testing.T) {
	service, repo, _ := newLocationService()
	repo.err = errors.New("connection reset")

	_, err := service.ListLocations(context.Background(), ListLocationsQuery{})

	assert.ErrorContains(t, err, "connection reset")
}

func TestLocationService_UpdateLocation(t *testing.T) {
	t.Run("applies only set fields", func(t *testing.T) {
		service, repo, recorder := newLocationService(locationAt(1, "Bodega", nil))
		name := "Bodega Norte"

		dto, err := service.UpdateLocation(context.Background(), UpdateLocationCommand{
			ID:       1,
			Name:     &name,
			Latitude: ptrFloat(4.70),
			ZoneID:   ptrInt64(4),
		})

		require.NoError(t, err)
		assert.Equal(t, "Bodega Norte", dto.Name)
		assert.Equal(t, 4.70, dto.Latitude)
		assert.Equal(t, -74.05, dto.Longitude)
		assert.NotNil(t, dto.UpdatedAt)
		updated := repo.locations[1]
		assert.True(t, updated.InZone(4))
		assert.Equal(t, []string{cloudevents.LocationUpdated}, recorder.types())
	})

	t.Run("missing location", func(t *testing.T) {
		service, _, _ := newLocationService()

		_, err := service.UpdateLocation(context.Background(), UpdateLocationCommand{ID: 9})

		requireStatus(t, err, http.StatusNotFound)
		assert.ErrorIs(t, err, domain.ErrLocationNotFound)
	})

	t.Run("unknown zone leaves the location unchanged", func(t *testing.T) {
		service, repo, _ := newLocationService(locationAt(1, "Bodega", nil))

		_, err := service.UpdateLocation(context.Background(), UpdateLocationCommand{ID: 1, ZoneID: ptrInt64(99)})

		requireStatus(t, err, http.StatusNotFound)
		assert.Nil(t, repo.locations[1].ZoneID)
		assert.Nil(t, repo.locations[1].UpdatedAt)
	})

	t.Run("out of range longitude", func(t *testing.T) {
		service, _, _ := newLocationService(locationAt(1, "Bodega", nil))

		_, err := service.UpdateLocation(context.Background(), UpdateLocationCommand{ID: 1, Longitude: ptrFloat(-200)})

		requireStatus(t, err, http.StatusBadRequest)
	})
}

func TestLocationService_DeleteLocation(t *testing.T) {
	service, repo, recorder := newLocationService(locationAt(1, "Bodega", nil))
	ctx := context.Background()

	require.NoError(t, service.DeleteLocation(ctx, 1))
	assert.Empty(t, repo.locations)
	assert.Equal(t, []string{cloudevents.LocationDeleted}, recorder.types())

	requireStatus(t, service.DeleteLocation(ctx, 1), http.StatusNotFound)

	_, err := service.GetLocation(ctx, 1)
	requireStatus(t, err, http.StatusNotFound)
}
