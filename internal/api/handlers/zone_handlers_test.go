package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/location-manager/zone-service/internal/application"
	"github.com/location-manager/zone-service/internal/domain"
	"github.com/location-manager/zone-service/pkg/errors"
)

const squareZone = `[[4.6,-74.1],[4.6,-74.0],[4.7,-74.0],[4.7,-74.1]]`

func TestZoneHandlers_ListZones(t *testing.T) {
	service := &mockZoneService{
		listFn: func(ctx context.Context, query application.ListZonesQuery) ([]application.ZoneDTO, error) {
			assert.Equal(t, application.ListZonesQuery{Skip: 10, Limit: 5, Country: "usa"}, query)
			return []application.ZoneDTO{{ID: 1, Name: "Chapinero"}}, nil
		},
	}
	router := newTestRouter(NewZoneHandlers(service, testLogger()))

	rec := performRequest(router, http.MethodGet, "/api/zones?skip=10&limit=5&country=usa", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Chapinero"`)

	rec = performRequest(router, http.MethodGet, "/api/zones?skip=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = performRequest(router, http.MethodGet, "/api/zones?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestZoneHandlers_CreateZone(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		service := &mockZoneService{
			createFn: func(ctx context.Context, cmd application.CreateZoneCommand) (*application.ZoneDTO, error) {
				assert.Equal(t, "Chapinero", cmd.Name)
				assert.Len(t, cmd.Coordinates, 4)
				require.NotNil(t, cmd.SiteID)
				assert.Equal(t, int64(7), *cmd.SiteID)
				return &application.ZoneDTO{ID: 1, Name: cmd.Name, SiteID: cmd.SiteID}, nil
			},
		}
		router := newTestRouter(NewZoneHandlers(service, testLogger()))

		rec := performRequest(router, http.MethodPost, "/api/zones",
			`{"name":"Chapinero","coordinates":`+squareZone+`,"color":"#FFA500","site_id":7}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), `"site_id":7`)
	})

	t.Run("invalid bodies", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{"bad json", `{"name":}`},
			{"missing name", `{"coordinates":` + squareZone + `}`},
			{"two vertices", `{"name":"x","coordinates":[[4.6,-74.1],[4.7,-74.0]]}`},
			{"three numbers in a vertex", `{"name":"x","coordinates":[[4.6,-74.1,1],[4.6,-74.0],[4.7,-74.0]]}`},
			{"bad color", `{"name":"x","coordinates":` + squareZone + `,"color":"orange"}`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				router := newTestRouter(NewZoneHandlers(&mockZoneService{}, testLogger()))

				rec := performRequest(router, http.MethodPost, "/api/zones", tt.body)

				assert.Equal(t, http.StatusBadRequest, rec.Code)
			})
		}
	})

	t.Run("site taken", func(t *testing.T) {
		service := &mockZoneService{
			createFn: func(ctx context.Context, cmd application.CreateZoneCommand) (*application.ZoneDTO, error) {
				return nil, errors.ErrConflict("site already has a zone")
			},
		}
		router := newTestRouter(NewZoneHandlers(service, testLogger()))

		rec := performRequest(router, http.MethodPost, "/api/zones", `{"name":"x","coordinates":`+squareZone+`,"site_id":7}`)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestZoneHandlers_GetZone(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		err    error
		status int
	}{
		{"found", "/api/zones/3", nil, http.StatusOK},
		{"not found", "/api/zones/3", errors.ErrNotFound("zone"), http.StatusNotFound},
		{"bare domain error", "/api/zones/3", fmt.Errorf("load zone: %w", domain.ErrZoneNotFound), http.StatusNotFound},
		{"internal", "/api/zones/3", fmt.Errorf("boom"), http.StatusInternalServerError},
		{"non numeric id", "/api/zones/abc", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockZoneService{
				getFn: func(ctx context.Context, id int64) (*application.ZoneDTO, error) {
					assert.Equal(t, int64(3), id)
					if tt.err != nil {
						return nil, tt.err
					}
					return &application.ZoneDTO{ID: id}, nil
				},
			}
			router := newTestRouter(NewZoneHandlers(service, testLogger()))

			rec := performRequest(router, http.MethodGet, tt.path, "")

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestZoneHandlers_UpdateDelete(t *testing.T) {
	t.Run("partial update", func(t *testing.T) {
		service := &mockZoneService{
			updateFn: func(ctx context.Context, cmd application.UpdateZoneCommand) (*application.ZoneDTO, error) {
				assert.Equal(t, int64(4), cmd.ID)
				require.NotNil(t, cmd.Color)
				assert.Equal(t, "#00FF00", *cmd.Color)
				assert.Nil(t, cmd.Name)
				assert.Nil(t, cmd.Coordinates)
				return &application.ZoneDTO{ID: cmd.ID}, nil
			},
		}
		router := newTestRouter(NewZoneHandlers(service, testLogger()))

		rec := performRequest(router, http.MethodPut, "/api/zones/4", `{"color":"#00FF00"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("update rejects short polygon", func(t *testing.T) {
		router := newTestRouter(NewZoneHandlers(&mockZoneService{}, testLogger()))

		rec := performRequest(router, http.MethodPut, "/api/zones/4", `{"coordinates":[[1,2]]}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		var deleted []int64
		service := &mockZoneService{
			deleteFn: func(ctx context.Context, id int64) error {
				deleted = append(deleted, id)
				if id == 9 {
					return errors.ErrNotFound("zone")
				}
				return nil
			},
		}
		router := newTestRouter(NewZoneHandlers(service, testLogger()))

		rec := performRequest(router, http.MethodDelete, "/api/zones/4", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, rec.Body.String())

		rec = performRequest(router, http.MethodDelete, "/api/zones/9", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, []int64{4, 9}, deleted)
	})
}
