package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errZoneMissing = stderrors.New("zone not found")
	errSiteTaken   = stderrors.New("site already has a zone")
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := ErrBadGateway("cargo").Wrap(cause)

	assert.Equal(t, "UPSTREAM_ERROR: cargo request failed: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus)
	assert.Equal(t, "CONFLICT: dup", ErrConflict("dup").Error())
}

func TestAppError_WithDetail(t *testing.T) {
	err := ErrNotFoundWithID("zone", "12").WithDetail("siteId", "4")

	assert.Equal(t, map[string]string{"id": "12", "siteId": "4"}, err.Details)
}

func TestMapper_Map(t *testing.T) {
	mapper := NewMapper().
		On(errZoneMissing, CodeNotFound, http.StatusNotFound).
		On(errSiteTaken, CodeConflict, http.StatusConflict)

	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"app error passes through", ErrConflict("dup"), CodeConflict, http.StatusConflict},
		{"wrapped app error", fmt.Errorf("ctx: %w", ErrConfiguration("missing key")), CodeConfiguration, http.StatusInternalServerError},
		{"sentinel", errZoneMissing, CodeNotFound, http.StatusNotFound},
		{"wrapped sentinel", fmt.Errorf("update zone 4: %w", errSiteTaken), CodeConflict, http.StatusConflict},
		{"deadline", fmt.Errorf("geocode: %w", context.DeadlineExceeded), CodeTimeout, http.StatusGatewayTimeout},
		{"text alone does not match", stderrors.New("tariff not found"), CodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapper.Map(tt.err)

			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantStatus, got.HTTPStatus)
		})
	}

	assert.Nil(t, mapper.Map(nil))
}

func TestMapDomainError(t *testing.T) {
	assert.Nil(t, MapDomainError(nil))

	got := MapDomainError(errZoneMissing)
	assert.Equal(t, CodeInternalError, got.Code)
	assert.Equal(t, "an internal error occurred", got.Message)
	assert.ErrorIs(t, got, errZoneMissing)

	_, ok := AsAppError(fmt.Errorf("wrap: %w", ErrValidation("bad")))
	assert.True(t, ok)
}
