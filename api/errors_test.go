package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"example.com/brickworks/services/production/domain"
)

func recordError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	respondError(c, err)
	return w
}

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.NewValidationError("tonnes", "must be positive"), http.StatusBadRequest},
		{"attribution", &domain.AttributionMissing{Reason: "no tenant"}, http.StatusBadRequest},
		{"not found", &domain.NotFoundError{Kind: domain.KindStockpile, ID: "sp-1"}, http.StatusNotFound},
		{"illegal transition", &domain.IllegalStateTransition{Kind: domain.KindMixBatch, ID: "b-1", Current: domain.StatusCancelled, Op: "start"}, http.StatusConflict},
		{"insufficient", &domain.InsufficientAvailability{Edge: "stockpile_to_mixing", UpstreamID: "sp-1", Requested: 12, Available: 9, Unit: "t"}, http.StatusConflict},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := recordError(t, tc.err)
			require.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRespondErrorUnwrapsWrappedErrors(t *testing.T) {
	wrapped := errors.Wrap(&domain.NotFoundError{Kind: domain.KindPallet, ID: "p-1"}, "failed to load pallet")
	w := recordError(t, wrapped)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	w := recordError(t, errors.New("dial tcp 10.0.0.5:5432: connect: connection refused"))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "10.0.0.5")
}
