package respond

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amazongreen/storefront/internal/errs"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", errs.E(errs.Validation, "op", errors.New("bad")), http.StatusBadRequest},
		{"bare sentinel", errs.ErrEmptyCart, http.StatusBadRequest},
		{"not found", fmt.Errorf("wrap: %w", errs.E(errs.NotFound, "op", errs.ErrUserNotFound)), http.StatusNotFound},
		{"unauthorized", errs.ErrInvalidCredentials, http.StatusUnauthorized},
		{"conflict", errs.ErrGroupFull, http.StatusConflict},
		{"forbidden", errs.ErrNotGroupMember, http.StatusForbidden},
		{"external", errs.E(errs.ExternalService, "op", errors.New("503")), http.StatusBadGateway},
		{"persistence", errs.E(errs.Persistence, "op", errors.New("db")), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestReason(t *testing.T) {
	err := fmt.Errorf("orders.Checkout: %w", errs.E(errs.Validation, "orders.Checkout", errs.ErrEmptyCart))
	assert.Equal(t, "cart is empty", Reason(err))

	nested := errs.E(errs.NotFound, "outer", errs.E(errs.NotFound, "inner", errs.ErrProductNotFound))
	assert.Equal(t, "product not found", Reason(nested))

	assert.Equal(t, "plain", Reason(errors.New("plain")))
}
