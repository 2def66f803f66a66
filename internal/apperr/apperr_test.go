package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Field("amount", "amount must be greater than 0"), http.StatusBadRequest},
		{NotFound("customer"), http.StatusNotFound},
		{Duplicate("duplicate invoice number", nil), http.StatusBadRequest},
		{Unauthorized("missing token"), http.StatusUnauthorized},
		{Forbidden("admin only"), http.StatusForbidden},
		{Internal("boom", errors.New("db down")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.StatusCode(), tt.err.Error())
	}
}

func TestAsTranslatesGormErrors(t *testing.T) {
	wrapped := fmt.Errorf("create invoice: %w", gorm.ErrDuplicatedKey)
	assert.Equal(t, KindDuplicate, As(wrapped).Kind)
	assert.Equal(t, KindNotFound, As(gorm.ErrRecordNotFound).Kind)
	assert.Equal(t, KindServer, As(errors.New("socket closed")).Kind)
	assert.Nil(t, As(nil))

	nf := NotFound("invoice")
	assert.Same(t, nf, As(fmt.Errorf("get: %w", nf)))
}

func TestFieldErrors(t *testing.T) {
	fields := FieldErrors{}
	require.NoError(t, fields.Err())

	fields.Add("quantity", "quantity must be greater than 0")
	fields.Add("quantity", "ignored second message")
	fields.Add("rate", "rate must be at least 0")

	err := fields.Err()
	require.Error(t, err)
	assert.True(t, Is(err, KindValidation))
	appErr := As(err)
	assert.Len(t, appErr.Details, 2)
	assert.Equal(t, "quantity must be greater than 0", appErr.Details["quantity"])
}

func TestFromBindingListsEveryField(t *testing.T) {
	v := validator.New()
	v.SetTagName("validate")
	type line struct {
		Quantity float64 `validate:"gt=0"`
		Rate     float64 `validate:"gte=0"`
	}
	type req struct {
		CustomerID uint   `validate:"required"`
		Items      []line `validate:"required,min=1,dive"`
	}
	err := v.Struct(req{Items: []line{{Quantity: 0, Rate: -1}}})
	require.Error(t, err)

	appErr := FromBinding(err)
	assert.Equal(t, KindValidation, appErr.Kind)
	assert.Equal(t, "customerID is required", appErr.Details["customerID"])
	assert.Contains(t, appErr.Details, "items[0].quantity")
	assert.Contains(t, appErr.Details, "items[0].rate")
}

func TestFromBindingNonValidatorError(t *testing.T) {
	appErr := FromBinding(errors.New("unexpected EOF"))
	assert.Equal(t, KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Details, "body")
}
