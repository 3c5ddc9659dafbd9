package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/xrechnung-generator/internal/model"
)

func TestDecodeError(t *testing.T) {
	err := model.NewDecodeError("invoice.json", "failed to read file", nil)
	assert.Equal(t, "[invoice.json] failed to read file", err.Error())
}

func TestDecodeError_WithCause(t *testing.T) {
	cause := assert.AnError
	err := model.NewDecodeError("yaml", "failed to convert YAML", cause)

	require.Contains(t, err.Error(), "yaml")
	require.Contains(t, err.Error(), "failed to convert YAML")
	require.ErrorIs(t, err, cause)
}

func TestValidationError(t *testing.T) {
	err := model.NewValidationError("paymentDetails.bankDetails.iban", "DE12", "min=15", "must be at least 15 characters")

	require.Contains(t, err.Error(), "paymentDetails.bankDetails.iban")
	require.Contains(t, err.Error(), "DE12")
	require.Contains(t, err.Error(), "min=15")
}

func TestValidationError_NoValue(t *testing.T) {
	err := model.NewValidationError("supplier.name", nil, "required", "is required")
	assert.NotContains(t, err.Error(), "value=")
}

func TestValidationErrors(t *testing.T) {
	single := model.ValidationErrors{
		model.NewValidationError("id", nil, "required", "is required"),
	}
	assert.Equal(t, single[0].Error(), single.Error())

	multi := model.ValidationErrors{
		model.NewValidationError("id", nil, "required", "is required"),
		model.NewValidationError("currency", "euro", "iso4217", "must be an ISO 4217 currency code"),
	}
	assert.Equal(t, "validation failed on 2 fields: id, currency", multi.Error())
	assert.Equal(t, []string{"id", "currency"}, multi.Fields())

	var err error = multi
	var target model.ValidationErrors
	require.True(t, errors.As(err, &target))
	assert.Len(t, target, 2)
}

func TestContractError(t *testing.T) {
	err := model.NewContractError("taxTotal", "is required")

	require.ErrorIs(t, err, model.ErrContractViolation)
	assert.Equal(t, "invoice contract violated: taxTotal: is required", err.Error())
}
