// Package validation checks invoice records before they are rendered.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	money "github.com/rezonia/xrechnung-generator/internal/decimal"
	"github.com/rezonia/xrechnung-generator/internal/model"
)

// Validator validates invoice records
type Validator interface {
	// Validate returns model.ValidationErrors when one or more fields are
	// invalid, nil otherwise
	Validate(inv *model.Invoice) error
}

// StructValidator validates using struct tags on the model types
type StructValidator struct {
	validate *validator.Validate
}

// New creates a validator for invoice records
func New() *StructValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names so field paths match the input document
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Compare amounts numerically for gte/lte rules. A NullDecimal maps to
	// a pointer so that "required" fails only when the value is unset.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		switch d := field.Interface().(type) {
		case decimal.Decimal:
			return money.Float64(d)
		case decimal.NullDecimal:
			if !d.Valid {
				return (*float64)(nil)
			}
			f := money.Float64(d.Decimal)
			return &f
		}
		return nil
	}, decimal.Decimal{}, decimal.NullDecimal{})

	return &StructValidator{validate: v}
}

// Validate performs full validation
func (s *StructValidator) Validate(inv *model.Invoice) error {
	if inv == nil {
		return model.ValidationErrors{
			model.NewValidationError("invoice", nil, "required", "invoice is required"),
		}
	}

	err := s.validate.Struct(inv)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating invoice: %w", err)
	}

	result := make(model.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		result = append(result, model.NewValidationError(
			fieldPath(fe.Namespace()),
			displayValue(fe.Value()),
			ruleName(fe),
			message(fe),
		))
	}
	return result
}

// fieldPath drops the root struct name: "Invoice.supplier.country" -> "supplier.country"
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func ruleName(fe validator.FieldError) string {
	if fe.Param() != "" {
		return fe.Tag() + "=" + fe.Param()
	}
	return fe.Tag()
}

func displayValue(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map:
		if rv.IsNil() {
			return nil
		}
	}
	if s, ok := v.(string); ok && s == "" {
		return nil
	}
	return v
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must contain at least %s entries", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must contain at most %s entries", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "iso4217":
		return "must be an ISO 4217 currency code"
	case "iso3166_1_alpha2":
		return "must be an ISO 3166-1 alpha-2 country code"
	case "bic":
		return "must be a valid BIC"
	case "numeric":
		return "must be numeric"
	case "alphanum":
		return "must contain only letters and digits"
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}
