package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrContractViolation marks records that reached the mapper without
// satisfying the shape guaranteed by validation.
var ErrContractViolation = errors.New("invoice contract violated")

// DecodeError represents failures reading an invoice record
type DecodeError struct {
	Source  string
	Message string
	Cause   error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s (%v)", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Source, e.Message)
}

func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// NewDecodeError creates a new decode error
func NewDecodeError(source, message string, cause error) *DecodeError {
	return &DecodeError{
		Source:  source,
		Message: message,
		Cause:   cause,
	}
}

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule"`
	Message string      `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed on %s: %s (value=%v, rule=%s)", e.Field, e.Message, e.Value, e.Rule)
	}
	return fmt.Sprintf("validation failed on %s: %s (rule=%s)", e.Field, e.Message, e.Rule)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, rule, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Rule:    rule,
		Message: message,
	}
}

// ValidationErrors collects every field that failed validation
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	switch len(e) {
	case 0:
		return "validation failed"
	case 1:
		return e[0].Error()
	}

	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field)
	}
	return fmt.Sprintf("validation failed on %d fields: %s", len(e), strings.Join(parts, ", "))
}

// Fields returns the offending field paths in order
func (e ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for _, fe := range e {
		fields = append(fields, fe.Field)
	}
	return fields
}

// ContractError is returned by the mapper when a required part of the
// record is missing
type ContractError struct {
	Field   string
	Message string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrContractViolation, e.Field, e.Message)
}

func (e *ContractError) Unwrap() error {
	return ErrContractViolation
}

// NewContractError creates a new contract error
func NewContractError(field, message string) *ContractError {
	return &ContractError{
		Field:   field,
		Message: message,
	}
}
