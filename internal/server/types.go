package server

import (
	"github.com/rezonia/xrechnung-generator/internal/model"
)

// ValidationResponse is the response for validate endpoint
type ValidationResponse struct {
	Valid  bool                     `json:"valid"`
	Errors []*model.ValidationError `json:"errors"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   string                   `json:"error"`
	Details string                   `json:"details,omitempty"`
	Fields  []*model.ValidationError `json:"fields,omitempty"`
}
