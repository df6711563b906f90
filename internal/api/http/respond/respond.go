// Package respond writes JSON responses and API errors.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	apiErrors "github.com/dtroode/filegate-session/internal/api/errors"
	"github.com/dtroode/filegate-session/internal/logger"
	"github.com/dtroode/filegate-session/internal/model"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    apiErrors.Code `json:"code"`
	Message string         `json:"message"`
	Fields  []string       `json:"fields,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Empty writes the {} acknowledgment.
func Empty(w http.ResponseWriter) {
	JSON(w, http.StatusOK, struct{}{})
}

// ToAPIError maps err to the APIError it is reported as.
func ToAPIError(err error) *apiErrors.APIError {
	if apiErr, ok := apiErrors.As(err); ok {
		return apiErr
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return &apiErrors.APIError{HTTPCode: http.StatusNotFound, Code: apiErrors.CodeNotFound, Message: "not found"}
	default:
		return apiErrors.NewErrInternalServerError(err)
	}
}

// Error writes err as a JSON error response. Internal errors are logged, not exposed.
func Error(w http.ResponseWriter, logger *logger.Logger, err error) {
	apiErr := ToAPIError(err)
	if apiErr.HTTPCode >= http.StatusInternalServerError && logger != nil {
		logger.Error("HTTP: internal error",
			"error", err.Error())
	}

	JSON(w, apiErr.HTTPCode, ErrorBody{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Fields:  apiErr.Fields,
	})
}
