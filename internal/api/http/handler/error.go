package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apiErrors "github.com/dtroode/filegate-session/internal/api/errors"
	"github.com/dtroode/filegate-session/internal/api/http/respond"
	"github.com/dtroode/filegate-session/internal/logger"
)

func handleError(w http.ResponseWriter, logger *logger.Logger, err error) {
	respond.Error(w, logger, err)
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return apiErrors.NewErrBadRequest("request body must be a JSON object")
	}
	return nil
}
