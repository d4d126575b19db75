package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/contactkeval/option-pricer/internal/data"
	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

type errorResponse struct {
	Type string `json:"type"`
	Msg  string `json:"message"`
}

func setResponse(response any, w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		return fmt.Errorf("setResponse: encode: %w", err)
	}
	return nil
}

func setErrorResponse(errType string, statusCode int, err error, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := &errorResponse{Type: errType, Msg: err.Error()}
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		logger.Errorf("encode error response: %v", encodeErr)
	}
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pricing.ErrInvalidArgument), errors.Is(err, data.ErrInvalidArgument):
		setErrorResponse("invalid_argument", http.StatusBadRequest, err, w)
	case errors.Is(err, pricing.ErrDegenerateInput):
		setErrorResponse("degenerate_input", http.StatusBadRequest, err, w)
	case errors.Is(err, data.ErrNoData), errors.Is(err, data.ErrUpstream):
		setErrorResponse("upstream_data_unavailable", http.StatusBadGateway, err, w)
	default:
		logger.Errorf("request failed: %v", err)
		setErrorResponse("internal", http.StatusInternalServerError, err, w)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	if err := setResponse(v, w); err != nil {
		logger.Errorf("%v", err)
	}
}
