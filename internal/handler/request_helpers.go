package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/StickerSwap_Go/internal/logger"
)

// HeaderUserID carries the caller's identity. It is set by the authentication
// layer in front of this service.
const HeaderUserID = "X-User-ID"

// DecodeAndValidateRequest decodes a JSON request body and validates it.
// If it returns an error the response has already been written.
//
//	var req ProposeTradeRequest
//	if err := DecodeAndValidateRequest(r, w, &req, OpProposeTrade); err != nil {
//	    return
//	}
func DecodeAndValidateRequest(r *http.Request, w http.ResponseWriter, req any, actionName string) error {
	log := logger.FromContext(r.Context())

	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		log.Warn(fmt.Sprintf("Failed to decode %s request", actionName), "error", err)
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return err
	}

	if err := GetValidator().ValidateStruct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  ErrMsgInvalidRequestSummary,
			Fields: FormatValidationError(err),
		})
		return err
	}
	return nil
}

// ValidationErrorResponse defines the response structure for validation errors
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// requireUserID returns the caller's id, writing a 401 when it is missing.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get(HeaderUserID)
	if userID == "" {
		logger.FromContext(r.Context()).Warn("Request without user identity", "path", r.URL.Path)
		respondError(w, http.StatusUnauthorized, ErrMsgMissingUserID)
		return "", false
	}
	return userID, true
}

// GetQueryParam retrieves a required query parameter, writing a 400 when it is missing.
func GetQueryParam(r *http.Request, w http.ResponseWriter, paramName string) (string, bool) {
	value := r.URL.Query().Get(paramName)
	if value == "" {
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgMissingQueryParam, paramName))
		return "", false
	}
	return value, true
}

// optionalBoolParam parses an optional boolean query parameter. A nil result
// means the parameter was absent.
func optionalBoolParam(r *http.Request, w http.ResponseWriter, paramName string) (*bool, bool) {
	raw := r.URL.Query().Get(paramName)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf(ErrMsgInvalidQueryParam, paramName))
		return nil, false
	}
	return &v, true
}

func pathParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}
