package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/nalanda-edu/nalanda/internal/content"
	"github.com/nalanda-edu/nalanda/internal/economy"
	"github.com/nalanda-edu/nalanda/internal/store"
	"github.com/nalanda-edu/nalanda/internal/wallet"
)

// errBadRequest marks errors caused by the request itself.
var errBadRequest = errors.New("bad request")

func badRequest(err error) error {
	return fmt.Errorf("%w: %w", errBadRequest, err)
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, economy.ErrInvalidConversion),
		errors.Is(err, store.ErrInvalidEntry),
		errors.Is(err, wallet.ErrInvalidGrant),
		errors.Is(err, wallet.ErrInvalidSettings):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, store.ErrDuplicateEntry):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest(fmt.Errorf("decode request: %w", err))
	}
	return nil
}

func decodeBundle(w http.ResponseWriter, r *http.Request) (*content.Bundle, error) {
	b, err := content.DecodeBundle(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, badRequest(err)
	}
	return b, nil
}
