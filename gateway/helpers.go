package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/verdantlabs/walletgate/autounlock"
	"github.com/verdantlabs/walletgate/custody"
)

// maxBodySize caps request bodies; every endpoint here carries at most a
// password and a couple of identifiers.
const maxBodySize = 16 << 10

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func decodeJSON[T any](w http.ResponseWriter, r *http.Request, maxBytes int64) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return v, false
	}
	return v, true
}

// mapError translates custody and autounlock failures to HTTP responses.
// The status distinctions matter to the frontend: 401 means "unlock
// again", 403 with the core message means "promote or unlock a core
// wallet", 404 means the resource is gone or expired.
func mapError(w http.ResponseWriter, err error) {
	var ce *custody.Error
	switch {
	case errors.As(err, &ce):
		writeError(w, ce.Status, ce.Message)
	case errors.Is(err, autounlock.ErrNoRecord):
		writeError(w, http.StatusNotFound, "no auto-unlock session for this wallet")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
