package custody

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNotAuthenticated indicates no wallet is unlocked for this browser session.
	ErrNotAuthenticated = errors.New("wallet not unlocked")
	// ErrSessionExpired indicates the session could not be refreshed and has been cleared.
	ErrSessionExpired = errors.New("session expired")
	// ErrCoreWalletRequired indicates the operation needs a core-role wallet and
	// none is unlocked. Distinct from ErrNotAuthenticated — the UI remediation
	// differs (unlock/promote a core wallet vs. unlock any wallet).
	ErrCoreWalletRequired = errors.New("core wallet required")
)

// Kind classifies a backend failure so calling UI code can choose a
// remediation without parsing message text.
type Kind string

const (
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindForbidden  Kind = "forbidden"
	KindNotFound   Kind = "not_found"
	KindBackend    Kind = "backend"
	KindTimeout    Kind = "timeout"
	KindNetwork    Kind = "network"
)

// Error is a failed backend call, carrying the HTTP-equivalent status
// alongside a single normalized human-readable message.
type Error struct {
	Status  int
	Kind    Kind
	Message string

	err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("custody: %s (status %d)", e.Message, e.Status)
}

func (e *Error) Unwrap() error { return e.err }

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuth
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindBackend
	default:
		return KindValidation
	}
}

func sessionExpiredError() *Error {
	return &Error{
		Status:  http.StatusUnauthorized,
		Kind:    KindAuth,
		Message: "session expired, please unlock again",
		err:     ErrSessionExpired,
	}
}

func notAuthenticatedError() *Error {
	return &Error{
		Status:  http.StatusUnauthorized,
		Kind:    KindAuth,
		Message: "please unlock your wallet",
		err:     ErrNotAuthenticated,
	}
}

func coreRequiredError() *Error {
	return &Error{
		Status:  http.StatusForbidden,
		Kind:    KindForbidden,
		Message: "core wallet required",
		err:     ErrCoreWalletRequired,
	}
}

// maxErrorBodySize caps how much of an error response feeds message
// normalization. Success bodies are not subject to it.
const maxErrorBodySize = 64 << 10

// httpError builds an Error from a non-2xx response, normalizing whatever
// shape the backend produced into one message.
func httpError(status int, body []byte) *Error {
	if len(body) > maxErrorBodySize {
		body = body[:maxErrorBodySize]
	}
	return &Error{
		Status:  status,
		Kind:    kindForStatus(status),
		Message: normalizeErrorBody(status, body),
	}
}

// normalizeErrorBody flattens the backend's error shapes — a bare string,
// a single message field, or a list of structured validation errors —
// into one human-readable string. A raw object must never leak into a
// user-facing message.
func normalizeErrorBody(status int, body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return http.StatusText(status)
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		// Plain-text body.
		return trimmed
	}
	if msg := flattenErrorValue(v); msg != "" {
		return msg
	}
	return http.StatusText(status)
}

func flattenErrorValue(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []any:
		var parts []string
		for _, item := range val {
			if s := flattenErrorValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		for _, key := range []string{"msg", "message", "detail", "error"} {
			if inner, ok := val[key]; ok {
				if s := flattenErrorValue(inner); s != "" {
					return s
				}
			}
		}
		return ""
	default:
		return ""
	}
}
