package session

import "time"

// Validation is the result of a read-only pre-flight check run before a
// signing flow starts. It never triggers a refresh — refreshing is the
// dispatcher's job; this exists so the UI can fail before collecting a
// password rather than after.
type Validation struct {
	IsValid   bool   `json:"is_valid"`
	IsExpired bool   `json:"is_expired"`
	Message   string `json:"message,omitempty"`
}

// Validate reports whether the session is good enough to start a
// sensitive operation. The two failure messages are distinct so the UI
// can tell "never unlocked" from "session expired".
func Validate(s *WalletSession, now time.Time) Validation {
	if s == nil {
		return Validation{Message: "please unlock your wallet"}
	}
	if IsExpired(s, now) {
		return Validation{IsExpired: true, Message: "session expired, please unlock again"}
	}
	return Validation{IsValid: true}
}
