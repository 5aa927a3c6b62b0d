package util

import (
	"encoding/base64"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFKD normalization. Wallet passwords are normalized
// before transmission so the same visible input always produces the same
// byte sequence regardless of how the platform composed it.
func Normalize(s string) string {
	return norm.NFKD.String(s)
}

// Base64URLEncode encodes without padding, the form used for session keys.
func Base64URLEncode(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}

func Base64URLDecode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
