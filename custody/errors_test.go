package custody

import (
	"net/http"
	"testing"
)

func TestNormalizeErrorBody(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"plain string body", 400, "amount too low", "amount too low"},
		{"json string", 400, `"amount too low"`, "amount too low"},
		{"message field", 400, `{"message": "bad address"}`, "bad address"},
		{"error field", 400, `{"error": "bad address"}`, "bad address"},
		{"detail string", 400, `{"detail": "wallet is locked"}`, "wallet is locked"},
		{
			"detail list of field errors",
			422,
			`{"detail": [{"msg": "amount too low"}, {"msg": "bad address"}]}`,
			"amount too low, bad address",
		},
		{"top-level list", 400, `[{"msg": "a"}, {"msg": "b"}]`, "a, b"},
		{"detail list of strings", 400, `{"detail": ["a", "b"]}`, "a, b"},
		{"empty body falls back to status text", 404, "", "Not Found"},
		{"unrecognized object falls back to status text", 500, `{"trace_id": "xyz"}`, "Internal Server Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeErrorBody(tc.status, []byte(tc.body)); got != tc.want {
				t.Fatalf("normalizeErrorBody(%q) = %q, want %q", tc.body, got, tc.want)
			}
		})
	}
}

func TestKindForStatus(t *testing.T) {
	cases := map[int]Kind{
		400: KindValidation,
		401: KindAuth,
		403: KindForbidden,
		404: KindNotFound,
		422: KindValidation,
		500: KindBackend,
		503: KindBackend,
	}
	for status, want := range cases {
		if got := kindForStatus(status); got != want {
			t.Fatalf("kindForStatus(%d) = %q, want %q", status, got, want)
		}
	}
}

func TestHTTPErrorCarriesStatus(t *testing.T) {
	err := httpError(http.StatusUnprocessableEntity, []byte(`{"detail": [{"msg": "amount too low"}, {"msg": "bad address"}]}`))
	if err.Status != http.StatusUnprocessableEntity {
		t.Fatalf("Status = %d", err.Status)
	}
	if err.Message != "amount too low, bad address" {
		t.Fatalf("Message = %q", err.Message)
	}
}
