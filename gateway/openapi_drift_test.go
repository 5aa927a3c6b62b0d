package gateway

import (
	"net/http"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"
)

// TestOpenAPIDrift compares the routes registered on the chi router with
// the paths documented in the embedded openapi.yaml, in both directions.
func TestOpenAPIDrift(t *testing.T) {
	var doc struct {
		Paths map[string]map[string]any `yaml:"paths"`
	}
	if err := yaml.Unmarshal(openapiSpec, &doc); err != nil {
		t.Fatalf("failed to parse openapi.yaml: %v", err)
	}

	specRoutes := make(map[string]bool)
	for path, ops := range doc.Paths {
		for method := range ops {
			m := strings.ToUpper(method)
			// Path-level "parameters" and x- extension keys are not operations.
			if m == "PARAMETERS" || strings.HasPrefix(method, "x-") {
				continue
			}
			specRoutes[m+" /api/v1"+path] = true
		}
	}

	// Router() only registers routes, it never invokes handlers, so a
	// zero-value API is fine here.
	router := chi.NewRouter()
	router.Mount("/api/v1", (&API{}).Router())

	routerRoutes := make(map[string]bool)
	err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		route = strings.TrimRight(route, "/")
		// Doc-serving routes are not part of the API contract.
		for _, skip := range []string{"/api/v1/openapi.yaml", "/api/v1/docs", "/api/v1/redoc"} {
			if strings.HasPrefix(route, skip) {
				return nil
			}
		}
		routerRoutes[method+" "+route] = true
		return nil
	})
	if err != nil {
		t.Fatalf("chi.Walk failed: %v", err)
	}

	for _, missing := range sortedDiff(routerRoutes, specRoutes) {
		t.Errorf("route registered but missing from openapi.yaml: %s", missing)
	}
	for _, stale := range sortedDiff(specRoutes, routerRoutes) {
		t.Errorf("route documented in openapi.yaml but not registered: %s", stale)
	}
}

// sortedDiff returns the keys of a that are absent from b.
func sortedDiff(a, b map[string]bool) []string {
	var out []string
	for k := range a {
		if !b[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
