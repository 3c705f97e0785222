package routes_test

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/JaimeStill/webcarros/pkg/routes"
)

func ok(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body + ":" + r.PathValue("id")))
	}
}

func testGroups() []routes.Group {
	return []routes.Group{
		{
			Prefix: "/cars",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: ok("list")},
				{Method: "GET", Pattern: "/{id}", Handler: ok("find")},
			},
			Children: []routes.Group{
				{
					Prefix: "/{id}/images",
					Routes: []routes.Route{
						{Method: "GET", Pattern: "", Handler: ok("images")},
					},
				},
			},
		},
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, "/api", testGroups()...)

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{"GET", "/api/cars", http.StatusOK, "list:"},
		{"GET", "/api/cars/abc", http.StatusOK, "find:abc"},
		{"GET", "/api/cars/abc/images", http.StatusOK, "images:abc"},
		{"POST", "/api/cars", http.StatusMethodNotAllowed, ""},
		{"GET", "/cars", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestPatterns(t *testing.T) {
	got := routes.Patterns("/api", testGroups()...)
	want := []string{"GET /api/cars", "GET /api/cars/{id}", "GET /api/cars/{id}/images"}

	if !slices.Equal(got, want) {
		t.Errorf("Patterns() = %v, want %v", got, want)
	}
}
