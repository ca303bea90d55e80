package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"dukaan/pkg/router"
)

func ok(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func TestNamedRoutesAndURL(t *testing.T) {
	r := router.New()
	r.Get("/users/{id}", "users.show", ok)
	r.Post("/login", "auth.login", ok)

	path, found := r.Path("users.show")
	if !found || path != "/users/{id}" {
		t.Errorf("Path = %q, %v", path, found)
	}

	url, err := r.URL("users.show", map[string]string{"id": "42"})
	if err != nil || url != "/users/42" {
		t.Errorf("URL = %q, %v", url, err)
	}

	if _, err := r.URL("users.show", nil); err == nil {
		t.Error("expected an error when parameters are missing")
	}
	if _, err := r.URL("nope", nil); err == nil {
		t.Error("expected an error for an unknown route name")
	}
}

func TestRoutesSnapshot(t *testing.T) {
	r := router.New()
	r.Get("/orders", "orders.index", ok)
	r.Post("/orders", "orders.create", ok)
	r.HandleFunc("/healthz", ok)

	routes := r.Routes()
	if len(routes) != 2 {
		t.Fatalf("expected 2 named routes, got %d", len(routes))
	}
	seen := map[string]string{}
	for _, info := range routes {
		seen[info.Name] = info.Method + " " + info.Path
	}
	if seen["orders.index"] != "GET /orders" || seen["orders.create"] != "POST /orders" {
		t.Errorf("unexpected route table: %v", seen)
	}
}

func TestParamExtraction(t *testing.T) {
	r := router.New()

	var got string
	r.Get("/products/{name}", "products.show", func(w http.ResponseWriter, req *http.Request) {
		got = router.Param(req, "name")
	})

	req := httptest.NewRequest(http.MethodGet, "/products/Pizza", nil)
	r.Handler().ServeHTTP(httptest.NewRecorder(), req)

	if got != "Pizza" {
		t.Errorf("param = %q, want Pizza", got)
	}
}

func TestGroupPrefixAndMiddleware(t *testing.T) {
	r := router.New()

	var order []string
	tag := func(label string) router.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				order = append(order, label)
				next.ServeHTTP(w, req)
			})
		}
	}

	api := r.Group("/api", tag("outer"))
	api.Group("/v1", tag("inner")).Get("/ping", "ping", func(w http.ResponseWriter, req *http.Request) {
		order = append(order, "handler")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(order) != 3 || order[0] != "outer" || order[1] != "inner" || order[2] != "handler" {
		t.Errorf("middleware order = %v", order)
	}
}

func TestMethodNotMatched(t *testing.T) {
	r := router.New()
	r.Get("/users", "users.index", ok)

	req := httptest.NewRequest(http.MethodPost, "/users", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
