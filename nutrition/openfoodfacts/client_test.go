package openfoodfacts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func TestLookupByBarcode(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v2/product/737628064502" {
				t.Errorf("unexpected request path %q", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"status": 1,
				"product": {
					"code": "737628064502",
					"product_name": "Rice Noodles",
					"brands": "Thai Kitchen",
					"serving_size": "1 cup (240ml)",
					"nutriments": {
						"energy-kcal_100g": 385,
						"proteins_100g": 7.7,
						"sodium_100g": 0.98,
						"saturated-fat_100g": 3.85
					}
				}
			}`))
		}))
		defer server.Close()

		product, err := testClient(server.URL).LookupByBarcode(ctx, "737628064502")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if product == nil {
			t.Fatal("expected a product, got nil")
		}
		if product.ProductName != "Rice Noodles" {
			t.Errorf("unexpected product name %q", product.ProductName)
		}
		if product.Nutriments.Sodium != 0.98 || product.Nutriments.SaturatedFat != 3.85 {
			t.Errorf("unexpected nutriments: %+v", product.Nutriments)
		}
	})

	t.Run("NotFoundStatusCode", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		product, err := testClient(server.URL).LookupByBarcode(ctx, "000")
		if err != nil {
			t.Fatalf("a 404 is a miss, not an error; got %v", err)
		}
		if product != nil {
			t.Fatalf("expected nil product, got %+v", product)
		}
	})

	t.Run("NotFoundStatusField", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status": 0, "status_verbose": "product not found"}`))
		}))
		defer server.Close()

		product, err := testClient(server.URL).LookupByBarcode(ctx, "000")
		if err != nil {
			t.Fatalf("status 0 is a miss, not an error; got %v", err)
		}
		if product != nil {
			t.Fatalf("expected nil product, got %+v", product)
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := testClient(server.URL).LookupByBarcode(ctx, "123")
		if err == nil {
			t.Fatal("expected an error for a 500 response")
		}
	})

	t.Run("MalformedBody", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status": `))
		}))
		defer server.Close()

		_, err := testClient(server.URL).LookupByBarcode(ctx, "123")
		if err == nil {
			t.Fatal("expected a decode error for a truncated body")
		}
	})
}

func TestSearchByText(t *testing.T) {
	ctx := context.Background()

	t.Run("Results", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/cgi/search.pl" {
				t.Errorf("unexpected request path %q", r.URL.Path)
			}
			query := r.URL.Query()
			if query.Get("search_terms") != "peanut butter" {
				t.Errorf("unexpected search terms %q", query.Get("search_terms"))
			}
			if query.Get("json") != "1" || query.Get("action") != "process" {
				t.Errorf("unexpected query parameters: %v", query)
			}
			w.Write([]byte(`{
				"count": 2,
				"products": [
					{"code": "100", "product_name": "Crunchy Peanut Butter"},
					{"code": "101", "product_name": "Smooth Peanut Butter"}
				]
			}`))
		}))
		defer server.Close()

		products, err := testClient(server.URL).SearchByText(ctx, "peanut butter")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(products) != 2 {
			t.Fatalf("expected 2 products, got %d", len(products))
		}
		if products[0].Code != "100" || products[1].ProductName != "Smooth Peanut Butter" {
			t.Errorf("unexpected products: %+v", products)
		}
	})

	t.Run("EmptyResults", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"count": 0, "products": []}`))
		}))
		defer server.Close()

		products, err := testClient(server.URL).SearchByText(ctx, "xyzzy")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(products) != 0 {
			t.Fatalf("expected no products, got %+v", products)
		}
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		_, err := testClient(server.URL).SearchByText(ctx, "tea")
		if err == nil {
			t.Fatal("expected an error for a 502 response")
		}
	})
}
