package service

/*
 Copyright 2019 - 2025 Crunchy Data Solutions, Inc.
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at
      http://www.apache.org/licenses/LICENSE-2.0
 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

import (
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/geocore/vtserver/internal/cache"
	"github.com/geocore/vtserver/internal/conf"
	"github.com/geocore/vtserver/internal/data"
)

func init() {
	conf.Configuration.Metadata.Title = "Test Tileserver"
	conf.Configuration.Metadata.Description = "Test Description"
}

func setupTestCatalog() {
	catalogInstance = data.CatMockInstance()
	serviceInstance = &Service{
		cache: cache.New(cache.NewDisabledCache(), nil),
	}
}

func TestHandleHealth(t *testing.T) {
	setupTestCatalog()

	req, err := http.NewRequest("GET", "/health", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	handler := appHandler(handleHealth)
	handler.ServeHTTP(rr, req)

	var response HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Errorf("failed to parse health response: %v", err)
	}

	// The mock catalog's one datasource always fails its ping, so with a
	// single datasource configured the overall status is "error".
	if status := rr.Code; status != http.StatusServiceUnavailable {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusServiceUnavailable)
	}
	if response.Status != "error" {
		t.Errorf("expected status 'error' for mock catalog, got %q", response.Status)
	}
}

func TestHandleRoot(t *testing.T) {
	setupTestCatalog()

	req, err := http.NewRequest("GET", "/", nil)
	if err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	handler := appHandler(handleRoot)
	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
	}

	contentType := rr.Header().Get("Content-Type")
	if contentType != ContentTypeHTML {
		t.Errorf("expected Content-Type %s, got %s", ContentTypeHTML, contentType)
	}
}

func TestHandleTileInvalidCoordinates(t *testing.T) {
	setupTestCatalog()

	tests := []struct {
		name string
		url  string
		code int
	}{
		{"Invalid zoom", "/tilesets/test/99/0/0.mvt", http.StatusBadRequest},
		{"Negative zoom", "/tilesets/test/-1/0/0.mvt", http.StatusNotFound}, // regex doesn't match negative numbers
		{"Invalid x", "/tilesets/test/10/9999/0.mvt", http.StatusBadRequest},
		{"Invalid y", "/tilesets/test/10/0/9999.mvt", http.StatusBadRequest},
		{"Negative x", "/tilesets/test/10/-1/0.mvt", http.StatusNotFound},
		{"Negative y", "/tilesets/test/10/0/-1.mvt", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest("GET", tt.url, nil)
			if err != nil {
				t.Fatal(err)
			}

			rr := httptest.NewRecorder()
			router := initRouter("")
			router.ServeHTTP(rr, req)

			if status := rr.Code; status != tt.code {
				t.Errorf("handler returned wrong status code: got %v want %v", status, tt.code)
			}
		})
	}
}

func TestRouter(t *testing.T) {
	setupTestCatalog()
	router := initRouter("")

	tests := []struct {
		method string
		path   string
		match  bool
	}{
		{"GET", "/", true},
		{"GET", "/index.html", true},
		{"GET", "/health", true},
		{"GET", "/tilesets", true},
		{"GET", "/tilesets/buildings.json", true},
		{"GET", "/tilesets/buildings/10/512/384.mvt", true},
		{"GET", "/tilesets/buildings/10/512/384.pbf", true},
		{"POST", "/", false},
		{"GET", "/invalid", false},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, tt.path, nil)
			if err != nil {
				t.Fatal(err)
			}

			var match bool
			router.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
				if route.Match(req, &mux.RouteMatch{}) {
					match = true
				}
				return nil
			})

			if match != tt.match {
				t.Errorf("expected route match %v for %s %s, got %v", tt.match, tt.method, tt.path, match)
			}
		})
	}
}

func TestGetBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		scheme   string
		expected string
	}{
		{
			name:     "Simple HTTP",
			host:     "localhost:9000",
			scheme:   "http",
			expected: "http://localhost:9000",
		},
		{
			name:     "HTTPS",
			host:     "example.com",
			scheme:   "https",
			expected: "https://example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.Host = tt.host
			if tt.scheme == "https" {
				req.TLS = &tls.ConnectionState{}
			}

			baseURL := getBaseURL(req)
			if baseURL != tt.expected {
				t.Errorf("expected base URL %s, got %s", tt.expected, baseURL)
			}
		})
	}
}

func TestFormatTileURL(t *testing.T) {
	tests := []struct {
		baseURL  string
		tileset  string
		expected string
	}{
		{
			baseURL:  "http://localhost:9000",
			tileset:  "buildings",
			expected: "http://localhost:9000/tilesets/buildings/{z}/{x}/{y}.pbf",
		},
		{
			baseURL:  "https://example.com",
			tileset:  "roads",
			expected: "https://example.com/tilesets/roads/{z}/{x}/{y}.pbf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.tileset, func(t *testing.T) {
			result := formatTileURL(tt.baseURL, tt.tileset)
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}
