package geo

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(""); err == nil {
		t.Fatal("expected error for empty API key")
	}
}

func TestGeocode(t *testing.T) {
	var gotAddress, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAddress = r.URL.Query().Get("address")
		gotKey = r.URL.Query().Get("key")
		body := `{"status":"OK","results":[{"geometry":{"location":{"lat":-33.4372,"lng":-70.6506}}}]}`
		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer server.Close()

	c, err := NewClient("test-key")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	SetTestURL(c, server.URL)

	coords, err := c.Geocode("Av. Providencia 1234, Providencia")
	if err != nil {
		t.Fatalf("geocode: %v", err)
	}
	if coords.Lat != -33.4372 || coords.Lng != -70.6506 {
		t.Errorf("coords = %+v", coords)
	}
	if gotAddress != "Av. Providencia 1234, Providencia" {
		t.Errorf("address param = %q", gotAddress)
	}
	if gotKey != "test-key" {
		t.Errorf("key param = %q", gotKey)
	}
}

func TestGeocodeEmptyAddress(t *testing.T) {
	c, err := NewClient("test-key")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := c.Geocode(""); err == nil {
		t.Fatal("expected error for empty address")
	}
}

func TestGeocodeNoResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer server.Close()

	c, err := NewClient("test-key")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	SetTestURL(c, server.URL)

	if _, err := c.Geocode("nowhere"); err == nil {
		t.Fatal("expected error for zero results")
	}
}

func TestGeocodeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c, err := NewClient("test-key")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	SetTestURL(c, server.URL)

	if _, err := c.Geocode("Av. Providencia 1234"); err == nil {
		t.Fatal("expected error for server failure")
	}
}
