package overpass_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anishmaharjan/caremap/internal/adapters/overpass"
	"github.com/anishmaharjan/caremap/internal/core/domain"
)

func TestClient_ParsesNodesAndCenters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("data") == "" {
			t.Error("missing data form field")
		}
		w.Write([]byte(`{"elements":[
			{"type":"node","lat":43.26,"lon":-2.93,"tags":{"name":"Basurto"}},
			{"type":"way","center":{"lat":43.27,"lon":-2.94},"tags":{"name":"Cruces"}}
		]}`))
	}))
	defer srv.Close()

	client := overpass.New(srv.URL, time.Second)
	elements, err := client.FetchHospitals(context.Background(), domain.GeoPoint{Lat: 43.26, Lon: -2.93}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(elements) != 2 {
		t.Fatalf("got %d elements, want 2", len(elements))
	}
	if elements[0].Lat == nil || *elements[0].Lat != 43.26 {
		t.Error("node coordinates not parsed")
	}
	if elements[1].Center == nil || elements[1].Center.Lat != 43.27 {
		t.Error("way center not parsed")
	}
	if elements[1].Tags["name"] != "Cruces" {
		t.Error("tags not parsed")
	}
}

func TestClient_NonSuccessStatusIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := overpass.New(srv.URL, time.Second)
	elements, err := client.FetchHospitals(context.Background(), domain.GeoPoint{}, 10)
	if err != nil {
		t.Fatalf("non-2xx must not be an error, got %v", err)
	}
	if len(elements) != 0 {
		t.Errorf("got %d elements, want none", len(elements))
	}
}

func TestClient_TransportFailureIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	client := overpass.New(srv.URL, time.Second)
	_, err := client.FetchHospitals(context.Background(), domain.GeoPoint{}, 10)
	if !errors.Is(err, domain.ErrProviderUnreachable) {
		t.Fatalf("expected ProviderUnreachable, got %v", err)
	}
}

func TestClient_MalformedBodyIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"elements":`))
	}))
	defer srv.Close()

	client := overpass.New(srv.URL, time.Second)
	_, err := client.FetchHospitals(context.Background(), domain.GeoPoint{}, 10)
	if !errors.Is(err, domain.ErrProviderUnreachable) {
		t.Fatalf("expected ProviderUnreachable, got %v", err)
	}
}
