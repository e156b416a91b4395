package distance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOSRMMatrixConvertsMetersToKm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/table/v1/driving/") {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("annotations") != "distance" {
			t.Fatalf("expected distance annotations, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"Ok","distances":[[0,1500],[2500,0]]}`))
	}))
	defer srv.Close()

	provider, err := NewOSRMMatrixProvider(srv.URL, 1.0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m, err := provider.Matrix(context.Background(), []string{"52.5,13.4", "52.6,13.5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m[0][1] != 1.5 {
		t.Fatalf("m[0][1] = %f, want 1.5 km", m[0][1])
	}
	if m[1][0] != 2.5 {
		t.Fatalf("m[1][0] = %f, want 2.5 km", m[1][0])
	}
}

func TestOSRMMatrixAppliesRoadFactor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"Ok","distances":[[0,1000],[1000,0]]}`))
	}))
	defer srv.Close()

	provider, err := NewOSRMMatrixProvider(srv.URL, 1.3, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m, err := provider.Matrix(context.Background(), []string{"52.5,13.4", "52.6,13.5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m[0][1] != 1.3 {
		t.Fatalf("m[0][1] = %f, want 1.3 km", m[0][1])
	}
}

func TestOSRMMatrixFailsOnUnroutableCell(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"Ok","distances":[[0,null],[1000,0]]}`))
	}))
	defer srv.Close()

	provider, err := NewOSRMMatrixProvider(srv.URL, 1.0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := provider.Matrix(context.Background(), []string{"52.5,13.4", "52.6,13.5"}); err == nil {
		t.Fatal("expected error for unroutable cell, got nil")
	}
}

func TestOSRMMatrixRejectsBadLocation(t *testing.T) {
	provider, err := NewOSRMMatrixProvider("http://localhost:1", 1.0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := provider.Matrix(context.Background(), []string{"not-a-coordinate"}); err == nil {
		t.Fatal("expected error for unparsable location, got nil")
	}
}

func TestOSRMMatrixRetriesTransientFailures(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"code":"Ok","distances":[[0,1000],[1000,0]]}`))
	}))
	defer srv.Close()

	provider, err := NewOSRMMatrixProvider(srv.URL, 1.0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m, err := provider.Matrix(context.Background(), []string{"52.5,13.4", "52.6,13.5"})
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if m[0][1] != 1 {
		t.Fatalf("m[0][1] = %f, want 1 km", m[0][1])
	}
}
