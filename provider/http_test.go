package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/skillsenselab/menustream/errors"
)

func TestHTTPProcessor_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var item Item
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			t.Errorf("decode item: %v", err)
		}
		if item.Name != "焼き鳥" {
			t.Errorf("unexpected item name %q", item.Name)
		}
		json.NewEncoder(w).Encode(Succeeded(map[string]any{"translated": "yakitori"}))
	}))
	defer srv.Close()

	p := NewHTTP("translate", srv.URL, time.Second)
	res, err := p.Process(context.Background(), Item{ID: "i1", Name: "焼き鳥"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || res.Payload["translated"] != "yakitori" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestHTTPProcessor_SemanticFailureInBand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Failed("cannot translate"))
	}))
	defer srv.Close()

	p := NewHTTP("translate", srv.URL, time.Second)
	res, err := p.Process(context.Background(), Item{ID: "i1"})
	if err != nil {
		t.Fatalf("semantic failures must not be transport errors: %v", err)
	}
	if res.Success || res.Error != "cannot translate" {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestHTTPProcessor_ServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewHTTP("describe", srv.URL, time.Second)
	_, err := p.Process(context.Background(), Item{ID: "i1"})
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeExternalService {
		t.Fatalf("expected EXTERNAL_SERVICE error, got %v", err)
	}
	if !appErr.Retryable {
		t.Error("expected external service error to be retryable")
	}
}

func TestHTTPProcessor_NoEndpointUnavailable(t *testing.T) {
	p := NewHTTP("image", "", time.Second)
	if p.IsAvailable(context.Background()) {
		t.Error("expected processor without endpoint to be unavailable")
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout default, got %v", cfg.Timeout)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("expected retry defaults, got %+v", cfg.Retry)
	}
}
