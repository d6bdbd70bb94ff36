package facepp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestAnalyzeSkinSendsCredentialsAndImage(t *testing.T) {
	var gotKey, gotSecret, gotImage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotKey = r.FormValue("api_key")
		gotSecret = r.FormValue("api_secret")
		gotImage = r.FormValue("image_base64")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result": {"acne": {"value": 1}}}`))
	}))
	defer srv.Close()

	client, err := New(Config{APIKey: "key", APISecret: "secret", URL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	body, err := client.AnalyzeSkin(context.Background(), "aGVsbG8=")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if gotKey != "key" || gotSecret != "secret" || gotImage != "aGVsbG8=" {
		t.Fatalf("unexpected form values: %q %q %q", gotKey, gotSecret, gotImage)
	}
	if !strings.Contains(string(body), `"acne"`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestAnalyzeSkinMapsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_message": "INVALID_IMAGE_SIZE: image_base64"}`))
	}))
	defer srv.Close()

	client, err := New(Config{APIKey: "key", APISecret: "secret", URL: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.AnalyzeSkin(context.Background(), "aGVsbG8=")
	if !errors.Is(err, ErrDetectionFailed) {
		t.Fatalf("expected ErrDetectionFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "INVALID_IMAGE_SIZE") {
		t.Fatalf("expected error message to be carried, got %v", err)
	}
}

func TestAnalyzeSkinRejectsEmptyImage(t *testing.T) {
	client, err := New(Config{APIKey: "key", APISecret: "secret"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.AnalyzeSkin(context.Background(), ""); !errors.Is(err, ErrMissingImage) {
		t.Fatalf("expected ErrMissingImage, got %v", err)
	}
}

func TestAnalyzeSkinHonoursCancelledContext(t *testing.T) {
	client, err := New(Config{APIKey: "key", APISecret: "secret", URL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	cancel()

	if _, err := client.AnalyzeSkin(ctx, "aGVsbG8="); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewFaceppClientFromEnv(t *testing.T) {
	t.Setenv("FACEPP_API_KEY", "")
	t.Setenv("FACEPP_API_SECRET", "")
	if _, err := NewFaceppClient(); err == nil {
		t.Fatal("expected error without credentials")
	}

	t.Setenv("FACEPP_API_KEY", "key")
	t.Setenv("FACEPP_API_SECRET", "secret")
	t.Setenv("FACEPP_TIMEOUT", "nope")
	if _, err := NewFaceppClient(); err == nil {
		t.Fatal("expected error for invalid timeout")
	}

	t.Setenv("FACEPP_TIMEOUT", "3s")
	client, err := NewFaceppClient()
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	c := client.(*faceppClient)
	if c.cfg.Timeout != 3*time.Second || c.cfg.URL != defaultSkinURL {
		t.Fatalf("unexpected config: %+v", c.cfg)
	}
}
