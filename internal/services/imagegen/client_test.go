package imagegen_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"newsroom/internal/config"
	"newsroom/internal/services"
	"newsroom/internal/services/imagegen"
)

func newClient(server *httptest.Server, key string) *imagegen.Client {
	cfg := config.Default().Images
	cfg.APIKey = key
	cfg.BaseURL = server.URL + "/v1/images/generations"
	return imagegen.NewClient(cfg, imagegen.WithHTTPClient(server.Client()), imagegen.WithRetry(3, time.Millisecond))
}

func TestGenerateImageReturnsDataURL(t *testing.T) {
	png := []byte("\x89PNG fake")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing auth header")
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req["model"] != "gpt-image-1-mini" || req["size"] != "1536x1024" || req["prompt"] != "a town hall" {
			t.Errorf("unexpected request %v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": base64.StdEncoding.EncodeToString(png)}},
		})
	}))
	defer server.Close()

	result, err := newClient(server, "sk-test").GenerateImage(context.Background(), "a town hall")
	if err != nil {
		t.Fatalf("GenerateImage failed: %v", err)
	}
	data, mime, err := imagegen.DecodeDataURL(result.URL)
	if err != nil {
		t.Fatalf("DecodeDataURL failed: %v", err)
	}
	if mime != "image/png" || string(data) != string(png) {
		t.Fatalf("unexpected payload %q %q", mime, data)
	}
	if result.Model != "gpt-image-1-mini" {
		t.Fatalf("unexpected model %q", result.Model)
	}
}

func TestGenerateImageRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"url":"https://cdn.example/img.png"}]}`))
	}))
	defer server.Close()

	result, err := newClient(server, "sk-test").GenerateImage(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("GenerateImage failed: %v", err)
	}
	if result.URL != "https://cdn.example/img.png" || atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("unexpected result %+v after %d calls", result, calls)
	}
}

func TestGenerateImageFailuresAreClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"content policy"}}`))
	}))
	defer server.Close()

	_, err := newClient(server, "sk-test").GenerateImage(context.Background(), "prompt")
	if !errors.Is(err, services.ErrGeneration) {
		t.Fatalf("expected generation error, got %v", err)
	}
	_, err = newClient(server, "").GenerateImage(context.Background(), "prompt")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	_, err = newClient(server, "sk-test").GenerateImage(context.Background(), "  ")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeDataURLRejectsPlainURLs(t *testing.T) {
	if _, _, err := imagegen.DecodeDataURL("https://example.com/a.png"); err == nil {
		t.Fatal("expected error")
	}
}
