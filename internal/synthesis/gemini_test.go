package synthesis

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGeminiClientSyntheticDeterministic(t *testing.T) {
	client, err := NewGeminiClient(Options{})
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}
	if !client.Synthetic() {
		t.Fatal("client without api key should be synthetic")
	}

	req := Request{
		ReferenceBytes: []byte("reference"),
		Prompt:         "casual denim",
		AspectRatio:    "square",
		JobID:          "job-1",
		SlotIndex:      2,
	}
	first, err := client.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	second, err := client.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !bytes.Equal(first.Data, second.Data) {
		t.Fatal("synthetic output should be deterministic for identical requests")
	}
	if first.MIME != "image/png" {
		t.Fatalf("mime = %q, want image/png", first.MIME)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(first.Data))
	if err != nil {
		t.Fatalf("synthetic output is not a png: %v", err)
	}
	if cfg.Width != 1024 || cfg.Height != 1024 {
		t.Fatalf("square output = %dx%d, want 1024x1024", cfg.Width, cfg.Height)
	}

	other, err := client.Generate(context.Background(), Request{
		ReferenceBytes: []byte("reference"),
		Prompt:         "casual denim",
		AspectRatio:    "square",
		JobID:          "job-1",
		SlotIndex:      3,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if bytes.Equal(first.Data, other.Data) {
		t.Fatal("different slots should render different synthetic images")
	}
}

func TestGeminiClientGenerateDecodesInlineData(t *testing.T) {
	imageBytes := []byte("fake-image-bytes")
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var payload struct {
			Contents []struct {
				Parts []map[string]any `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(payload.Contents) != 1 || len(payload.Contents[0].Parts) != 2 {
			t.Errorf("unexpected payload shape: %+v", payload)
		}
		resp := map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{
						"inlineData": map[string]any{
							"mimeType": "image/png",
							"data":     base64.StdEncoding.EncodeToString(imageBytes),
						},
					}},
				},
			}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := NewGeminiClient(Options{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
	})
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}
	result, err := client.Generate(context.Background(), Request{
		ReferenceBytes: []byte("ref"),
		Prompt:         "prompt",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !bytes.Equal(result.Data, imageBytes) {
		t.Fatal("decoded image bytes do not match")
	}
	if result.MIME != "image/png" {
		t.Fatalf("mime = %q", result.MIME)
	}
	if gotPath != "/models/test-model:generateContent" {
		t.Fatalf("path = %q", gotPath)
	}
}

func TestGeminiClientGenerateRetriesThenFails(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewGeminiClient(Options{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Retries: 1,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}
	_, err = client.Generate(context.Background(), Request{ReferenceBytes: []byte("ref"), Prompt: "p"})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if !strings.Contains(err.Error(), "2 attempt(s) failed") {
		t.Fatalf("error = %v", err)
	}
}

func TestGeminiClientGenerateRequiresReference(t *testing.T) {
	client, err := NewGeminiClient(Options{})
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}
	if _, err := client.Generate(context.Background(), Request{Prompt: "p"}); err == nil {
		t.Fatal("expected error for missing reference bytes")
	}
}
