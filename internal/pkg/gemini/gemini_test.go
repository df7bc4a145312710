package gemini

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ougirez/thaitourism/internal/pkg/constants"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/test-model:generateContent" || r.URL.Query().Get("key") != "secret" {
			t.Errorf("unexpected request %s", r.URL)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"text":"summarise"`) {
			t.Errorf("unexpected body %s", body)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"North recovered 80%."}]}}]}`))
	}))
	defer srv.Close()

	c := New(Config{APIKey: "secret", Model: "test-model", Endpoint: srv.URL + "/models"})
	got, err := c.Generate(context.Background(), "summarise")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "North recovered 80%." {
		t.Errorf("got %q", got)
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "status", status: http.StatusTooManyRequests, body: `{}`},
		{name: "api error", status: http.StatusOK, body: `{"error":{"code":400,"message":"bad key"}}`},
		{name: "empty", status: http.StatusOK, body: `{"candidates":[]}`},
		{name: "garbage", status: http.StatusOK, body: `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(Config{APIKey: "k", Endpoint: srv.URL})
			if _, err := c.Generate(context.Background(), "p"); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGenerateWithoutKey(t *testing.T) {
	_, err := New(Config{}).Generate(context.Background(), "p")
	if !errors.Is(err, constants.ErrInsightDisabled) {
		t.Fatalf("got %v, want ErrInsightDisabled", err)
	}
}
