package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRetryHintExtractsDelay(t *testing.T) {
	hint := NewRegexHint(0)

	cases := []struct {
		name string
		err  error
		want time.Duration
	}{
		{
			name: "single-quoted payload",
			err:  &QuotaError{Payload: `{'retryDelay': '40s'}`},
			want: 40 * time.Second,
		},
		{
			name: "double-quoted payload",
			err:  &QuotaError{Payload: `{"error": {"details": [{"retryDelay": "7s"}]}}`},
			want: 7 * time.Second,
		},
		{
			name: "missing field falls back",
			err:  &QuotaError{Payload: `{"error": "RESOURCE_EXHAUSTED"}`},
			want: DefaultRetryFallback,
		},
		{
			name: "zero delay falls back",
			err:  &QuotaError{Payload: `{"retryDelay": "0s"}`},
			want: DefaultRetryFallback,
		},
		{
			name: "non-quota error falls back",
			err:  errors.New("connection refused"),
			want: DefaultRetryFallback,
		},
		{
			name: "wrapped quota error",
			err:  fmt.Errorf("turn 5: %w", &QuotaError{Payload: `{"retryDelay": "12s"}`}),
			want: 12 * time.Second,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := hint.Delay(tc.err); got != tc.want {
				t.Fatalf("Delay = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestRetryHintCustomFallback(t *testing.T) {
	hint := NewRegexHint(5 * time.Second)
	if got := hint.Delay(errors.New("x")); got != 5*time.Second {
		t.Fatalf("Delay = %s, want 5s", got)
	}
}

func TestIsQuota(t *testing.T) {
	if !IsQuota(&QuotaError{}) {
		t.Error("IsQuota(QuotaError) = false")
	}
	if !IsQuota(fmt.Errorf("wrap: %w", &QuotaError{})) {
		t.Error("IsQuota(wrapped) = false")
	}
	if IsQuota(errors.New("plain")) {
		t.Error("IsQuota(plain) = true")
	}
}

func TestGenerateParsesCandidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/test-model:generateContent" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "k123" {
			t.Errorf("missing API key header")
		}
		fmt.Fprint(w, `{"candidates": [{"content": {"parts": [{"text": "  שלום  "}]}}]}`)
	}))
	defer srv.Close()

	c, err := New(srv.URL, "k123")
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.Generate(context.Background(), GenRequest{Model: "test-model", Prompt: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "שלום" {
		t.Fatalf("text = %q, want trimmed candidate", got)
	}
}

func TestGenerateMapsQuotaErrors(t *testing.T) {
	t.Run("http 429", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"retryDelay": "9s"}`)
		}))
		defer srv.Close()

		c, err := New(srv.URL, "k")
		if err != nil {
			t.Fatal(err)
		}
		_, err = c.Generate(context.Background(), GenRequest{Model: "m", Prompt: "p"})
		if !IsQuota(err) {
			t.Fatalf("error = %v, want quota", err)
		}
		if got := NewRegexHint(0).Delay(err); got != 9*time.Second {
			t.Fatalf("hint delay = %s, want 9s", got)
		}
	})

	t.Run("resource exhausted payload", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, `{"error": {"status": "RESOURCE_EXHAUSTED"}}`)
		}))
		defer srv.Close()

		c, err := New(srv.URL, "k")
		if err != nil {
			t.Fatal(err)
		}
		_, err = c.Generate(context.Background(), GenRequest{Model: "m", Prompt: "p"})
		if !IsQuota(err) {
			t.Fatalf("error = %v, want quota", err)
		}
	})
}

func TestReadAPIKeyPrefersEnv(t *testing.T) {
	t.Setenv("GESHER_API_KEY", "env-key")
	key, err := ReadAPIKey("nonexistent-file")
	if err != nil {
		t.Fatal(err)
	}
	if key != "env-key" {
		t.Fatalf("key = %q, want env-key", key)
	}
}
