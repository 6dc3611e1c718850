package classify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func classifierStub(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token")
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Error(err)
		}
		if req.Model != "grok-beta" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		})
	}))
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	t.Setenv("XAI_API_URL", url)
	t.Setenv("XAI_API_KEY", "test-key")
	return NewClient()
}

func TestClassifyConfirmed(t *testing.T) {
	srv := classifierStub(t, `{"confirmed": true}`, http.StatusOK)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	confirmed, err := c.Classify(context.Background(), "Ficha preenchida")
	if err != nil {
		t.Fatal(err)
	}
	if !confirmed {
		t.Error("expected confirmed")
	}
}

func TestClassifyNotConfirmed(t *testing.T) {
	srv := classifierStub(t, `{"confirmed": false}`, http.StatusOK)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	confirmed, err := c.Classify(context.Background(), "bom dia")
	if err != nil {
		t.Fatal(err)
	}
	if confirmed {
		t.Error("expected not confirmed")
	}
}

func TestClassifyAPIFailure(t *testing.T) {
	srv := classifierStub(t, "", http.StatusTooManyRequests)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Classify(context.Background(), "oi")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestClassifyMalformedVerdict(t *testing.T) {
	srv := classifierStub(t, "not json at all", http.StatusOK)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Classify(context.Background(), "oi")
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if errors.Is(err, ErrUnavailable) {
		t.Error("parse failures are not availability failures")
	}
}
