package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// memCreds is a test credential store.
type memCreds struct {
	mu      sync.Mutex
	access  string
	refresh string
}

func (c *memCreds) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.access
}

func (c *memCreds) RefreshToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refresh
}

func (c *memCreds) SetAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.access = token
}

func (c *memCreds) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.access = ""
	c.refresh = ""
}

func TestClient_AttachesBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Fatalf("expected bearer header, got %q", got)
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server, &memCreds{access: "tok-1"})
	resp, err := client.Get(context.Background(), "/anything")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := client.DecodeResponse(resp, nil); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestClient_RefreshesOnceOn401(t *testing.T) {
	var refreshCalls, dataCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			refreshCalls++
			var req struct {
				RefreshToken string `json:"refresh_token"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			if req.RefreshToken != "refresh-1" {
				t.Fatalf("unexpected refresh token %q", req.RefreshToken)
			}
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-2"})
		case "/data":
			dataCalls++
			if r.Header.Get("Authorization") == "Bearer tok-2" {
				w.Write([]byte(`{"value":42}`))
				return
			}
			http.Error(w, `{"message":"expired"}`, http.StatusUnauthorized)
		}
	}))
	defer server.Close()

	creds := &memCreds{access: "tok-1", refresh: "refresh-1"}
	client := newTestClient(t, server, creds)

	resp, err := client.Get(context.Background(), "/data")
	if err != nil {
		t.Fatalf("get after refresh: %v", err)
	}
	var out struct {
		Value int `json:"value"`
	}
	if err := client.DecodeResponse(resp, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Value != 42 {
		t.Fatalf("unexpected payload: %+v", out)
	}
	if refreshCalls != 1 {
		t.Fatalf("expected exactly 1 refresh call, got %d", refreshCalls)
	}
	if dataCalls != 2 {
		t.Fatalf("expected original + one retry, got %d calls", dataCalls)
	}
	if creds.AccessToken() != "tok-2" {
		t.Fatalf("expected rotated access token, got %q", creds.AccessToken())
	}
}

func TestClient_RefreshFailureClearsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			http.Error(w, `{"message":"refresh revoked"}`, http.StatusUnauthorized)
			return
		}
		http.Error(w, `{"message":"expired"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	creds := &memCreds{access: "tok-1", refresh: "refresh-1"}
	client := newTestClient(t, server, creds)

	_, err := client.Get(context.Background(), "/data")
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if creds.AccessToken() != "" || creds.RefreshToken() != "" {
		t.Fatal("expected credentials cleared after failed refresh")
	}
}

func TestClient_NoRefreshWithoutRefreshToken(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, `{"message":"expired"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server, &memCreds{access: "tok-1"})
	resp, err := client.Get(context.Background(), "/data")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	err = client.DecodeResponse(resp, nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected plain 401 APIError, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected no retry, got %d calls", calls)
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"errors array first", `{"errors":["phone taken","other"],"message":"ignored"}`, "phone taken"},
		{"message field", `{"message":"bad code"}`, "bad code"},
		{"plain text", `service down`, "service down"},
		{"empty", ``, "fallback"},
		{"unknown json", `{"weird":1}`, "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage([]byte(tt.body), "fallback"); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNew_ValidatesBaseURL(t *testing.T) {
	for _, bad := range []string{"", "not a url", "ftp://host", "://"} {
		if _, err := New(Config{BaseURL: bad, Logger: quietLogger()}); err == nil {
			t.Fatalf("expected error for base URL %q", bad)
		}
	}
}
