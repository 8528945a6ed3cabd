package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJoinParsesResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/teams/join" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"team_id": 4, "connection_id": "abc"}`))
	}))
	defer ts.Close()

	out, err := NewClient(ts.URL).Join(context.Background(), "Alpha", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.TeamID != 4 || out.ConnectionID != "abc" {
		t.Fatalf("bad join result: %+v", out)
	}
}

func TestErrorStatusSurfacesBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"no free team slots"}`))
	}))
	defer ts.Close()

	err := NewClient(ts.URL).Submit(context.Background(), "c1", nil)
	if err == nil {
		t.Fatalf("expected an error for a 409 response")
	}
	if !strings.Contains(err.Error(), "api status 409") || !strings.Contains(err.Error(), "no free team slots") {
		t.Fatalf("error should carry status and body: %v", err)
	}
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	c := NewClient("http://game.local:8080///")
	if c.BaseURL != "http://game.local:8080" {
		t.Fatalf("got %q", c.BaseURL)
	}
}
