package upstream_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/waabox/buildboard/internal/domain"
	"github.com/waabox/buildboard/internal/upstream"
)

func TestForward_AttachesTokenHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := upstream.NewClient(srv.URL)
	resp, err := client.Forward(context.Background(), http.MethodGet, "/v1/repos", "secret-cred", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "token secret-cred" {
		t.Errorf("expected 'token secret-cred', got '%s'", gotAuth)
	}
	if !resp.OK() {
		t.Errorf("expected 2xx, got %d", resp.Status)
	}
}

func TestForward_RelaysStatusAndBodyVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"already registered"}`))
	}))
	defer srv.Close()

	client := upstream.NewClient(srv.URL)
	resp, err := client.Forward(context.Background(), http.MethodPost, "/v1/repos", "cred", strings.NewReader(`{"owner":"waabox","name":"widget"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != http.StatusConflict {
		t.Errorf("expected 409, got %d", resp.Status)
	}
	if string(resp.Body) != `{"error":"already registered"}` {
		t.Errorf("expected upstream body verbatim, got '%s'", resp.Body)
	}
	if resp.OK() {
		t.Error("409 must not read as OK")
	}
}

func TestForward_ForwardsMethodAndBody(t *testing.T) {
	var gotMethod, gotBody, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := upstream.NewClient(srv.URL)
	_, err := client.Forward(context.Background(), http.MethodPost, "/v1/repos", "cred", strings.NewReader(`{"owner":"waabox","name":"widget"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("expected POST, got %s", gotMethod)
	}
	if gotPath != "/v1/repos" {
		t.Errorf("expected path /v1/repos, got %s", gotPath)
	}
	if gotBody != `{"owner":"waabox","name":"widget"}` {
		t.Errorf("body not forwarded unchanged: %s", gotBody)
	}
}

func TestForward_TransportFailureIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // no listener left

	client := upstream.NewClient(srv.URL)
	_, err := client.Forward(context.Background(), http.MethodGet, "/v1/jobs", "cred", nil)
	if !errors.Is(err, domain.ErrUpstreamUnreachable) {
		t.Fatalf("expected ErrUpstreamUnreachable, got: %v", err)
	}
}
