package swr_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/waabox/buildboard/internal/domain"
	"github.com/waabox/buildboard/internal/swr"
)

func TestHTTPFetcher_ReturnsRawJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/api/repos" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`[{"name":"widget"}]`))
	}))
	defer srv.Close()

	fetch := swr.NewHTTPFetcher(srv.URL, nil)
	data, err := fetch(context.Background(), swr.ReposKey())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, ok := data.(json.RawMessage)
	if !ok {
		t.Fatalf("expected json.RawMessage, got %T", data)
	}
	var repos []domain.Repository
	if err := json.Unmarshal(raw, &repos); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repos) != 1 || repos[0].Name != "widget" {
		t.Errorf("unexpected repos: %v", repos)
	}
}

func TestHTTPFetcher_Non2xxIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"no such job"}`))
	}))
	defer srv.Close()

	fetch := swr.NewHTTPFetcher(srv.URL, nil)
	_, err := fetch(context.Background(), swr.JobKey("j1"))

	var upstreamErr *domain.UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected UpstreamError, got: %v", err)
	}
	if upstreamErr.Status != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", upstreamErr.Status)
	}
	if string(upstreamErr.Body) != `{"error":"no such job"}` {
		t.Errorf("expected upstream body preserved, got %s", upstreamErr.Body)
	}
}

func TestHTTPFetcher_401IsUnauthenticated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"authentication required"}`))
	}))
	defer srv.Close()

	fetch := swr.NewHTTPFetcher(srv.URL, nil)
	_, err := fetch(context.Background(), swr.ReposKey())
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got: %v", err)
	}
}

func TestHTTPFetcher_TransportFailureIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	fetch := swr.NewHTTPFetcher(srv.URL, nil)
	_, err := fetch(context.Background(), swr.ReposKey())
	if !errors.Is(err, domain.ErrUpstreamUnreachable) {
		t.Fatalf("expected ErrUpstreamUnreachable, got: %v", err)
	}
}
