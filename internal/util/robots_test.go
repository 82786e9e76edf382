package util

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/docketscan/internal/model"
)

func robotsServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestRobotsChecker_Disallowed(t *testing.T) {
	srv, _ := robotsServer(t, http.StatusOK, "User-agent: *\nDisallow: /results\n")
	checker := NewRobotsChecker(srv.Client(), "docketscan/0.1")

	_, err := checker.Check(context.Background(), srv.URL+"/results?name=John+Smith")
	if !errors.Is(err, model.ErrDisallowed) {
		t.Fatalf("expected ErrDisallowed, got %v", err)
	}
}

func TestRobotsChecker_CrawlDelay(t *testing.T) {
	srv, hits := robotsServer(t, http.StatusOK, "User-agent: docketscan\nCrawl-delay: 5\nAllow: /\n")
	checker := NewRobotsChecker(srv.Client(), "docketscan/0.1 (+https://example.com)")

	delay, err := checker.Check(context.Background(), srv.URL+"/results")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delay != 5*time.Second {
		t.Errorf("expected 5s crawl delay, got %v", delay)
	}

	if _, err := checker.Check(context.Background(), srv.URL+"/other"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := atomic.LoadInt32(hits); got != 1 {
		t.Errorf("expected robots.txt fetched once, got %d", got)
	}
}

func TestRobotsChecker_MissingRobotsAllows(t *testing.T) {
	srv, _ := robotsServer(t, http.StatusNotFound, "")
	checker := NewRobotsChecker(srv.Client(), "docketscan/0.1")

	if _, err := checker.Check(context.Background(), srv.URL+"/results"); err != nil {
		t.Fatalf("expected allow on 404, got %v", err)
	}
}

func TestRobotsChecker_UnreachableAllows(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	checker := NewRobotsChecker(&http.Client{Timeout: time.Second}, "docketscan/0.1")
	if _, err := checker.Check(context.Background(), url+"/results"); err != nil {
		t.Fatalf("expected allow when unreachable, got %v", err)
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := map[string]string{
		"docketscan/0.1 (+https://example.com)": "docketscan",
		"Mozilla/5.0 (X11)":                     "Mozilla",
		"":                                      "",
	}
	for in, want := range tests {
		if got := NormalizeUserAgent(in); got != want {
			t.Errorf("NormalizeUserAgent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://plain:8080", "http://secure:8443")

	req := httptest.NewRequest(http.MethodGet, "https://example.com/", nil)
	got, err := proxy(req)
	if err != nil || got.Host != "secure:8443" {
		t.Errorf("https request: got %v, %v", got, err)
	}

	req = httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	got, err = proxy(req)
	if err != nil || got.Host != "plain:8080" {
		t.Errorf("http request: got %v, %v", got, err)
	}
}
