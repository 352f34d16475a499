package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

func newTestReader(url string, timeout time.Duration) *Reader {
	return NewReader(url, nil, NewParser(), NewFilterer(DefaultCategory), "fitgirl-rss-reader/test", timeout)
}

func TestReader_Fetch(t *testing.T) {
	data, err := os.ReadFile("testdata/feed.xml")
	if err != nil {
		t.Fatalf("Failed to read fixture: %v", err)
	}

	userAgents := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgents <- r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write(data)
	}))
	defer server.Close()

	items, err := newTestReader(server.URL, 5*time.Second).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if userAgent := <-userAgents; userAgent != "fitgirl-rss-reader/test" {
		t.Errorf("Expected custom User-Agent, got %q", userAgent)
	}

	if len(items) != 2 {
		t.Fatalf("Expected 2 matching items, got %d", len(items))
	}

	hk := items[0]
	if hk.ID != "12345" {
		t.Errorf("Expected ID 12345, got %s", hk.ID)
	}
	if hk.TitleRaw != "Hollow Knight – v1.5.78.11833 + 2 DLCs" {
		t.Errorf("Unexpected title: %s", hk.TitleRaw)
	}
	if hk.URL != "https://fitgirl-repacks.site/hollow-knight/" {
		t.Errorf("Unexpected URL: %s", hk.URL)
	}
	if !hk.PublishedAt.Equal(time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected publish time: %v", hk.PublishedAt)
	}
	if hk.ContentHTML == "" {
		t.Error("Expected content:encoded to be captured")
	}

	if items[1].ID != "celeste-guid" {
		t.Errorf("Expected raw guid for second item, got %s", items[1].ID)
	}
}

func TestReader_Fetch_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestReader(server.URL, time.Second).Fetch(context.Background())

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected FetchError, got %v", err)
	}
	if fetchErr.URL != server.URL {
		t.Errorf("Expected URL %s, got %s", server.URL, fetchErr.URL)
	}
}

func TestReader_Fetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	_, err := newTestReader(server.URL, 50*time.Millisecond).Fetch(context.Background())

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected FetchError, got %v", err)
	}
}

func TestReader_Fetch_Unparseable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not a feed"))
	}))
	defer server.Close()

	_, err := newTestReader(server.URL, time.Second).Fetch(context.Background())

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected ParseError, got %v", err)
	}
}

func TestReader_Fetch_EmptyFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<?xml version="1.0"?><rss version="2.0"><channel><title>x</title></channel></rss>`))
	}))
	defer server.Close()

	items, err := newTestReader(server.URL, time.Second).Fetch(context.Background())

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		t.Fatalf("Expected an empty feed not to be a ParseError, got %v", err)
	}
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected no items, got %d", len(items))
	}
}
