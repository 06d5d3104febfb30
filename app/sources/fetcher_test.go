package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetcherSendsUserAgent(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	data, err := NewFetcher(server.Client(), "monitor-test/1.0").Get(context.Background(), server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ok" {
		t.Errorf("Expected body 'ok', got '%s'", data)
	}
	if gotAgent != "monitor-test/1.0" {
		t.Errorf("Expected user agent, got '%s'", gotAgent)
	}
}

func TestFetcherDecodesCharset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "Café" in Latin-1
		w.Write([]byte{'C', 'a', 'f', 0xe9})
	}))
	defer server.Close()

	data, err := NewFetcher(server.Client(), "test-agent").GetHTML(context.Background(), server.URL)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Café" {
		t.Errorf("Expected UTF-8 'Café', got '%s'", data)
	}
}

func TestFetcherClassifiesFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewFetcher(server.Client(), "test-agent").Get(context.Background(), server.URL)

	var diagnostic *Diagnostic
	if !errors.As(err, &diagnostic) {
		t.Fatalf("Expected Diagnostic, got %v", err)
	}
	if diagnostic.Kind != KindTransient || diagnostic.StatusCode != http.StatusNotFound {
		t.Errorf("Expected transient 404, got %+v", diagnostic)
	}

	server.Close()
	_, err = NewFetcher(http.DefaultClient, "test-agent").Get(context.Background(), server.URL)
	if diagnostic := AsDiagnostic(err, server.URL); diagnostic.Kind != KindTransient {
		t.Errorf("Expected transient network diagnostic, got %+v", diagnostic)
	}
}
