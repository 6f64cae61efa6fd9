package logsource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	
	"github.com/klauspost/compress/gzip"
)

func TestHTTPSourceStreamsBody(t *testing.T) {
	body := `{"_time":1,"message":"a"}` + "\n" + `{"_time":2,"message":"b"}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	src := NewHTTPSource(context.Background(), srv.URL+"/logs", Config{ChunkSize: 5})
	data, err := drain(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != body {
		t.Fatalf("body = %q, want %q", data, body)
	}
}

func TestHTTPSourceNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	data, err := drain(t, NewHTTPSource(context.Background(), srv.URL))
	if len(data) != 0 {
		t.Fatalf("expected no data, got %q", data)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", statusErr.Code)
	}
	if got, want := err.Error(), "Failed to fetch logs: Not Found"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
}

func TestHTTPSourceGzipBody(t *testing.T) {
	body := `{"_time":1,"message":"compressed"}` + "\n"
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, _ = zw.Write([]byte(body))
	_ = zw.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept-Encoding") != "gzip" {
			t.Errorf("Accept-Encoding = %q, want gzip", r.Header.Get("Accept-Encoding"))
		}
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write(gz.Bytes())
	}))
	defer srv.Close()

	data, err := drain(t, NewHTTPSource(context.Background(), srv.URL))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != body {
		t.Fatalf("body = %q, want %q", data, body)
	}
}

func TestHTTPSourceTruncatedBodyReportsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		_, _ = w.Write([]byte(`{"_time":1}` + "\n"))
	}))
	defer srv.Close()

	data, err := drain(t, NewHTTPSource(context.Background(), srv.URL))
	if err == nil {
		t.Fatal("expected a read error for a truncated body")
	}
	if string(data) != `{"_time":1}`+"\n" {
		t.Fatalf("data before the error = %q", data)
	}
}

func TestHTTPSourceStopAbortsRequest(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"_time":1}` + "\n"))
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	src := NewHTTPSource(context.Background(), srv.URL)
	first := <-src.Chunks()
	if first.Err != nil {
		t.Fatalf("first chunk error: %v", first.Err)
	}
	src.Stop()

	_, err := drain(t, src)
	if err != nil {
		t.Fatalf("cancellation must not surface an error, got %v", err)
	}
}
