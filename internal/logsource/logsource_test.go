package logsource

import (
	"bytes"
	"context"
	"testing"
	"time"
)

// drain collects every chunk until the channel closes.
func drain(t *testing.T, src LogSource) ([]byte, error) {
	t.Helper()
	var data bytes.Buffer
	var lastErr error
	timeout := time.After(5 * time.Second)
	for {
		select {
		case c, ok := <-src.Chunks():
			if !ok {
				return data.Bytes(), lastErr
			}
			if c.Source != src.Name() {
				t.Fatalf("chunk source = %q, want %q", c.Source, src.Name())
			}
			if c.Err != nil {
				lastErr = c.Err
				continue
			}
			data.Write(c.Data)
		case <-timeout:
			t.Fatal("timed out draining source")
		}
	}
}

func TestNewPicksSource(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tests := []struct {
		location string
		want     string
	}{
		{"http://example.invalid/logs", "http"},
		{"https://example.invalid/logs", "http"},
		{"-", "stdin"},
		{"/var/log/app.log", "file"},
	}
	for _, tt := range tests {
		src := New(ctx, tt.location)
		src.Stop()
		if src.Name() != tt.want {
			t.Errorf("New(%q).Name() = %q, want %q", tt.location, src.Name(), tt.want)
		}
	}
}
