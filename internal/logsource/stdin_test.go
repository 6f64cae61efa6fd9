package logsource

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func TestStdinSourceStopClosesChunks(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer func() { _ = w.Close() }()

	src := newStdinSourceWithReader(context.Background(), r)
	src.Stop()

	select {
	case _, ok := <-src.Chunks():
		if ok {
			t.Fatal("expected chunks channel to be closed after Stop")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for chunks channel to close")
	}
}

func TestStdinSourceStopIsIdempotent(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer func() { _ = w.Close() }()

	src := newStdinSourceWithReader(context.Background(), r)
	src.Stop()
	src.Stop()
}

func TestStdinSourceSplitsIntoChunks(t *testing.T) {
	input := strings.Repeat(`{"_time":1,"message":"x"}`+"\n", 20)
	src := newStdinSourceWithReader(context.Background(), strings.NewReader(input), Config{ChunkSize: 7})

	chunks := 0
	var got bytes.Buffer
	for c := range src.Chunks() {
		if len(c.Data) > 7 {
			t.Fatalf("chunk of %d bytes exceeds chunk size", len(c.Data))
		}
		got.Write(c.Data)
		chunks++
	}
	if got.String() != input {
		t.Fatalf("reassembled input mismatch")
	}
	if chunks < len(input)/7 {
		t.Fatalf("chunks = %d, want at least %d", chunks, len(input)/7)
	}
}
