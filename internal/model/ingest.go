package model

// IngestChunk carries one read from a log source with source metadata.
// It is the transport contract between sources and the ingest processor.
// A chunk with a non-nil Err is the last one a source sends.
type IngestChunk struct {
	Source string
	Data   []byte
	Err    error
}
