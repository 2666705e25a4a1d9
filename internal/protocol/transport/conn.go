package transport

import "time"

// DefaultChunkSize is the largest single read from the worker's output.
const DefaultChunkSize = 0x4000

// Conn is a duplex byte channel to one worker instance.
type Conn interface {
	// Write blocks until p is fully written or timeout elapses.
	Write(p []byte, timeout time.Duration) error
	// ReadChunk waits for output. Diagnostic output seen first is returned as
	// *ProtocolError instead of data.
	ReadChunk(timeout time.Duration) ([]byte, error)
	// Close kills the worker and releases its descriptors.
	Close() error
}
