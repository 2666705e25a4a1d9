// Package transport owns the byte channel to the worker process.
//
// Ownership boundary:
// - process spawn and teardown
// - timeout-bounded writes and chunk reads over the worker's pipes
// - the accumulate/parse read loop (ReadUntil)
//
// All I/O is synchronous. The only suspension points are Write and ReadChunk,
// and both give up with ErrTimeout once the configured window elapses.
package transport
