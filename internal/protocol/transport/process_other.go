//go:build !unix

package transport

import "time"

// Process is unavailable without poll(2).
type Process struct{}

func Spawn(path string, args []string, chunkSize int) (*Process, error) {
	return nil, ErrUnsupportedPlatform
}

func (p *Process) Pid() int { return 0 }

func (p *Process) Write([]byte, time.Duration) error { return ErrUnsupportedPlatform }

func (p *Process) ReadChunk(time.Duration) ([]byte, error) { return nil, ErrUnsupportedPlatform }

func (p *Process) Close() error { return nil }
