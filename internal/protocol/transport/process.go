//go:build unix

package transport

import (
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

var errWouldBlock = errors.New("transport: would block")

// Process is a spawned worker whose stdin/stdout/stderr are polled directly.
type Process struct {
	cmd       *exec.Cmd
	stdin     *os.File
	stdout    *os.File
	stderr    *os.File
	inFd      int
	outFd     int
	errFd     int
	chunkSize int
	closed    bool
}

// Spawn starts path with args and wires its three standard streams to pipes
// owned by the returned Process.
func Spawn(path string, args []string, chunkSize int) (*Process, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	inR, inW, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	outR, outW, err := os.Pipe()
	if err != nil {
		closeFiles(inR, inW)
		return nil, err
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		closeFiles(inR, inW, outR, outW)
		return nil, err
	}

	cmd := exec.Command(path, args...)
	cmd.Stdin = inR
	cmd.Stdout = outW
	cmd.Stderr = errW
	if err := cmd.Start(); err != nil {
		closeFiles(inR, inW, outR, outW, errR, errW)
		return nil, err
	}
	// child ends now belong to the worker
	closeFiles(inR, outW, errW)

	p := &Process{
		cmd:       cmd,
		stdin:     inW,
		stdout:    outR,
		stderr:    errR,
		inFd:      int(inW.Fd()),
		outFd:     int(outR.Fd()),
		errFd:     int(errR.Fd()),
		chunkSize: chunkSize,
	}
	for _, fd := range []int{p.inFd, p.outFd, p.errFd} {
		if err := unix.SetNonblock(fd, true); err != nil {
			_ = p.Close()
			return nil, err
		}
	}
	log.Debug().Str("path", path).Strs("args", args).Int("pid", p.Pid()).Msg("worker spawned")
	return p, nil
}

// Pid returns the worker's process id.
func (p *Process) Pid() int {
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}
	return p.cmd.Process.Pid
}

func (p *Process) Write(b []byte, timeout time.Duration) error {
	if p.closed {
		return ErrClosed
	}
	deadline := time.Now().Add(timeout)
	for len(b) > 0 {
		fds := []unix.PollFd{{Fd: int32(p.inFd), Events: unix.POLLOUT}}
		if err := pollUntil(fds, deadline); err != nil {
			return err
		}
		if fds[0].Revents&(unix.POLLERR|unix.POLLHUP) != 0 && fds[0].Revents&unix.POLLOUT == 0 {
			return ErrWorkerExited
		}
		n, err := unix.Write(p.inFd, b)
		switch {
		case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EPIPE):
			return ErrWorkerExited
		case err != nil:
			return err
		}
		b = b[n:]
	}
	return nil
}

func (p *Process) ReadChunk(timeout time.Duration) ([]byte, error) {
	if p.closed {
		return nil, ErrClosed
	}
	deadline := time.Now().Add(timeout)
	errFd := p.errFd
	for {
		fds := []unix.PollFd{
			{Fd: int32(p.outFd), Events: unix.POLLIN},
			{Fd: int32(errFd), Events: unix.POLLIN},
		}
		if err := pollUntil(fds, deadline); err != nil {
			return nil, err
		}

		if fds[1].Revents&unix.POLLIN != 0 {
			text, err := p.read(p.errFd)
			switch {
			case errors.Is(err, errWouldBlock):
			case err != nil:
				return nil, err
			case len(text) == 0:
				errFd = -1
			default:
				return nil, &ProtocolError{Stderr: strings.TrimSpace(string(text))}
			}
		} else if fds[1].Revents&(unix.POLLHUP|unix.POLLERR) != 0 {
			// diagnostic stream closed; a negative fd is ignored by poll
			errFd = -1
		}

		if fds[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
			chunk, err := p.read(p.outFd)
			switch {
			case errors.Is(err, errWouldBlock):
				continue
			case err != nil:
				return nil, err
			case len(chunk) == 0:
				return nil, ErrWorkerExited
			}
			return chunk, nil
		}
	}
}

// read returns an empty slice at end of stream.
func (p *Process) read(fd int) ([]byte, error) {
	buf := make([]byte, p.chunkSize)
	for {
		n, err := unix.Read(fd, buf)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN):
			return nil, errWouldBlock
		case err != nil:
			return nil, err
		}
		return buf[:n], nil
	}
}

// Close kills the worker and reaps it. It is safe to call more than once.
func (p *Process) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	var killErr error
	if p.cmd != nil && p.cmd.Process != nil {
		if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			killErr = err
		}
		_ = p.cmd.Wait()
	}
	closeFiles(p.stdin, p.stdout, p.stderr)
	return killErr
}

func pollUntil(fds []unix.PollFd, deadline time.Time) error {
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return ErrTimeout
		}
		ms := int(remaining / time.Millisecond)
		if ms == 0 {
			ms = 1
		}
		n, err := unix.Poll(fds, ms)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrTimeout
		}
		return nil
	}
}

func closeFiles(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			_ = f.Close()
		}
	}
}
