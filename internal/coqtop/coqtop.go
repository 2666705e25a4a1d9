package coqtop

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/coqctl/internal/tools"
)

const (
	// SupportedVersion is the only worker release this protocol engine speaks.
	SupportedVersion = "8.7.1"
	// Executable is the binary name searched for on PATH.
	Executable = "coqtop"

	versionMarker = "version "
	probeTimeout  = 10 * time.Second
)

var (
	ErrNoVersion     = errors.New("coqtop: no version in banner")
	ErrInvalidBinary = errors.New("coqtop: not a valid executable")
)

// ConnectionError means no usable, compatible worker executable exists. It is
// never retried.
type ConnectionError struct {
	Path    string
	Version string
	Reason  string
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("coqtop: %s", e.Reason)
}

// Args returns the fixed worker arguments followed by extra.
func Args(extra []string) []string {
	args := []string{"-ideslave", "-main-channel", "stdfds", "-async-proofs", "on"}
	return append(args, extra...)
}

// ParseVersion extracts the release from a `--version` banner such as
// "The Coq Proof Assistant, version 8.7.1 (December 2017)".
func ParseVersion(banner string) (string, error) {
	_, rest, ok := strings.Cut(banner, versionMarker)
	if !ok {
		return "", ErrNoVersion
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", ErrNoVersion
	}
	return fields[0], nil
}

// Probe runs `path --version` and returns the reported release. Any output on
// stderr disqualifies the executable.
func Probe(runner tools.CommandRunner, path string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	res, err := runner.Run(ctx, path, "--version")
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidBinary, path, err)
	}
	if len(strings.TrimSpace(string(res.Stderr))) > 0 {
		return "", fmt.Errorf("%w: %s: %s", ErrInvalidBinary, path, strings.TrimSpace(string(res.Stderr)))
	}
	return ParseVersion(string(res.Stdout))
}

// Locate resolves the executable to spawn. An explicit path is probed on its
// own; otherwise each directory of pathEnv is tried in order.
func Locate(runner tools.CommandRunner, explicit, pathEnv string) (string, error) {
	path, version, err := find(runner, explicit, pathEnv)
	if err != nil {
		return "", err
	}
	if version != SupportedVersion {
		return "", &ConnectionError{
			Path:    path,
			Version: version,
			Reason:  fmt.Sprintf("coqtop ver. %s is not supported, please consider installing %s", version, SupportedVersion),
		}
	}
	log.Debug().Str("path", path).Str("version", version).Msg("coqtop located")
	return path, nil
}

func find(runner tools.CommandRunner, explicit, pathEnv string) (string, string, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		version, err := Probe(runner, explicit)
		if err != nil {
			log.Debug().Err(err).Str("path", explicit).Msg("coqtop probe failed")
			return "", "", &ConnectionError{
				Path:   explicit,
				Reason: fmt.Sprintf("%s is not a valid coqtop executable", explicit),
			}
		}
		return explicit, version, nil
	}

	for _, dir := range filepath.SplitList(pathEnv) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, Executable)
		version, err := Probe(runner, candidate)
		if err != nil {
			continue
		}
		return candidate, version, nil
	}
	return "", "", &ConnectionError{Reason: "no coqtop found in $PATH"}
}
