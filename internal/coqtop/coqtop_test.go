package coqtop

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/coqctl/internal/testutil/testlog"
	"github.com/danmuck/coqctl/internal/tools"
)

type fakeRunner struct {
	banners map[string]string
	stderr  map[string]string
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (tools.Result, error) {
	f.calls = append(f.calls, name+" "+strings.Join(args, " "))
	if msg, ok := f.stderr[name]; ok {
		return tools.Result{Stderr: []byte(msg)}, nil
	}
	banner, ok := f.banners[name]
	if !ok {
		return tools.Result{ExitCode: 127}, errors.New("exec: not found")
	}
	return tools.Result{Stdout: []byte(banner)}, nil
}

const banner871 = "The Coq Proof Assistant, version 8.7.1 (December 2017)\ncompiled on Dec 1 2017 with OCaml 4.05.0\n"

func TestParseVersion(t *testing.T) {
	testlog.Start(t)

	v, err := ParseVersion(banner871)
	if err != nil || v != "8.7.1" {
		t.Fatalf("parse version: v=%q err=%v", v, err)
	}
	v, err = ParseVersion("The Coq Proof Assistant, version 8.7.1\n")
	if err != nil || v != "8.7.1" {
		t.Fatalf("parse version without date: v=%q err=%v", v, err)
	}
	if _, err := ParseVersion("coqtop 8.7.1"); !errors.Is(err, ErrNoVersion) {
		t.Fatalf("expected ErrNoVersion, got %v", err)
	}
}

func TestArgsFixedPrefix(t *testing.T) {
	testlog.Start(t)

	got := strings.Join(Args([]string{"-R", "theories", "Lib"}), " ")
	want := "-ideslave -main-channel stdfds -async-proofs on -R theories Lib"
	if got != want {
		t.Fatalf("unexpected args: %q", got)
	}
}

func TestLocateExplicitPath(t *testing.T) {
	testlog.Start(t)

	r := &fakeRunner{banners: map[string]string{"/opt/coq/bin/coqtop": banner871}}
	path, err := Locate(r, "/opt/coq/bin/coqtop", "/usr/bin")
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if path != "/opt/coq/bin/coqtop" {
		t.Fatalf("unexpected path: %q", path)
	}
	if len(r.calls) != 1 || r.calls[0] != "/opt/coq/bin/coqtop --version" {
		t.Fatalf("explicit path must be the only probe: %v", r.calls)
	}
}

func TestLocateScansPath(t *testing.T) {
	testlog.Start(t)

	second := filepath.Join("/usr/local/bin", Executable)
	r := &fakeRunner{
		banners: map[string]string{second: banner871},
		stderr:  map[string]string{filepath.Join("/broken", Executable): "cannot load"},
	}
	pathEnv := strings.Join([]string{"/bin", "/broken", "", "/usr/local/bin"}, string(filepath.ListSeparator))
	path, err := Locate(r, "", pathEnv)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if path != second {
		t.Fatalf("unexpected path: %q", path)
	}
}

func TestLocateUnsupportedVersion(t *testing.T) {
	testlog.Start(t)

	r := &fakeRunner{banners: map[string]string{"/opt/coqtop": "The Coq Proof Assistant, version 8.9.0 (January 2019)"}}
	_, err := Locate(r, "/opt/coqtop", "")
	var cerr *ConnectionError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConnectionError, got %v", err)
	}
	if cerr.Version != "8.9.0" || !strings.Contains(cerr.Error(), SupportedVersion) {
		t.Fatalf("unexpected error: %+v", cerr)
	}
}

func TestLocateMissingExecutable(t *testing.T) {
	testlog.Start(t)

	r := &fakeRunner{}
	_, err := Locate(r, "", "/a"+string(filepath.ListSeparator)+"/b")
	var cerr *ConnectionError
	if !errors.As(err, &cerr) || !strings.Contains(cerr.Error(), "no coqtop found") {
		t.Fatalf("expected missing-executable ConnectionError, got %v", err)
	}

	_, err = Locate(r, "/nope/coqtop", "")
	if !errors.As(err, &cerr) || cerr.Path != "/nope/coqtop" {
		t.Fatalf("expected invalid-executable ConnectionError, got %v", err)
	}
}
