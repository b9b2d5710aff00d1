package quantize

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

type fakeRunner struct {
	installed bool
	calls     [][]string
	failOn    string // file path that triggers an error
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.installed {
		return "/usr/bin/" + name, nil
	}
	return "", errors.New("not found")
}

func (f *fakeRunner) Run(name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.failOn != "" && args[len(args)-1] == f.failOn {
		return []byte("error: corrupt file"), errors.New("exit status 1")
	}
	return nil, nil
}

func TestRangeValid(t *testing.T) {
	cases := []struct {
		r  Range
		ok bool
	}{
		{Range{65, 80}, true},
		{Range{0, 100}, true},
		{Range{80, 80}, true},
		{Range{80, 65}, false},
		{Range{-1, 80}, false},
		{Range{65, 101}, false},
	}
	for _, tc := range cases {
		if got := tc.r.Valid(); got != tc.ok {
			t.Errorf("%s.Valid() = %v, want %v", tc.r, got, tc.ok)
		}
	}
}

func TestNewMissingTool(t *testing.T) {
	if _, err := New(&fakeRunner{installed: false}, Range{65, 80}); err == nil {
		t.Error("expected error when pngquant missing")
	}
}

func TestNewInvalidWindow(t *testing.T) {
	if _, err := New(&fakeRunner{installed: true}, Range{90, 10}); err == nil {
		t.Error("expected error for inverted window")
	}
}

func TestArgs(t *testing.T) {
	got := Args(Range{65, 80}, "out/icon-192.png")
	want := []string{"--quality=65-80", "--strip", "--ext", ".png", "--force", "--", "out/icon-192.png"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Args = %v, want %v", got, want)
	}
}

func TestListOnlyPNGs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"icon-48.png", "splash.png", "notes.txt", "photo.jpg", "FAVICON.PNG"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	// ReadDir is name-ordered; uppercase sorts first.
	want := []string{
		filepath.Join(dir, "FAVICON.PNG"),
		filepath.Join(dir, "icon-48.png"),
		filepath.Join(dir, "splash.png"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List = %v, want %v", got, want)
	}
}

func TestListMissingDir(t *testing.T) {
	if _, err := List(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestFileFailureIncludesToolOutput(t *testing.T) {
	r := &fakeRunner{installed: true, failOn: "bad.png"}
	q, err := New(r, Range{65, 80})
	if err != nil {
		t.Fatal(err)
	}

	if err := q.File("good.png"); err != nil {
		t.Errorf("File(good.png): %v", err)
	}
	err = q.File("bad.png")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "corrupt file") {
		t.Errorf("error does not include tool output: %v", err)
	}
	if len(r.calls) != 2 {
		t.Errorf("pngquant invoked %d times, want 2", len(r.calls))
	}
}
