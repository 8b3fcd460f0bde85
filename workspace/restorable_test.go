package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/kbukum/buildprobe/errors"
)

func TestRestorableFileRestoresSnapshot(t *testing.T) {
	mem := afero.NewMemMapFs()
	live := Path("/work/demo/build.gradle.kts")
	if err := afero.WriteFile(mem, live.String(), []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := NewRestorableFile(mem, live)
	if err != nil {
		t.Fatalf("NewRestorableFile failed: %v", err)
	}
	if f.Path() != live {
		t.Errorf("expected live path %q, got %q", live, f.Path())
	}

	for i, mutation := range []string{"first change", "", "a much longer second change"} {
		if err := afero.WriteFile(mem, live.String(), []byte(mutation), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := f.RestoreOriginalContent(); err != nil {
			t.Fatalf("restore %d failed: %v", i, err)
		}
		got, _ := afero.ReadFile(mem, live.String())
		if string(got) != "original" {
			t.Fatalf("restore %d: expected original content, got %q", i, got)
		}
	}
}

func TestRestorableFileRestoreWithoutChanges(t *testing.T) {
	mem := afero.NewMemMapFs()
	live := Path("/work/a.txt")
	_ = afero.WriteFile(mem, live.String(), []byte("same"), 0o644)

	f, err := NewRestorableFile(mem, live)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.RestoreOriginalContent(); err != nil {
		t.Fatal(err)
	}
	if err := f.RestoreOriginalContent(); err != nil {
		t.Fatal(err)
	}
	got, _ := afero.ReadFile(mem, live.String())
	if string(got) != "same" {
		t.Errorf("unexpected content %q", got)
	}
}

func TestRestorableFileRecreatesDeletedFile(t *testing.T) {
	mem := afero.NewMemMapFs()
	live := Path("/work/a.txt")
	_ = afero.WriteFile(mem, live.String(), []byte("keep me"), 0o644)

	f, err := NewRestorableFile(mem, live)
	if err != nil {
		t.Fatal(err)
	}
	if err := mem.Remove(live.String()); err != nil {
		t.Fatal(err)
	}
	if err := f.RestoreOriginalContent(); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	got, _ := afero.ReadFile(mem, live.String())
	if string(got) != "keep me" {
		t.Errorf("unexpected content %q", got)
	}
}

func TestRestorableFileOriginalIsCopy(t *testing.T) {
	mem := afero.NewMemMapFs()
	live := Path("/work/a.txt")
	_ = afero.WriteFile(mem, live.String(), []byte("abc"), 0o644)

	f, err := NewRestorableFileIn(mem, live, "/snapshots")
	if err != nil {
		t.Fatal(err)
	}
	orig := f.Original()
	orig[0] = 'X'
	if string(f.Original()) != "abc" {
		t.Error("expected Original to return a copy")
	}

	entries, err := afero.ReadDir(mem, "/snapshots")
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one snapshot file, got %v (%v)", entries, err)
	}
	if !strings.HasSuffix(entries[0].Name(), "-a.txt") {
		t.Errorf("unexpected snapshot name %q", entries[0].Name())
	}
}

func TestRestorableFileUniqueSnapshots(t *testing.T) {
	mem := afero.NewMemMapFs()
	live := Path("/work/a.txt")
	_ = afero.WriteFile(mem, live.String(), []byte("v1"), 0o644)

	f1, err := NewRestorableFileIn(mem, live, "/snapshots")
	if err != nil {
		t.Fatal(err)
	}
	_ = afero.WriteFile(mem, live.String(), []byte("v2"), 0o644)
	f2, err := NewRestorableFileIn(mem, live, "/snapshots")
	if err != nil {
		t.Fatal(err)
	}

	if err := f1.RestoreOriginalContent(); err != nil {
		t.Fatal(err)
	}
	got, _ := afero.ReadFile(mem, live.String())
	if string(got) != "v1" {
		t.Errorf("expected first snapshot, got %q", got)
	}
	if string(f2.Original()) != "v2" {
		t.Errorf("expected second snapshot to hold v2, got %q", f2.Original())
	}
}

func TestNewRestorableFileMissing(t *testing.T) {
	_, err := NewRestorableFile(afero.NewMemMapFs(), Path("/nope/a.txt"))
	if !errors.HasCode(err, errors.ErrCodeIO) {
		t.Fatalf("expected IO_ERROR, got %v", err)
	}
}

func TestRestoreFailsWhenParentRemoved(t *testing.T) {
	osfs := afero.NewOsFs()
	dir := t.TempDir()
	parent := filepath.Join(dir, "project")
	if err := os.MkdirAll(parent, 0o755); err != nil {
		t.Fatal(err)
	}
	live := Path(filepath.Join(parent, "a.txt"))
	if err := os.WriteFile(live.String(), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := NewRestorableFileIn(osfs, live, filepath.Join(dir, "snapshots"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(parent); err != nil {
		t.Fatal(err)
	}

	err = f.RestoreOriginalContent()
	if !errors.HasCode(err, errors.ErrCodeIO) {
		t.Fatalf("expected IO_ERROR, got %v", err)
	}
	if !strings.Contains(err.Error(), "a.txt") {
		t.Errorf("expected path in error, got %q", err.Error())
	}
}
