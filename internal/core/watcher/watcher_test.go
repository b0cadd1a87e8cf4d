package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitFor(t *testing.T, ch <-chan []string, want string, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case paths := <-ch:
			for _, p := range paths {
				if p == want {
					return
				}
			}
		case <-deadline:
			t.Fatalf("timed out waiting for change event on %s", want)
		}
	}
}

func TestNewWatcher_RejectsNilCallback(t *testing.T) {
	w, err := NewWatcher(100*time.Millisecond, nil, nil)
	if err == nil {
		t.Fatal("expected error for nil callback")
	}
	if !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("expected os.ErrInvalid, got %v", err)
	}
	if w != nil {
		t.Fatal("expected nil watcher when callback is invalid")
	}
}

func TestWatcher(t *testing.T) {
	tmpDir := t.TempDir()

	filter, err := NewPathFilter(tmpDir, []string{"exclude_dir"}, []string{"*Generated.java"}, false)
	if err != nil {
		t.Fatal(err)
	}
	changedFiles := make(chan []string, 8)
	w, err := NewWatcher(100*time.Millisecond, filter, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{tmpDir}); err != nil {
		t.Fatal(err)
	}

	testFile := filepath.Join(tmpDir, "Main.java")
	if err := os.WriteFile(testFile, []byte("public class Main {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changedFiles, testFile, 2*time.Second)

	excluded := filepath.Join(tmpDir, "FooGenerated.java")
	if err := os.WriteFile(excluded, []byte("class FooGenerated {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case paths := <-changedFiles:
		for _, p := range paths {
			if p == excluded {
				t.Error("excluded file triggered event")
			}
		}
	case <-time.After(500 * time.Millisecond):
	}

	subdir := filepath.Join(tmpDir, "pkg")
	if err := os.MkdirAll(subdir, 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(subdir, "Nested.java")
	if err := os.WriteFile(nested, []byte("class Nested {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changedFiles, nested, 2*time.Second)
}

func TestWatcher_RenameTriggersChange(t *testing.T) {
	tmpDir := t.TempDir()

	changedFiles := make(chan []string, 8)
	w, err := NewWatcher(100*time.Millisecond, nil, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.Watch([]string{tmpDir}); err != nil {
		t.Fatal(err)
	}

	oldPath := filepath.Join(tmpDir, "Old.java")
	newPath := filepath.Join(tmpDir, "New.java")
	if err := os.WriteFile(oldPath, []byte("class Old {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(2 * time.Second)
	for {
		select {
		case paths := <-changedFiles:
			for _, p := range paths {
				if p == oldPath || p == newPath {
					return
				}
			}
		case <-timeout:
			t.Fatalf("timed out waiting for rename event, old=%s new=%s", oldPath, newPath)
		}
	}
}

func TestWatcher_IdenticalContentIsSuppressed(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "Same.java")
	content := []byte("class Same {}")
	if err := os.WriteFile(testFile, content, 0o644); err != nil {
		t.Fatal(err)
	}

	changedFiles := make(chan []string, 8)
	w, err := NewWatcher(50*time.Millisecond, nil, func(paths []string) {
		changedFiles <- paths
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Watch([]string{tmpDir}); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(testFile, content, 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case paths := <-changedFiles:
		t.Fatalf("unexpected event for identical content: %v", paths)
	case <-time.After(300 * time.Millisecond):
	}

	if err := os.WriteFile(testFile, []byte("class Same { int x; }"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, changedFiles, testFile, time.Second)
}

func TestPathFilter(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("generated/\nScratch.java\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := NewPathFilter(root, []string{"target"}, []string{"*Test.java"}, true)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "Main.java"), true},
		{filepath.Join(root, "src", "App.JAVA"), true},
		{filepath.Join(root, "main.py"), false},
		{filepath.Join(root, "MainTest.java"), false},
		{filepath.Join(root, "Scratch.java"), false},
	}
	for _, tc := range cases {
		if got := f.Accept(tc.path); got != tc.want {
			t.Errorf("Accept(%s) = %v, want %v", tc.path, got, tc.want)
		}
	}

	if !f.SkipDir(filepath.Join(root, "target")) {
		t.Error("expected target to be skipped by glob")
	}
	if !f.SkipDir(filepath.Join(root, "generated")) {
		t.Error("expected generated/ to be skipped by gitignore")
	}
	if f.SkipDir(filepath.Join(root, "src")) {
		t.Error("src must not be skipped")
	}
}

func TestPathFilter_GitignoreDisabled(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.java\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := NewPathFilter(root, nil, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if !f.Accept(filepath.Join(root, "Main.java")) {
		t.Fatal("gitignore must be ignored when disabled")
	}
}

func TestPathFilter_InvalidGlob(t *testing.T) {
	if _, err := NewPathFilter("", []string{"["}, nil, false); err == nil {
		t.Fatal("expected invalid glob error")
	}
}
