package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestLocal(t *testing.T) (*Local, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "anime", "minilm"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "anime", "minilm", "embeddings_synopsis.npy"), []byte("npy"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	l, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return l, dir
}

func TestLocal_ReadAll(t *testing.T) {
	l, _ := newTestLocal(t)

	data, err := ReadAll(context.Background(), l, "anime/minilm/embeddings_synopsis.npy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "npy" {
		t.Errorf("data = %q", data)
	}
}

func TestLocal_NotFound(t *testing.T) {
	l, _ := newTestLocal(t)

	_, err := l.Open(context.Background(), "anime/minilm/missing.npy")
	if !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
	ok, err := l.Exists(context.Background(), "anime/minilm/missing.npy")
	if err != nil || ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
}

func TestLocal_Exists(t *testing.T) {
	l, _ := newTestLocal(t)

	ok, err := l.Exists(context.Background(), "anime/minilm/embeddings_synopsis.npy")
	if err != nil || !ok {
		t.Fatalf("Exists file = %v, %v", ok, err)
	}
	ok, err = l.Exists(context.Background(), "anime/minilm")
	if err != nil || ok {
		t.Fatalf("directories are not objects, got %v, %v", ok, err)
	}
}

func TestLocal_RejectsEscapingKeys(t *testing.T) {
	l, _ := newTestLocal(t)

	for _, key := range []string{"../etc/passwd", "anime/../../secret"} {
		if _, err := l.Open(context.Background(), key); err == nil {
			t.Errorf("Open(%q) should fail", key)
		}
	}
}

func TestLocal_Ping(t *testing.T) {
	l, dir := newTestLocal(t)
	if err := l.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	missing, err := NewLocal(filepath.Join(dir, "nope"))
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	if err := missing.Ping(context.Background()); err == nil {
		t.Error("expected Ping to fail for a missing root")
	}
}

func TestNew_Drivers(t *testing.T) {
	dir := t.TempDir()

	s, err := New(context.Background(), Config{Driver: DriverLocal, Root: dir})
	if err != nil {
		t.Fatalf("local: %v", err)
	}
	if _, ok := s.(*Local); !ok {
		t.Errorf("expected *Local, got %T", s)
	}

	if _, err := New(context.Background(), Config{Driver: "gcs"}); err == nil {
		t.Error("expected unsupported driver error")
	}
	if _, err := New(context.Background(), Config{Driver: DriverS3}); err == nil {
		t.Error("expected missing bucket error")
	}
}
