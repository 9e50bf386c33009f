package sqlitestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/MrEthical07/goGate/storage"
)

func openTestBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := Open(filepath.Join(t.TempDir(), "tabs.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestRoundTripAndOverwrite(t *testing.T) {
	ctx := context.Background()
	b := openTestBackend(t)
	s, err := b.Tab("tab-1")
	if err != nil {
		t.Fatalf("tab: %v", err)
	}

	if err := s.Write(ctx, "auth_session", "one"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Write(ctx, "auth_session", "two"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, ok, err := s.Read(ctx, "auth_session")
	if err != nil || !ok || value != "two" {
		t.Fatalf("expected two, got %q ok=%v err=%v", value, ok, err)
	}

	other, _ := b.Tab("tab-2")
	if _, ok, _ := other.Read(ctx, "auth_session"); ok {
		t.Fatal("expected slot isolation across tabs")
	}
}

func TestDeleteMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestBackend(t).Tab("tab")
	if err := s.Delete(ctx, "nothing"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_ = s.Write(ctx, "k", "v")
	_ = s.Delete(ctx, "k")
	if _, ok, _ := s.Read(ctx, "k"); ok {
		t.Fatal("expected key removed")
	}
}

func TestClosedBackendReportsUnavailable(t *testing.T) {
	b := openTestBackend(t)
	s, _ := b.Tab("tab")
	_ = b.Close()

	if err := s.Write(context.Background(), "k", "v"); !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
