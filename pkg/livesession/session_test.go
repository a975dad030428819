package livesession

import (
	"context"
	"testing"
	"time"

	"github.com/rojo-rbx/rojo-sub001/pkg/middleware"
	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
	"github.com/rojo-rbx/rojo-sub001/pkg/vfs"
)

func waitForAnyMessage(t *testing.T, s *Session, timeout time.Duration) {
	t.Helper()
	deadline := time.After(timeout)
	for {
		_, messages := s.Queue().Since(0)
		if len(messages) > 0 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for a queued patch")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestSessionReconcilesFileModificationIntoAPatch(t *testing.T) {
	backend := vfs.NewMemoryBackend()
	backend.SeedDir("src")
	backend.SeedFile("src/main.lua", []byte("return 1"))

	v := vfs.New(backend, nil)
	if err := v.Watch(""); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	dispatcher := middleware.New(v, nil)

	s, err := New(v, dispatcher, "src", snapshot.Context{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	if err := v.Write("src/main.lua", []byte("return 2")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	waitForAnyMessage(t, s, time.Second)
}

func TestSessionReconcileRootsFallsBackToNearestAncestor(t *testing.T) {
	backend := vfs.NewMemoryBackend()
	backend.SeedDir("src")
	backend.SeedFile("src/main.lua", []byte("return 1"))

	v := vfs.New(backend, nil)
	dispatcher := middleware.New(v, nil)

	s, err := New(v, dispatcher, "src", snapshot.Context{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	roots := s.reconcileRoots([]vfs.Event{{Kind: vfs.EventCreated, Path: "src/main.lua/unknown.lua"}})
	if len(roots) == 0 {
		t.Fatal("expected a fallback reconcile root from the nearest modeled ancestor")
	}
}
