package queue

import (
	"context"
	"testing"
	"time"

	"github.com/rojo-rbx/rojo-sub001/pkg/patch"
	"github.com/rojo-rbx/rojo-sub001/pkg/rbxtree"
)

func TestPushAssignsDenseMonotoneCursors(t *testing.T) {
	q := New()
	c0 := q.Push(patch.Set{})
	c1 := q.Push(patch.Set{})
	if c0 != 1 || c1 != 2 {
		t.Fatalf("expected dense cursors 1,2; got %d,%d", c0, c1)
	}
}

func TestSinceReturnsOnlyNewerMessages(t *testing.T) {
	q := New()
	q.Push(patch.Set{Removed: []rbxtree.ID{}})
	q.Push(patch.Set{Removed: []rbxtree.ID{}})
	q.Push(patch.Set{Removed: []rbxtree.ID{}})

	newCursor, messages := q.Since(1)
	if newCursor != 3 {
		t.Fatalf("expected new cursor 3, got %d", newCursor)
	}
	if len(messages) != 2 {
		t.Fatalf("expected messages with cursor 2 and 3, got %d", len(messages))
	}
}

func TestWaitForSinceUnblocksOnPush(t *testing.T) {
	q := New()
	q.Push(patch.Set{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan struct{})
	var gotCursor uint32
	go func() {
		cursor, messages, err := q.WaitForSince(ctx, 1)
		if err != nil {
			t.Errorf("WaitForSince: %v", err)
		}
		if len(messages) != 1 {
			t.Errorf("expected exactly one new message, got %d", len(messages))
		}
		gotCursor = cursor
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	q.Push(patch.Set{})

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("WaitForSince did not unblock after push")
	}
	if gotCursor != 2 {
		t.Fatalf("expected cursor 2, got %d", gotCursor)
	}
}
