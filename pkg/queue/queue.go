// Package queue implements the MessageQueue: an append-only,
// cursor-addressed log of patches, with long-poll subscriber support
// built on pkg/state's condition-variable tracker.
package queue

import (
	"context"
	"sync"

	"github.com/rojo-rbx/rojo-sub001/pkg/patch"
	"github.com/rojo-rbx/rojo-sub001/pkg/state"
)

// Message is a single queued entry: a dense, monotone
// cursor paired with the patch appended at that cursor.
type Message struct {
	Cursor uint32
	Patch  patch.Set
}

// Queue is the MessageQueue. Cursors are dense and start at 1; cursor 0
// names the position before the first message, so Since(0) returns every
// retained message. Pushing a patch assigns it the next cursor and wakes
// any blocked Since callers.
type Queue struct {
	mu       sync.Mutex
	messages []Message
	tracker  *state.Tracker

	// maxRetained bounds how many messages are kept, evicting the oldest
	// once exceeded.
	maxRetained int
}

// DefaultMaxRetained is the implementation-defined retention bound spec
// §3 calls for ("implementation-defined bound").
const DefaultMaxRetained = 4096

// New creates an empty Queue.
func New() *Queue {
	return &Queue{
		tracker:     state.NewTracker(),
		maxRetained: DefaultMaxRetained,
	}
}

// Push appends patch to the queue and returns its assigned cursor.
func (q *Queue) Push(p patch.Set) uint32 {
	q.mu.Lock()
	cursor := uint32(1)
	if len(q.messages) > 0 {
		cursor = q.messages[len(q.messages)-1].Cursor + 1
	}
	q.messages = append(q.messages, Message{Cursor: cursor, Patch: p})
	if len(q.messages) > q.maxRetained {
		q.messages = q.messages[len(q.messages)-q.maxRetained:]
	}
	q.mu.Unlock()

	q.tracker.NotifyOfChange()
	return cursor
}

// Since returns every message with a cursor strictly greater than
// cursor, plus the cursor of the last message currently in the queue
// ( "since(cursor) -> (new_cursor, messages)"). If cursor names
// a message older than the retention window, Since returns everything
// still retained rather than erroring: eviction is a capacity bound, not
// a correctness contract.
func (q *Queue) Since(cursor uint32) (newCursor uint32, messages []Message) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.messages) == 0 {
		return cursor, nil
	}
	newCursor = q.messages[len(q.messages)-1].Cursor

	for _, m := range q.messages {
		if m.Cursor > cursor {
			messages = append(messages, m)
		}
	}
	return newCursor, messages
}

// WaitForSince blocks, subject to ctx, until a push occurs strictly after
// cursor, then returns the same result as Since. A cursor equal to the
// queue's current last cursor blocks a caller that wants to long-poll for
// the next change.
func (q *Queue) WaitForSince(ctx context.Context, cursor uint32) (uint32, []Message, error) {
	newCursor, messages := q.Since(cursor)
	if len(messages) > 0 {
		return newCursor, messages, nil
	}

	// Read the tracker's current index without blocking (previousIndex 0
	// is the tracker's own "immediate read" sentinel), then wait from
	// there so the first real wait blocks instead of racing a push that
	// already happened before this call.
	trackerIndex, err := q.tracker.WaitForChange(ctx, 0)
	if err != nil {
		return newCursor, nil, err
	}

	for {
		newCursor, messages = q.Since(cursor)
		if len(messages) > 0 {
			return newCursor, messages, nil
		}
		trackerIndex, err = q.tracker.WaitForChange(ctx, trackerIndex)
		if err != nil {
			return newCursor, nil, err
		}
	}
}

// Subscribe and Unsubscribe are no-ops beyond documenting intent: this
// queue's "handle" is simply a starting cursor value, since every caller
// already supplies one to Since/WaitForSince. Keeping the pair here, even
// though trivial, leaves room for callers that want explicit
// subscribe/unsubscribe bookkeeping (e.g. counting active long-pollers
// for diagnostics).
type Handle struct {
	cursor uint32
}

// Subscribe returns a handle anchored at the queue's current cursor.
func (q *Queue) Subscribe() Handle {
	cursor, _ := q.Since(0)
	return Handle{cursor: cursor}
}

// Unsubscribe is currently a no-op; retained so callers have a symmetric
// release point if subscriber bookkeeping is added later.
func (q *Queue) Unsubscribe(Handle) {}
