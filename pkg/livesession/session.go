// Package livesession implements the LiveSession reconcile loop (spec
// §4.8): the long-lived worker that drains WVFS events, re-runs the
// pipeline on affected subtrees, computes and applies patches, and
// publishes them to the MessageQueue.
package livesession

import (
	"context"
	"sync"
	"time"

	"github.com/rojo-rbx/rojo-sub001/pkg/identifier"
	"github.com/rojo-rbx/rojo-sub001/pkg/logging"
	"github.com/rojo-rbx/rojo-sub001/pkg/middleware"
	"github.com/rojo-rbx/rojo-sub001/pkg/patch"
	"github.com/rojo-rbx/rojo-sub001/pkg/queue"
	"github.com/rojo-rbx/rojo-sub001/pkg/rbxtree"
	"github.com/rojo-rbx/rojo-sub001/pkg/snapshot"
	"github.com/rojo-rbx/rojo-sub001/pkg/vfs"
)

// CoalesceWindow bounds how long the reconcile loop waits for a burst of
// events to settle before processing them as one batch ( "a
// short coalescing window (≤ a few ms)").
const CoalesceWindow = 5 * time.Millisecond

// Session is a LiveSession: the tree, queue, and dispatcher wired
// together behind a single reconcile worker.
type Session struct {
	id         string
	tree       *rbxtree.Tree
	queue      *queue.Queue
	dispatcher *middleware.Dispatcher
	vfs        *vfs.VFS
	logger     *logging.Logger

	// patchLock serializes reconcile passes and the tree mutations they
	// perform, so external readers observe the tree only at patch
	// boundaries.
	patchLock sync.RWMutex

	rootCtx  snapshot.Context
	rootPath string

	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a Session over the given project root path, seeding the
// tree with an initial snapshot.
func New(v *vfs.VFS, dispatcher *middleware.Dispatcher, rootPath string, rootCtx snapshot.Context, logger *logging.Logger) (*Session, error) {
	if logger == nil {
		logger = logging.RootLogger
	}

	id, err := identifier.New(identifier.PrefixSession)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:         id,
		tree:       rbxtree.New(),
		queue:      queue.New(),
		dispatcher: dispatcher,
		vfs:        v,
		logger:     logger,
		rootCtx:    rootCtx,
		rootPath:   rootPath,
	}

	snap, err := dispatcher.Snapshot(rootCtx, rootPath)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		if _, err := s.tree.Insert(s.tree.RootID(), snap); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// ID returns the session's identifier, used as the handshake's sessionId.
func (s *Session) ID() string {
	return s.id
}

// Tree returns the session's instance tree. Callers that need a
// patch-boundary-consistent read should wrap the read between
// RLockTree/RUnlockTree.
func (s *Session) Tree() *rbxtree.Tree {
	return s.tree
}

// Queue returns the session's message queue.
func (s *Session) Queue() *queue.Queue {
	return s.queue
}

// RLockTree and RUnlockTree bracket a read that must not observe a
// partially-applied patch.
func (s *Session) RLockTree()   { s.patchLock.RLock() }
func (s *Session) RUnlockTree() { s.patchLock.RUnlock() }

// Start launches the reconcile worker. Stop cancels it.
func (s *Session) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx)
}

// Stop cancels the reconcile worker and waits for it to exit.
func (s *Session) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.done != nil {
		<-s.done
	}
}

// run is the reconcile loop's entry point: a straight-line worker that
// drains a long-lived channel under a cancellable context.
func (s *Session) run(ctx context.Context) {
	defer close(s.done)
	s.logger.Debug("Reconcile loop commencing")
	defer s.logger.Debug("Reconcile loop terminated")

	events := s.vfs.Events()
	errs := s.vfs.Errors()

	var pending []vfs.Event
	var timer *time.Timer

	flush := func() {
		if len(pending) == 0 {
			return
		}
		batch := pending
		pending = nil
		if err := s.reconcile(batch); err != nil {
			s.logger.Error(err)
		}
	}

	for {
		var timerC <-chan time.Time
		if timer != nil {
			timerC = timer.C
		}

		select {
		case <-ctx.Done():
			return
		case err := <-errs:
			s.logger.Error(err)
		case event := <-events:
			pending = append(pending, event)
			if timer == nil {
				timer = time.NewTimer(CoalesceWindow)
			} else {
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(CoalesceWindow)
			}
		case <-timerC:
			timer = nil
			flush()
		}
	}
}
