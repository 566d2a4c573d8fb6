package app

import (
	"context"
	"sync"
	"time"
)

// Reconciler keeps the session store mirrored on disk and on the remote
// account. The two directions are independent:
//
//   - Bootstrap restores the local snapshot, then overwrites it with the
//     remote copy when a signed-in identity is available. Remote failure is
//     non-fatal; the local snapshot stays.
//   - Start subscribes to the store and, for every committed state, writes
//     the local snapshot and pushes the full chats array remotely.
//
// The store listener only queues a snapshot of the committed state; a single
// worker goroutine delivers the queue in commit order, so persistence
// observes every committed state in order without serializing network I/O
// into the store's dispatch path.
//
// The remote push is a full-snapshot overwrite with no merge strategy:
// concurrent edits from two clients under one identity clobber each other.
// Persist failures are logged and dropped; the next mutation retries.
type Reconciler struct {
	store  *Store
	remote SessionService
	local  *SnapshotStore
	auth   TokenProvider
	log    *Logger

	mu      sync.Mutex
	pending []Snapshot

	wake chan struct{}
	stop chan struct{}
	done sync.WaitGroup

	pushTimeout time.Duration
	now         func() time.Time
}

func NewReconciler(store *Store, remote SessionService, local *SnapshotStore, auth TokenProvider, log *Logger) *Reconciler {
	if auth == nil {
		auth = AnonymousProvider
	}
	if log == nil {
		log = NopLogger()
	}
	return &Reconciler{
		store:       store,
		remote:      remote,
		local:       local,
		auth:        auth,
		log:         log,
		wake:        make(chan struct{}, 1),
		stop:        make(chan struct{}),
		pushTimeout: 15 * time.Second,
		now:         time.Now,
	}
}

// Bootstrap loads persisted state into the store. Call before Start so the
// initial load does not immediately echo back out as a persist.
func (r *Reconciler) Bootstrap(ctx context.Context) {
	userID := r.auth.UserID()
	if snap, ok, err := r.local.Load(userID); err != nil {
		r.log.Error("restore local snapshot", map[string]interface{}{"error": err.Error()})
	} else if ok {
		r.store.ReplaceAll(snap.Chats)
		if sessionIndex(snap.Chats, snap.SelectedChatID) >= 0 {
			r.store.SelectSession(snap.SelectedChatID)
		}
	}

	if userID == "" {
		return
	}
	chats, err := r.remote.FetchSessions(ctx)
	if err != nil {
		r.log.Error("load remote sessions", map[string]interface{}{"error": err.Error()})
		return
	}
	r.store.ReplaceAll(chats)
}

// Start hooks the persist reaction into the store and launches the delivery
// worker.
func (r *Reconciler) Start() {
	r.done.Add(1)
	go r.run()
	r.store.Subscribe(r.enqueue)
}

// Stop halts the worker and makes a final delivery attempt for the newest
// queued snapshot.
func (r *Reconciler) Stop() {
	close(r.stop)
	r.done.Wait()

	r.mu.Lock()
	var last *Snapshot
	if n := len(r.pending); n > 0 {
		last = &r.pending[n-1]
		r.pending = nil
	}
	r.mu.Unlock()
	if last != nil {
		r.persist(*last)
	}
}

// enqueue runs inside store dispatch. It copies the committed state and
// returns; delivery happens on the worker.
func (r *Reconciler) enqueue(state State) {
	snap := Snapshot{
		Chats:          cloneSessions(state.Chats),
		SelectedChatID: state.SelectedChatID,
		UpdatedAt:      r.now(),
	}
	r.mu.Lock()
	r.pending = append(r.pending, snap)
	r.mu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Reconciler) run() {
	defer r.done.Done()
	for {
		select {
		case <-r.stop:
			return
		case <-r.wake:
		}
		for {
			r.mu.Lock()
			if len(r.pending) == 0 {
				r.mu.Unlock()
				break
			}
			snap := r.pending[0]
			r.pending = r.pending[1:]
			r.mu.Unlock()
			r.persist(snap)
		}
	}
}

func (r *Reconciler) persist(snap Snapshot) {
	userID := r.auth.UserID()
	if err := r.local.Save(userID, snap); err != nil {
		r.log.Error("persist local snapshot", map[string]interface{}{"error": err.Error()})
	}

	if userID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.pushTimeout)
	defer cancel()
	if err := r.remote.PushSessions(ctx, snap.Chats); err != nil {
		perr := &PersistenceError{Target: "remote", Err: err}
		r.log.Error("push remote snapshot", map[string]interface{}{"error": perr.Error()})
	}
}
