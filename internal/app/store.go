package app

import (
	"sync"
	"time"
)

// Store owns the session state. All mutation goes through the reducer; the
// store adds dispatch ordering and change notification on top.
//
// Listeners run synchronously inside dispatch, so each listener observes
// every committed state in order and never a stale intermediate. Listeners
// must not call back into the Store.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners []func(State)

	now func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

// Subscribe registers a listener invoked with each committed state.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Store) dispatch(action Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Apply(s.state, action)
	for _, fn := range s.listeners {
		fn(s.state)
	}
	return s.state
}

// AddSession creates an empty session, selects it, and returns its id.
// Topic may be empty, in which case the first user message derives one.
func (s *Store) AddSession(topic, userID string) string {
	now := s.now()
	id := newSessionID(now)
	s.dispatch(addSessionAction{ID: id, Topic: topic, UserID: userID, CreatedAt: now})
	return id
}

// SelectSession makes id the selected session. Unknown ids are ignored.
func (s *Store) SelectSession(id string) {
	s.dispatch(selectSessionAction{ID: id})
}

// UpdateMessages replaces the messages of the currently selected session.
func (s *Store) UpdateMessages(msgs []Message) {
	s.dispatch(updateMessagesAction{Messages: msgs})
}

// UpdateSessionMessages replaces the messages of an explicit session. Job
// results use this so a mid-poll selection change cannot misattribute them.
func (s *Store) UpdateSessionMessages(sessionID string, msgs []Message) {
	s.dispatch(updateMessagesInAction{SessionID: sessionID, Messages: msgs})
}

// SetTopic overrides a session title, independent of auto-derivation.
func (s *Store) SetTopic(id, topic string) {
	s.dispatch(setTopicAction{ID: id, Topic: topic})
}

// DeleteSession removes a session. Deleting the selected session moves
// selection to the first remaining session, or clears it.
func (s *Store) DeleteSession(id string) {
	s.dispatch(deleteSessionAction{ID: id})
}

// ReplaceAll swaps in a full session set, preserving the current selection
// when it survives the swap.
func (s *Store) ReplaceAll(chats []Session) {
	s.dispatch(replaceAllAction{Chats: chats})
}

// Reset returns the store to its empty initial state (sign-out).
func (s *Store) Reset() {
	s.dispatch(resetAction{})
}

// State returns a snapshot of the current state. The snapshot does not alias
// store-internal slices.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Chats: cloneSessions(s.state.Chats), SelectedChatID: s.state.SelectedChatID}
}

// Selected returns the currently selected session, if any.
func (s *Store) Selected() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := sessionIndex(s.state.Chats, s.state.SelectedChatID)
	if i < 0 {
		return Session{}, false
	}
	sess := s.state.Chats[i]
	sess.Messages = cloneMessages(sess.Messages)
	return sess, true
}

// Get returns the session with the given id, if present.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := sessionIndex(s.state.Chats, id)
	if i < 0 {
		return Session{}, false
	}
	sess := s.state.Chats[i]
	sess.Messages = cloneMessages(sess.Messages)
	return sess, true
}
