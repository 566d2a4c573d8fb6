package app

import "time"

// State is the whole session-store state. Display order of Chats is
// insertion order. SelectedChatID is empty when nothing is selected.
type State struct {
	Chats          []Session
	SelectedChatID string
}

// Action is the closed set of session-store transitions. The unexported
// marker method keeps the variant set sealed to this package; callers go
// through the Store's methods instead of constructing actions directly.
type Action interface {
	isAction()
}

type addSessionAction struct {
	ID        string
	Topic     string
	UserID    string
	CreatedAt time.Time
}

type selectSessionAction struct {
	ID string
}

// updateMessagesAction replaces the messages of the currently selected
// session.
type updateMessagesAction struct {
	Messages []Message
}

// updateMessagesInAction replaces the messages of an explicit session,
// regardless of selection. The orchestrator uses this to fold a job result
// into the session that issued the job.
type updateMessagesInAction struct {
	SessionID string
	Messages  []Message
}

type setTopicAction struct {
	ID    string
	Topic string
}

type deleteSessionAction struct {
	ID string
}

type replaceAllAction struct {
	Chats []Session
}

type resetAction struct{}

func (addSessionAction) isAction()       {}
func (selectSessionAction) isAction()    {}
func (updateMessagesAction) isAction()   {}
func (updateMessagesInAction) isAction() {}
func (setTopicAction) isAction()         {}
func (deleteSessionAction) isAction()    {}
func (replaceAllAction) isAction()       {}
func (resetAction) isAction()            {}
