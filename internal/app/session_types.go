package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message roles. Error messages render inside the transcript like any other
// entry; they are not a transport-level concept.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleError     = "error"
)

// Message is one entry in a session transcript. PaperContent carries the
// generated document body when the message wraps a finished paper;
// DocumentID is the server-assigned identifier for that paper.
type Message struct {
	Role         string `json:"role"`
	Text         string `json:"text"`
	PaperContent string `json:"paperContent,omitempty"`
	DocumentID   string `json:"documentId,omitempty"`
	Timestamp    string `json:"timestamp,omitempty"` // RFC 3339
}

// Session is a named conversation thread owned by a user. Field names match
// the wire shape the sync endpoints expect.
type Session struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	CreatedAt time.Time `json:"createdAt"`
	Messages  []Message `json:"messages"`
	UserID    string    `json:"userId,omitempty"`
}

// newSessionID derives an identifier from the creation time, with a random
// suffix so two sessions created in the same millisecond stay distinct.
func newSessionID(now time.Time) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}

// cloneMessages returns a copy so reducer output never aliases caller slices.
func cloneMessages(msgs []Message) []Message {
	if len(msgs) == 0 {
		return nil
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

func cloneSessions(chats []Session) []Session {
	if len(chats) == 0 {
		return nil
	}
	out := make([]Session, len(chats))
	copy(out, chats)
	for i := range out {
		out[i].Messages = cloneMessages(out[i].Messages)
	}
	return out
}
