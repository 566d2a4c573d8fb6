package app

import "strings"

const topicMaxRunes = 50

// Apply is the pure transition function for the session store. It never
// mutates its inputs; every branch returns a state whose modified parts are
// fresh copies. Unknown session IDs are no-ops, never errors.
func Apply(state State, action Action) State {
	switch a := action.(type) {
	case addSessionAction:
		next := State{
			Chats:          append(cloneSessions(state.Chats), Session{ID: a.ID, Topic: a.Topic, CreatedAt: a.CreatedAt, UserID: a.UserID}),
			SelectedChatID: a.ID,
		}
		return next

	case selectSessionAction:
		if sessionIndex(state.Chats, a.ID) < 0 {
			return state
		}
		return State{Chats: state.Chats, SelectedChatID: a.ID}

	case updateMessagesAction:
		return applyMessages(state, state.SelectedChatID, a.Messages)

	case updateMessagesInAction:
		return applyMessages(state, a.SessionID, a.Messages)

	case setTopicAction:
		i := sessionIndex(state.Chats, a.ID)
		if i < 0 {
			return state
		}
		chats := cloneSessions(state.Chats)
		chats[i].Topic = a.Topic
		return State{Chats: chats, SelectedChatID: state.SelectedChatID}

	case deleteSessionAction:
		i := sessionIndex(state.Chats, a.ID)
		if i < 0 {
			return state
		}
		chats := cloneSessions(state.Chats)
		chats = append(chats[:i], chats[i+1:]...)
		selected := state.SelectedChatID
		if selected == a.ID {
			selected = ""
			if len(chats) > 0 {
				selected = chats[0].ID
			}
		}
		return State{Chats: chats, SelectedChatID: selected}

	case replaceAllAction:
		chats := cloneSessions(a.Chats)
		selected := ""
		if sessionIndex(chats, state.SelectedChatID) >= 0 {
			selected = state.SelectedChatID
		} else if len(chats) > 0 {
			selected = chats[0].ID
		}
		return State{Chats: chats, SelectedChatID: selected}

	case resetAction:
		return State{}
	}
	return state
}

func applyMessages(state State, sessionID string, msgs []Message) State {
	i := sessionIndex(state.Chats, sessionID)
	if i < 0 {
		return state
	}
	chats := cloneSessions(state.Chats)
	firstWrite := len(chats[i].Messages) == 0 && len(msgs) > 0
	chats[i].Messages = cloneMessages(msgs)
	if firstWrite && chats[i].Topic == "" {
		if topic := deriveTopic(msgs); topic != "" {
			chats[i].Topic = topic
		}
	}
	return State{Chats: chats, SelectedChatID: state.SelectedChatID}
}

func sessionIndex(chats []Session, id string) int {
	if id == "" {
		return -1
	}
	for i := range chats {
		if chats[i].ID == id {
			return i
		}
	}
	return -1
}

// deriveTopic builds a session title from the first user message: whitespace
// collapsed to single spaces, truncated to 50 runes with an ellipsis.
func deriveTopic(msgs []Message) string {
	for _, m := range msgs {
		if m.Role != RoleUser {
			continue
		}
		collapsed := strings.Join(strings.Fields(m.Text), " ")
		if collapsed == "" {
			return ""
		}
		runes := []rune(collapsed)
		if len(runes) <= topicMaxRunes {
			return collapsed
		}
		return string(runes[:topicMaxRunes]) + "…"
	}
	return ""
}
