package app

import (
	"testing"
	"time"
)

func TestSnapshotRoundTrip(t *testing.T) {
	store := NewSnapshotStore(t.TempDir())
	snap := Snapshot{
		Chats: []Session{{
			ID:        "s1",
			Topic:     "graphs",
			CreatedAt: time.Now().UTC().Truncate(time.Second),
			Messages:  []Message{{Role: RoleUser, Text: "hello"}},
		}},
		SelectedChatID: "s1",
		UpdatedAt:      time.Now().UTC(),
	}
	if err := store.Save("user-1", snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, ok, err := store.Load("user-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !ok {
		t.Fatalf("snapshot not found")
	}
	if len(loaded.Chats) != 1 || loaded.Chats[0].Topic != "graphs" {
		t.Fatalf("loaded %+v", loaded.Chats)
	}
	if loaded.SelectedChatID != "s1" {
		t.Fatalf("selection %q", loaded.SelectedChatID)
	}
	if len(loaded.Chats[0].Messages) != 1 {
		t.Fatalf("messages lost")
	}
}

func TestSnapshotsScopedPerIdentity(t *testing.T) {
	store := NewSnapshotStore(t.TempDir())
	if err := store.Save("alice", Snapshot{Chats: []Session{{ID: "a"}}}); err != nil {
		t.Fatalf("save alice: %v", err)
	}
	if err := store.Save("bob", Snapshot{Chats: []Session{{ID: "b"}}}); err != nil {
		t.Fatalf("save bob: %v", err)
	}

	alice, _, _ := store.Load("alice")
	bob, _, _ := store.Load("bob")
	if alice.Chats[0].ID != "a" || bob.Chats[0].ID != "b" {
		t.Fatalf("identities cross-contaminated: %+v %+v", alice.Chats, bob.Chats)
	}

	if _, ok, _ := store.Load("carol"); ok {
		t.Fatalf("unknown identity has a snapshot")
	}
}

func TestAnonymousSnapshotHasOwnScope(t *testing.T) {
	store := NewSnapshotStore(t.TempDir())
	if err := store.Save("", Snapshot{Chats: []Session{{ID: "anon"}}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, ok, _ := store.Load("")
	if !ok || loaded.Chats[0].ID != "anon" {
		t.Fatalf("anonymous snapshot lost")
	}
	if _, ok, _ := store.Load("user-1"); ok {
		t.Fatalf("anonymous snapshot leaked into user scope")
	}
}

func TestThemePreferenceUnscoped(t *testing.T) {
	store := NewSnapshotStore(t.TempDir())
	if store.LoadTheme() != "" {
		t.Fatalf("theme set before save")
	}
	if err := store.SaveTheme("light"); err != nil {
		t.Fatalf("save theme: %v", err)
	}
	if got := store.LoadTheme(); got != "light" {
		t.Fatalf("theme %q", got)
	}
}
