package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"policy-chat/internal/models"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := NewInMemoryStore()
	if err != nil {
		t.Fatalf("Failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSessionRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	session := models.ChatSession{
		ID:        "s1",
		UserID:    "user-1",
		Title:     "Refund policy",
		Timestamp: time.Now().Truncate(time.Millisecond),
	}

	if err := s.InsertSession(ctx, session); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}

	got, err := s.GetSession(ctx, "user-1", "s1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.ID != session.ID || got.Title != session.Title || got.UserID != session.UserID {
		t.Errorf("got %+v, want %+v", got, session)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetSession(context.Background(), "user-1", "missing")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestListSessionsNewestFirstPerUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now()

	sessions := []models.ChatSession{
		{ID: "old", UserID: "user-1", Title: "Old", Timestamp: base.Add(-2 * time.Hour)},
		{ID: "new", UserID: "user-1", Title: "New", Timestamp: base},
		{ID: "mid", UserID: "user-1", Title: "Mid", Timestamp: base.Add(-time.Hour)},
		{ID: "other", UserID: "user-2", Title: "Other user", Timestamp: base},
	}
	for _, sess := range sessions {
		if err := s.InsertSession(ctx, sess); err != nil {
			t.Fatalf("InsertSession failed: %v", err)
		}
	}

	got, err := s.ListSessions(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 sessions for user-1, got %d", len(got))
	}
	wantOrder := []string{"new", "mid", "old"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("position %d: expected %q, got %q", i, id, got[i].ID)
		}
	}
}

func TestMessagesAscendingOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Now()

	msgs := []models.Message{
		{ID: "m2", SessionID: "s1", Sender: models.SenderBot, Content: "second", Timestamp: base.Add(-time.Minute)},
		{ID: "m3", SessionID: "s1", Sender: models.SenderUser, Content: "third", Timestamp: base},
		{ID: "m1", SessionID: "s1", Sender: models.SenderUser, Content: "first", Timestamp: base.Add(-2 * time.Minute)},
	}
	for _, m := range msgs {
		if err := s.AppendMessage(ctx, m); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	got, err := s.Messages(ctx, "s1")
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	wantOrder := []string{"m1", "m2", "m3"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("position %d: expected %q, got %q", i, id, got[i].ID)
		}
	}
}

func TestLatestMessage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	latest, err := s.LatestMessage(ctx, "s1")
	if err != nil {
		t.Fatalf("LatestMessage on empty session failed: %v", err)
	}
	if latest != nil {
		t.Errorf("expected nil for an empty session, got %+v", latest)
	}

	base := time.Now()
	for _, m := range []models.Message{
		{ID: "m1", SessionID: "s1", Sender: models.SenderUser, Content: "question", Timestamp: base.Add(-time.Minute)},
		{ID: "m2", SessionID: "s1", Sender: models.SenderBot, Content: "answer", Timestamp: base},
	} {
		if err := s.AppendMessage(ctx, m); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	latest, err = s.LatestMessage(ctx, "s1")
	if err != nil {
		t.Fatalf("LatestMessage failed: %v", err)
	}
	if latest == nil || latest.ID != "m2" {
		t.Errorf("expected m2, got %+v", latest)
	}
}

func TestDeleteSessionRemovesMetadataAndMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	session := models.ChatSession{ID: "s1", UserID: "user-1", Title: "Doomed", Timestamp: time.Now()}
	if err := s.InsertSession(ctx, session); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}
	keep := models.ChatSession{ID: "s2", UserID: "user-1", Title: "Kept", Timestamp: time.Now()}
	if err := s.InsertSession(ctx, keep); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}

	for _, m := range []models.Message{
		{ID: "m1", SessionID: "s1", Sender: models.SenderUser, Content: "q", Timestamp: time.Now()},
		{ID: "m2", SessionID: "s1", Sender: models.SenderBot, Content: "a", Timestamp: time.Now()},
		{ID: "m3", SessionID: "s2", Sender: models.SenderUser, Content: "other", Timestamp: time.Now()},
	} {
		if err := s.AppendMessage(ctx, m); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	if err := s.DeleteSession(ctx, "user-1", "s1"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}

	if _, err := s.GetSession(ctx, "user-1", "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected metadata gone, got %v", err)
	}
	msgs, err := s.Messages(ctx, "s1")
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected messages gone, got %d", len(msgs))
	}

	// The other session is untouched
	if _, err := s.GetSession(ctx, "user-1", "s2"); err != nil {
		t.Errorf("unrelated session lost: %v", err)
	}
	msgs, _ = s.Messages(ctx, "s2")
	if len(msgs) != 1 {
		t.Errorf("unrelated messages lost, got %d", len(msgs))
	}
}

func TestDeleteMissingSessionIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	if err := s.DeleteSession(context.Background(), "user-1", "never-existed"); err != nil {
		t.Errorf("deleting a missing session should not error, got %v", err)
	}
}

func TestInsertSessionOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	session := models.ChatSession{ID: "s1", UserID: "user-1", Title: models.DefaultTitle, Timestamp: time.Now()}
	if err := s.InsertSession(ctx, session); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}

	session.Title = "Travel expenses"
	if err := s.InsertSession(ctx, session); err != nil {
		t.Fatalf("re-insert failed: %v", err)
	}

	got, err := s.GetSession(ctx, "user-1", "s1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Title != "Travel expenses" {
		t.Errorf("expected updated title, got %q", got.Title)
	}
}
