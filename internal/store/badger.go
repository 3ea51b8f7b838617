package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"policy-chat/internal/models"
)

type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(dbPath string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

// NewInMemoryStore opens a store backed by memory only. Used in tests.
func NewInMemoryStore() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory badger database: %w", err)
	}

	return &BadgerStore{db: db}, nil
}

func sessionKey(userID, sessionID string) []byte {
	return []byte(fmt.Sprintf("session:%s:%s", userID, sessionID))
}

func messageKey(sessionID, messageID string) []byte {
	return []byte(fmt.Sprintf("msg:%s:%s", sessionID, messageID))
}

func (s *BadgerStore) ListSessions(ctx context.Context, userID string) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	prefix := []byte(fmt.Sprintf("session:%s:", userID))

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var session models.ChatSession
				if err := json.Unmarshal(val, &session); err != nil {
					return err
				}
				sessions = append(sessions, session)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	// Newest first
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Timestamp.After(sessions[j].Timestamp)
	})

	return sessions, nil
}

func (s *BadgerStore) GetSession(ctx context.Context, userID, sessionID string) (*models.ChatSession, error) {
	var session models.ChatSession
	key := sessionKey(userID, sessionID)

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		})
	})

	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to retrieve session: %w", err)
	}

	return &session, nil
}

func (s *BadgerStore) InsertSession(ctx context.Context, session models.ChatSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	key := sessionKey(session.UserID, session.ID)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

func (s *BadgerStore) DeleteSession(ctx context.Context, userID, sessionID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(sessionKey(userID, sessionID)); err != nil && err != badger.ErrKeyNotFound {
			return fmt.Errorf("failed to delete session metadata: %w", err)
		}

		// Delete all messages for this session
		prefix := []byte(fmt.Sprintf("msg:%s:", sessionID))
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("failed to delete message: %w", err)
			}
		}

		return nil
	})
}

func (s *BadgerStore) Messages(ctx context.Context, sessionID string) ([]models.Message, error) {
	messages, err := s.readMessages(sessionID)
	if err != nil {
		return nil, err
	}

	// Ascending timestamp order for the full conversation view
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})

	return messages, nil
}

func (s *BadgerStore) LatestMessage(ctx context.Context, sessionID string) (*models.Message, error) {
	messages, err := s.readMessages(sessionID)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}

	latest := messages[0]
	for _, msg := range messages[1:] {
		if msg.Timestamp.After(latest.Timestamp) {
			latest = msg
		}
	}

	return &latest, nil
}

func (s *BadgerStore) AppendMessage(ctx context.Context, message models.Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	key := messageKey(message.SessionID, message.ID)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) readMessages(sessionID string) ([]models.Message, error) {
	var messages []models.Message
	prefix := []byte(fmt.Sprintf("msg:%s:", sessionID))

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(val []byte) error {
				var msg models.Message
				if err := json.Unmarshal(val, &msg); err != nil {
					return err
				}
				messages = append(messages, msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to retrieve messages: %w", err)
	}

	return messages, nil
}
