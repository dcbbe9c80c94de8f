package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

func (s *SQLiteStore) CreateNote(ctx context.Context, n *Note) error {
	n.CreatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO notes (conversation_id, author, content, timestamp, created_at) VALUES (?, ?, ?, ?, ?)",
		n.ConversationID, n.Author, n.Content, n.Timestamp, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	n.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read note id: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListNotesByConversation(ctx context.Context, conversationID int64) ([]Note, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, conversation_id, author, content, timestamp, created_at FROM notes WHERE conversation_id = ? ORDER BY timestamp ASC, id ASC",
		conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	notes := make([]Note, 0)
	for rows.Next() {
		var (
			n      Note
			author sql.NullString
		)
		if err := rows.Scan(&n.ID, &n.ConversationID, &author, &n.Content, &n.Timestamp, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note row: %w", err)
		}
		n.Author = nullableString(author)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *SQLiteStore) DeleteNote(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return checkAffected(res)
}
