package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

func (s *SQLiteStore) CreateConversation(ctx context.Context, c *Conversation) error {
	c.CreatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO conversations (title, created_at, prompt_version_id) VALUES (?, ?, ?)",
		c.Title, c.CreatedAt, c.PromptVersionID)
	if err != nil {
		return fmt.Errorf("failed to insert conversation: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read conversation id: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetConversation(ctx context.Context, id int64) (*Conversation, error) {
	var (
		c         Conversation
		title     sql.NullString
		versionID sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, created_at, prompt_version_id FROM conversations WHERE id = ?", id).
		Scan(&c.ID, &title, &c.CreatedAt, &versionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	c.Title = nullableString(title)
	c.PromptVersionID = nullableInt(versionID)
	return &c, nil
}

func (s *SQLiteStore) ListConversations(ctx context.Context) ([]Conversation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, created_at, prompt_version_id FROM conversations ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	conversations := make([]Conversation, 0)
	for rows.Next() {
		var (
			c         Conversation
			title     sql.NullString
			versionID sql.NullInt64
		)
		if err := rows.Scan(&c.ID, &title, &c.CreatedAt, &versionID); err != nil {
			return nil, fmt.Errorf("failed to scan conversation row: %w", err)
		}
		c.Title = nullableString(title)
		c.PromptVersionID = nullableInt(versionID)
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

func (s *SQLiteStore) UpdateConversation(ctx context.Context, c *Conversation) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE conversations SET title = ?, prompt_version_id = ? WHERE id = ?",
		c.Title, c.PromptVersionID, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}
	return checkAffected(res)
}

// UpdateConversationTitleIfEmpty sets the title only when none is stored yet,
// so a generated title never overwrites one the user chose.
func (s *SQLiteStore) UpdateConversationTitleIfEmpty(ctx context.Context, id int64, title string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE conversations SET title = ? WHERE id = ? AND (title IS NULL OR title = '')", title, id)
	if err != nil {
		return false, fmt.Errorf("failed to update conversation title: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// DeleteConversation removes the conversation; audio recordings, their
// transcriptions, and notes go with it through ON DELETE CASCADE.
func (s *SQLiteStore) DeleteConversation(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return checkAffected(res)
}
