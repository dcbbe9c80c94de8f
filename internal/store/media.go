package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const audioColumns = "id, conversation_id, file_path, mime_type, created_at"

func (s *SQLiteStore) CreateAudioRecording(ctx context.Context, a *AudioRecording) error {
	a.CreatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO audio_recordings (conversation_id, file_path, mime_type, created_at) VALUES (?, ?, ?, ?)",
		a.ConversationID, a.FilePath, a.MimeType, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audio recording: %w", err)
	}
	a.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read audio recording id: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetAudioRecording(ctx context.Context, id int64) (*AudioRecording, error) {
	var a AudioRecording
	err := s.db.QueryRowContext(ctx, "SELECT "+audioColumns+" FROM audio_recordings WHERE id = ?", id).
		Scan(&a.ID, &a.ConversationID, &a.FilePath, &a.MimeType, &a.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get audio recording: %w", err)
	}
	return &a, nil
}

func (s *SQLiteStore) ListAudioByConversation(ctx context.Context, conversationID int64) ([]AudioRecording, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+audioColumns+" FROM audio_recordings WHERE conversation_id = ? ORDER BY created_at ASC, id ASC",
		conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audio recordings: %w", err)
	}
	defer rows.Close()

	recordings := make([]AudioRecording, 0)
	for rows.Next() {
		var a AudioRecording
		if err := rows.Scan(&a.ID, &a.ConversationID, &a.FilePath, &a.MimeType, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audio recording row: %w", err)
		}
		recordings = append(recordings, a)
	}
	return recordings, rows.Err()
}

func (s *SQLiteStore) CreateTranscription(ctx context.Context, t *Transcription) error {
	t.CreatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO transcriptions (audio_id, text, created_at) VALUES (?, ?, ?)",
		t.AudioID, t.Text, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transcription: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read transcription id: %w", err)
	}
	return nil
}

// ListTranscriptionsByConversation returns the transcriptions of every audio
// recording attached to the conversation.
func (s *SQLiteStore) ListTranscriptionsByConversation(ctx context.Context, conversationID int64) ([]Transcription, error) {
	query := `
        SELECT t.id, t.audio_id, t.text, t.created_at
        FROM transcriptions t
        JOIN audio_recordings a ON a.id = t.audio_id
        WHERE a.conversation_id = ?
        ORDER BY t.created_at ASC, t.id ASC
    `
	rows, err := s.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transcriptions: %w", err)
	}
	defer rows.Close()

	transcriptions := make([]Transcription, 0)
	for rows.Next() {
		var t Transcription
		if err := rows.Scan(&t.ID, &t.AudioID, &t.Text, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transcription row: %w", err)
		}
		transcriptions = append(transcriptions, t)
	}
	return transcriptions, rows.Err()
}
