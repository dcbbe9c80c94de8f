package store

import (
	"context"
	"database/sql"
	"fmt"
)

const eventColumns = "id, title, description, start_time, end_time"

func (s *SQLiteStore) CreateEvent(ctx context.Context, e *Event) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO events (title, description, start_time, end_time) VALUES (?, ?, ?, ?)",
		e.Title, e.Description, e.StartTime, e.EndTime)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read event id: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetEvent(ctx context.Context, id int64) (*Event, error) {
	var e Event
	err := s.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM events WHERE id = ?", id).
		Scan(&e.ID, &e.Title, &e.Description, &e.StartTime, &e.EndTime)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return &e, nil
}

func (s *SQLiteStore) ListEvents(ctx context.Context) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+eventColumns+" FROM events ORDER BY start_time ASC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.StartTime, &e.EndTime); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *SQLiteStore) UpdateEvent(ctx context.Context, e *Event) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE events SET title = ?, description = ?, start_time = ?, end_time = ? WHERE id = ?",
		e.Title, e.Description, e.StartTime, e.EndTime, e.ID)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return checkAffected(res)
}

func (s *SQLiteStore) DeleteEvent(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return checkAffected(res)
}
