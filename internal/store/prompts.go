package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// CreatePrompt inserts p together with its first version, numbered 1.
func (s *SQLiteStore) CreatePrompt(ctx context.Context, p *Prompt, text string) (*PromptVersion, error) {
	var version *PromptVersion
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		p.CreatedAt = time.Now().UTC()
		res, err := tx.ExecContext(ctx,
			"INSERT INTO prompts (name, description, created_at) VALUES (?, ?, ?)",
			p.Name, p.Description, p.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("failed to insert prompt: %w", err)
		}
		if p.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read prompt id: %w", err)
		}
		version, err = insertNextVersion(ctx, tx, p.ID, text)
		return err
	})
	if err != nil {
		return nil, err
	}
	return version, nil
}

func (s *SQLiteStore) GetPrompt(ctx context.Context, id int64) (*Prompt, error) {
	return scanPrompt(s.db.QueryRowContext(ctx,
		"SELECT id, name, description, created_at FROM prompts WHERE id = ?", id))
}

func (s *SQLiteStore) GetPromptByName(ctx context.Context, name string) (*Prompt, error) {
	return scanPrompt(s.db.QueryRowContext(ctx,
		"SELECT id, name, description, created_at FROM prompts WHERE name = ?", name))
}

func scanPrompt(row *sql.Row) (*Prompt, error) {
	var p Prompt
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get prompt: %w", err)
	}
	return &p, nil
}

// ListPrompts returns every prompt with its newest version inlined.
func (s *SQLiteStore) ListPrompts(ctx context.Context) ([]PromptSummary, error) {
	query := `
        SELECT p.id, p.name, p.description, p.created_at,
               v.id, v.text, v.version_number, v.created_at
        FROM prompts p
        LEFT JOIN prompt_versions v ON v.id = (
            SELECT id FROM prompt_versions
            WHERE prompt_id = p.id
            ORDER BY version_number DESC
            LIMIT 1
        )
        ORDER BY p.name ASC
    `
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query prompts: %w", err)
	}
	defer rows.Close()

	prompts := make([]PromptSummary, 0)
	for rows.Next() {
		var (
			ps        PromptSummary
			versionID sql.NullInt64
			text      sql.NullString
			number    sql.NullInt64
			createdAt sql.NullTime
		)
		if err := rows.Scan(&ps.ID, &ps.Name, &ps.Description, &ps.CreatedAt,
			&versionID, &text, &number, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan prompt row: %w", err)
		}
		ps.LatestVersionID = nullableInt(versionID)
		ps.LatestText = nullableString(text)
		ps.LatestVersionNumber = nullableInt(number)
		if createdAt.Valid {
			t := createdAt.Time
			ps.LatestVersionCreatedAt = &t
		}
		prompts = append(prompts, ps)
	}
	return prompts, rows.Err()
}

func (s *SQLiteStore) UpdatePrompt(ctx context.Context, p *Prompt) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE prompts SET name = ?, description = ? WHERE id = ?", p.Name, p.Description, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update prompt: %w", err)
	}
	return checkAffected(res)
}

// DeletePrompt removes the prompt and its versions. Conversations that pointed
// at one of the versions keep existing with the link cleared.
func (s *SQLiteStore) DeletePrompt(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM prompts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete prompt: %w", err)
	}
	return checkAffected(res)
}

// CreatePromptVersion appends a version numbered one past the current maximum.
func (s *SQLiteStore) CreatePromptVersion(ctx context.Context, promptID int64, text string) (*PromptVersion, error) {
	var version *PromptVersion
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM prompts WHERE id = ?", promptID).Scan(&exists)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to look up prompt: %w", err)
		}
		version, err = insertNextVersion(ctx, tx, promptID, text)
		return err
	})
	if err != nil {
		return nil, err
	}
	return version, nil
}

func insertNextVersion(ctx context.Context, tx *sql.Tx, promptID int64, text string) (*PromptVersion, error) {
	var next int64
	err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(version_number), 0) + 1 FROM prompt_versions WHERE prompt_id = ?", promptID).Scan(&next)
	if err != nil {
		return nil, fmt.Errorf("failed to compute next version: %w", err)
	}

	v := &PromptVersion{
		PromptID:      promptID,
		Text:          text,
		VersionNumber: next,
		CreatedAt:     time.Now().UTC(),
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO prompt_versions (prompt_id, text, version_number, created_at) VALUES (?, ?, ?, ?)",
		v.PromptID, v.Text, v.VersionNumber, v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert prompt version: %w", err)
	}
	if v.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to read prompt version id: %w", err)
	}
	return v, nil
}

func (s *SQLiteStore) ListPromptVersions(ctx context.Context, promptID int64) ([]PromptVersion, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, prompt_id, text, version_number, created_at FROM prompt_versions WHERE prompt_id = ? ORDER BY version_number ASC",
		promptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query prompt versions: %w", err)
	}
	defer rows.Close()

	versions := make([]PromptVersion, 0)
	for rows.Next() {
		var v PromptVersion
		if err := rows.Scan(&v.ID, &v.PromptID, &v.Text, &v.VersionNumber, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prompt version row: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (s *SQLiteStore) GetPromptVersion(ctx context.Context, id int64) (*PromptVersion, error) {
	var v PromptVersion
	err := s.db.QueryRowContext(ctx,
		"SELECT id, prompt_id, text, version_number, created_at FROM prompt_versions WHERE id = ?", id).
		Scan(&v.ID, &v.PromptID, &v.Text, &v.VersionNumber, &v.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get prompt version: %w", err)
	}
	return &v, nil
}

// LatestPromptVersion returns the highest-numbered version of a prompt, or nil.
func (s *SQLiteStore) LatestPromptVersion(ctx context.Context, promptID int64) (*PromptVersion, error) {
	var v PromptVersion
	err := s.db.QueryRowContext(ctx,
		"SELECT id, prompt_id, text, version_number, created_at FROM prompt_versions WHERE prompt_id = ? ORDER BY version_number DESC LIMIT 1",
		promptID).Scan(&v.ID, &v.PromptID, &v.Text, &v.VersionNumber, &v.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest prompt version: %w", err)
	}
	return &v, nil
}
