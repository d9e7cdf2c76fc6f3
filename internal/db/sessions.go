package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/abdulachik/whatif/internal/simulation"
	"github.com/abdulachik/whatif/internal/story"
)

const timeLayout = time.RFC3339Nano

var _ simulation.Store = (*Store)(nil)

// SaveSession inserts a new session (Version 0) or replaces a stored one
// together with its chapters. A replace only succeeds when sess.Version is
// still the stored version; otherwise simulation.ErrConflict is returned.
func (s *Store) SaveSession(ctx context.Context, sess *simulation.Session) error {
	profile, err := json.Marshal(sess.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := saveSessionRow(ctx, tx, sess, string(profile)); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM chapters WHERE session_id = ?", sess.ID); err != nil {
		return fmt.Errorf("clear chapters: %w", err)
	}

	for i, ch := range sess.Chapters {
		var miniChoice sql.NullString
		if ch.MiniChoice != nil {
			b, err := json.Marshal(ch.MiniChoice)
			if err != nil {
				return fmt.Errorf("marshal mini choice: %w", err)
			}
			miniChoice = sql.NullString{String: string(b), Valid: true}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO chapters (session_id, position, title, period, age, story_text,
				happiness_change, money_change, health_change, mini_choice)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			sess.ID, i, ch.Title, ch.Period, ch.Age, ch.StoryText,
			ch.StatsChange.Happiness, ch.StatsChange.Money, ch.StatsChange.Health,
			miniChoice,
		)
		if err != nil {
			return fmt.Errorf("insert chapter %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	sess.Version++
	return nil
}

func saveSessionRow(ctx context.Context, tx *sql.Tx, sess *simulation.Session, profile string) error {
	created := sess.CreatedAt.UTC().Format(timeLayout)
	updated := sess.UpdatedAt.UTC().Format(timeLayout)

	var (
		res sql.Result
		err error
	)
	if sess.Version == 0 {
		res, err = tx.ExecContext(ctx, `
			INSERT INTO sessions (id, name, birth_year, profile, choice_category, choice_text,
				happiness, money, health, letter, created_at, updated_at, version)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
			ON CONFLICT(id) DO NOTHING
		`,
			sess.ID, sess.Name, sess.BirthYear, profile,
			string(sess.Choice.Category), sess.Choice.Text,
			sess.Stats.Happiness, sess.Stats.Money, sess.Stats.Health,
			sess.Letter, created, updated,
		)
	} else {
		res, err = tx.ExecContext(ctx, `
			UPDATE sessions SET
				name = ?, birth_year = ?, profile = ?, choice_category = ?, choice_text = ?,
				happiness = ?, money = ?, health = ?, letter = ?, updated_at = ?,
				version = version + 1
			WHERE id = ? AND version = ?
		`,
			sess.Name, sess.BirthYear, profile,
			string(sess.Choice.Category), sess.Choice.Text,
			sess.Stats.Happiness, sess.Stats.Money, sess.Stats.Health,
			sess.Letter, updated,
			sess.ID, sess.Version,
		)
	}
	if err != nil {
		return fmt.Errorf("write session row: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("write session row: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("session %s at version %d: %w", sess.ID, sess.Version, simulation.ErrConflict)
	}
	return nil
}

// GetSession loads a session and its chapters. Unknown IDs return
// simulation.ErrNotFound.
func (s *Store) GetSession(ctx context.Context, id string) (*simulation.Session, error) {
	row := s.QueryRowContext(ctx, sessionColumns+" WHERE id = ?", id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, simulation.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	sess.Chapters, err = s.chapters(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// ListSessions returns the most recently updated sessions, newest first.
// A limit of zero or less returns all of them.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]*simulation.Session, error) {
	query := sessionColumns + " ORDER BY updated_at DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*simulation.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	for _, sess := range sessions {
		if sess.Chapters, err = s.chapters(ctx, sess.ID); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

// Stats summarises stored sessions.
type Stats struct {
	Sessions         int64
	FinishedSessions int64
	Chapters         int64
}

// CountSessions returns the number of stored sessions.
func (s *Store) CountSessions(ctx context.Context) (int64, error) {
	var n int64
	if err := s.QueryRowContext(ctx, "SELECT COUNT(*) FROM sessions").Scan(&n); err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return n, nil
}

// GetStats returns session, finished-session and chapter counts.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM sessions),
			(SELECT COUNT(*) FROM sessions WHERE letter != ''),
			(SELECT COUNT(*) FROM chapters)
	`).Scan(&st.Sessions, &st.FinishedSessions, &st.Chapters)
	if err != nil {
		return Stats{}, fmt.Errorf("get stats: %w", err)
	}
	return st, nil
}

const sessionColumns = `
	SELECT id, name, birth_year, profile, choice_category, choice_text,
		happiness, money, health, letter, created_at, updated_at, version
	FROM sessions`

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*simulation.Session, error) {
	var (
		sess               simulation.Session
		profile, category  string
		createdAt, updated string
	)
	err := row.Scan(
		&sess.ID, &sess.Name, &sess.BirthYear, &profile, &category, &sess.Choice.Text,
		&sess.Stats.Happiness, &sess.Stats.Money, &sess.Stats.Health,
		&sess.Letter, &createdAt, &updated, &sess.Version,
	)
	if err != nil {
		return nil, err
	}

	sess.Choice.Category = story.Category(category)
	if err := json.Unmarshal([]byte(profile), &sess.Profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	if sess.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if sess.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &sess, nil
}

func (s *Store) chapters(ctx context.Context, sessionID string) ([]story.Chapter, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT title, period, age, story_text, happiness_change, money_change, health_change, mini_choice
		FROM chapters WHERE session_id = ? ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query chapters: %w", err)
	}
	defer rows.Close()

	var chapters []story.Chapter
	for rows.Next() {
		var (
			ch         story.Chapter
			miniChoice sql.NullString
		)
		err := rows.Scan(&ch.Title, &ch.Period, &ch.Age, &ch.StoryText,
			&ch.StatsChange.Happiness, &ch.StatsChange.Money, &ch.StatsChange.Health, &miniChoice)
		if err != nil {
			return nil, fmt.Errorf("scan chapter: %w", err)
		}
		if miniChoice.Valid {
			ch.MiniChoice = &story.MiniChoice{}
			if err := json.Unmarshal([]byte(miniChoice.String), ch.MiniChoice); err != nil {
				return nil, fmt.Errorf("unmarshal mini choice: %w", err)
			}
		}
		chapters = append(chapters, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chapters: %w", err)
	}
	return chapters, nil
}
