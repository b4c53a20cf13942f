package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is the stored record of one tracking session.
type Session struct {
	ID                string     `json:"id"`
	StartedAt         time.Time  `json:"started_at"`
	EndedAt           *time.Time `json:"ended_at,omitempty"`
	FramesRead        int        `json:"frames_read"`
	FramesProcessed   int        `json:"frames_processed"`
	FramesDetected    int        `json:"frames_detected"`
	ActuationFailures int        `json:"actuation_failures"`
	EndReason         string     `json:"end_reason"`
}

// SessionRepository records session history.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Start inserts a new open session and returns it.
func (r *SessionRepository) Start() (*Session, error) {
	sess := &Session{
		ID:        uuid.New().String(),
		StartedAt: time.Now().UTC(),
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, started_at) VALUES (?, ?)`,
		sess.ID, sess.StartedAt,
	)
	if err != nil {
		return nil, err
	}

	return sess, nil
}

// Finish stores the final counters and end reason of sess and marks it ended.
func (r *SessionRepository) Finish(sess *Session) error {
	ended := time.Now().UTC()

	res, err := r.db.Exec(
		`UPDATE sessions
		 SET ended_at = ?, frames_read = ?, frames_processed = ?, frames_detected = ?,
		     actuation_failures = ?, end_reason = ?
		 WHERE id = ?`,
		ended, sess.FramesRead, sess.FramesProcessed, sess.FramesDetected,
		sess.ActuationFailures, sess.EndReason, sess.ID,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	sess.EndedAt = &ended
	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	row := r.db.QueryRow(
		`SELECT id, started_at, ended_at, frames_read, frames_processed, frames_detected,
		        actuation_failures, end_reason
		 FROM sessions WHERE id = ?`,
		id,
	)

	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

// Recent returns up to limit sessions, newest first.
func (r *SessionRepository) Recent(limit int) ([]Session, error) {
	rows, err := r.db.Query(
		`SELECT id, started_at, ended_at, frames_read, frames_processed, frames_detected,
		        actuation_failures, end_reason
		 FROM sessions
		 ORDER BY started_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var sess Session
	var ended sql.NullTime

	err := row.Scan(&sess.ID, &sess.StartedAt, &ended, &sess.FramesRead, &sess.FramesProcessed,
		&sess.FramesDetected, &sess.ActuationFailures, &sess.EndReason)
	if err != nil {
		return nil, err
	}

	if ended.Valid {
		t := ended.Time
		sess.EndedAt = &t
	}
	return &sess, nil
}
