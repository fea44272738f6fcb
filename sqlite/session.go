// Package sqlite implements repo interfaces
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	txStdLib "github.com/Thiht/transactor/stdlib"
	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/tempo"
)

const SelectAllSessions = "SELECT id, mode, started_at, duration_seconds, distractions, break_recommendation, rating, completed, created_at, updated_at FROM sessions"

type sessionEntity struct {
	ID                  string
	Mode                string
	StartedAt           int64
	DurationSeconds     int
	Distractions        int
	BreakRecommendation int
	Rating              int
	Completed           bool
	CreatedAt           int64
	UpdatedAt           int64
}

// sessionRepo stores finished session records.
type sessionRepo struct {
	dbGetter txStdLib.DBGetter
	l        log.Logger
}

var _ tempo.SessionRepo = (*sessionRepo)(nil)

func NewSessionRepo(dbGetter txStdLib.DBGetter, logger log.Logger) *sessionRepo {
	return &sessionRepo{
		l:        logger,
		dbGetter: dbGetter,
	}
}

// InsertSession keeps the record's ID; a record without one gets a new ID.
func (r *sessionRepo) InsertSession(ctx context.Context, session tempo.ExistingSessionRecord) (tempo.ExistingSessionRecord, error) {
	if session.ID == "" {
		session.ExistingRecord = tempo.NewExistingRecord[tempo.SessionID](string(tempo.NewSessionID()))
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
		session.UpdatedAt = session.CreatedAt
	}
	e := mapToSessionEntity(session)

	args := []any{
		e.ID,
		e.Mode,
		e.StartedAt,
		e.DurationSeconds,
		e.Distractions,
		e.BreakRecommendation,
		e.Rating,
		e.Completed,
		e.CreatedAt,
		e.UpdatedAt,
	}
	query := "INSERT INTO sessions (id, mode, started_at, duration_seconds, distractions, break_recommendation, rating, completed, created_at, updated_at) VALUES " + generateParameters(len(args))
	r.l.Debug("creating session", "query", query, "args", args)
	if _, err := r.dbGetter(ctx).ExecContext(ctx, query, args...); err != nil {
		return tempo.ExistingSessionRecord{}, err
	}

	return session, nil
}

func (r *sessionRepo) UpdateRating(ctx context.Context, id tempo.SessionID, rating int) (tempo.ExistingSessionRecord, error) {
	if rating < 0 || rating > 5 {
		return tempo.ExistingSessionRecord{}, fmt.Errorf("rating out of range: %d", rating)
	}
	existing, err := r.GetSession(ctx, id)
	if err != nil {
		return existing, err
	}

	existing.Rating = rating
	existing.UpdatedAt = time.Now()
	e := mapToSessionEntity(existing)

	query := "UPDATE sessions SET rating = ?, updated_at = ? WHERE id = ?"
	args := []any{e.Rating, e.UpdatedAt, e.ID}
	r.l.Debug("rating session", "query", query, "args", args)
	if _, err := r.dbGetter(ctx).ExecContext(ctx, query, args...); err != nil {
		return tempo.ExistingSessionRecord{}, err
	}

	return existing, nil
}

func (r *sessionRepo) GetSession(ctx context.Context, id tempo.SessionID) (tempo.ExistingSessionRecord, error) {
	if id == "" {
		return tempo.ExistingSessionRecord{}, fmt.Errorf("provide id")
	}

	row := r.dbGetter(ctx).QueryRowContext(
		ctx,
		fmt.Sprintf("%s WHERE id=?", SelectAllSessions), id,
	)

	return extractSession(row)
}

// ListSessions returns the most recent sessions first.
func (r *sessionRepo) ListSessions(ctx context.Context, limit int) ([]tempo.ExistingSessionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf("%s ORDER BY started_at DESC LIMIT ?", SelectAllSessions)
	r.l.Debug("listing sessions", "query", query, "limit", limit)
	return r.query(ctx, query, limit)
}

func (r *sessionRepo) GetSessionsByMode(ctx context.Context, modes ...tempo.Mode) ([]tempo.ExistingSessionRecord, error) {
	if len(modes) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf("%s WHERE mode IN %s ORDER BY started_at DESC", SelectAllSessions, generateParameters(len(modes)))
	r.l.Debug("getting sessions by mode", "query", query, "modes", modes)
	var args []any
	for _, m := range modes {
		args = append(args, m.String())
	}
	return r.query(ctx, query, args...)
}

func (r *sessionRepo) query(ctx context.Context, query string, args ...any) ([]tempo.ExistingSessionRecord, error) {
	rows, err := r.dbGetter(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint

	var sessions []tempo.ExistingSessionRecord
	for rows.Next() {
		session, err := extractSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

func extractSession(s scannable) (tempo.ExistingSessionRecord, error) {
	var e sessionEntity
	if err := s.Scan(&e.ID, &e.Mode, &e.StartedAt, &e.DurationSeconds, &e.Distractions, &e.BreakRecommendation, &e.Rating, &e.Completed, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tempo.ExistingSessionRecord{}, ErrNotFound
		}
		return tempo.ExistingSessionRecord{}, err
	}

	return mapToExistingSessionRecord(e)
}

func mapToSessionEntity(session tempo.ExistingSessionRecord) sessionEntity {
	return sessionEntity{
		ID:                  string(session.ID),
		Mode:                session.Mode.String(),
		StartedAt:           session.StartedAt.Unix(),
		DurationSeconds:     session.DurationSeconds,
		Distractions:        session.Distractions,
		BreakRecommendation: session.BreakRecommendationMinutes,
		Rating:              session.Rating,
		Completed:           session.Completed,
		CreatedAt:           session.CreatedAt.Unix(),
		UpdatedAt:           session.UpdatedAt.Unix(),
	}
}

func mapToExistingSessionRecord(e sessionEntity) (tempo.ExistingSessionRecord, error) {
	mode, err := tempo.ParseMode(e.Mode)
	if err != nil {
		return tempo.ExistingSessionRecord{}, fmt.Errorf("session %s: %w", e.ID, err)
	}
	return tempo.ExistingSessionRecord{
		ExistingRecord: tempo.ExistingRecord[tempo.SessionID]{
			ID:        tempo.SessionID(e.ID),
			CreatedAt: time.Unix(e.CreatedAt, 0),
			UpdatedAt: time.Unix(e.UpdatedAt, 0),
		},
		SessionRecord: tempo.SessionRecord{
			Mode:                       mode,
			StartedAt:                  time.Unix(e.StartedAt, 0),
			DurationSeconds:            e.DurationSeconds,
			Distractions:               e.Distractions,
			BreakRecommendationMinutes: e.BreakRecommendation,
			Rating:                     e.Rating,
			Completed:                  e.Completed,
		},
	}, nil
}
