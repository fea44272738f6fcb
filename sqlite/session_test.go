package sqlite

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	txStdLib "github.com/Thiht/transactor/stdlib"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjamonnguyen/tempo"
)

func newTestRepo(t *testing.T) (*sessionRepo, func(context.Context, func(context.Context) error) error) {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.RunMigrations())
	// second run is a no-op
	require.NoError(t, db.RunMigrations())

	tx, dbGetter := txStdLib.NewTransactor(db.DB(), txStdLib.NestedTransactionsSavepoints)
	return NewSessionRepo(dbGetter, *log.New(io.Discard)), tx.WithinTransaction
}

func record(mode tempo.Mode, startedAt time.Time, seconds int) tempo.ExistingSessionRecord {
	return tempo.ExistingSessionRecord{
		ExistingRecord: tempo.NewExistingRecordAt[tempo.SessionID](string(tempo.NewSessionID()), startedAt.Add(time.Duration(seconds)*time.Second)),
		SessionRecord: tempo.SessionRecord{
			Mode:            mode,
			StartedAt:       startedAt,
			DurationSeconds: seconds,
			Completed:       true,
		},
	}
}

func TestSessionRepo(t *testing.T) {
	t.Parallel()
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	flow := record(tempo.ModeFlow, base, 1800)
	flow.Distractions = 3
	flow.BreakRecommendationMinutes = 10
	inserted, err := repo.InsertSession(ctx, flow)
	require.NoError(t, err)
	assert.Equal(t, flow.ID, inserted.ID)

	got, err := repo.GetSession(ctx, flow.ID)
	require.NoError(t, err)
	assert.Equal(t, tempo.ModeFlow, got.Mode)
	assert.Equal(t, 1800, got.DurationSeconds)
	assert.Equal(t, 3, got.Distractions)
	assert.Equal(t, 10, got.BreakRecommendationMinutes)
	assert.True(t, got.Completed)
	assert.True(t, base.Equal(got.StartedAt))

	rated, err := repo.UpdateRating(ctx, flow.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, rated.Rating)
	got, err = repo.GetSession(ctx, flow.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Rating)

	_, err = repo.UpdateRating(ctx, flow.ID, 7)
	assert.Error(t, err)

	_, err = repo.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetSession(ctx, "")
	assert.Error(t, err)
}

func TestSessionRepo_Lists(t *testing.T) {
	t.Parallel()
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, mode := range []tempo.Mode{tempo.ModeMeditation, tempo.ModePomodoro, tempo.ModeFlow, tempo.ModePomodoro} {
		_, err := repo.InsertSession(ctx, record(mode, base.Add(time.Duration(i)*time.Hour), 600))
		require.NoError(t, err)
	}

	all, err := repo.ListSessions(ctx, 3)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, tempo.ModePomodoro, all[0].Mode, "newest first")
	assert.True(t, all[0].StartedAt.After(all[1].StartedAt))

	pomodoros, err := repo.GetSessionsByMode(ctx, tempo.ModePomodoro)
	require.NoError(t, err)
	assert.Len(t, pomodoros, 2)

	mixed, err := repo.GetSessionsByMode(ctx, tempo.ModeFlow, tempo.ModeMeditation)
	require.NoError(t, err)
	assert.Len(t, mixed, 2)

	none, err := repo.GetSessionsByMode(ctx)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSessionRepo_TransactionRollback(t *testing.T) {
	t.Parallel()
	repo, within := newTestRepo(t)
	ctx := context.Background()

	rec := record(tempo.ModeStopwatch, time.Now(), 60)
	errBoom := errors.New("boom")
	err := within(ctx, func(ctx context.Context) error {
		if _, err := repo.InsertSession(ctx, rec); err != nil {
			return err
		}
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)

	_, err = repo.GetSession(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGenerateParameters(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "()", generateParameters(0))
	assert.Equal(t, "(?)", generateParameters(1))
	assert.Equal(t, "(?, ?, ?)", generateParameters(3))
}
