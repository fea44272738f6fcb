package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Thiht/transactor"
	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/tempo"
	"github.com/benjamonnguyen/tempo/modes"
	"github.com/benjamonnguyen/tempo/session"
)

type sessionNotifier interface {
	NotifySessionFinished(ctx context.Context, rec tempo.ExistingSessionRecord) error
}

// historyRecorder persists finished sessions and forwards them to the notifier.
type historyRecorder struct {
	repo     tempo.SessionRepo
	tx       transactor.Transactor
	notifier sessionNotifier
	l        log.Logger
	wg       sync.WaitGroup
}

func newHistoryRecorder(repo tempo.SessionRepo, tx transactor.Transactor, notifier sessionNotifier, l log.Logger) *historyRecorder {
	return &historyRecorder{
		repo:     repo,
		tx:       tx,
		notifier: notifier,
		l:        l,
	}
}

func (r *historyRecorder) Start(ctx context.Context, sigs <-chan session.Signal) {
	r.wg.Go(func() {
		for sig := range sigs {
			switch sig := sig.(type) {
			case session.SessionFinished:
				if err := r.record(ctx, sig.Record); err != nil {
					r.l.Error(err)
				}
			case session.SessionRated:
				if err := r.rate(ctx, sig.ID, sig.Rating); err != nil {
					r.l.Error(err)
				}
			}
		}
	})
}

func (r *historyRecorder) Wait() {
	r.wg.Wait()
}

func (r *historyRecorder) record(ctx context.Context, rec tempo.ExistingSessionRecord) error {
	var saved tempo.ExistingSessionRecord
	if err := r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		saved, err = r.repo.InsertSession(ctx, rec)
		return err
	}); err != nil {
		return fmt.Errorf("failed to record session %s: %w", rec.ID, err)
	}
	r.l.Info("recorded session", "id", saved.ID, "mode", saved.Mode, "seconds", saved.DurationSeconds)

	if r.notifier == nil {
		return nil
	}
	notifyCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	if err := r.notifier.NotifySessionFinished(notifyCtx, saved); err != nil {
		return fmt.Errorf("failed to notify session %s: %w", saved.ID, err)
	}
	return nil
}

func (r *historyRecorder) rate(ctx context.Context, id tempo.SessionID, rating int) error {
	return r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := r.repo.UpdateRating(ctx, id, rating); err != nil {
			return fmt.Errorf("failed to rate session %s: %w", id, err)
		}
		return nil
	})
}

// printHistory writes the most recent sessions, newest first.
func printHistory(ctx context.Context, w io.Writer, repo tempo.SessionRepo, limit int) error {
	sessions, err := repo.ListSessions(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "no sessions yet")
		return err
	}
	for _, s := range sessions {
		line := fmt.Sprintf("%s  %-10s %8s", s.StartedAt.Local().Format("2006-01-02 15:04"), s.Mode, modes.FormatClock(s.DurationSeconds))
		if s.Mode == tempo.ModeFlow {
			line += fmt.Sprintf("  distractions %d  rest %dm", s.Distractions, s.BreakRecommendationMinutes)
		}
		if s.Rating > 0 {
			line += "  " + stars(s.Rating)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
