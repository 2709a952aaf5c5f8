package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"minisocial/internal/metrics"
	"minisocial/internal/model"
)

// maxToggleAttempts bounds how many transactions a follow or like toggle runs
// before giving up with ErrToggleConflict.
const maxToggleAttempts = 3

// errToggleRaced is returned from a toggle body when neither the delete nor
// the insert touched a row, meaning a concurrent toggle on the same pair won.
var errToggleRaced = errors.New("toggle raced with a concurrent update")

// withTx runs fn in a transaction, committing only if fn returns nil.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// runToggle retries fn in a fresh transaction while it reports errToggleRaced.
func runToggle(ctx context.Context, db *sqlx.DB, kind string, fn func(tx *sqlx.Tx) error) error {
	for attempt := 1; attempt <= maxToggleAttempts; attempt++ {
		err := withTx(ctx, db, fn)
		if !errors.Is(err, errToggleRaced) {
			return err
		}
		if attempt < maxToggleAttempts {
			metrics.ToggleRetriesTotal.WithLabelValues(kind).Inc()
			log.Printf("[Toggle] %s lost a race on attempt %d, retrying", kind, attempt)
		}
	}

	log.Printf("[Toggle] %s gave up after %d attempts", kind, maxToggleAttempts)
	return model.ErrToggleConflict
}

// now returns the current time in the precision every store keeps.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
