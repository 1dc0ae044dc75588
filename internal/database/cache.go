package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"media-broker/internal/logging"
)

// Lookup fetches the cached conversion for key.
// Returns (nil, nil) when no row exists.
func (d *Database) Lookup(ctx context.Context, key string) (*CachedConversion, error) {
	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	start := time.Now()

	var (
		rec       CachedConversion
		createdAt int64
	)
	err := d.db.QueryRowContext(queryCtx,
		`SELECT key, content_hash, kind, extension, location, created_at, requester
		 FROM conversions WHERE key = ?`, key,
	).Scan(&rec.Key, &rec.ContentHash, &rec.Kind, &rec.Extension, &rec.Location, &createdAt, &rec.Requester)

	if errors.Is(err, sql.ErrNoRows) {
		observeQuery("lookup", start, nil)
		return nil, nil
	}
	observeQuery("lookup", start, err)
	if err != nil {
		return nil, fmt.Errorf("cache lookup failed: %w", err)
	}

	rec.CreatedAt = time.Unix(createdAt, 0)
	return &rec, nil
}

// Upsert stores rec, overwriting the non-key columns if a row for the
// key already exists. The broker deduplicates producers per key, so a
// same-key race is not expected from within this process; the
// update-then-insert shape guards against out-of-band writers (e.g. a
// backfill) hitting the uniqueness constraint.
func (d *Database) Upsert(ctx context.Context, rec *CachedConversion) error {
	if rec.Key == "" {
		return fmt.Errorf("cache upsert requires a non-empty key")
	}
	if !rec.Kind.Valid() {
		return fmt.Errorf("cache upsert: unknown artifact kind %q", rec.Kind)
	}

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	start := time.Now()
	err := d.upsertTx(queryCtx, rec, createdAt)
	observeQuery("upsert", start, err)
	if err != nil {
		return fmt.Errorf("cache upsert failed: %w", err)
	}

	logging.Debug("Cached conversion stored: key=%s kind=%s location=%s", rec.Key, rec.Kind, rec.Location)
	return nil
}

func (d *Database) upsertTx(ctx context.Context, rec *CachedConversion, createdAt time.Time) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE conversions
		 SET content_hash = ?, kind = ?, extension = ?, location = ?, created_at = ?, requester = ?
		 WHERE key = ?`,
		rec.ContentHash, rec.Kind, rec.Extension, rec.Location, createdAt.Unix(), rec.Requester, rec.Key,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO conversions (key, content_hash, kind, extension, location, created_at, requester)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.Key, rec.ContentHash, rec.Kind, rec.Extension, rec.Location, createdAt.Unix(), rec.Requester,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Count returns the number of cached conversion rows.
func (d *Database) Count(ctx context.Context) (int64, error) {
	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	start := time.Now()
	var count int64
	err := d.db.QueryRowContext(queryCtx, `SELECT COUNT(*) FROM conversions`).Scan(&count)
	observeQuery("count", start, err)
	if err != nil {
		return 0, fmt.Errorf("cache count failed: %w", err)
	}
	return count, nil
}

// Clear removes every cached conversion row and returns how many were
// deleted. Artifact files on disk are the caller's concern.
func (d *Database) Clear(ctx context.Context) (int64, error) {
	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	start := time.Now()
	res, err := d.db.ExecContext(queryCtx, `DELETE FROM conversions`)
	observeQuery("clear", start, err)
	if err != nil {
		return 0, fmt.Errorf("cache clear failed: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	logging.Info("Conversion cache cleared: %d rows removed", deleted)
	return deleted, nil
}
