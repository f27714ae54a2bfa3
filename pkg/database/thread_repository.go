package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// threadRepository implements the ThreadRepository interface
type threadRepository struct {
	db *sqlx.DB
}

// NewThreadRepository creates a new thread repository
func NewThreadRepository(db *sqlx.DB) ThreadRepository {
	return &threadRepository{db: db}
}

const threadColumns = `id, recipient_id, channel_id, dm_channel_id, guild_id, category_id, status, created_at, closed_at, closed_by`

// Create inserts a new open thread and fills in its ID
func (r *threadRepository) Create(ctx context.Context, thread *Thread) error {
	if thread.CreatedAt.IsZero() {
		thread.CreatedAt = time.Now().UTC()
	}
	if thread.Status == "" {
		thread.Status = ThreadOpen
	}

	res, err := r.db.NamedExecContext(ctx,
		`INSERT INTO threads (recipient_id, channel_id, dm_channel_id, guild_id, category_id, status, created_at, closed_by)
		 VALUES (:recipient_id, :channel_id, :dm_channel_id, :guild_id, :category_id, :status, :created_at, :closed_by)`,
		thread)
	if err != nil {
		return fmt.Errorf("failed to create thread: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read thread id: %w", err)
	}
	thread.ID = id
	return nil
}

// GetOpenByRecipient returns the open thread for a user
func (r *threadRepository) GetOpenByRecipient(ctx context.Context, recipientID string) (*Thread, error) {
	return r.getOne(ctx,
		`SELECT `+threadColumns+` FROM threads WHERE recipient_id = ? AND status = ? ORDER BY id DESC LIMIT 1`,
		recipientID, ThreadOpen)
}

// GetOpenByChannel returns the open thread that owns a staff channel
func (r *threadRepository) GetOpenByChannel(ctx context.Context, channelID string) (*Thread, error) {
	return r.getOne(ctx,
		`SELECT `+threadColumns+` FROM threads WHERE channel_id = ? AND status = ? ORDER BY id DESC LIMIT 1`,
		channelID, ThreadOpen)
}

func (r *threadRepository) getOne(ctx context.Context, query string, args ...any) (*Thread, error) {
	var thread Thread
	err := r.db.GetContext(ctx, &thread, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrThreadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load thread: %w", err)
	}
	return &thread, nil
}

// UpdateCategory records that a thread channel moved to another category
func (r *threadRepository) UpdateCategory(ctx context.Context, id int64, categoryID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE threads SET category_id = ? WHERE id = ?`, categoryID, id)
	if err != nil {
		return fmt.Errorf("failed to update thread category: %w", err)
	}
	return expectOneRow(res)
}

// Close marks an open thread as closed
func (r *threadRepository) Close(ctx context.Context, id int64, closedBy string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE threads SET status = ?, closed_at = ?, closed_by = ? WHERE id = ? AND status = ?`,
		ThreadClosed, at.UTC(), closedBy, id, ThreadOpen)
	if err != nil {
		return fmt.Errorf("failed to close thread: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		if errors.Is(err, ErrThreadNotFound) {
			return ErrInvalidThreadState
		}
		return err
	}
	return nil
}

// CountOpen returns the number of open threads
func (r *threadRepository) CountOpen(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM threads WHERE status = ?`, ThreadOpen); err != nil {
		return 0, fmt.Errorf("failed to count open threads: %w", err)
	}
	return count, nil
}

// PruneClosed deletes closed threads that were closed before the cutoff
func (r *threadRepository) PruneClosed(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM threads WHERE status = ? AND closed_at IS NOT NULL AND closed_at < ?`,
		ThreadClosed, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune closed threads: %w", err)
	}
	return res.RowsAffected()
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrThreadNotFound
	}
	return nil
}
