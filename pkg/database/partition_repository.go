package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// partitionRepository implements the PartitionRepository interface
type partitionRepository struct {
	db   *sqlx.DB
	name string
}

// NewPartitionRepository creates a document store scoped to name
func NewPartitionRepository(db *sqlx.DB, name string) PartitionRepository {
	return &partitionRepository{db: db, name: name}
}

func (r *partitionRepository) Name() string {
	return r.name
}

func (r *partitionRepository) validate(id string) error {
	if r.db == nil {
		return ErrDatabaseNotConnected
	}
	if strings.TrimSpace(r.name) == "" {
		return ErrInvalidPartition
	}
	if strings.TrimSpace(id) == "" {
		return ErrInvalidDocumentID
	}
	return nil
}

// FindOne retrieves a document and decodes it into out
func (r *partitionRepository) FindOne(ctx context.Context, id string, out any) (bool, error) {
	if err := r.validate(id); err != nil {
		return false, err
	}

	var data string
	err := r.db.GetContext(ctx, &data,
		`SELECT data FROM plugin_documents WHERE partition_name = ? AND doc_id = ?`,
		r.name, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load document %s/%s: %w", r.name, id, err)
	}

	if out != nil {
		if err := json.Unmarshal([]byte(data), out); err != nil {
			return true, fmt.Errorf("failed to decode document %s/%s: %w", r.name, id, err)
		}
	}
	return true, nil
}

// Upsert merges fields into the stored document
func (r *partitionRepository) Upsert(ctx context.Context, id string, fields map[string]any) error {
	if err := r.validate(id); err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	doc := make(map[string]json.RawMessage)

	var existing string
	err = tx.GetContext(ctx, &existing,
		`SELECT data FROM plugin_documents WHERE partition_name = ? AND doc_id = ?`,
		r.name, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("failed to load document %s/%s: %w", r.name, id, err)
	default:
		if err := json.Unmarshal([]byte(existing), &doc); err != nil {
			return fmt.Errorf("failed to decode document %s/%s: %w", r.name, id, err)
		}
	}

	for key, value := range fields {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode field %q: %w", key, err)
		}
		doc[key] = raw
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document %s/%s: %w", r.name, id, err)
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO plugin_documents (partition_name, doc_id, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(partition_name, doc_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		r.name, id, string(data), now, now)
	if err != nil {
		return fmt.Errorf("failed to store document %s/%s: %w", r.name, id, err)
	}

	return tx.Commit()
}

// Delete removes the document
func (r *partitionRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := r.validate(id); err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM plugin_documents WHERE partition_name = ? AND doc_id = ?`,
		r.name, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete document %s/%s: %w", r.name, id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
