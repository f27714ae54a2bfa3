package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDocument struct {
	Content string            `json:"content"`
	Options map[string]string `json:"options"`
	Other   string            `json:"other"`
}

func TestPartitionRepository_FindMissing(t *testing.T) {
	repo := newTestManager(t).Partition("Menu")

	var doc testDocument
	found, err := repo.FindOne(context.Background(), "config", &doc)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, doc.Content)
}

func TestPartitionRepository_UpsertMergesFields(t *testing.T) {
	repo := newTestManager(t).Partition("Menu")
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "config", map[string]any{
		"content": "Pick one",
		"options": map[string]string{"👍": "reply yes"},
	}))
	require.NoError(t, repo.Upsert(ctx, "config", map[string]any{
		"other": "kept alongside",
	}))

	var doc testDocument
	found, err := repo.FindOne(ctx, "config", &doc)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Pick one", doc.Content)
	assert.Equal(t, map[string]string{"👍": "reply yes"}, doc.Options)
	assert.Equal(t, "kept alongside", doc.Other)

	// A field set again is replaced wholesale, not merged
	require.NoError(t, repo.Upsert(ctx, "config", map[string]any{
		"options": map[string]string{"👎": "close"},
	}))

	doc = testDocument{}
	_, err = repo.FindOne(ctx, "config", &doc)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"👎": "close"}, doc.Options)
	assert.Equal(t, "Pick one", doc.Content)
}

func TestPartitionRepository_PartitionsAreIsolated(t *testing.T) {
	dm := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, dm.Partition("Menu").Upsert(ctx, "config", map[string]any{"content": "menu"}))

	found, err := dm.Partition("Other").FindOne(ctx, "config", nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPartitionRepository_Delete(t *testing.T) {
	repo := newTestManager(t).Partition("Menu")
	ctx := context.Background()

	deleted, err := repo.Delete(ctx, "config")
	require.NoError(t, err)
	assert.False(t, deleted)

	require.NoError(t, repo.Upsert(ctx, "config", map[string]any{"content": "x"}))

	deleted, err = repo.Delete(ctx, "config")
	require.NoError(t, err)
	assert.True(t, deleted)

	found, err := repo.FindOne(ctx, "config", nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPartitionRepository_Validation(t *testing.T) {
	dm := newTestManager(t)
	ctx := context.Background()

	_, err := dm.Partition("").FindOne(ctx, "config", nil)
	assert.ErrorIs(t, err, ErrInvalidPartition)

	err = dm.Partition("Menu").Upsert(ctx, " ", map[string]any{"a": 1})
	assert.ErrorIs(t, err, ErrInvalidDocumentID)
}
