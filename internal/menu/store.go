package menu

import (
	"context"
	"fmt"

	"github.com/latoulicious/HokkoMail/pkg/database"
)

const (
	// PartitionName is the document partition the menu lives in
	PartitionName = "Menu"
	// ConfigID is the id of the single menu document
	ConfigID = "config"
)

// ReactionEmojis lists extra custom emoji added under every menu prompt
type ReactionEmojis struct {
	Emojis []string `json:"emojis"`
}

// Config is the stored menu
type Config struct {
	Content        string          `json:"content,omitempty"`
	Options        Options         `json:"options,omitempty"`
	OtherContent   string          `json:"ocontent,omitempty"`
	OtherOptions   Options         `json:"ooptions,omitempty"`
	ReactionEmojis *ReactionEmojis `json:"reaction-emojis,omitempty"`
}

// CustomEmojiIDs returns the configured extra emoji ids, if any
func (c *Config) CustomEmojiIDs() []string {
	if c.ReactionEmojis == nil {
		return nil
	}
	return c.ReactionEmojis.Emojis
}

// Store reads and writes the menu document
type Store struct {
	repo database.PartitionRepository
}

// NewStore wraps the Menu partition
func NewStore(repo database.PartitionRepository) *Store {
	return &Store{repo: repo}
}

// Load returns the menu and whether one is configured
func (s *Store) Load(ctx context.Context) (*Config, bool, error) {
	var cfg Config
	found, err := s.repo.FindOne(ctx, ConfigID, &cfg)
	if err != nil {
		return nil, false, fmt.Errorf("load menu: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	return &cfg, true, nil
}

// SetMenu replaces the primary prompt and options
func (s *Store) SetMenu(ctx context.Context, content string, options Options) error {
	return s.set(ctx, map[string]any{"content": content, "options": options})
}

// SetOtherMenu replaces the second stage prompt and options
func (s *Store) SetOtherMenu(ctx context.Context, content string, options Options) error {
	return s.set(ctx, map[string]any{"ocontent": content, "ooptions": options})
}

// SetReactionEmojis replaces the extra custom emoji ids
func (s *Store) SetReactionEmojis(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	return s.set(ctx, map[string]any{"reaction-emojis": ReactionEmojis{Emojis: ids}})
}

// Clear deletes the menu and reports whether one existed
func (s *Store) Clear(ctx context.Context) (bool, error) {
	deleted, err := s.repo.Delete(ctx, ConfigID)
	if err != nil {
		return false, fmt.Errorf("clear menu: %w", err)
	}
	return deleted, nil
}

func (s *Store) set(ctx context.Context, fields map[string]any) error {
	if err := s.repo.Upsert(ctx, ConfigID, fields); err != nil {
		return fmt.Errorf("save menu: %w", err)
	}
	return nil
}
