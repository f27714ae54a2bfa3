package thread

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/HokkoMail/internal/discord"
	"github.com/latoulicious/HokkoMail/internal/logging"
	"github.com/latoulicious/HokkoMail/pkg/database"
	"github.com/rs/zerolog"
)

// Repository is the persistence the manager needs
type Repository interface {
	Create(ctx context.Context, thread *database.Thread) error
	GetOpenByRecipient(ctx context.Context, recipientID string) (*database.Thread, error)
	GetOpenByChannel(ctx context.Context, channelID string) (*database.Thread, error)
	UpdateCategory(ctx context.Context, id int64, categoryID string) error
	Close(ctx context.Context, id int64, closedBy string, at time.Time) error
	CountOpen(ctx context.Context) (int, error)
}

// ReadyHook runs once a new thread has been created and the user greeted.
type ReadyHook func(ctx context.Context, t *Thread, creator *discordgo.User, initial *discordgo.Message)

// Config controls where threads are created
type Config struct {
	GuildID    string
	CategoryID string
	Greeting   string
}

// Manager opens, relays and closes threads
type Manager struct {
	session discord.Session
	repo    Repository
	config  Config
	log     zerolog.Logger

	// creation is serialized so two quick DMs cannot open two threads
	createMu sync.Mutex

	hooksMu sync.RWMutex
	hooks   []ReadyHook

	baseCtx context.Context
	cancel  context.CancelFunc
	running sync.WaitGroup
}

// NewManager creates a thread manager
func NewManager(session discord.Session, repo Repository, config Config, log zerolog.Logger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		session: session,
		repo:    repo,
		config:  config,
		log:     logging.Component(log, "threads"),
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// OnReady registers a hook fired for every newly created thread
func (m *Manager) OnReady(hook ReadyHook) {
	m.hooksMu.Lock()
	defer m.hooksMu.Unlock()
	m.hooks = append(m.hooks, hook)
}

// Shutdown cancels running hooks and waits for them to return
func (m *Manager) Shutdown() {
	m.cancel()
	m.running.Wait()
}

// Wait blocks until every running hook returned
func (m *Manager) Wait() {
	m.running.Wait()
}

func (m *Manager) bind(record *database.Thread) *Thread {
	return &Thread{Thread: *record, session: m.session}
}

// FindByChannel returns the open thread owning a staff channel
func (m *Manager) FindByChannel(ctx context.Context, channelID string) (*Thread, error) {
	record, err := m.repo.GetOpenByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return m.bind(record), nil
}

// FindByRecipient returns the open thread of a user
func (m *Manager) FindByRecipient(ctx context.Context, recipientID string) (*Thread, error) {
	record, err := m.repo.GetOpenByRecipient(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	return m.bind(record), nil
}

// OpenCount returns the number of open threads
func (m *Manager) OpenCount(ctx context.Context) (int, error) {
	return m.repo.CountOpen(ctx)
}

// HandleDirectMessage relays a user's DM into their thread, opening one
// first when needed.
func (m *Manager) HandleDirectMessage(ctx context.Context, msg *discordgo.Message) error {
	if msg == nil || msg.Author == nil {
		return nil
	}

	m.createMu.Lock()
	t, err := m.FindByRecipient(ctx, msg.Author.ID)
	created := false
	if errors.Is(err, database.ErrThreadNotFound) {
		t, err = m.create(ctx, msg)
		created = err == nil
	}
	m.createMu.Unlock()
	if err != nil {
		return err
	}

	if _, err := m.session.ChannelMessageSendEmbed(t.ChannelID, incomingEmbed(msg)); err != nil {
		return fmt.Errorf("failed to relay message to thread: %w", err)
	}

	if !created {
		return nil
	}

	if m.config.Greeting != "" {
		greeting := &discordgo.MessageEmbed{
			Title:       "Thread Created",
			Description: m.config.Greeting,
			Color:       ColorResponse,
			Timestamp:   time.Now().Format(time.RFC3339),
		}
		if _, err := m.session.ChannelMessageSendEmbed(t.DMChannelID, greeting); err != nil {
			m.log.Warn().Err(err).Str("recipient", t.RecipientID).Msg("failed to greet user")
		}
	}

	m.fireReady(t, msg)
	return nil
}

func (m *Manager) create(ctx context.Context, msg *discordgo.Message) (*Thread, error) {
	dmChannelID := msg.ChannelID
	if dmChannelID == "" {
		dm, err := m.session.UserChannelCreate(msg.Author.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to open DM channel: %w", err)
		}
		dmChannelID = dm.ID
	}

	channel, err := m.session.GuildChannelCreateComplex(m.config.GuildID, discordgo.GuildChannelCreateData{
		Name:     channelName(msg.Author),
		Type:     discordgo.ChannelTypeGuildText,
		Topic:    "User ID: " + msg.Author.ID,
		ParentID: m.config.CategoryID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create thread channel: %w", err)
	}

	record := &database.Thread{
		RecipientID: msg.Author.ID,
		ChannelID:   channel.ID,
		DMChannelID: dmChannelID,
		GuildID:     m.config.GuildID,
		CategoryID:  m.config.CategoryID,
	}
	if err := m.repo.Create(ctx, record); err != nil {
		if _, delErr := m.session.ChannelDelete(channel.ID); delErr != nil {
			m.log.Warn().Err(delErr).Str("channel", channel.ID).Msg("failed to remove orphaned thread channel")
		}
		return nil, err
	}

	m.log.Info().
		Int64("thread", record.ID).
		Str("recipient", record.RecipientID).
		Str("channel", record.ChannelID).
		Msg("thread created")

	return m.bind(record), nil
}

func (m *Manager) fireReady(t *Thread, initial *discordgo.Message) {
	m.hooksMu.RLock()
	hooks := append([]ReadyHook(nil), m.hooks...)
	m.hooksMu.RUnlock()

	for _, hook := range hooks {
		m.running.Add(1)
		go func(hook ReadyHook) {
			defer m.running.Done()
			defer func() {
				if r := recover(); r != nil {
					m.log.Error().Interface("panic", r).Int64("thread", t.ID).Msg("thread ready hook panicked")
				}
			}()
			hook(m.baseCtx, t, initial.Author, initial)
		}(hook)
	}
}

// Move re-parents the thread channel under another category
func (m *Manager) Move(ctx context.Context, t *Thread, categoryID string) error {
	if _, err := m.session.ChannelEdit(t.ChannelID, &discordgo.ChannelEdit{ParentID: categoryID}); err != nil {
		return fmt.Errorf("failed to move thread channel: %w", err)
	}
	if err := m.repo.UpdateCategory(ctx, t.ID, categoryID); err != nil {
		return err
	}
	t.CategoryID = categoryID
	return nil
}

// Close tells the recipient, deletes the staff channel and records the close
func (m *Manager) Close(ctx context.Context, t *Thread, closer *discordgo.User, reason string) error {
	description := "This thread has been closed. Replying will open a new one."
	if reason != "" {
		description = reason
	}

	closed := &discordgo.MessageEmbed{
		Title:       "Thread Closed",
		Description: description,
		Color:       ColorClosed,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
	if _, err := m.session.ChannelMessageSendEmbed(t.DMChannelID, closed); err != nil {
		m.log.Warn().Err(err).Int64("thread", t.ID).Msg("failed to notify recipient of close")
	}

	closedBy := ""
	if closer != nil {
		closedBy = closer.ID
	}
	if err := m.repo.Close(ctx, t.ID, closedBy, time.Now()); err != nil {
		return err
	}

	if _, err := m.session.ChannelDelete(t.ChannelID); err != nil {
		return fmt.Errorf("failed to delete thread channel: %w", err)
	}

	t.Status = database.ThreadClosed
	m.log.Info().Int64("thread", t.ID).Str("closed_by", closedBy).Msg("thread closed")
	return nil
}

func incomingEmbed(msg *discordgo.Message) *discordgo.MessageEmbed {
	description := msg.Content
	for _, a := range msg.Attachments {
		description += "\n" + a.URL
	}

	return &discordgo.MessageEmbed{
		Description: strings.TrimSpace(description),
		Color:       ColorIncoming,
		Timestamp:   time.Now().Format(time.RFC3339),
		Author: &discordgo.MessageEmbedAuthor{
			Name:    msg.Author.Username,
			IconURL: msg.Author.AvatarURL(""),
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Message ID: " + msg.ID,
		},
	}
}

// channelName turns a username into a valid text channel name
func channelName(u *discordgo.User) string {
	var b strings.Builder
	for _, r := range strings.ToLower(u.Username) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('-')
		}
	}

	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "thread"
	}
	if len(name) > 90 {
		name = name[:90]
	}

	suffix := u.ID
	if len(suffix) > 4 {
		suffix = suffix[len(suffix)-4:]
	}
	return name + "-" + suffix
}
