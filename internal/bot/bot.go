// Package bot is the prefix-command host: it parses messages into commands,
// checks permission levels and runs them.
package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/HokkoMail/internal/discord"
	"github.com/latoulicious/HokkoMail/internal/logging"
	"github.com/latoulicious/HokkoMail/internal/thread"
	"github.com/latoulicious/HokkoMail/internal/waiter"
	"github.com/latoulicious/HokkoMail/pkg/database"
	"github.com/rs/zerolog"
)

var (
	ErrInvalidCommand   = errors.New("invalid command")
	ErrDuplicateCommand = errors.New("command already registered")
	ErrCheckFailure     = errors.New("permission check failed")
	ErrNotInThread      = errors.New("command must be used in a thread channel")
)

// ThreadFinder resolves the thread that owns a channel
type ThreadFinder interface {
	FindByChannel(ctx context.Context, channelID string) (*thread.Thread, error)
}

// Options configures a Bot
type Options struct {
	Prefix      string
	Permissions PermissionConfig
}

// InvokeOptions alters a single invocation
type InvokeOptions struct {
	// SkipChecks runs the command regardless of the author's level.
	SkipChecks bool
}

// Bot dispatches commands and owns the event waiters
type Bot struct {
	session  discord.Session
	registry *Registry
	threads  ThreadFinder
	prefix   string
	perms    PermissionConfig
	log      zerolog.Logger

	Reactions *waiter.Dispatcher[*discordgo.MessageReactionAdd]
	Messages  *waiter.Dispatcher[*discordgo.MessageCreate]

	selfMu sync.RWMutex
	self   *discordgo.User
}

// New creates a bot. threads may be nil when no thread channels exist.
func New(session discord.Session, threads ThreadFinder, opts Options, log zerolog.Logger) *Bot {
	return &Bot{
		session:   session,
		registry:  NewRegistry(),
		threads:   threads,
		prefix:    opts.Prefix,
		perms:     opts.Permissions,
		log:       logging.Component(log, "bot"),
		Reactions: waiter.NewDispatcher[*discordgo.MessageReactionAdd](),
		Messages:  waiter.NewDispatcher[*discordgo.MessageCreate](),
	}
}

func (b *Bot) Session() discord.Session { return b.session }
func (b *Bot) Registry() *Registry      { return b.registry }
func (b *Bot) Prefix() string           { return b.prefix }

// Self returns the bot's own user, known once the gateway is ready
func (b *Bot) Self() *discordgo.User {
	b.selfMu.RLock()
	defer b.selfMu.RUnlock()
	return b.self
}

// SetSelf records the bot's own user
func (b *Bot) SetSelf(u *discordgo.User) {
	b.selfMu.Lock()
	defer b.selfMu.Unlock()
	b.self = u
}

// IsSelf reports whether userID is the bot itself
func (b *Bot) IsSelf(userID string) bool {
	self := b.Self()
	return self != nil && self.ID == userID
}

// NewContext builds an invocation context from a message. It returns nil
// when the message is not a command; Command is nil when the name is
// unknown.
func (b *Bot) NewContext(ctx context.Context, msg *discordgo.Message, t *thread.Thread) *Context {
	name, raw, args, ok := ParseInvocation(b.prefix, msg.Content)
	if !ok {
		return nil
	}

	cmd, _ := b.registry.Lookup(name)
	return &Context{
		Ctx:         ctx,
		Session:     b.session,
		Bot:         b,
		Message:     msg,
		Author:      msg.Author,
		ChannelID:   msg.ChannelID,
		GuildID:     msg.GuildID,
		Prefix:      b.prefix,
		InvokedWith: name,
		Command:     cmd,
		Args:        args,
		RawArgs:     raw,
		Thread:      t,
	}
}

// Invoke runs c.Command after checking the author's level
func (b *Bot) Invoke(c *Context, opts InvokeOptions) error {
	if c.Command == nil {
		return fmt.Errorf("%q: %w", c.InvokedWith, ErrInvalidCommand)
	}

	if !opts.SkipChecks {
		if level := b.LevelOf(c); level < c.Command.Level {
			return fmt.Errorf("%s requires %s, author is %s: %w", c.Command.Name, c.Command.Level, level, ErrCheckFailure)
		}
	}

	b.log.Debug().
		Str("command", c.Command.Name).
		Str("channel", c.ChannelID).
		Bool("checks_skipped", opts.SkipChecks).
		Msg("invoking command")

	return c.Command.Run(c)
}

// HandleMessage runs the command in a guild message, if any
func (b *Bot) HandleMessage(ctx context.Context, msg *discordgo.Message) {
	var t *thread.Thread
	if b.threads != nil {
		found, err := b.threads.FindByChannel(ctx, msg.ChannelID)
		switch {
		case err == nil:
			t = found
		case !errors.Is(err, database.ErrThreadNotFound):
			b.log.Warn().Err(err).Str("channel", msg.ChannelID).Msg("failed to resolve thread")
		}
	}

	c := b.NewContext(ctx, msg, t)
	if c == nil || c.Command == nil {
		return
	}

	err := b.Invoke(c, InvokeOptions{})
	switch {
	case err == nil:
	case errors.Is(err, ErrCheckFailure):
		c.Send("You don't have permission to use this command.")
	case errors.Is(err, ErrNotInThread):
		c.Send("❌ This command can only be used inside a thread channel.")
	default:
		b.log.Error().Err(err).Str("command", c.Command.Name).Msg("command failed")
		c.Send("❌ Something went wrong running that command.")
	}
}

// Dispatch runs a stored command string inside a thread on behalf of the
// bot, bypassing permission checks. Chained commands run in order; unknown
// ones are skipped.
func (b *Bot) Dispatch(ctx context.Context, t *thread.Thread, commandString string) error {
	for _, alias := range NormalizeAlias(commandString) {
		msg := &discordgo.Message{
			ChannelID: t.ChannelID,
			GuildID:   t.GuildID,
			Author:    b.Self(),
			Content:   b.prefix + alias,
		}

		c := b.NewContext(ctx, msg, t)
		if c == nil || c.Command == nil {
			b.log.Warn().Str("alias", alias).Int64("thread", t.ID).Msg("skipping unknown command")
			continue
		}

		if err := b.Invoke(c, InvokeOptions{SkipChecks: true}); err != nil {
			return fmt.Errorf("%s: %w", c.Command.Name, err)
		}
	}
	return nil
}
