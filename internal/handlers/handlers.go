// Package handlers adapts gateway events to the bot, the thread manager and
// the event waiters.
package handlers

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/HokkoMail/internal/bot"
	"github.com/latoulicious/HokkoMail/internal/logging"
	"github.com/rs/zerolog"
)

// DirectMessageHandler relays a user's DM into their thread
type DirectMessageHandler interface {
	HandleDirectMessage(ctx context.Context, msg *discordgo.Message) error
}

// Handlers holds the gateway event handlers
type Handlers struct {
	bot     *bot.Bot
	threads DirectMessageHandler
	log     zerolog.Logger
	ctx     context.Context
}

// New creates the handlers. ctx bounds every handler invocation.
func New(ctx context.Context, b *bot.Bot, threads DirectMessageHandler, log zerolog.Logger) *Handlers {
	return &Handlers{
		bot:     b,
		threads: threads,
		log:     logging.Component(log, "handlers"),
		ctx:     ctx,
	}
}

// Register adds every handler to the gateway session
func (h *Handlers) Register(s *discordgo.Session) {
	s.AddHandler(h.ReadyHandler)
	s.AddHandler(h.MessageHandler)
	s.AddHandler(h.ReactionAddHandler)
}

// ReadyHandler records the bot user once the gateway is ready
func (h *Handlers) ReadyHandler(_ *discordgo.Session, r *discordgo.Ready) {
	if r == nil || r.User == nil {
		return
	}
	h.bot.SetSelf(r.User)
	h.log.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Msg("gateway ready")
}
