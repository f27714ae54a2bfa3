package handlers

import (
	"github.com/bwmarrin/discordgo"
)

// MessageHandler routes message-create events. Messages answering a pending
// prompt are consumed by the waiter and never parsed as commands.
func (h *Handlers) MessageHandler(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Message == nil || m.Author == nil {
		return
	}

	// Ignore the bot itself and other bots
	if m.Author.Bot || h.bot.IsSelf(m.Author.ID) {
		return
	}

	if h.bot.Messages.Dispatch(m) {
		return
	}

	if m.GuildID == "" {
		if err := h.threads.HandleDirectMessage(h.ctx, m.Message); err != nil {
			h.log.Error().Err(err).Str("user", m.Author.ID).Msg("failed to handle direct message")
		}
		return
	}

	h.bot.HandleMessage(h.ctx, m.Message)
}
