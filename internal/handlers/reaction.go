package handlers

import (
	"github.com/bwmarrin/discordgo"
)

// ReactionAddHandler hands reaction-add events to pending waiters
func (h *Handlers) ReactionAddHandler(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r == nil || r.MessageReaction == nil {
		return
	}

	// Ignore reactions the bot adds to its own menus
	if h.bot.IsSelf(r.UserID) {
		return
	}

	if h.bot.Reactions.Dispatch(r) {
		h.log.Debug().
			Str("user", r.UserID).
			Str("message", r.MessageID).
			Str("emoji", r.Emoji.Name).
			Msg("reaction delivered to waiter")
	}
}
