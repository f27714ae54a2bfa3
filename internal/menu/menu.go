// Package menu posts a reaction menu into every new thread and runs the
// command bound to the emoji the user picks.
package menu

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/HokkoMail/internal/bot"
	"github.com/latoulicious/HokkoMail/internal/discord"
	"github.com/latoulicious/HokkoMail/internal/logging"
	"github.com/latoulicious/HokkoMail/internal/thread"
	"github.com/latoulicious/HokkoMail/internal/waiter"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultReactionTimeout = 120 * time.Second
	DefaultSetupTimeout    = 300 * time.Second
	DefaultReactionPace    = 300 * time.Millisecond

	timedOutMessage = "No reaction received in menu... timing out"
)

// Menu is the reaction menu feature
type Menu struct {
	bot   *bot.Bot
	store *Store
	log   zerolog.Logger

	// ReactionTimeout bounds each wait for the user's pick
	ReactionTimeout time.Duration
	// SetupTimeout bounds each answer during configmenu and configothermenu
	SetupTimeout time.Duration
	// ReactionPace is the minimum gap between two reactions on a prompt
	ReactionPace time.Duration
}

// New creates the menu feature
func New(b *bot.Bot, store *Store, log zerolog.Logger) *Menu {
	return &Menu{
		bot:             b,
		store:           store,
		log:             logging.Component(log, "menu"),
		ReactionTimeout: DefaultReactionTimeout,
		SetupTimeout:    DefaultSetupTimeout,
		ReactionPace:    DefaultReactionPace,
	}
}

// OnThreadReady sends the menu to a new thread's recipient and dispatches
// the commands they pick. It blocks until the menu is resolved or timed out.
func (m *Menu) OnThreadReady(ctx context.Context, t *thread.Thread, creator *discordgo.User, _ *discordgo.Message) {
	log := m.log.With().Int64("thread", t.ID).Str("recipient", t.RecipientID).Logger()
	if creator != nil && creator.ID != t.RecipientID {
		log = log.With().Str("creator", creator.ID).Logger()
	}

	cfg, found, err := m.store.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load menu")
		return
	}
	if !found {
		return
	}
	if len(cfg.Options) == 0 {
		log.Warn().Msg("menu has no options, skipping")
		return
	}

	extra := m.customEmojis(t.GuildID, cfg.CustomEmojiIDs())

	prompt, err := m.prompt(ctx, t, cfg.Content)
	if err != nil {
		log.Error().Err(err).Msg("failed to send menu")
		return
	}
	pick := m.watchChoice(t, prompt, cfg.Options)
	m.addReactions(ctx, prompt, cfg.Options.Emojis(), extra)

	first, err := m.awaitChoice(ctx, pick, cfg.Options)
	if err != nil {
		m.abort(ctx, t, log, err)
		return
	}
	picked := []string{first}

	if len(cfg.OtherOptions) > 0 {
		second := prompt
		if cfg.OtherContent != "" {
			if second, err = m.prompt(ctx, t, cfg.OtherContent); err != nil {
				log.Error().Err(err).Msg("failed to send other menu")
				return
			}
		}
		pick := m.watchChoice(t, second, cfg.OtherOptions)
		m.addReactions(ctx, second, cfg.OtherOptions.Emojis(), extra)

		choice, err := m.awaitChoice(ctx, pick, cfg.OtherOptions)
		if err != nil {
			m.abort(ctx, t, log, err)
			return
		}
		picked = append(picked, choice)
	}

	for _, command := range picked {
		log.Info().Str("command", command).Msg("running menu choice")
		if err := m.bot.Dispatch(ctx, t, command); err != nil {
			log.Error().Err(err).Str("command", command).Msg("menu command failed")
		}
	}
}

// prompt replies into the thread as the bot and returns the copy the
// recipient sees
func (m *Menu) prompt(ctx context.Context, t *thread.Thread, content string) (*discordgo.Message, error) {
	replies, err := t.Reply(ctx, m.bot.Self(), content)
	if err != nil {
		return nil, err
	}
	return replies.Recipient, nil
}

func (m *Menu) addReactions(ctx context.Context, msg *discordgo.Message, emojis, extra []discord.Emoji) {
	pacer := rate.NewLimiter(rate.Every(m.ReactionPace), 1)
	session := m.bot.Session()

	for _, e := range append(append([]discord.Emoji(nil), emojis...), extra...) {
		if err := pacer.Wait(ctx); err != nil {
			return
		}
		if err := session.MessageReactionAdd(msg.ChannelID, msg.ID, e.APIName()); err != nil {
			m.log.Warn().Err(err).Str("emoji", e.APIName()).Str("message", msg.ID).Msg("failed to add menu reaction")
		}
	}
}

// customEmojis resolves the extra emoji ids in the thread's guild, dropping
// unknown ones
func (m *Menu) customEmojis(guildID string, ids []string) []discord.Emoji {
	var out []discord.Emoji
	for _, id := range ids {
		e, err := m.bot.Session().GuildEmoji(guildID, id)
		if err != nil {
			m.log.Warn().Err(err).Str("emoji_id", id).Msg("skipping unknown menu emoji")
			continue
		}
		out = append(out, discord.FromGuildEmoji(e))
	}
	return out
}

// watchChoice starts listening for the recipient's reaction to msg with one
// of options. Picks made while reactions are still being added count.
func (m *Menu) watchChoice(t *thread.Thread, msg *discordgo.Message, options Options) *waiter.Registration[*discordgo.MessageReactionAdd] {
	return m.bot.Reactions.Register(func(r *discordgo.MessageReactionAdd) bool {
		if r.MessageID != msg.ID || r.UserID != t.RecipientID {
			return false
		}
		_, ok := options.Lookup(discord.ReactionKey(r.Emoji))
		return ok
	})
}

// awaitChoice waits for the pick and returns its command
func (m *Menu) awaitChoice(ctx context.Context, pick *waiter.Registration[*discordgo.MessageReactionAdd], options Options) (string, error) {
	ev, err := pick.Wait(ctx, m.ReactionTimeout)
	if err != nil {
		return "", err
	}

	command, _ := options.Lookup(discord.ReactionKey(ev.Emoji))
	return command, nil
}

func (m *Menu) abort(ctx context.Context, t *thread.Thread, log zerolog.Logger, err error) {
	if !errors.Is(err, waiter.ErrTimeout) {
		log.Debug().Err(err).Msg("menu cancelled")
		return
	}

	log.Info().Msg("menu timed out")
	if _, err := t.Reply(ctx, m.bot.Self(), timedOutMessage); err != nil {
		log.Warn().Err(err).Msg("failed to send menu timeout notice")
	}
}

// Commands returns the menu setup commands
func (m *Menu) Commands() []*bot.Command {
	return []*bot.Command{
		{
			Name:  "configmenu",
			Level: bot.LevelModerator,
			Usage: "configmenu",
			Help:  "Create the menu shown in new threads",
			Run:   m.configMenu,
		},
		{
			Name:  "configothermenu",
			Level: bot.LevelModerator,
			Usage: "configothermenu",
			Help:  "Create the second menu shown after the first pick",
			Run:   m.configOtherMenu,
		},
		{
			Name:  "clearmenu",
			Level: bot.LevelModerator,
			Usage: "clearmenu",
			Help:  "Remove the menu",
			Run:   m.clearMenu,
		},
		{
			Name:    "setotheremoji",
			Aliases: []string{"se"},
			Level:   bot.LevelAdministrator,
			Usage:   "setotheremoji <emoji>...",
			Help:    "Set extra custom emoji added under the menu",
			Run:     m.setOtherEmoji,
		},
		{
			Name:  "showmenu",
			Level: bot.LevelSupporter,
			Usage: "showmenu",
			Help:  "Show the current menu",
			Run:   m.showMenu,
		},
	}
}
