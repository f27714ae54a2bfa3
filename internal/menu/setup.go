package menu

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/HokkoMail/internal/bot"
	"github.com/latoulicious/HokkoMail/internal/discord"
	"github.com/latoulicious/HokkoMail/internal/waiter"
)

const (
	askMenuMessage      = "What is the menu message?"
	askOtherMenuMessage = "What is the other menu message?"
	askOptionCount      = "How many options are available?"
	askOptionEmoji      = "What is the option emoji?"
	askOptionCommand    = "What is the option command? (e.g. `reply Transferring && move 1238343847384`)"
	invalidEmoji        = "Invalid emoji. Send another."
	setupTimedOut       = "Timeout. Re-run the command to create a menu."
	success             = "Success"

	colorSuccess = 0x4DFF73
)

func (m *Menu) configMenu(c *bot.Context) error {
	content, options, err := m.runSetup(c, askMenuMessage)
	if err != nil {
		return m.setupFailed(c, err)
	}
	if err := m.store.SetMenu(c.Ctx, content, options); err != nil {
		return err
	}
	_, err = c.Send(success)
	return err
}

func (m *Menu) configOtherMenu(c *bot.Context) error {
	content, options, err := m.runSetup(c, askOtherMenuMessage)
	if err != nil {
		return m.setupFailed(c, err)
	}
	if err := m.store.SetOtherMenu(c.Ctx, content, options); err != nil {
		return err
	}
	_, err = c.Send(success)
	return err
}

func (m *Menu) setupFailed(c *bot.Context, err error) error {
	switch {
	case errors.Is(err, waiter.ErrTimeout):
		_, sendErr := c.Send(setupTimedOut)
		return sendErr
	case c.Ctx.Err() != nil:
		// shutting down, nobody is waiting for an answer
		m.log.Debug().Err(err).Str("command", c.Command.Name).Msg("menu setup cancelled")
		return nil
	}
	return err
}

// runSetup asks for a prompt and its options. Nothing is saved until every
// answer is in.
func (m *Menu) runSetup(c *bot.Context, firstQuestion string) (string, Options, error) {
	if _, err := c.Send(firstQuestion); err != nil {
		return "", nil, err
	}
	answer, err := m.ask(c, nil)
	if err != nil {
		return "", nil, err
	}
	content := answer.Content

	if _, err := c.Send(askOptionCount); err != nil {
		return "", nil, err
	}
	answer, err = m.ask(c, isDigits)
	if err != nil {
		return "", nil, err
	}
	count, err := strconv.Atoi(answer.Content)
	if err != nil {
		return "", nil, fmt.Errorf("option count %q: %w", answer.Content, err)
	}

	var options Options
	for range count {
		if _, err := c.Send(askOptionEmoji); err != nil {
			return "", nil, err
		}
		emoji, err := m.askEmoji(c)
		if err != nil {
			return "", nil, err
		}

		if _, err := c.Send(askOptionCommand); err != nil {
			return "", nil, err
		}
		answer, err := m.ask(c, nil)
		if err != nil {
			return "", nil, err
		}
		options.Set(emoji, answer.Content)
	}

	return content, options, nil
}

// askEmoji waits for an answer the bot can react with, reprompting on
// anything else
func (m *Menu) askEmoji(c *bot.Context) (string, error) {
	for {
		answer, err := m.ask(c, nil)
		if err != nil {
			return "", err
		}

		emoji := strings.TrimSpace(answer.Content)
		err = c.Session.MessageReactionAdd(answer.ChannelID, answer.ID, discord.ParseEmoji(emoji).APIName())
		if err == nil {
			return emoji, nil
		}

		m.log.Debug().Err(err).Str("emoji", emoji).Msg("rejected menu emoji")
		if _, err := c.Send(invalidEmoji); err != nil {
			return "", err
		}
	}
}

// ask waits for the next message from the invoking author in the invoking
// channel that satisfies accept
func (m *Menu) ask(c *bot.Context, accept func(string) bool) (*discordgo.MessageCreate, error) {
	return m.bot.Messages.Wait(c.Ctx, m.SetupTimeout, func(msg *discordgo.MessageCreate) bool {
		if msg.ChannelID != c.ChannelID || msg.Author == nil || msg.Author.ID != c.Author.ID {
			return false
		}
		return accept == nil || accept(msg.Content)
	})
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (m *Menu) clearMenu(c *bot.Context) error {
	deleted, err := m.store.Clear(c.Ctx)
	if err != nil {
		return err
	}
	m.log.Info().Bool("existed", deleted).Str("by", c.Author.ID).Msg("menu cleared")
	_, err = c.Send(success)
	return err
}

func (m *Menu) setOtherEmoji(c *bot.Context) error {
	ids := make([]string, 0, len(c.Args))
	for _, arg := range c.Args {
		e := discord.ParseEmoji(arg)
		if !e.IsCustom() {
			_, err := c.Send("❌ `" + arg + "` is not a custom emoji.")
			return err
		}
		if _, err := c.Session.GuildEmoji(c.GuildID, e.ID); err != nil {
			_, err := c.Send("❌ Emoji `" + arg + "` was not found in this server.")
			return err
		}
		ids = append(ids, e.ID)
	}

	if err := m.store.SetReactionEmojis(c.Ctx, ids); err != nil {
		return err
	}

	_, err := c.SendEmbed(&discordgo.MessageEmbed{
		Title:  "Set emojis.",
		Color:  colorSuccess,
		Author: &discordgo.MessageEmbedAuthor{Name: "Success!"},
		Footer: &discordgo.MessageEmbedFooter{Text: "Task succeeded successfully."},
	})
	return err
}

func (m *Menu) showMenu(c *bot.Context) error {
	cfg, found, err := m.store.Load(c.Ctx)
	if err != nil {
		return err
	}
	if !found {
		_, err := c.Send("No menu is configured. Use `" + c.Prefix + "configmenu` to create one.")
		return err
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Menu",
		Description: orNone(cfg.Content),
		Color:       colorSuccess,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Options", Value: formatOptions(cfg.Options)},
		},
	}
	if cfg.OtherContent != "" || len(cfg.OtherOptions) > 0 {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Other Menu Message", Value: orNone(cfg.OtherContent)},
			&discordgo.MessageEmbedField{Name: "Other Options", Value: formatOptions(cfg.OtherOptions)},
		)
	}
	if ids := cfg.CustomEmojiIDs(); len(ids) > 0 {
		var rendered []string
		for _, id := range ids {
			rendered = append(rendered, "<:_:"+id+">")
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Extra Emojis", Value: strings.Join(rendered, " ")})
	}

	_, err = c.SendEmbed(embed)
	return err
}

func formatOptions(options Options) string {
	if len(options) == 0 {
		return "None"
	}
	lines := make([]string, 0, len(options))
	for _, opt := range options {
		lines = append(lines, fmt.Sprintf("%s → `%s`", opt.Emoji, opt.Command))
	}
	return strings.Join(lines, "\n")
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
