package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/HokkoMail/internal/bot"
)

func helpCommand(r *bot.Registry) *bot.Command {
	return &bot.Command{
		Name:    "help",
		Aliases: []string{"h"},
		Level:   bot.LevelRegular,
		Usage:   "help",
		Help:    "Show this help message",
		Run: func(c *bot.Context) error {
			_, err := c.SendEmbed(helpEmbed(c.Prefix, r.Commands()))
			return err
		},
	}
}

// helpEmbed lists commands grouped by the level they need
func helpEmbed(prefix string, cmds []*bot.Command) *discordgo.MessageEmbed {
	levels := []bot.Level{bot.LevelRegular, bot.LevelSupporter, bot.LevelModerator, bot.LevelAdministrator, bot.LevelOwner}
	byLevel := make(map[bot.Level][]string)
	for _, cmd := range cmds {
		usage := cmd.Usage
		if usage == "" {
			usage = cmd.Name
		}
		line := fmt.Sprintf("• `%s%s` - %s", prefix, usage, cmd.Help)
		if len(cmd.Aliases) > 0 {
			line += fmt.Sprintf(" (aliases: %s)", strings.Join(cmd.Aliases, ", "))
		}
		byLevel[cmd.Level] = append(byLevel[cmd.Level], line)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "HokkoMail",
		Description: "Here are all the available commands:",
		Color:       0x00ff00,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "HokkoMail | Created by latoulicious",
		},
	}
	for _, level := range levels {
		lines := byLevel[level]
		if len(lines) == 0 {
			continue
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  level.String() + " Commands",
			Value: strings.Join(lines, "\n"),
		})
	}
	return embed
}
