package commands

import (
	"fmt"
	"strings"

	"github.com/latoulicious/HokkoMail/internal/bot"
	"github.com/latoulicious/HokkoMail/internal/discord"
)

func replyCommand() *bot.Command {
	return &bot.Command{
		Name:    "reply",
		Aliases: []string{"r"},
		Level:   bot.LevelSupporter,
		Usage:   "reply <message>",
		Help:    "Send a message to the thread recipient",
		Run: func(c *bot.Context) error {
			t, err := requireThread(c)
			if err != nil {
				return err
			}
			if c.RawArgs == "" {
				_, err := c.Send("❌ Please provide a message.\n\n**Usage:** `" + c.Prefix + "reply <message>`")
				return err
			}

			_, err = t.Reply(c.Ctx, c.Author, c.RawArgs)
			return err
		},
	}
}

func moveCommand(threads ThreadActions) *bot.Command {
	return &bot.Command{
		Name:  "move",
		Level: bot.LevelSupporter,
		Usage: "move <category id>",
		Help:  "Move the thread channel to another category",
		Run: func(c *bot.Context) error {
			t, err := requireThread(c)
			if err != nil {
				return err
			}
			if len(c.Args) == 0 {
				_, err := c.Send("❌ Please provide a category id.\n\n**Usage:** `" + c.Prefix + "move <category id>`")
				return err
			}

			categoryID := strings.Trim(c.Args[0], "<#>")
			if !discord.IsSnowflake(categoryID) {
				_, err := c.Send("❌ `" + c.Args[0] + "` is not a valid category id.")
				return err
			}

			if err := threads.Move(c.Ctx, t, categoryID); err != nil {
				return fmt.Errorf("move thread %d: %w", t.ID, err)
			}
			_, err = c.Send("✅ Thread moved.")
			return err
		},
	}
}

func closeCommand(threads ThreadActions) *bot.Command {
	return &bot.Command{
		Name:  "close",
		Level: bot.LevelSupporter,
		Usage: "close [reason]",
		Help:  "Close the thread and delete its channel",
		Run: func(c *bot.Context) error {
			t, err := requireThread(c)
			if err != nil {
				return err
			}
			if err := threads.Close(c.Ctx, t, c.Author, c.RawArgs); err != nil {
				return fmt.Errorf("close thread %d: %w", t.ID, err)
			}
			return nil
		},
	}
}
