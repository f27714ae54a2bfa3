// Package thread manages support threads: one staff channel per user,
// mirrored to that user's direct messages.
package thread

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/HokkoMail/internal/discord"
	"github.com/latoulicious/HokkoMail/pkg/database"
)

// Embed colours
const (
	ColorResponse = 0x00ff00
	ColorIncoming = 0x7289DA
	ColorClosed   = 0xff0000
)

// Thread is an open support thread bound to a session
type Thread struct {
	database.Thread

	session discord.Session
}

// Replies holds the two copies of a thread reply
type Replies struct {
	Recipient *discordgo.Message
	Staff     *discordgo.Message
}

// Reply sends content to the recipient and mirrors it in the staff channel.
func (t *Thread) Reply(ctx context.Context, author *discordgo.User, content string) (*Replies, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	recipientMsg, err := t.session.ChannelMessageSendEmbed(t.DMChannelID, responseEmbed(author, content, "Response"))
	if err != nil {
		return nil, fmt.Errorf("failed to message recipient: %w", err)
	}

	staffMsg, err := t.session.ChannelMessageSendEmbed(t.ChannelID, responseEmbed(author, content, "Sent to "+t.RecipientID))
	if err != nil {
		return nil, fmt.Errorf("failed to mirror reply in thread channel: %w", err)
	}

	return &Replies{Recipient: recipientMsg, Staff: staffMsg}, nil
}

func responseEmbed(author *discordgo.User, content, footer string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Description: content,
		Color:       ColorResponse,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: footer,
		},
	}
	if author != nil {
		embed.Author = &discordgo.MessageEmbedAuthor{
			Name:    author.Username,
			IconURL: author.AvatarURL(""),
		}
	}
	return embed
}
