// Package discordtest provides an in-memory discord.Session for tests.
package discordtest

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

var ErrUnknownEmoji = errors.New("unknown emoji")

// SentMessage is a message the bot sent through the fake session
type SentMessage struct {
	ChannelID string
	Content   string
	Embed     *discordgo.MessageEmbed
	Message   *discordgo.Message
}

// Text returns the content, or the embed description for embeds
func (m SentMessage) Text() string {
	if m.Embed != nil {
		return m.Embed.Description
	}
	return m.Content
}

// Reaction is a reaction the bot added
type Reaction struct {
	ChannelID string
	MessageID string
	Emoji     string
	At        time.Time
}

// ChannelEdit records a ChannelEdit call
type ChannelEdit struct {
	ChannelID string
	Data      *discordgo.ChannelEdit
}

// Session records every call. Zero value is ready to use.
type Session struct {
	mu     sync.Mutex
	nextID int

	sent      []SentMessage
	reactions []Reaction
	created   []discordgo.GuildChannelCreateData
	edits     []ChannelEdit
	deleted   []string

	// ReactionError, when set, decides whether MessageReactionAdd fails.
	ReactionError func(emoji string) error
	// Permissions maps user id to the permission bits returned for any channel.
	Permissions map[string]int64
	// Members maps user id to guild member.
	Members map[string]*discordgo.Member
	// Emojis maps custom emoji id to guild emoji.
	Emojis map[string]*discordgo.Emoji
}

// New creates an empty fake session
func New() *Session {
	return &Session{
		Permissions: make(map[string]int64),
		Members:     make(map[string]*discordgo.Member),
		Emojis:      make(map[string]*discordgo.Emoji),
	}
}

func (s *Session) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func (s *Session) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := &discordgo.Message{ID: s.id("msg"), ChannelID: channelID, Content: content}
	s.sent = append(s.sent, SentMessage{ChannelID: channelID, Content: content, Message: msg})
	return msg, nil
}

func (s *Session) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := &discordgo.Message{ID: s.id("msg"), ChannelID: channelID, Embeds: []*discordgo.MessageEmbed{embed}}
	s.sent = append(s.sent, SentMessage{ChannelID: channelID, Embed: embed, Message: msg})
	return msg, nil
}

func (s *Session) MessageReactionAdd(channelID, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ReactionError != nil {
		if err := s.ReactionError(emojiID); err != nil {
			return err
		}
	}
	s.reactions = append(s.reactions, Reaction{ChannelID: channelID, MessageID: messageID, Emoji: emojiID, At: time.Now()})
	return nil
}

func (s *Session) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return &discordgo.Channel{ID: "dm-" + recipientID, Type: discordgo.ChannelTypeDM}, nil
}

func (s *Session) GuildChannelCreateComplex(guildID string, data discordgo.GuildChannelCreateData, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.created = append(s.created, data)
	return &discordgo.Channel{
		ID:       s.id("channel"),
		GuildID:  guildID,
		Name:     data.Name,
		Topic:    data.Topic,
		ParentID: data.ParentID,
		Type:     data.Type,
	}, nil
}

func (s *Session) ChannelEdit(channelID string, data *discordgo.ChannelEdit, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.edits = append(s.edits, ChannelEdit{ChannelID: channelID, Data: data})
	return &discordgo.Channel{ID: channelID, ParentID: data.ParentID}, nil
}

func (s *Session) ChannelDelete(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleted = append(s.deleted, channelID)
	return &discordgo.Channel{ID: channelID}, nil
}

func (s *Session) GuildMember(guildID, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.Members[userID]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("member %s not found in %s", userID, guildID)
}

func (s *Session) GuildEmoji(guildID, emojiID string, _ ...discordgo.RequestOption) (*discordgo.Emoji, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.Emojis[emojiID]; ok {
		return e, nil
	}
	return nil, ErrUnknownEmoji
}

func (s *Session) UserChannelPermissions(userID, channelID string, _ ...discordgo.RequestOption) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.Permissions[userID], nil
}

// Sent returns every message sent so far
func (s *Session) Sent() []SentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentMessage(nil), s.sent...)
}

// SentTo returns the messages sent to one channel
func (s *Session) SentTo(channelID string) []SentMessage {
	var out []SentMessage
	for _, m := range s.Sent() {
		if m.ChannelID == channelID {
			out = append(out, m)
		}
	}
	return out
}

// Texts returns the text of every message sent to one channel
func (s *Session) Texts(channelID string) []string {
	var out []string
	for _, m := range s.SentTo(channelID) {
		out = append(out, m.Text())
	}
	return out
}

// ReactionsOn returns the emoji added to a message, in order
func (s *Session) ReactionsOn(messageID string) []string {
	var out []string
	for _, r := range s.ReactionLog(messageID) {
		out = append(out, r.Emoji)
	}
	return out
}

// ReactionLog returns the reactions added to a message with the time each
// one was added
func (s *Session) ReactionLog(messageID string) []Reaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Reaction
	for _, r := range s.reactions {
		if r.MessageID == messageID {
			out = append(out, r)
		}
	}
	return out
}

// CreatedChannels returns the GuildChannelCreateComplex payloads
func (s *Session) CreatedChannels() []discordgo.GuildChannelCreateData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]discordgo.GuildChannelCreateData(nil), s.created...)
}

// Edits returns the ChannelEdit calls
func (s *Session) Edits() []ChannelEdit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ChannelEdit(nil), s.edits...)
}

// Deleted returns the ids of deleted channels
func (s *Session) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}
