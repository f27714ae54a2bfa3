package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/HokkoMail/internal/discord/discordtest"
	"github.com/latoulicious/HokkoMail/internal/thread"
	"github.com/latoulicious/HokkoMail/pkg/database"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubThreads map[string]*thread.Thread

func (s stubThreads) FindByChannel(_ context.Context, channelID string) (*thread.Thread, error) {
	if t, ok := s[channelID]; ok {
		return t, nil
	}
	return nil, database.ErrThreadNotFound
}

func newTestBot(t *testing.T, threads ThreadFinder) (*Bot, *discordtest.Session) {
	t.Helper()

	session := discordtest.New()
	b := New(session, threads, Options{
		Prefix:      "?",
		Permissions: PermissionConfig{OwnerIDs: []string{"owner"}, SupporterRoleIDs: []string{"support-role"}},
	}, zerolog.Nop())
	b.SetSelf(&discordgo.User{ID: "bot", Username: "HokkoMail", Bot: true})
	return b, session
}

func guildMessage(authorID, channelID, content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        "m-" + authorID,
		ChannelID: channelID,
		GuildID:   "guild",
		Author:    &discordgo.User{ID: authorID, Username: authorID},
		Content:   content,
	}
}

func TestLevelOf(t *testing.T) {
	b, session := newTestBot(t, nil)
	session.Permissions["admin"] = discordgo.PermissionAdministrator
	session.Permissions["mod"] = discordgo.PermissionManageMessages
	session.Members["helper"] = &discordgo.Member{Roles: []string{"other", "support-role"}}

	tests := []struct {
		name string
		msg  *discordgo.Message
		want Level
	}{
		{"owner", guildMessage("owner", "c", ""), LevelOwner},
		{"administrator", guildMessage("admin", "c", ""), LevelAdministrator},
		{"moderator", guildMessage("mod", "c", ""), LevelModerator},
		{"supporter role", guildMessage("helper", "c", ""), LevelSupporter},
		{"regular", guildMessage("someone", "c", ""), LevelRegular},
		{"direct message", &discordgo.Message{ChannelID: "dm", Author: &discordgo.User{ID: "admin"}}, LevelRegular},
		{"no author", &discordgo.Message{ChannelID: "c", GuildID: "guild"}, LevelInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Context{Author: tt.msg.Author, ChannelID: tt.msg.ChannelID, GuildID: tt.msg.GuildID}
			assert.Equal(t, tt.want, b.LevelOf(c))
		})
	}
}

func TestHandleMessageChecksLevel(t *testing.T) {
	b, session := newTestBot(t, nil)
	session.Permissions["mod"] = discordgo.PermissionManageServer

	var ran []string
	require.NoError(t, b.Registry().Register(&Command{
		Name:  "configmenu",
		Level: LevelModerator,
		Run: func(c *Context) error {
			ran = append(ran, c.Author.ID)
			return nil
		},
	}))

	b.HandleMessage(context.Background(), guildMessage("someone", "c", "?configmenu"))
	b.HandleMessage(context.Background(), guildMessage("mod", "c", "?ConfigMenu"))

	assert.Equal(t, []string{"mod"}, ran)
	assert.Equal(t, []string{"You don't have permission to use this command."}, session.Texts("c"))
}

func TestHandleMessageIgnoresNonCommands(t *testing.T) {
	b, session := newTestBot(t, nil)

	b.HandleMessage(context.Background(), guildMessage("owner", "c", "hello there"))
	b.HandleMessage(context.Background(), guildMessage("owner", "c", "?unknown"))

	assert.Empty(t, session.Sent())
}

func TestHandleMessageReportsFailure(t *testing.T) {
	b, session := newTestBot(t, nil)
	require.NoError(t, b.Registry().Register(&Command{
		Name: "boom",
		Run:  func(*Context) error { return errors.New("boom") },
	}))

	b.HandleMessage(context.Background(), guildMessage("owner", "c", "?boom"))
	assert.Equal(t, []string{"❌ Something went wrong running that command."}, session.Texts("c"))
}

func TestHandleMessageResolvesThread(t *testing.T) {
	th := &thread.Thread{Thread: database.Thread{ID: 7, ChannelID: "thread-channel"}}
	b, _ := newTestBot(t, stubThreads{"thread-channel": th})

	var got *thread.Thread
	require.NoError(t, b.Registry().Register(&Command{
		Name: "whoami",
		Run: func(c *Context) error {
			got = c.Thread
			return nil
		},
	}))

	b.HandleMessage(context.Background(), guildMessage("owner", "thread-channel", "?whoami"))
	require.NotNil(t, got)
	assert.Equal(t, int64(7), got.ID)

	got = nil
	b.HandleMessage(context.Background(), guildMessage("owner", "elsewhere", "?whoami"))
	assert.Nil(t, got)
}

func TestDispatchSkipsChecks(t *testing.T) {
	b, _ := newTestBot(t, nil)
	th := &thread.Thread{Thread: database.Thread{ID: 1, ChannelID: "thread-channel", GuildID: "guild"}}

	var calls []string
	require.NoError(t, b.Registry().Register(
		&Command{
			Name:  "reply",
			Level: LevelSupporter,
			Run: func(c *Context) error {
				assert.Equal(t, "bot", c.Author.ID)
				assert.Same(t, th, c.Thread)
				calls = append(calls, "reply "+c.RawArgs)
				return nil
			},
		},
		&Command{
			Name:  "move",
			Level: LevelSupporter,
			Run: func(c *Context) error {
				calls = append(calls, "move "+c.RawArgs)
				return nil
			},
		},
	))

	err := b.Dispatch(context.Background(), th, "reply Transferring && nosuch && move 1238343847384")
	require.NoError(t, err)
	assert.Equal(t, []string{"reply Transferring", "move 1238343847384"}, calls)
}

func TestDispatchStopsOnError(t *testing.T) {
	b, _ := newTestBot(t, nil)
	th := &thread.Thread{Thread: database.Thread{ID: 1, ChannelID: "thread-channel"}}

	failure := errors.New("cannot move")
	closed := false
	require.NoError(t, b.Registry().Register(
		&Command{Name: "move", Run: func(*Context) error { return failure }},
		&Command{Name: "close", Run: func(*Context) error { closed = true; return nil }},
	))

	err := b.Dispatch(context.Background(), th, "move 1 && close")
	assert.ErrorIs(t, err, failure)
	assert.False(t, closed)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	noop := func(*Context) error { return nil }

	require.NoError(t, r.Register(&Command{Name: "Reply", Aliases: []string{"r"}, Run: noop}))
	assert.ErrorIs(t, r.Register(&Command{Name: "reply", Run: noop}), ErrDuplicateCommand)
	assert.ErrorIs(t, r.Register(&Command{Name: "r", Run: noop}), ErrDuplicateCommand)
	assert.ErrorIs(t, r.Register(&Command{Name: "", Run: noop}), ErrInvalidCommand)
	assert.ErrorIs(t, r.Register(&Command{Name: "norun"}), ErrInvalidCommand)

	cmd, ok := r.Lookup("R")
	require.True(t, ok)
	assert.Equal(t, "Reply", cmd.Name)

	_, ok = r.Lookup("close")
	assert.False(t, ok)
	assert.Len(t, r.Commands(), 1)
}
