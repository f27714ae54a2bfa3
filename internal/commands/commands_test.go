package commands

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/HokkoMail/internal/bot"
	"github.com/latoulicious/HokkoMail/internal/discord/discordtest"
	"github.com/latoulicious/HokkoMail/internal/thread"
	"github.com/latoulicious/HokkoMail/pkg/database"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	bot     *bot.Bot
	session *discordtest.Session
	threads *thread.Manager
	thread  *thread.Thread
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	config := database.DefaultDatabaseConfig()
	config.DatabasePath = filepath.Join(t.TempDir(), "commands.db")
	dm, err := database.NewDatabaseManager(config, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, dm.Connect())
	t.Cleanup(func() { dm.Close() })

	session := discordtest.New()
	session.Permissions["staff"] = discordgo.PermissionManageMessages

	threads := thread.NewManager(session, dm.ThreadRepository(), thread.Config{GuildID: "guild", CategoryID: "inbox"}, zerolog.Nop())
	t.Cleanup(threads.Shutdown)

	b := bot.New(session, threads, bot.Options{Prefix: "?"}, zerolog.Nop())
	b.SetSelf(&discordgo.User{ID: "bot", Username: "HokkoMail", Bot: true})
	require.NoError(t, Register(b.Registry(), Deps{Threads: threads}))

	ctx := context.Background()
	require.NoError(t, threads.HandleDirectMessage(ctx, &discordgo.Message{
		ID:        "dm-1",
		ChannelID: "dm-user",
		Content:   "help",
		Author:    &discordgo.User{ID: "user", Username: "user"},
	}))
	th, err := threads.FindByRecipient(ctx, "user")
	require.NoError(t, err)

	return &fixture{bot: b, session: session, threads: threads, thread: th}
}

func (f *fixture) run(authorID, channelID, content string) {
	f.bot.HandleMessage(context.Background(), &discordgo.Message{
		ID:        "cmd",
		ChannelID: channelID,
		GuildID:   "guild",
		Author:    &discordgo.User{ID: authorID, Username: authorID},
		Content:   content,
	})
}

func TestReplyCommand(t *testing.T) {
	f := newFixture(t)

	f.run("staff", f.thread.ChannelID, "?reply We are looking into it")

	dm := f.session.SentTo("dm-user")
	require.NotEmpty(t, dm)
	assert.Equal(t, "We are looking into it", dm[len(dm)-1].Text())
	assert.Equal(t, "staff", dm[len(dm)-1].Embed.Author.Name)

	staff := f.session.Texts(f.thread.ChannelID)
	assert.Equal(t, "We are looking into it", staff[len(staff)-1])
}

func TestReplyCommandRequiresThreadAndLevel(t *testing.T) {
	f := newFixture(t)

	f.run("staff", "general", "?reply hi")
	assert.Equal(t, []string{"❌ This command can only be used inside a thread channel."}, f.session.Texts("general"))

	before := len(f.session.SentTo("dm-user"))
	f.run("user", f.thread.ChannelID, "?reply hi")
	assert.Len(t, f.session.SentTo("dm-user"), before)
	texts := f.session.Texts(f.thread.ChannelID)
	assert.Equal(t, "You don't have permission to use this command.", texts[len(texts)-1])
}

func TestMoveCommand(t *testing.T) {
	f := newFixture(t)

	f.run("staff", f.thread.ChannelID, "?move 1238343847384")

	edits := f.session.Edits()
	require.Len(t, edits, 1)
	assert.Equal(t, f.thread.ChannelID, edits[0].ChannelID)
	assert.Equal(t, "1238343847384", edits[0].Data.ParentID)

	th, err := f.threads.FindByChannel(context.Background(), f.thread.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, "1238343847384", th.CategoryID)

	f.run("staff", f.thread.ChannelID, "?move general")
	assert.Len(t, f.session.Edits(), 1)
}

func TestDispatchedMenuCommands(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.bot.Dispatch(context.Background(), f.thread, "reply Transferring && move 1238343847384"))

	dm := f.session.SentTo("dm-user")
	assert.Equal(t, "Transferring", dm[len(dm)-1].Text())
	assert.Equal(t, "HokkoMail", dm[len(dm)-1].Embed.Author.Name)
	require.Len(t, f.session.Edits(), 1)
}

func TestCloseCommand(t *testing.T) {
	f := newFixture(t)

	f.run("staff", f.thread.ChannelID, "?close Resolved, thanks!")

	assert.Equal(t, []string{f.thread.ChannelID}, f.session.Deleted())
	dm := f.session.SentTo("dm-user")
	assert.Equal(t, "Resolved, thanks!", dm[len(dm)-1].Text())

	_, err := f.threads.FindByRecipient(context.Background(), "user")
	assert.ErrorIs(t, err, database.ErrThreadNotFound)
}

func TestHelpCommand(t *testing.T) {
	f := newFixture(t)

	f.run("user", "general", "?help")

	sent := f.session.SentTo("general")
	require.Len(t, sent, 1)
	require.NotNil(t, sent[0].Embed)

	var names []string
	for _, field := range sent[0].Embed.Fields {
		names = append(names, field.Name)
	}
	assert.Equal(t, []string{"Regular Commands", "Supporter Commands"}, names)
	assert.Contains(t, sent[0].Embed.Fields[1].Value, "`?reply <message>`")
}

type fakeRetention struct {
	next   time.Time
	last   time.Time
	pruned int64
}

func (r fakeRetention) Schedule() string   { return "0 0 3 * * *" }
func (r fakeRetention) NextRun() time.Time { return r.next }
func (r fakeRetention) IsRunning() bool    { return false }
func (r fakeRetention) LastRun() (time.Time, int64) {
	return r.last, r.pruned
}

func TestRetentionCommand(t *testing.T) {
	session := discordtest.New()
	b := bot.New(session, nil, bot.Options{
		Prefix:      "?",
		Permissions: bot.PermissionConfig{OwnerIDs: []string{"owner"}},
	}, zerolog.Nop())
	last := time.Date(2024, 3, 1, 3, 0, 0, 0, time.UTC)
	require.NoError(t, Register(b.Registry(), Deps{Retention: fakeRetention{
		next:   time.Now().Add(time.Hour),
		last:   last,
		pruned: 4,
	}}))

	msg := &discordgo.Message{ChannelID: "c", GuildID: "guild", Author: &discordgo.User{ID: "owner"}, Content: "?retention"}
	b.HandleMessage(context.Background(), msg)

	sent := session.SentTo("c")
	require.Len(t, sent, 1)
	require.NotNil(t, sent[0].Embed)
	fields := sent[0].Embed.Fields
	require.Len(t, fields, 4)
	assert.Equal(t, "`0 0 3 * * *`", fields[0].Value)
	assert.Equal(t, "Last Run", fields[3].Name)
	assert.Equal(t, "2024-03-01 03:00:00 UTC (4 threads removed)", fields[3].Value)
}

func TestRetentionCommand_NeverRun(t *testing.T) {
	session := discordtest.New()
	b := bot.New(session, nil, bot.Options{
		Prefix:      "?",
		Permissions: bot.PermissionConfig{OwnerIDs: []string{"owner"}},
	}, zerolog.Nop())
	require.NoError(t, Register(b.Registry(), Deps{Retention: fakeRetention{}}))

	b.HandleMessage(context.Background(), &discordgo.Message{ChannelID: "c", GuildID: "guild", Author: &discordgo.User{ID: "owner"}, Content: "?retention"})

	sent := session.SentTo("c")
	require.Len(t, sent, 1)
	fields := sent[0].Embed.Fields
	assert.Equal(t, "not scheduled", fields[2].Value)
	assert.Equal(t, "never", fields[3].Value)
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "5s", formatUptime(5*time.Second))
	assert.Equal(t, "2m 3s", formatUptime(2*time.Minute+3*time.Second))
	assert.Equal(t, "1h 0m 0s", formatUptime(time.Hour))
	assert.Equal(t, "1d 2h 0m 0s", formatUptime(26*time.Hour))
}
