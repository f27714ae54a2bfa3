package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/HokkoMail/internal/discord"
	"github.com/latoulicious/HokkoMail/internal/thread"
)

// Command is a prefix command
type Command struct {
	Name    string
	Aliases []string
	Level   Level
	Usage   string
	Help    string
	Run     func(c *Context) error
}

// Context carries one command invocation
type Context struct {
	Ctx     context.Context
	Session discord.Session
	Bot     *Bot

	Message   *discordgo.Message
	Author    *discordgo.User
	ChannelID string
	GuildID   string

	Prefix      string
	InvokedWith string
	Command     *Command
	Args        []string
	RawArgs     string

	// Thread is set when the command runs inside a thread channel
	Thread *thread.Thread
}

// Send posts plain text to the invoking channel
func (c *Context) Send(content string) (*discordgo.Message, error) {
	return c.Session.ChannelMessageSend(c.ChannelID, content)
}

// SendEmbed posts an embed to the invoking channel
func (c *Context) SendEmbed(embed *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return c.Session.ChannelMessageSendEmbed(c.ChannelID, embed)
}

// Registry holds commands by name and alias
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Command
	aliases  map[string]string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]string),
	}
}

// Register adds commands. Names and aliases are case-insensitive and must
// be unique.
func (r *Registry) Register(cmds ...*Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cmd := range cmds {
		name := strings.ToLower(cmd.Name)
		if name == "" || cmd.Run == nil {
			return fmt.Errorf("command %q: %w", cmd.Name, ErrInvalidCommand)
		}
		if r.taken(name) {
			return fmt.Errorf("command %q: %w", name, ErrDuplicateCommand)
		}
		r.commands[name] = cmd

		for _, alias := range cmd.Aliases {
			alias = strings.ToLower(alias)
			if r.taken(alias) {
				return fmt.Errorf("alias %q: %w", alias, ErrDuplicateCommand)
			}
			r.aliases[alias] = name
		}
	}
	return nil
}

func (r *Registry) taken(name string) bool {
	_, cmd := r.commands[name]
	_, alias := r.aliases[name]
	return cmd || alias
}

// Lookup finds a command by name or alias
func (r *Registry) Lookup(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name = strings.ToLower(name)
	if target, ok := r.aliases[name]; ok {
		name = target
	}
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Commands returns every command sorted by name
func (r *Registry) Commands() []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ParseInvocation splits "<prefix>name args..." into its parts. ok is false
// when content does not start with prefix followed by a command word.
func ParseInvocation(prefix, content string) (name, raw string, args []string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", "", nil, false
	}

	rest := strings.TrimLeft(content[len(prefix):], " \t")
	if rest == "" {
		return "", "", nil, false
	}

	word, raw, _ := strings.Cut(rest, " ")
	raw = strings.TrimSpace(raw)
	return strings.ToLower(word), raw, strings.Fields(raw), true
}
