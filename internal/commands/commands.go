// Package commands holds the thread commands staff use, and the ones menus
// dispatch on a user's behalf.
package commands

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/HokkoMail/internal/bot"
	"github.com/latoulicious/HokkoMail/internal/thread"
)

// ThreadActions is the part of the thread manager commands use
type ThreadActions interface {
	Move(ctx context.Context, t *thread.Thread, categoryID string) error
	Close(ctx context.Context, t *thread.Thread, closer *discordgo.User, reason string) error
	OpenCount(ctx context.Context) (int, error)
}

// RetentionStatus reports on the closed-thread retention job
type RetentionStatus interface {
	Schedule() string
	NextRun() time.Time
	IsRunning() bool
	LastRun() (time.Time, int64)
}

// Deps are the services commands need. Retention may be nil.
type Deps struct {
	Threads   ThreadActions
	Retention RetentionStatus
}

// Register adds the thread and information commands to r
func Register(r *bot.Registry, deps Deps) error {
	cmds := []*bot.Command{
		replyCommand(),
		moveCommand(deps.Threads),
		closeCommand(deps.Threads),
		aboutCommand(deps.Threads),
		helpCommand(r),
	}
	if deps.Retention != nil {
		cmds = append(cmds, retentionCommand(deps.Retention))
	}
	return r.Register(cmds...)
}

func requireThread(c *bot.Context) (*thread.Thread, error) {
	if c.Thread == nil {
		return nil, bot.ErrNotInThread
	}
	return c.Thread, nil
}
