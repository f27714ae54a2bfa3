package commands

import (
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/HokkoMail/internal/bot"
)

// retentionCommand shows the state of the closed-thread cleanup job
func retentionCommand(status RetentionStatus) *bot.Command {
	return &bot.Command{
		Name:  "retention",
		Level: bot.LevelOwner,
		Usage: "retention",
		Help:  "Show the closed thread cleanup schedule",
		Run: func(c *bot.Context) error {
			next := "not scheduled"
			if nextRun := status.NextRun(); !nextRun.IsZero() {
				next = nextRun.Format("2006-01-02 15:04:05 MST") + " (in " + formatUptime(time.Until(nextRun)) + ")"
			}

			last := "never"
			if lastRun, pruned := status.LastRun(); !lastRun.IsZero() {
				last = lastRun.Format("2006-01-02 15:04:05 MST") + " (" + strconv.FormatInt(pruned, 10) + " threads removed)"
			}

			state := "🟢 Idle"
			if status.IsRunning() {
				state = "🔄 Running"
			}

			_, err := c.SendEmbed(&discordgo.MessageEmbed{
				Title:     "🕐 Thread Retention",
				Color:     0x00ff00,
				Timestamp: time.Now().Format(time.RFC3339),
				Fields: []*discordgo.MessageEmbedField{
					{Name: "Schedule", Value: "`" + status.Schedule() + "`", Inline: true},
					{Name: "Status", Value: state, Inline: true},
					{Name: "Next Run", Value: next},
					{Name: "Last Run", Value: last},
				},
			})
			return err
		},
	}
}
