package commands

import (
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/HokkoMail/internal/bot"
)

var startTime = time.Now()

func aboutCommand(threads ThreadActions) *bot.Command {
	return &bot.Command{
		Name:  "about",
		Level: bot.LevelRegular,
		Usage: "about",
		Help:  "Show bot info, uptime and open threads",
		Run: func(c *bot.Context) error {
			open := "unknown"
			if n, err := threads.OpenCount(c.Ctx); err == nil {
				open = strconv.Itoa(n)
			}

			var memStats runtime.MemStats
			runtime.ReadMemStats(&memStats)

			embed := &discordgo.MessageEmbed{
				Title:     "Bot Information",
				Color:     0x00ff00,
				Timestamp: time.Now().Format(time.RFC3339),
				Footer: &discordgo.MessageEmbedFooter{
					Text: "Created by latoulicious",
				},
				Fields: []*discordgo.MessageEmbedField{
					{Name: "Uptime", Value: formatUptime(time.Since(startTime)), Inline: true},
					{Name: "Open Threads", Value: open, Inline: true},
					{Name: "Memory Usage", Value: fmt.Sprintf("%.2f MB", float64(memStats.Alloc)/1024/1024), Inline: true},
					{Name: "Go Version", Value: runtime.Version(), Inline: true},
					{Name: "Platform", Value: fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH), Inline: true},
					{Name: "Goroutines", Value: strconv.Itoa(runtime.NumGoroutine()), Inline: true},
				},
			}
			_, err := c.SendEmbed(embed)
			return err
		},
	}
}

// formatUptime formats the uptime duration into a human-readable string
func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
