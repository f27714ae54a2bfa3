package main

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/HokkoMail/internal/bot"
	"github.com/latoulicious/HokkoMail/internal/commands"
	"github.com/latoulicious/HokkoMail/internal/config"
	"github.com/latoulicious/HokkoMail/internal/handlers"
	"github.com/latoulicious/HokkoMail/internal/menu"
	"github.com/latoulicious/HokkoMail/internal/presence"
	"github.com/latoulicious/HokkoMail/internal/thread"
	"github.com/latoulicious/HokkoMail/pkg/cron"
	"github.com/spf13/cobra"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsDirectMessageReactions |
	discordgo.IntentsMessageContent

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and start handling threads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return run(cmd.Context(), cfg)
		},
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	dm, log, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer dm.Close()

	// Create a new Discord session using the provided token
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	dg.Identify.Intents = intents

	threads := thread.NewManager(dg, dm.ThreadRepository(), thread.Config{
		GuildID:    cfg.GuildID,
		CategoryID: cfg.CategoryID,
		Greeting:   cfg.Greeting,
	}, log)

	b := bot.New(dg, threads, bot.Options{
		Prefix: cfg.Prefix,
		Permissions: bot.PermissionConfig{
			OwnerIDs:         cfg.OwnerIDs,
			SupporterRoleIDs: cfg.SupporterRoleIDs,
		},
	}, log)

	retention, err := cron.NewRetentionManagerWithSchedule(dm.ThreadRepository(), cfg.ThreadRetention, cfg.RetentionSchedule, log)
	if err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", cfg.RetentionSchedule, err)
	}

	if err := commands.Register(b.Registry(), commands.Deps{Threads: threads, Retention: retention}); err != nil {
		return err
	}

	m := menu.New(b, menu.NewStore(dm.Partition(menu.PartitionName)), log)
	if err := b.Registry().Register(m.Commands()...); err != nil {
		return err
	}
	threads.OnReady(m.OnThreadReady)

	handlers.New(ctx, b, threads, log).Register(dg)

	// Open a websocket connection to Discord and begin listening.
	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	presence.NewPresenceManager(dg, threads, log).StartPeriodicUpdates(ctx, presence.DefaultInterval)

	retention.Start()
	defer retention.Stop()

	log.Info().Str("prefix", cfg.Prefix).Msg("Bot is running. Press CTRL-C to exit.")
	<-ctx.Done()

	log.Info().Msg("shutting down")
	threads.Shutdown()
	return nil
}
