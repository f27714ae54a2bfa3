package presence

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/HokkoMail/internal/logging"
	"github.com/rs/zerolog"
)

// DefaultInterval is how often the presence is refreshed
const DefaultInterval = 5 * time.Minute

// StatusUpdater sets the bot's gateway presence
type StatusUpdater interface {
	UpdateStatusComplex(usd discordgo.UpdateStatusData) error
}

// ThreadCounter reports how many threads are open
type ThreadCounter interface {
	OpenCount(ctx context.Context) (int, error)
}

// PresenceManager shows the number of open threads as the bot's activity
type PresenceManager struct {
	session StatusUpdater
	threads ThreadCounter
	log     zerolog.Logger

	mu      sync.RWMutex
	current string
}

// NewPresenceManager creates a new presence manager
func NewPresenceManager(session StatusUpdater, threads ThreadCounter, log zerolog.Logger) *PresenceManager {
	return &PresenceManager{
		session: session,
		threads: threads,
		log:     logging.Component(log, "presence"),
	}
}

// Update refreshes the presence from the current open thread count
func (pm *PresenceManager) Update(ctx context.Context) {
	count, err := pm.threads.OpenCount(ctx)
	if err != nil {
		pm.log.Warn().Err(err).Msg("failed to count open threads")
		return
	}

	name := activityName(count)
	presence := discordgo.UpdateStatusData{
		Status: "online",
		Activities: []*discordgo.Activity{
			{
				Name: name,
				Type: discordgo.ActivityTypeWatching,
			},
		},
	}

	if err := pm.session.UpdateStatusComplex(presence); err != nil {
		pm.log.Warn().Err(err).Msg("failed to update bot presence")
		return
	}

	pm.mu.Lock()
	pm.current = name
	pm.mu.Unlock()
}

// Current returns the activity last set
func (pm *PresenceManager) Current() string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.current
}

// StartPeriodicUpdates updates the presence now and then every interval
// until ctx is done
func (pm *PresenceManager) StartPeriodicUpdates(ctx context.Context, interval time.Duration) {
	go func() {
		pm.Update(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pm.Update(ctx)
			}
		}
	}()
}

func activityName(count int) string {
	if count == 1 {
		return "1 open thread"
	}
	return strconv.Itoa(count) + " open threads"
}
