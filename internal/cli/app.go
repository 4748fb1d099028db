// Package cli implements the interactive console surface over the core
// services: login, profile editing, location sharing, discovery and chat.
package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/dmitrijs2005/localdate/internal/config"
	"github.com/dmitrijs2005/localdate/internal/device"
	"github.com/dmitrijs2005/localdate/internal/logging"
	"github.com/dmitrijs2005/localdate/internal/services"
	"github.com/dmitrijs2005/localdate/internal/store"
)

type App struct {
	config   *config.Config
	store    *store.Store
	identity *services.IdentityService
	feed     *services.LocationFeed
	convs    *services.ConversationService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewDefault(slog.LevelWarn)

	st, err := store.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	identity := services.NewIdentityService(st, logger, c.SessionTTL)
	if err := identity.Init(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}

	// The simulated watcher stands in for the device position stream; it
	// drifts around a fixed origin.
	watcher := &device.SimulatedWatcher{
		Origin:   device.Position{Latitude: 52.52, Longitude: 13.405},
		Interval: 2 * time.Second,
		Jitter:   0.0005,
	}

	feed := services.NewLocationFeed(identity, st, watcher, logger)
	convs := services.NewConversationService(identity, st, logger, c.PollInterval)

	app := &App{
		config:   c,
		store:    st,
		identity: identity,
		feed:     feed,
		convs:    convs,
	}

	// Resume watching when the restored user already had sharing on.
	if u := identity.CurrentUser(); u != nil && u.Settings.LocationSharing {
		if err := feed.Start(ctx); err != nil {
			logger.Warn(ctx, "failed to resume location watch", "error", err)
		}
	}

	return app, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

// Close tears down the poller, the position watch and the database handle.
// Safe to call more than once.
func (a *App) Close() {
	a.convs.Close()
	a.feed.Stop()
	_ = a.store.Close()
}

func (a *App) isLoggedIn() bool {
	return a.identity.CurrentUser() != nil
}

func (a *App) status() string {
	u := a.identity.CurrentUser()
	if u == nil {
		return "anonymous"
	}
	if chat := a.convs.ActiveChat(); chat != "" {
		return u.Username + " (chatting)"
	}
	return u.Username
}
