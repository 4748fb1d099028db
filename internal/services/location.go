package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/localdate/internal/common"
	"github.com/dmitrijs2005/localdate/internal/device"
	"github.com/dmitrijs2005/localdate/internal/logging"
	"github.com/dmitrijs2005/localdate/internal/models"
	"github.com/dmitrijs2005/localdate/internal/store"
)

// LocationFeed owns the device position subscription while the current user
// has location sharing enabled. Each fix updates the in-memory position
// (which the discovery view reads) and is written through to the user record
// best-effort.
type LocationFeed struct {
	identity *IdentityService
	store    *store.Store
	watcher  device.Watcher
	logger   logging.Logger
	opts     device.Options

	mu       sync.Mutex
	position *device.Position
	errMsg   string
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewLocationFeed(identity *IdentityService, st *store.Store, watcher device.Watcher, logger logging.Logger) *LocationFeed {
	return &LocationFeed{
		identity: identity,
		store:    st,
		watcher:  watcher,
		logger:   logger,
		opts:     device.DefaultOptions(),
	}
}

// Start subscribes to the device position stream. Any previous subscription
// is cancelled first; re-enabling always creates a fresh watch, never resumes
// an old one.
func (f *LocationFeed) Start(ctx context.Context) error {
	f.Stop()

	watchCtx, cancel := context.WithCancel(ctx)
	updates, err := f.watcher.Watch(watchCtx, f.opts)
	if err != nil {
		cancel()
		f.setError(device.Message(err))
		return err
	}

	done := make(chan struct{})
	f.mu.Lock()
	f.cancel = cancel
	f.done = done
	f.mu.Unlock()

	go f.run(watchCtx, updates, done)
	f.logger.Info(ctx, "location watch started")
	return nil
}

func (f *LocationFeed) run(ctx context.Context, updates <-chan device.Update, done chan struct{}) {
	defer close(done)

	for upd := range updates {
		if upd.Err != nil {
			f.setError(device.Message(upd.Err))
			continue
		}

		pos := upd.Position
		f.mu.Lock()
		f.position = &pos
		f.errMsg = ""
		f.mu.Unlock()

		user := f.identity.CurrentUser()
		if user == nil {
			continue
		}

		// Best effort: the in-memory position stays the source of truth for
		// the view even when the durable write lags or fails.
		loc := &models.Location{
			Latitude:    pos.Latitude,
			Longitude:   pos.Longitude,
			LastUpdated: timeNow(),
		}
		if _, err := f.store.Users.Update(ctx, user.ID, models.UserUpdate{Location: loc}); err != nil {
			f.logger.Warn(ctx, "failed to store position fix", "user_id", user.ID, "error", err)
		}
	}
}

// Stop cancels the active subscription and waits for the watch goroutine to
// finish, so no update is delivered after Stop returns. Stopping an inactive
// feed is a no-op; double Stop is safe.
func (f *LocationFeed) Stop() {
	f.mu.Lock()
	cancel, done := f.cancel, f.done
	f.cancel, f.done = nil, nil
	f.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	f.logger.Info(context.Background(), "location watch stopped")
}

// EnableSharing flips the sharing flag on the profile (supplying the whole
// settings struct) and starts the watch.
func (f *LocationFeed) EnableSharing(ctx context.Context) error {
	cur := f.identity.CurrentUser()
	if cur == nil {
		return common.ErrorNotLoggedIn
	}

	settings := cur.Settings
	settings.LocationSharing = true
	if _, err := f.identity.UpdateProfile(ctx, models.UserUpdate{Settings: &settings}); err != nil {
		f.setError(err.Error())
		return err
	}
	return f.Start(ctx)
}

// DisableSharing flips the flag off, tears the subscription down and clears
// the in-memory position.
func (f *LocationFeed) DisableSharing(ctx context.Context) error {
	cur := f.identity.CurrentUser()
	if cur == nil {
		return common.ErrorNotLoggedIn
	}

	settings := cur.Settings
	settings.LocationSharing = false
	if _, err := f.identity.UpdateProfile(ctx, models.UserUpdate{Settings: &settings}); err != nil {
		f.setError(err.Error())
		return err
	}

	f.Stop()
	f.mu.Lock()
	f.position = nil
	f.mu.Unlock()
	return nil
}

// Position returns a copy of the latest fix, or nil before the first one.
func (f *LocationFeed) Position() *device.Position {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.position == nil {
		return nil
	}
	pos := *f.position
	return &pos
}

// Err returns the user-facing error message, empty when the last update
// succeeded.
func (f *LocationFeed) Err() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}

func (f *LocationFeed) setError(msg string) {
	f.mu.Lock()
	f.errMsg = msg
	f.mu.Unlock()
}
