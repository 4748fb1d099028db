// Package services contains the reactive application services that mediate
// between the local store and the UI surface: identity (current user), the
// location feed, and conversation state. Each service owns its state under a
// mutex and tears its background work down exactly once.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/localdate/internal/common"
	"github.com/dmitrijs2005/localdate/internal/logging"
	"github.com/dmitrijs2005/localdate/internal/models"
	"github.com/dmitrijs2005/localdate/internal/store"
	"github.com/google/uuid"
)

// timeNow is a test seam for the clock.
var timeNow = time.Now

// IdentityService owns the process-wide current-user state and the session
// lifecycle around it.
type IdentityService struct {
	store      *store.Store
	logger     logging.Logger
	sessionTTL time.Duration

	mu      sync.RWMutex
	current *models.User
	loading bool
}

// NewIdentityService returns a service in the loading state; call Init before
// dependent services consult CurrentUser. A non-positive sessionTTL falls
// back to the 7-day default.
func NewIdentityService(st *store.Store, logger logging.Logger, sessionTTL time.Duration) *IdentityService {
	return &IdentityService{store: st, logger: logger, sessionTTL: sessionTTL, loading: true}
}

// Init resolves a persisted session into the current user. A missing or
// expired session leaves the service anonymous; a session pointing at a
// deleted user does too. The loading flag clears when Init returns.
func (s *IdentityService) Init(ctx context.Context) error {
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	sess, err := s.store.Sessions.Get(ctx, timeNow())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return fmt.Errorf("failed to restore session: %w", err)
	}

	u, err := s.store.Users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Warn(ctx, "session references missing user", "user_id", sess.UserID)
			return nil
		}
		return fmt.Errorf("failed to resolve session user: %w", err)
	}

	s.mu.Lock()
	s.current = u
	s.mu.Unlock()
	s.logger.Info(ctx, "session restored", "user_id", u.ID, "username", u.Username)
	return nil
}

// Loading reports whether Init has not yet completed.
func (s *IdentityService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// CurrentUser returns a copy of the current user, or nil when anonymous.
func (s *IdentityService) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.current)
}

func copyUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	cp := *u
	if u.Location != nil {
		loc := *u.Location
		cp.Location = &loc
	}
	return &cp
}

// Login creates a new user under the given username with default settings
// and issues a fresh session. A username already in use surfaces the store's
// common.ErrorConflict.
func (s *IdentityService) Login(ctx context.Context, username string) (*models.User, error) {
	u, err := s.store.Users.Create(ctx, username, models.DefaultSettings())
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	if err := s.store.Sessions.Set(ctx, token, u.ID, s.sessionTTL); err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	s.mu.Lock()
	s.current = u
	s.mu.Unlock()
	s.logger.Info(ctx, "logged in", "user_id", u.ID, "username", u.Username)
	return copyUser(u), nil
}

// Logout clears all sessions and resets the current user to anonymous. The
// user record itself stays.
func (s *IdentityService) Logout(ctx context.Context) error {
	if err := s.store.Sessions.Clear(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	s.logger.Info(ctx, "logged out")
	return nil
}

// UpdateProfile writes the partial update through the store and refreshes
// the cached user from the merged result.
func (s *IdentityService) UpdateProfile(ctx context.Context, upd models.UserUpdate) (*models.User, error) {
	cur := s.CurrentUser()
	if cur == nil {
		return nil, common.ErrorNotLoggedIn
	}

	u, err := s.store.Users.Update(ctx, cur.ID, upd)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = u
	s.mu.Unlock()
	return copyUser(u), nil
}
