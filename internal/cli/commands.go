package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/localdate/internal/common"
	"github.com/dmitrijs2005/localdate/internal/geo"
	"github.com/dmitrijs2005/localdate/internal/models"
)

func (a *App) Login(ctx context.Context, username string) error {
	u, err := a.identity.Login(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			printlnFn("Username already taken:", username)
		} else {
			printlnFn("Login failed:", err)
		}
		return err
	}
	printlnFn("Logged in as", u.Username)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	_ = a.convs.SetActiveChat(ctx, "")
	a.feed.Stop()
	if err := a.identity.Logout(ctx); err != nil {
		printlnFn("Logout failed:", err)
		return err
	}
	printlnFn("Logged out")
	return nil
}

func (a *App) Profile(ctx context.Context) error {
	u := a.identity.CurrentUser()
	if u == nil {
		printlnFn("Not logged in")
		return common.ErrorNotLoggedIn
	}
	printlnFn("Username:   ", u.Username)
	printlnFn("Description:", u.Description)
	printlnFn("Visibility: ", string(u.Settings.Visibility))
	printlnFn("Sharing:    ", u.Settings.LocationSharing)
	if u.Location != nil {
		printlnFn(fmt.Sprintf("Location:    %.5f, %.5f (updated %s)",
			u.Location.Latitude, u.Location.Longitude,
			u.Location.LastUpdated.Format(time.RFC3339)))
	}
	if msg := a.feed.Err(); msg != "" {
		printlnFn("Location error:", msg)
	}
	return nil
}

func (a *App) SetDescription(ctx context.Context, text string) error {
	if _, err := a.identity.UpdateProfile(ctx, models.UserUpdate{Description: &text}); err != nil {
		printlnFn("Update failed:", err)
		return err
	}
	printlnFn("Description updated")
	return nil
}

func (a *App) Share(ctx context.Context, on bool) error {
	var err error
	if on {
		err = a.feed.EnableSharing(ctx)
	} else {
		err = a.feed.DisableSharing(ctx)
	}
	if err != nil {
		printlnFn("Sharing toggle failed:", err)
		return err
	}
	if on {
		printlnFn("Location sharing enabled")
	} else {
		printlnFn("Location sharing disabled")
	}
	return nil
}

// Nearby lists users with a fresh position fix within the configured radius
// of our latest fix.
func (a *App) Nearby(ctx context.Context) error {
	u := a.identity.CurrentUser()
	if u == nil {
		printlnFn("Not logged in")
		return common.ErrorNotLoggedIn
	}

	pos := a.feed.Position()
	if pos == nil {
		printlnFn("No position fix yet; try 'share on' first")
		return nil
	}

	all, err := a.store.Users.List(ctx)
	if err != nil {
		printlnFn("Discovery failed:", err)
		return err
	}

	near := geo.Nearby(all, pos.Latitude, pos.Longitude, a.config.RadiusKm, a.config.StalenessWindow, time.Now())
	count := 0
	for _, other := range near {
		if other.ID == u.ID {
			continue
		}
		d := geo.Distance(pos.Latitude, pos.Longitude, other.Location.Latitude, other.Location.Longitude)
		printlnFn(fmt.Sprintf("%-20s %.2f km away", other.Username, d))
		count++
	}
	if count == 0 {
		printlnFn("Nobody nearby")
	}
	return nil
}

func (a *App) Chats(ctx context.Context) error {
	convs, err := a.convs.Conversations(ctx)
	if err != nil {
		printlnFn("Listing chats failed:", err)
		return err
	}
	if len(convs) == 0 {
		printlnFn("No conversations yet")
		return nil
	}
	for _, cv := range convs {
		name := cv.UserID
		if u, err := a.store.Users.GetByID(ctx, cv.UserID); err == nil {
			name = u.Username
		}
		line := fmt.Sprintf("%-20s %s", name, cv.LastMessage.Content)
		if cv.Unread > 0 {
			line += fmt.Sprintf("  (%d unread)", cv.Unread)
		}
		printlnFn(line)
	}
	return nil
}

func (a *App) OpenChat(ctx context.Context, username string) error {
	other, err := a.store.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			printlnFn("No such user:", username)
		} else {
			printlnFn("Opening chat failed:", err)
		}
		return err
	}

	if err := a.convs.SetActiveChat(ctx, other.ID); err != nil {
		printlnFn("Opening chat failed:", err)
		return err
	}

	me := a.identity.CurrentUser()
	for _, m := range a.convs.Messages() {
		prefix := username
		if me != nil && m.SenderID == me.ID {
			prefix = "me"
		}
		printlnFn(fmt.Sprintf("[%s] %s: %s", m.Timestamp.Format("15:04"), prefix, m.Content))
	}
	return nil
}

func (a *App) Say(ctx context.Context, text string) error {
	chat := a.convs.ActiveChat()
	if chat == "" {
		printlnFn("No chat open; use: chat <username>")
		return nil
	}
	if _, err := a.convs.Send(ctx, chat, text); err != nil {
		if errors.Is(err, common.ErrorValidation) {
			printlnFn("Cannot send an empty message")
		} else {
			printlnFn("Send failed:", err)
		}
		return err
	}
	return nil
}

func (a *App) CloseChat(ctx context.Context) error {
	return a.convs.SetActiveChat(ctx, "")
}
