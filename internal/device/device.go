// Package device abstracts the device's continuous position stream. The real
// stream on a phone or browser is a platform capability; here it is an
// interface so the CLI can run a simulated walker and tests can inject
// scripted fixes.
package device

import (
	"context"
	"errors"
	"time"
)

// Position is a single geographic fix.
type Position struct {
	Latitude  float64
	Longitude float64
}

// Update is one item in a watch stream: either a fix or a per-fix error.
// An error does not terminate the stream; the subscription keeps delivering.
type Update struct {
	Position Position
	Err      error
}

// Options mirror the position-watch options of the platform API.
type Options struct {
	// HighAccuracy requests the most precise fix available.
	HighAccuracy bool
	// Timeout bounds a single position acquisition.
	Timeout time.Duration
	// MaximumAge is the oldest cached fix acceptable; zero forbids cache reuse.
	MaximumAge time.Duration
}

// DefaultOptions returns the options used by the location feed: high
// accuracy, 5 s acquisition timeout, no cached-position reuse.
func DefaultOptions() Options {
	return Options{
		HighAccuracy: true,
		Timeout:      5 * time.Second,
		MaximumAge:   0,
	}
}

// Watcher delivers a continuous stream of position updates. The returned
// channel is closed when ctx is cancelled; no updates are delivered after
// that.
type Watcher interface {
	Watch(ctx context.Context, opts Options) (<-chan Update, error)
}

var (
	ErrPermissionDenied    = errors.New("location permission denied")
	ErrPositionUnavailable = errors.New("position unavailable")
	ErrTimeout             = errors.New("position request timed out")
	ErrNotSupported        = errors.New("geolocation not supported")
)

// Message maps a watch error onto the user-facing text rendered by the view.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "Location permission denied"
	case errors.Is(err, ErrPositionUnavailable):
		return "Location information is unavailable"
	case errors.Is(err, ErrTimeout):
		return "Location request timed out"
	case errors.Is(err, ErrNotSupported):
		return "Geolocation is not supported by your device"
	default:
		return "An unknown error occurred"
	}
}
