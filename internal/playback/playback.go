package playback

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/oshokin/gradual/internal/domain/alarm"
)

// ErrPlayback wraps every failure reported by a player.
var ErrPlayback = errors.New("playback failed")

// Status describes what the player is doing right now.
type Status struct {
	// IsPlaying is true while the player is already producing audio.
	IsPlaying bool `json:"is_playing"`
}

// Request is everything the player needs to start a gradual playback.
type Request struct {
	// AlarmID identifies the alarm that fired.
	AlarmID uuid.UUID `json:"alarm_id"`
	// Device is the target output device; empty means the player's default.
	Device string `json:"device,omitempty"`
	// FadeArgs are the configured fade defaults merged with the alarm's own.
	FadeArgs alarm.Args `json:"fade_args,omitempty"`
	// RecommendationArgs are the configured defaults merged with the alarm's own.
	RecommendationArgs alarm.Args `json:"recommendation_args,omitempty"`
}

// Controller starts playback and reports the player's status.
type Controller interface {
	// CurrentPlayback returns nil when the status is unknown.
	CurrentPlayback(ctx context.Context) (*Status, error)
	// Play starts playback for the request.
	Play(ctx context.Context, request Request) error
}
