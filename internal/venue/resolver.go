package venue

import (
	"context"
	"fmt"
	"strings"
)

// NotSpecified is the venue used when neither a stored preference nor a
// recognized venue is available.
const NotSpecified = "not specified"

// PreferenceStore holds each user's current venue. An empty string means
// no venue is stored.
type PreferenceStore interface {
	GetCurrentVenue(ctx context.Context, userID int64) (string, error)
	SetCurrentVenue(ctx context.Context, userID int64, venue string) error
}

// Resolution is the outcome of resolving a venue.
type Resolution struct {
	Venue string
	// Overridden is set when a recognized venue was replaced by the stored
	// preference. It only affects display.
	Overridden bool
}

// Resolver picks the venue for a new tournament.
type Resolver struct {
	store PreferenceStore
}

// NewResolver creates a Resolver backed by store.
func NewResolver(store PreferenceStore) *Resolver {
	return &Resolver{store: store}
}

// Normalize maps empty and whitespace-only venues to NotSpecified.
func Normalize(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return NotSpecified
	}
	return v
}

// IsSpecified reports whether v names an actual venue.
func IsSpecified(v string) bool {
	return Normalize(v) != NotSpecified
}

// Resolve chooses between the user's stored venue and the recognized one.
// A stored venue always wins; otherwise the recognized venue is used, and
// NotSpecified when there is neither.
func (r *Resolver) Resolve(ctx context.Context, userID int64, recognized string) (Resolution, error) {
	stored, err := r.store.GetCurrentVenue(ctx, userID)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to get current venue: %w", err)
	}
	return Decide(stored, recognized), nil
}

// Decide is the pure part of Resolve.
func Decide(stored, recognized string) Resolution {
	stored = Normalize(stored)
	recognized = Normalize(recognized)

	if stored != NotSpecified {
		return Resolution{
			Venue:      stored,
			Overridden: recognized != NotSpecified && recognized != stored,
		}
	}
	return Resolution{Venue: recognized}
}

// Annotation is the note shown next to an overridden venue.
func Annotation(res Resolution, recognized string) string {
	if !res.Overridden {
		return ""
	}
	return fmt.Sprintf(" (your current venue; ticket says %s)", Normalize(recognized))
}
