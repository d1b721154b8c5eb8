package tournament

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Type is the tournament format.
type Type string

const (
	TypeFreezeout Type = "freezeout"
	TypeRebuy     Type = "rebuy"
	TypeAddon     Type = "addon"
	TypeBounty    Type = "bounty"
	TypeSatellite Type = "satellite"
)

// Types lists every supported tournament type in display order.
var Types = []Type{TypeFreezeout, TypeRebuy, TypeAddon, TypeBounty, TypeSatellite}

// DefaultName is used when a ticket draft is confirmed without a name.
const DefaultName = "Ticket tournament"

// ErrNotFound is returned by stores when a tournament does not exist.
var ErrNotFound = errors.New("tournament not found")

// Tournament is a stored tournament record.
type Tournament struct {
	ID            string
	UserID        int64
	Name          string
	Date          time.Time
	Venue         string
	BuyIn         float64
	Type          Type
	Structure     string
	Participants  int
	PrizePool     float64
	BlindLevels   string
	StartingStack int
	Notes         string
	Result        *Result
	CreatedAt     time.Time
}

// HasResult reports whether a finishing result has been recorded.
func (t Tournament) HasResult() bool {
	return t.Result != nil
}

// Result is the outcome of a finished tournament.
type Result struct {
	Position int
	Payout   float64
	Profit   float64
	ROI      float64
	Notes    string
}

// ResultInput is a parsed "position | payout" line.
type ResultInput struct {
	Position int
	Payout   float64
	Notes    string
}

// ComputeResult derives profit and ROI from the tournament's buy-in.
func ComputeResult(buyIn float64, in ResultInput) Result {
	profit := in.Payout - buyIn
	var roi float64
	if buyIn > 0 {
		roi = profit / buyIn * 100
	}
	return Result{
		Position: in.Position,
		Payout:   in.Payout,
		Profit:   profit,
		ROI:      roi,
		Notes:    in.Notes,
	}
}

// Draft holds tournament fields collected before creation. Zero values mean
// the field was not provided.
type Draft struct {
	Name          string    `json:"name,omitempty"`
	Date          time.Time `json:"date,omitempty"`
	Venue         string    `json:"venue,omitempty"`
	BuyIn         float64   `json:"buyin,omitempty"`
	Type          Type      `json:"type,omitempty"`
	Structure     string    `json:"structure,omitempty"`
	Participants  int       `json:"participants,omitempty"`
	PrizePool     float64   `json:"prize_pool,omitempty"`
	BlindLevels   string    `json:"blind_levels,omitempty"`
	StartingStack int       `json:"starting_stack,omitempty"`
	Notes         string    `json:"notes,omitempty"`
}

// Validate checks the fields required before a draft may be submitted.
func (d Draft) Validate() error {
	var missing []string
	if strings.TrimSpace(d.Name) == "" {
		missing = append(missing, "name")
	}
	if d.Date.IsZero() {
		missing = append(missing, "date")
	}
	if d.BuyIn <= 0 {
		missing = append(missing, "buyin")
	}
	if len(missing) > 0 {
		return &ValidationError{
			Field:  missing[0],
			Reason: fmt.Sprintf("missing or invalid: %s", strings.Join(missing, ", ")),
		}
	}
	return nil
}

// WithDefaults returns a copy with the fallback name and type filled in.
func (d Draft) WithDefaults() Draft {
	if strings.TrimSpace(d.Name) == "" {
		d.Name = DefaultName
	}
	if d.Type == "" {
		d.Type = TypeFreezeout
	}
	return d
}

// FormatError reports input that could not be split or parsed.
type FormatError struct {
	Field  string // empty when the whole line is malformed
	Reason string
}

func (e *FormatError) Error() string {
	if e.Field == "" {
		return "invalid format: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ValidationError reports well-formed but semantically invalid input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsInputError reports whether err is a FormatError or ValidationError.
func IsInputError(err error) bool {
	var fe *FormatError
	var ve *ValidationError
	return errors.As(err, &fe) || errors.As(err, &ve)
}
