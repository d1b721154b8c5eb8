package ocr

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pokerlog/telegram-poker-bot/internal/tournament"
)

// TicketData holds the fields recognized on a tournament ticket. Every
// field is optional.
type TicketData struct {
	Name          string `json:"name"`
	Date          string `json:"date"`
	Venue         string `json:"venue"`
	BuyIn         Amount `json:"buyin"`
	Type          string `json:"type"`
	Structure     string `json:"structure"`
	Participants  int    `json:"participants"`
	PrizePool     Amount `json:"prize_pool"`
	StartingStack int    `json:"starting_stack"`
	BlindLevels   string `json:"blind_levels"`
}

// Result mirrors what the recognition service reports for one image.
type Result struct {
	Success    bool
	Data       *TicketData
	Confidence float64
	Error      string
}

// ImageAnalyzer recognizes ticket fields in raw image data.
type ImageAnalyzer interface {
	AnalyzeTicket(ctx context.Context, image []byte, mimeType string) (*Result, error)
}

// Draft converts recognized data into a tournament draft. Values that do
// not parse are dropped rather than guessed.
func (d TicketData) Draft() tournament.Draft {
	draft := tournament.Draft{
		Name:          strings.TrimSpace(d.Name),
		Venue:         strings.TrimSpace(d.Venue),
		Structure:     strings.TrimSpace(d.Structure),
		Participants:  d.Participants,
		PrizePool:     float64(d.PrizePool),
		StartingStack: d.StartingStack,
		BlindLevels:   strings.TrimSpace(d.BlindLevels),
	}
	if date, err := tournament.ParseDate(d.Date); err == nil {
		draft.Date = date
	}
	if d.BuyIn > 0 {
		draft.BuyIn = float64(d.BuyIn)
	}
	if t, err := tournament.ParseType(d.Type); err == nil {
		draft.Type = t
	}
	return draft
}

// Amount accepts both JSON numbers and strings like "$1,100".
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*a = Amount(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	// Unreadable strings become zero, the same as a missing field
	v, err := tournament.ParseAmount("amount", s)
	if err != nil {
		*a = 0
		return nil
	}
	*a = Amount(v)
	return nil
}
