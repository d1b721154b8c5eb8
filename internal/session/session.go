package session

import (
	"context"

	"github.com/pokerlog/telegram-poker-bot/internal/tournament"
)

// Flow is the multi-step dialog a user is currently in.
type Flow int

const (
	FlowNone Flow = iota
	FlowRegisteringTournament
	FlowAddingResult
	FlowEditingTournamentDraft
)

func (f Flow) String() string {
	switch f {
	case FlowRegisteringTournament:
		return "registering_tournament"
	case FlowAddingResult:
		return "adding_result"
	case FlowEditingTournamentDraft:
		return "editing_tournament_draft"
	default:
		return "none"
	}
}

// ResultContext identifies the tournament a result is being entered for.
type ResultContext struct {
	TournamentID string `json:"tournament_id"`
}

// OCRDraft is a recognized ticket waiting for confirm, edit or cancel.
// Venue in Draft is the raw recognized venue; resolution happens on use.
type OCRDraft struct {
	Draft      tournament.Draft `json:"draft"`
	Confidence float64          `json:"confidence,omitempty"`
	PreviewID  int              `json:"preview_id,omitempty"` // message holding the confirm keyboard
}

// Session is the conversation state of one user.
type Session struct {
	ActiveFlow      Flow              `json:"active_flow"`
	DraftTournament *tournament.Draft `json:"draft_tournament,omitempty"`
	DraftResult     *ResultContext    `json:"draft_result,omitempty"`
	OCRDraft        *OCRDraft         `json:"ocr_draft,omitempty"`
}

// New returns an empty session with no active flow.
func New() *Session {
	return &Session{ActiveFlow: FlowNone}
}

// Enter switches to flow, dropping data left over from any previous flow.
func (s *Session) Enter(flow Flow) {
	s.ClearFlow()
	s.ActiveFlow = flow
}

// ClearFlow ends the active flow. A pending OCR draft is kept since it is
// driven by buttons rather than by the flow.
func (s *Session) ClearFlow() {
	s.ActiveFlow = FlowNone
	s.DraftTournament = nil
	s.DraftResult = nil
}

// Reset drops everything, including a pending OCR draft.
func (s *Session) Reset() {
	s.ClearFlow()
	s.OCRDraft = nil
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return New()
	}
	c := &Session{ActiveFlow: s.ActiveFlow}
	if s.DraftTournament != nil {
		d := *s.DraftTournament
		c.DraftTournament = &d
	}
	if s.DraftResult != nil {
		r := *s.DraftResult
		c.DraftResult = &r
	}
	if s.OCRDraft != nil {
		o := *s.OCRDraft
		c.OCRDraft = &o
	}
	return c
}

// Store keeps one session per user. Get never returns nil for a missing
// user; it returns a fresh empty session instead. Returned sessions are
// copies: changes take effect only through Set.
type Store interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Set(ctx context.Context, userID int64, s *Session) error
	Clear(ctx context.Context, userID int64) error
}
