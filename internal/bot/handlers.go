package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/pokerlog/telegram-poker-bot/internal/session"
	"github.com/pokerlog/telegram-poker-bot/internal/tournament"
	"github.com/pokerlog/telegram-poker-bot/internal/venue"
	"github.com/rs/zerolog/log"
)

const (
	maxSelectableTournaments = 20
	latestTournamentsCount   = 10
	clearVenueArg            = "-"
)

func (c *conversation) handleCommand(text string) {
	cmd, arg := ParseCommand(text)
	switch cmd {
	case CommandStart:
		c.reply(MsgStart)
	case CommandHelp:
		c.reply(MsgHelp)
	case CommandRegister:
		c.sess.Enter(session.FlowRegisteringTournament)
		c.reply(MsgRegisterPrompt)
	case CommandResult:
		c.startResultEntry()
	case CommandStats:
		c.showStats()
	case CommandTournaments:
		c.showTournaments()
	case CommandVenue:
		c.showVenue()
	case CommandSetVenue:
		c.setVenue(arg)
	case CommandSettings:
		c.showSettings()
	case CommandCancel:
		c.cancel()
	case CommandDone:
		if c.sess.ActiveFlow == session.FlowEditingTournamentDraft {
			c.finishDraftEdit()
			return
		}
		c.reply(MsgUnknownCommand)
	default:
		c.reply(MsgUnknownCommand)
	}
}

// handleText routes free text by the active flow.
func (c *conversation) handleText(text string) {
	switch c.sess.ActiveFlow {
	case session.FlowRegisteringTournament:
		c.handleRegistrationInput(text)
	case session.FlowAddingResult:
		c.handleResultInput(text)
	case session.FlowEditingTournamentDraft:
		c.handleDraftEditInput(text)
	default:
		c.reply(MsgUnknownText)
	}
}

// handleButton routes a button press by its action tag.
func (c *conversation) handleButton(data string) {
	action := ParseAction(data)
	switch action.Kind {
	case ActionTournamentSelect:
		c.selectTournament(action.Param(0))
	case ActionConfirmTournament:
		c.confirmTicket()
	case ActionCancelTournament:
		c.cancelTicket()
	case ActionEditTournament:
		c.editTicket()
	default:
		log.Warn().Int64("userId", c.update.UserID).Str("data", data).Msg("unknown button action")
		c.acknowledge(MsgUnknownButton)
	}
}

// cancel ends whatever the user is doing. It always replies, also when
// there is nothing to cancel.
func (c *conversation) cancel() {
	if c.sess.ActiveFlow == session.FlowNone && c.sess.OCRDraft == nil {
		c.reply(MsgNothingToCancel)
		return
	}
	if c.sess.OCRDraft != nil && c.sess.OCRDraft.PreviewID != 0 {
		c.edit(c.sess.OCRDraft.PreviewID, MsgTicketCancelled)
	}
	log.Info().Int64("userId", c.update.UserID).Str("flow", c.sess.ActiveFlow.String()).Msg("flow cancelled")
	c.sess.Reset()
	c.reply(MsgCancelled)
}

// --- Registration ---

func (c *conversation) handleRegistrationInput(text string) {
	draft, err := tournament.ParseRegistration(text)
	if err != nil {
		c.reply(MsgRegisterInvalid, escapeMarkdown(err.Error()))
		return
	}
	draft.Venue = venue.Normalize(draft.Venue)

	var created *tournament.Tournament
	err = c.external(c.ctx, "create tournament", func(ctx context.Context) error {
		var err error
		created, err = c.tournaments.CreateTournament(ctx, c.update.UserID, draft)
		return err
	})
	// Creating is the last step of the flow, so it ends either way.
	c.sess.ClearFlow()
	if err != nil {
		c.replyFailure(err, "saving the tournament", true)
		return
	}

	log.Info().Int64("userId", c.update.UserID).Str("tournamentId", created.ID).Msg("tournament registered")
	c.reply(MsgTournamentCreated,
		escapeMarkdown(created.Name),
		tournament.FormatDate(created.Date),
		tournament.FormatCurrency(created.BuyIn),
		escapeMarkdown(created.Venue),
	)
}

// --- Result entry ---

func (c *conversation) startResultEntry() {
	var pending []tournament.Tournament
	err := c.external(c.ctx, "list tournaments without result", func(ctx context.Context) error {
		var err error
		pending, err = c.tournaments.ListTournamentsWithoutResult(ctx, c.update.UserID)
		return err
	})
	if err != nil {
		c.replyFailure(err, "loading your tournaments", false)
		return
	}

	c.sess.ClearFlow()
	if len(pending) == 0 {
		c.reply(MsgNoPendingTournaments)
		return
	}
	if len(pending) > maxSelectableTournaments {
		pending = pending[:maxSelectableTournaments]
	}

	buttons := make([][]Button, 0, len(pending))
	for _, t := range pending {
		buttons = append(buttons, []Button{{
			Text: fmt.Sprintf("%s · %s · %s", t.Name, tournament.FormatDate(t.Date), tournament.FormatCurrency(t.BuyIn)),
			Data: selectTournamentData(t.ID),
		}})
	}
	c.replyWithButtons(buttons, MsgSelectTournament)
}

func (c *conversation) selectTournament(id string) {
	c.acknowledge("")

	t, err := c.getTournament(id)
	if err != nil {
		if classify(err) == errorKindNotFound {
			c.sess.ClearFlow()
			c.reply(MsgTournamentGone)
			return
		}
		c.replyFailure(err, "loading the tournament", false)
		return
	}

	c.sess.Enter(session.FlowAddingResult)
	c.sess.DraftResult = &session.ResultContext{TournamentID: t.ID}
	c.reply(MsgResultPrompt,
		escapeMarkdown(t.Name),
		tournament.FormatDate(t.Date),
		tournament.FormatCurrency(t.BuyIn),
	)
}

// getTournament loads a tournament owned by the current user. Tournaments
// of other users are reported as not found.
func (c *conversation) getTournament(id string) (*tournament.Tournament, error) {
	if id == "" {
		return nil, tournament.ErrNotFound
	}
	var t *tournament.Tournament
	err := c.external(c.ctx, "get tournament", func(ctx context.Context) error {
		var err error
		t, err = c.tournaments.GetTournament(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if t.UserID != c.update.UserID {
		return nil, tournament.ErrNotFound
	}
	return t, nil
}

func (c *conversation) handleResultInput(text string) {
	if c.sess.DraftResult == nil {
		c.sess.ClearFlow()
		c.reply(MsgTournamentGone)
		return
	}

	in, err := tournament.ParseResult(text)
	if err != nil {
		c.reply(MsgResultInvalid, escapeMarkdown(err.Error()))
		return
	}

	id := c.sess.DraftResult.TournamentID
	t, err := c.getTournament(id)
	if err != nil {
		if classify(err) == errorKindNotFound {
			c.sess.ClearFlow()
			c.reply(MsgTournamentGone)
			return
		}
		c.replyFailure(err, "loading the tournament", false)
		return
	}

	result := tournament.ComputeResult(t.BuyIn, in)
	var updated *tournament.Tournament
	err = c.external(c.ctx, "set tournament result", func(ctx context.Context) error {
		var err error
		updated, err = c.tournaments.SetTournamentResult(ctx, id, result)
		return err
	})
	// Saving the result is the last step of the flow, so it ends either way.
	c.sess.ClearFlow()
	if err != nil {
		if classify(err) == errorKindNotFound {
			c.reply(MsgTournamentGone)
			return
		}
		c.replyFailure(err, "saving the result", true)
		return
	}

	saved := result
	if updated != nil && updated.Result != nil {
		saved = *updated.Result
	}
	log.Info().Int64("userId", c.update.UserID).Str("tournamentId", id).Int("position", saved.Position).Msg("result saved")
	c.reply(MsgResultSaved,
		escapeMarkdown(t.Name),
		saved.Position,
		tournament.FormatCurrency(saved.Payout),
		tournament.FormatSignedCurrency(saved.Profit),
		tournament.FormatSignedPercent(saved.ROI),
	)
}

// --- Statistics ---

func (c *conversation) listTournaments() ([]tournament.Tournament, error) {
	var ts []tournament.Tournament
	err := c.external(c.ctx, "list tournaments", func(ctx context.Context) error {
		var err error
		ts, err = c.tournaments.ListTournaments(ctx, c.update.UserID)
		return err
	})
	return ts, err
}

// withResultsLabel describes how many tournaments have a result recorded.
func withResultsLabel(n int) string {
	if n == 1 {
		return "1 with result"
	}
	return fmt.Sprintf("%d with results", n)
}

func (c *conversation) showStats() {
	ts, err := c.listTournaments()
	if err != nil {
		c.replyFailure(err, "loading your statistics", false)
		return
	}
	if len(ts) == 0 {
		c.reply(MsgNoTournaments)
		return
	}

	s := tournament.ComputeStats(ts)
	best := "—"
	if s.BestFinish > 0 {
		best = fmt.Sprintf("#%d", s.BestFinish)
	}
	c.reply(MsgStats,
		s.Tournaments,
		withResultsLabel(s.WithResult),
		tournament.FormatCurrency(s.TotalBuyIns),
		tournament.FormatCurrency(s.TotalPayouts),
		tournament.FormatSignedCurrency(s.Profit),
		tournament.FormatSignedPercent(s.ROI),
		tournament.FormatPercent(s.ITM),
		s.Wins,
		best,
	)
}

func (c *conversation) showTournaments() {
	ts, err := c.listTournaments()
	if err != nil {
		c.replyFailure(err, "loading your tournaments", false)
		return
	}
	if len(ts) == 0 {
		c.reply(MsgNoTournaments)
		return
	}
	if len(ts) > latestTournamentsCount {
		ts = ts[:latestTournamentsCount]
	}

	var b strings.Builder
	b.WriteString(MsgTournamentsHeader)
	for _, t := range ts {
		fmt.Fprintf(&b, "\n\n• *%s* · %s · %s\n   📍 %s\n   ",
			escapeMarkdown(t.Name),
			tournament.FormatDate(t.Date),
			tournament.FormatCurrency(t.BuyIn),
			escapeMarkdown(t.Venue),
		)
		if t.Result == nil {
			b.WriteString(MsgNoResultYet)
			continue
		}
		fmt.Fprintf(&b, "🏆 #%d · %s (%s)",
			t.Result.Position,
			tournament.FormatCurrency(t.Result.Payout),
			tournament.FormatSignedCurrency(t.Result.Profit),
		)
	}
	c.send(b.String(), MessageOptions{Markdown: true})
}

// --- Venue and settings ---

func (c *conversation) currentVenue() (string, error) {
	var v string
	err := c.external(c.ctx, "get current venue", func(ctx context.Context) error {
		var err error
		v, err = c.venues.GetCurrentVenue(ctx, c.update.UserID)
		return err
	})
	return strings.TrimSpace(v), err
}

func (c *conversation) showVenue() {
	v, err := c.currentVenue()
	if err != nil {
		c.replyFailure(err, "loading your venue", false)
		return
	}
	if v == "" {
		c.reply(MsgVenueNotSet)
		return
	}
	c.reply(MsgVenueCurrent, escapeMarkdown(v))
}

func (c *conversation) setVenue(arg string) {
	if arg == "" {
		c.reply(MsgSetVenueUsage)
		return
	}
	value := arg
	if arg == clearVenueArg {
		value = ""
	}

	err := c.external(c.ctx, "set current venue", func(ctx context.Context) error {
		return c.venues.SetCurrentVenue(ctx, c.update.UserID, value)
	})
	if err != nil {
		c.replyFailure(err, "saving your venue", false)
		return
	}

	log.Info().Int64("userId", c.update.UserID).Str("venue", value).Msg("current venue updated")
	if value == "" {
		c.reply(MsgVenueCleared)
		return
	}
	c.reply(MsgVenueUpdated, escapeMarkdown(value))
}

func (c *conversation) showSettings() {
	v, err := c.currentVenue()
	if err != nil {
		c.replyFailure(err, "loading your settings", false)
		return
	}
	if v == "" {
		v = MsgNotSet
	}
	tickets := MsgDisabled
	if c.TicketsEnabled() {
		tickets = MsgEnabled
	}
	c.reply(MsgSettings, escapeMarkdown(v), tickets)
}

// flowDescription names a flow in user-facing text.
func flowDescription(f session.Flow) string {
	switch f {
	case session.FlowRegisteringTournament:
		return "registering a tournament"
	case session.FlowAddingResult:
		return "adding a result"
	case session.FlowEditingTournamentDraft:
		return "editing a ticket"
	default:
		return "something"
	}
}
