package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/pokerlog/telegram-poker-bot/internal/ocr"
	"github.com/pokerlog/telegram-poker-bot/internal/session"
	"github.com/pokerlog/telegram-poker-bot/internal/tournament"
	"github.com/pokerlog/telegram-poker-bot/internal/venue"
	"github.com/rs/zerolog/log"
)

var ticketButtons = [][]Button{{
	{Text: BtnConfirm, Data: tagConfirmTournament},
	{Text: BtnEdit, Data: tagEditTournament},
	{Text: BtnCancel, Data: tagCancelTournament},
}}

// handleTicketImage recognizes a ticket photo and shows the result for
// confirmation.
func (c *conversation) handleTicketImage() {
	if c.sess.ActiveFlow != session.FlowNone {
		c.reply(MsgFinishFlowFirst, flowDescription(c.sess.ActiveFlow))
		return
	}
	if c.update.Kind == KindDocument && !strings.HasPrefix(c.update.MimeType, "image/") {
		c.reply(MsgTicketNotImage)
		return
	}
	if c.tickets == nil {
		c.reply(MsgTicketUnavailable)
		return
	}

	c.reply(MsgTicketReading)

	var url string
	err := c.external(c.ctx, "resolve media link", func(ctx context.Context) error {
		var err error
		url, err = c.delivery.ResolveMediaLink(ctx, c.update.FileID)
		return err
	})
	if err != nil {
		c.replyFailure(err, "downloading the ticket", false)
		return
	}

	var res *ocr.Result
	err = c.external(c.ctx, "extract ticket data", func(ctx context.Context) error {
		var err error
		res, err = c.tickets.ExtractTicketData(ctx, url)
		return err
	})
	if err != nil {
		c.replyFailure(err, "reading the ticket", false)
		return
	}
	if !res.Success || res.Data == nil {
		log.Info().Int64("userId", c.update.UserID).Str("reason", res.Error).Msg("ticket not recognized")
		if res.Error != "" {
			c.reply(MsgTicketFailed, escapeMarkdown(res.Error))
		} else {
			c.reply(MsgTicketFailedNoInfo)
		}
		return
	}

	draft := res.Data.Draft()
	// The preview shows the venue that would be used right now. It is
	// resolved again on confirm since the preference may change meanwhile.
	resolution, err := c.resolveVenue(draft.Venue)
	if err != nil {
		log.Warn().Err(err).Int64("userId", c.update.UserID).Msg("failed to resolve venue for preview")
		resolution = venue.Resolution{Venue: venue.Normalize(draft.Venue)}
	}

	if old := c.sess.OCRDraft; old != nil && old.PreviewID != 0 {
		c.edit(old.PreviewID, MsgTicketCancelled)
	}

	previewID := c.replyWithButtons(ticketButtons, "%s", renderTicketPreview(draft, resolution, res.Confidence))
	c.sess.OCRDraft = &session.OCRDraft{
		Draft:      draft,
		Confidence: res.Confidence,
		PreviewID:  previewID,
	}
	log.Info().
		Int64("userId", c.update.UserID).
		Float64("confidence", res.Confidence).
		Msg("ticket recognized")
}

func (c *conversation) resolveVenue(recognized string) (venue.Resolution, error) {
	var res venue.Resolution
	err := c.external(c.ctx, "resolve venue", func(ctx context.Context) error {
		var err error
		res, err = c.resolver.Resolve(ctx, c.update.UserID, recognized)
		return err
	})
	return res, err
}

func renderTicketPreview(d tournament.Draft, res venue.Resolution, confidence float64) string {
	name := "—"
	if strings.TrimSpace(d.Name) != "" {
		name = escapeMarkdown(d.Name)
	}
	buyIn := "—"
	if d.BuyIn > 0 {
		buyIn = tournament.FormatCurrency(d.BuyIn)
	}
	typ := d.Type
	if typ == "" {
		typ = tournament.TypeFreezeout
	}

	var extra strings.Builder
	if d.Structure != "" {
		fmt.Fprintf(&extra, "\nStructure: %s", escapeMarkdown(d.Structure))
	}
	if d.Participants > 0 {
		fmt.Fprintf(&extra, "\nParticipants: %d", d.Participants)
	}
	if d.PrizePool > 0 {
		fmt.Fprintf(&extra, "\nPrize pool: %s", tournament.FormatCurrency(d.PrizePool))
	}
	if d.StartingStack > 0 {
		fmt.Fprintf(&extra, "\nStarting stack: %d", d.StartingStack)
	}
	if d.BlindLevels != "" {
		fmt.Fprintf(&extra, "\nBlind levels: %s", escapeMarkdown(d.BlindLevels))
	}

	return formatReplyText(MsgTicketPreview,
		name,
		tournament.FormatDate(d.Date),
		buyIn,
		escapeMarkdown(res.Venue+venue.Annotation(res, d.Venue)),
		typ,
		extra.String(),
		tournament.FormatPercent(confidence*100),
	)
}

func (c *conversation) confirmTicket() {
	c.acknowledge("")
	pending := c.sess.OCRDraft
	if pending == nil {
		c.reply(MsgNoTicketDraft)
		return
	}
	if c.sess.ActiveFlow != session.FlowNone {
		c.reply(MsgFinishFlowFirst, flowDescription(c.sess.ActiveFlow))
		return
	}
	c.commitDraft(pending.Draft, pending.PreviewID, MsgTicketInvalid)
}

func (c *conversation) cancelTicket() {
	c.acknowledge("")
	pending := c.sess.OCRDraft
	if pending == nil {
		c.reply(MsgNoTicketDraft)
		return
	}
	c.sess.OCRDraft = nil
	c.edit(pending.PreviewID, MsgTicketCancelled)
}

func (c *conversation) editTicket() {
	c.acknowledge("")
	pending := c.sess.OCRDraft
	if pending == nil {
		c.reply(MsgNoTicketDraft)
		return
	}

	c.sess.Enter(session.FlowEditingTournamentDraft)
	draft := pending.Draft
	c.sess.DraftTournament = &draft
	if pending.PreviewID != 0 {
		c.edit(pending.PreviewID, MsgTicketEditing)
		pending.PreviewID = 0
	}
	c.reply(MsgTicketEditPrompt)
}

func (c *conversation) handleDraftEditInput(text string) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "done":
		c.finishDraftEdit()
		return
	case "cancel":
		c.sess.Reset()
		c.reply(MsgDraftDiscarded)
		return
	}

	if c.sess.DraftTournament == nil {
		c.sess.ClearFlow()
		c.reply(MsgNoTicketDraft)
		return
	}

	edit, err := tournament.ParseFieldEdit(text)
	if err != nil {
		c.reply(MsgEditInvalid, escapeMarkdown(err.Error()))
		return
	}
	// Apply leaves the draft untouched when the value is invalid.
	if err := edit.Apply(c.sess.DraftTournament); err != nil {
		c.reply(MsgEditInvalid, escapeMarkdown(err.Error()))
		return
	}

	c.reply(MsgEditApplied, edit.Field.String(), escapeMarkdown(fieldValue(*c.sess.DraftTournament, edit.Field)))

	if edit.Field == tournament.FieldVenue {
		stored, err := c.currentVenue()
		if err != nil {
			log.Warn().Err(err).Int64("userId", c.update.UserID).Msg("failed to check current venue")
			return
		}
		if venue.Decide(stored, edit.Value).Overridden {
			c.reply(MsgEditVenueOverride, escapeMarkdown(stored))
		}
	}
}

func fieldValue(d tournament.Draft, f tournament.Field) string {
	switch f {
	case tournament.FieldName:
		return d.Name
	case tournament.FieldDate:
		return tournament.FormatDate(d.Date)
	case tournament.FieldBuyIn:
		return tournament.FormatCurrency(d.BuyIn)
	case tournament.FieldVenue:
		return d.Venue
	case tournament.FieldType:
		return string(d.Type)
	default:
		return ""
	}
}

func (c *conversation) finishDraftEdit() {
	if c.sess.DraftTournament == nil {
		c.sess.ClearFlow()
		c.reply(MsgNoTicketDraft)
		return
	}
	c.commitDraft(*c.sess.DraftTournament, 0, MsgDraftIncomplete)
}

// commitDraft resolves the venue again, validates the draft and creates the
// tournament. An invalid draft is kept for fixing. Once creation has been
// attempted all drafts are dropped, whatever the outcome. The outcome
// replaces the preview message when previewID is set.
func (c *conversation) commitDraft(d tournament.Draft, previewID int, invalidMsg string) {
	resolution, err := c.resolveVenue(d.Venue)
	if err != nil {
		c.replyFailure(err, "checking your venue", false)
		return
	}

	final := d.WithDefaults()
	final.Venue = resolution.Venue
	if err := final.Validate(); err != nil {
		c.reply(invalidMsg, escapeMarkdown(err.Error()))
		return
	}

	var created *tournament.Tournament
	err = c.external(c.ctx, "create tournament", func(ctx context.Context) error {
		var err error
		created, err = c.tournaments.CreateTournament(ctx, c.update.UserID, final)
		return err
	})
	c.sess.Reset()
	if err != nil {
		if previewID != 0 {
			c.edit(previewID, MsgTicketCancelled)
		}
		c.replyFailure(err, "saving the tournament", true)
		return
	}

	log.Info().
		Int64("userId", c.update.UserID).
		Str("tournamentId", created.ID).
		Bool("venueOverridden", resolution.Overridden).
		Msg("ticket tournament created")

	text := formatReplyText(MsgTicketConfirmed,
		escapeMarkdown(created.Name),
		tournament.FormatDate(created.Date),
		tournament.FormatCurrency(created.BuyIn),
		escapeMarkdown(created.Venue+venue.Annotation(resolution, d.Venue)),
	)
	if previewID != 0 {
		c.edit(previewID, "%s", text)
	} else {
		c.send(text, MessageOptions{Markdown: true})
	}
}
