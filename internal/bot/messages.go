package bot

// =============================================================================
// General messages
// =============================================================================

const (
	MsgStart = `
		♠️ Hi! I keep track of your poker tournaments.

		/register - register a tournament by typing it
		/result - add a result to a tournament
		/stats - your statistics
		/tournaments - your latest tournaments
		/setvenue - set the venue you are playing at

		You can also send me a photo of a tournament ticket.`
	MsgHelp = `
		*Register a tournament*
		/register, then send one line:
		` + "`name | date | buy-in | venue`" + `
		Date formats: DD.MM.YYYY, DD/MM/YYYY or YYYY-MM-DD.

		*Add a result*
		/result, pick the tournament, then send ` + "`position | payout`" + `.

		*Ticket photo*
		Send a photo of the ticket and confirm, edit or cancel the recognized data.

		*Venue*
		/setvenue <name> sets your current venue. It is used for tickets you send while it is set. ` + "`/setvenue -`" + ` clears it.

		/cancel stops whatever you are doing.`
	MsgCancelled       = "Cancelled."
	MsgNothingToCancel = "Nothing to cancel. Send /help to see what I can do."
	MsgUnknownText     = "I don't understand. Send /help to see what I can do."
	MsgUnknownCommand  = "Unknown command. Send /help for the list of commands."
	MsgUnknownButton   = "This button is no longer active."
	MsgFinishFlowFirst = "You are in the middle of %s. Finish it or send /cancel first."
)

// =============================================================================
// Failure messages
// =============================================================================

const (
	MsgExternalFailure        = "⚠️ Something went wrong while %s. Please try again in a moment."
	MsgExternalFailureCleared = "⚠️ Something went wrong while %s, so I stopped here. Check /tournaments and start again if it is missing."
	MsgSessionUnavailable     = "⚠️ I can't load your conversation right now. Please try again in a moment."
)

// =============================================================================
// Registration messages
// =============================================================================

const (
	MsgRegisterPrompt = `
		Send the tournament in one line:
		` + "`name | date | buy-in | venue`" + `

		Example: ` + "`Sunday Special | 15.12.2024 | 500 | Aria Casino`" + `

		Send /cancel to stop.`
	MsgRegisterInvalid = `
		⚠️ %s

		Send the tournament as ` + "`name | date | buy-in | venue`" + ` or /cancel.`
	MsgTournamentCreated = `
		✅ Tournament saved: *%s*
		📅 %s
		💰 Buy-in: %s
		📍 %s

		Add the result later with /result.`
)

// =============================================================================
// Result messages
// =============================================================================

const (
	MsgNoPendingTournaments = "All your tournaments already have a result. Register one with /register or send a ticket photo."
	MsgSelectTournament     = "Which tournament do you want to add a result for?"
	MsgResultPrompt         = `
		*%s* (%s, buy-in %s)

		Send your result as ` + "`position | payout`" + `, e.g. ` + "`1 | 2500`" + `. Use payout 0 if you did not cash.

		Send /cancel to stop.`
	MsgResultInvalid = `
		⚠️ %s

		Send the result as ` + "`position | payout`" + `, e.g. ` + "`3 | 450`" + `, or /cancel.`
	MsgResultSaved = `
		✅ Result saved for *%s*
		🏆 Position: %d
		💵 Payout: %s
		📈 Profit: %s
		📊 ROI: %s`
	MsgTournamentGone = "That tournament no longer exists. Pick another one with /result."
)

// =============================================================================
// Statistics and listing messages
// =============================================================================

const (
	MsgNoTournaments = "You have no tournaments yet. Register one with /register or send a ticket photo."
	MsgStats         = `
		📊 *Your statistics*

		Tournaments: %d (%s)
		Buy-ins: %s
		Payouts: %s
		Profit: %s
		ROI: %s
		ITM: %s
		Wins: %d
		Best finish: %s`
	MsgTournamentsHeader = "🗂 *Your latest tournaments*"
	MsgNoResultYet       = "no result yet"
)

// =============================================================================
// Venue and settings messages
// =============================================================================

const (
	MsgVenueCurrent  = "📍 Your current venue: *%s*\n\nChange it with /setvenue <name> or clear it with `/setvenue -`."
	MsgVenueNotSet   = "You have no current venue. Set one with /setvenue <name>."
	MsgSetVenueUsage = "Usage: /setvenue <name>, e.g. `/setvenue Royal Casino`. Use `/setvenue -` to clear it."
	MsgVenueUpdated  = "✅ Current venue set to *%s*. Ticket photos will use it."
	MsgVenueCleared  = "✅ Current venue cleared."
	MsgSettings      = `
		⚙️ *Settings*

		Current venue: %s
		Ticket recognition: %s

		Registration: ` + "`name | date | buy-in | venue`" + `
		Result: ` + "`position | payout`" + `
		Separators: ` + "` | `, `|`, ` - `, ` – `, ` — `" + `
		Dates: DD.MM.YYYY, DD/MM/YYYY, YYYY-MM-DD`
	MsgEnabled  = "enabled"
	MsgDisabled = "disabled"
	MsgNotSet   = "not set"
)

// =============================================================================
// Ticket messages
// =============================================================================

const (
	MsgTicketReading      = "🔍 Reading the ticket..."
	MsgTicketUnavailable  = "Ticket recognition is not available. Register the tournament with /register."
	MsgTicketNotImage     = "Please send the ticket as a photo or an image file."
	MsgTicketFailed       = "😕 I could not read the ticket: %s\n\nTry a sharper photo or register it manually with /register."
	MsgTicketFailedNoInfo = "😕 I could not read the ticket. Try a sharper photo or register it manually with /register."
	MsgTicketPreview      = `
		🎟 *Recognized ticket*

		Name: %s
		Date: %s
		Buy-in: %s
		Venue: %s
		Type: %s%s

		Confidence: %s`
	MsgTicketConfirmed   = "✅ Tournament saved: *%s*\n📅 %s\n💰 Buy-in: %s\n📍 %s"
	MsgTicketCancelled   = "Ticket discarded."
	MsgTicketEditing     = "✏️ Editing this ticket."
	MsgTicketInvalid     = "⚠️ Can't save yet: %s\n\nPress Edit to fix the ticket or Cancel to discard it."
	MsgNoTicketDraft     = "There is no ticket waiting. Send a photo of a ticket first."
	MsgTicketEditPrompt  = `
		✏️ Send changes as ` + "`field:value`" + `, one per message.
		Fields: name, date, buyin, venue, type.
		Example: ` + "`buyin:500`" + `

		Send *done* to save or *cancel* to discard.`
	MsgEditApplied       = "✅ %s: %s"
	MsgEditInvalid       = "⚠️ %s\n\nNothing was changed. Send `field:value`, *done* or *cancel*."
	MsgEditVenueOverride = "Your current venue *%s* will be used instead. Clear it with `/setvenue -` to use this one."
	MsgDraftDiscarded    = "Draft discarded."
	MsgDraftIncomplete   = "⚠️ Can't save yet: %s\n\nSend the missing field as `field:value`, or *cancel*."

	BtnConfirm = "✅ Save"
	BtnEdit    = "✏️ Edit"
	BtnCancel  = "❌ Cancel"
)
