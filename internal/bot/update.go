package bot

import (
	"strings"
)

// Kind is the type of an incoming update.
type Kind int

const (
	KindText Kind = iota
	KindCommand
	KindPhoto
	KindDocument
	KindButton
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindPhoto:
		return "photo"
	case KindDocument:
		return "document"
	case KindButton:
		return "button"
	default:
		return "text"
	}
}

// Update is a transport-independent incoming event.
type Update struct {
	UserID int64
	ChatID int64
	Kind   Kind
	// Payload is the message text, the command line or the button data.
	Payload string

	MessageID  int    // message the button was attached to
	CallbackID string // set for buttons
	FileID     string // set for photos and documents
	MimeType   string // set for documents
}

// Command is a recognized slash command.
type Command int

const (
	CommandUnknown Command = iota
	CommandStart
	CommandHelp
	CommandRegister
	CommandResult
	CommandStats
	CommandTournaments
	CommandVenue
	CommandSetVenue
	CommandSettings
	CommandCancel
	CommandDone
)

var commandNames = map[string]Command{
	"/start":       CommandStart,
	"/help":        CommandHelp,
	"/register":    CommandRegister,
	"/result":      CommandResult,
	"/stats":       CommandStats,
	"/tournaments": CommandTournaments,
	"/venue":       CommandVenue,
	"/setvenue":    CommandSetVenue,
	"/settings":    CommandSettings,
	"/cancel":      CommandCancel,
	"/done":        CommandDone,
}

// ParseCommand resolves the command in text and returns the rest of the
// line as its argument. A "@botname" suffix on the command is ignored.
func ParseCommand(text string) (Command, string) {
	name, args, _ := strings.Cut(strings.TrimSpace(text), " ")
	if at := strings.IndexByte(name, '@'); at > 0 {
		name = name[:at]
	}
	cmd, ok := commandNames[strings.ToLower(name)]
	if !ok {
		return CommandUnknown, ""
	}
	return cmd, strings.TrimSpace(args)
}

// ActionKind is the tag of a button press.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionTournamentSelect
	ActionConfirmTournament
	ActionCancelTournament
	ActionEditTournament
)

const (
	tagTournamentSelect  = "tournament_select"
	tagConfirmTournament = "confirm_tournament"
	tagCancelTournament  = "cancel_tournament"
	tagEditTournament    = "edit_tournament"
)

var actionTags = map[string]ActionKind{
	tagTournamentSelect:  ActionTournamentSelect,
	tagConfirmTournament: ActionConfirmTournament,
	tagCancelTournament:  ActionCancelTournament,
	tagEditTournament:    ActionEditTournament,
}

// Action is parsed button data: "tag" or "tag:param[:param...]".
type Action struct {
	Kind   ActionKind
	Tag    string
	Params []string
}

// ParseAction splits button data on the first colon into a tag and its
// parameters.
func ParseAction(data string) Action {
	tag, rest, hasParams := strings.Cut(data, ":")
	a := Action{Kind: actionTags[tag], Tag: tag}
	if hasParams {
		a.Params = strings.Split(rest, ":")
	}
	return a
}

// Param returns the i-th parameter or "".
func (a Action) Param(i int) string {
	if i < len(a.Params) {
		return a.Params[i]
	}
	return ""
}

func selectTournamentData(id string) string {
	return tagTournamentSelect + ":" + id
}
