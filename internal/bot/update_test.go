package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text string
		cmd  Command
		arg  string
	}{
		{"/start", CommandStart, ""},
		{"/register", CommandRegister, ""},
		{"/setvenue Royal Casino", CommandSetVenue, "Royal Casino"},
		{"/setvenue   ", CommandSetVenue, ""},
		{"/SetVenue -", CommandSetVenue, "-"},
		{"/stats@PokerLogBot", CommandStats, ""},
		{" /cancel ", CommandCancel, ""},
		{"/done", CommandDone, ""},
		{"/dance", CommandUnknown, ""},
		{"register", CommandUnknown, ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd, arg := ParseCommand(tt.text)
			assert.Equal(t, tt.cmd, cmd)
			assert.Equal(t, tt.arg, arg)
		})
	}
}

func TestParseAction(t *testing.T) {
	a := ParseAction("tournament_select:abc-123")
	assert.Equal(t, ActionTournamentSelect, a.Kind)
	assert.Equal(t, "abc-123", a.Param(0))
	assert.Equal(t, "", a.Param(1))

	a = ParseAction("confirm_tournament")
	assert.Equal(t, ActionConfirmTournament, a.Kind)
	assert.Empty(t, a.Params)

	a = ParseAction("tournament_select:a:b")
	assert.Equal(t, []string{"a", "b"}, a.Params)

	a = ParseAction("something_else:1")
	assert.Equal(t, ActionUnknown, a.Kind)
	assert.Equal(t, "something_else", a.Tag)

	assert.Equal(t, ActionUnknown, ParseAction("").Kind)
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `\*bold\* \_x\_ \`+"`"+`code\`+"`"+` \[link]`, escapeMarkdown("*bold* _x_ `code` [link]"))
}

func TestFormatReplyText(t *testing.T) {
	text := formatReplyText(`
		Hello %s
		  indented`, "there")
	assert.Equal(t, "Hello there\n  indented", text)
	assert.Equal(t, "100%", formatReplyText("100%"))
}

func TestWithResultsLabel(t *testing.T) {
	assert.Equal(t, "0 with results", withResultsLabel(0))
	assert.Equal(t, "1 with result", withResultsLabel(1))
	assert.Equal(t, "12 with results", withResultsLabel(12))
}
