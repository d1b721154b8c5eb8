package bot

import (
	"fmt"
	"strings"

	"github.com/lithammer/dedent"
)

func formatReplyText(text string, a ...any) string {
	if len(a) == 0 {
		return strings.TrimSpace(dedent.Dedent(text))
	}
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(text)), a...)
}

// markdownEscaper escapes the characters that start an entity in Telegram's
// legacy Markdown mode, so user-typed names and venues render literally.
var markdownEscaper = strings.NewReplacer(
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
)

func escapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}
