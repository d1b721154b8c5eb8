package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pokerlog/telegram-poker-bot/internal/bot"
	"github.com/rs/zerolog/log"
)

// Normalize converts a Telegram update into an engine update. The second
// result is false for updates the engine does not handle.
func Normalize(u tgbotapi.Update) (bot.Update, bool) {
	if q := u.CallbackQuery; q != nil {
		if q.From == nil {
			return bot.Update{}, false
		}
		out := bot.Update{
			UserID:     q.From.ID,
			ChatID:     q.From.ID,
			Kind:       bot.KindButton,
			Payload:    q.Data,
			CallbackID: q.ID,
		}
		if q.Message != nil {
			out.MessageID = q.Message.MessageID
			if q.Message.Chat != nil {
				out.ChatID = q.Message.Chat.ID
			}
		}
		return out, true
	}

	m := u.Message
	if m == nil || m.From == nil {
		return bot.Update{}, false
	}
	out := bot.Update{
		UserID:    m.From.ID,
		ChatID:    m.From.ID,
		MessageID: m.MessageID,
	}
	if m.Chat != nil {
		out.ChatID = m.Chat.ID
	}

	switch {
	case len(m.Photo) > 0:
		// Sizes are ordered from smallest to largest
		out.Kind = bot.KindPhoto
		out.FileID = m.Photo[len(m.Photo)-1].FileID
	case m.Document != nil:
		out.Kind = bot.KindDocument
		out.FileID = m.Document.FileID
		out.MimeType = m.Document.MimeType
	case m.IsCommand() || strings.HasPrefix(m.Text, "/"):
		out.Kind = bot.KindCommand
		out.Payload = m.Text
	case strings.TrimSpace(m.Text) != "":
		out.Kind = bot.KindText
		out.Payload = m.Text
	default:
		return bot.Update{}, false
	}
	return out, true
}

// UpdateSource delivers updates by long polling.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// UpdateHandler consumes normalized updates.
type UpdateHandler interface {
	HandleIncomingUpdate(ctx context.Context, u bot.Update)
}

// Run polls for updates and hands them to the handler until ctx is done.
// Updates are handed over one at a time so their order is kept.
func Run(ctx context.Context, source UpdateSource, handler UpdateHandler) error {
	// Updates already received are processed to completion after polling stops
	handlerCtx := context.WithoutCancel(ctx)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := source.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping bot update loop")
			source.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				log.Warn().Msg("updates channel closed")
				return nil
			}
			u, ok := Normalize(update)
			if !ok {
				log.Debug().Int("updateId", update.UpdateID).Msg("ignoring unsupported update")
				continue
			}
			log.Info().
				Int64("userId", u.UserID).
				Str("kind", u.Kind.String()).
				Msg("got update")
			handler.HandleIncomingUpdate(handlerCtx, u)
		}
	}
}

// RegisterCommands sets the bot's command menu in Telegram.
// This should be called once at startup.
func RegisterCommands(tg BotAPI) {
	commands := make([]tgbotapi.BotCommand, len(bot.Commands))
	for i, cmd := range bot.Commands {
		commands[i] = tgbotapi.BotCommand{
			Command:     cmd.Name,
			Description: cmd.Description,
		}
	}

	config := tgbotapi.NewSetMyCommands(commands...)
	if _, err := tg.Request(config); err != nil {
		log.Error().Err(err).Msg("failed to set bot commands")
	} else {
		log.Info().Int("count", len(commands)).Msg("registered bot commands")
	}
}
