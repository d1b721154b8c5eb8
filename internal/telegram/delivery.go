// Package telegram connects the conversation engine to the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pokerlog/telegram-poker-bot/internal/bot"
	"github.com/rs/zerolog/log"
)

// BotAPI defines the Telegram bot API operations used for delivery.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Delivery sends engine output through the Bot API. It implements
// bot.Delivery.
type Delivery struct {
	tg BotAPI
}

// NewDelivery creates a Delivery.
func NewDelivery(tg BotAPI) *Delivery {
	return &Delivery{tg: tg}
}

func (d *Delivery) SendMessage(ctx context.Context, chatID int64, text string, opts bot.MessageOptions) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if opts.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdown
	}
	if len(opts.Buttons) > 0 {
		msg.ReplyMarkup = inlineKeyboard(opts.Buttons)
	}

	sent, err := d.tg.Send(msg)
	if err != nil && opts.Markdown && isParseError(err) {
		// Resend as plain text rather than lose the message
		log.Warn().Err(err).Int64("chatId", chatID).Msg("markdown rejected, resending as plain text")
		msg.ParseMode = ""
		sent, err = d.tg.Send(msg)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to send message: %w", err)
	}
	return sent.MessageID, nil
}

func (d *Delivery) EditMessage(ctx context.Context, chatID int64, messageID int, text string, opts bot.MessageOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var edit tgbotapi.EditMessageTextConfig
	if len(opts.Buttons) > 0 {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, inlineKeyboard(opts.Buttons))
	} else {
		// Without reply markup Telegram removes the inline keyboard
		edit = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}
	if opts.Markdown {
		edit.ParseMode = tgbotapi.ModeMarkdown
	}

	if _, err := d.tg.Request(edit); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

func (d *Delivery) AcknowledgeButton(ctx context.Context, callbackID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := d.tg.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("failed to answer callback query: %w", err)
	}
	return nil
}

func (d *Delivery) ResolveMediaLink(ctx context.Context, fileID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	url, err := d.tg.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("failed to get file url: %w", err)
	}
	return url, nil
}

func inlineKeyboard(rows [][]bot.Button) tgbotapi.InlineKeyboardMarkup {
	keyboard := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		keyboard = append(keyboard, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

func isParseError(err error) bool {
	return strings.Contains(err.Error(), "can't parse entities")
}
