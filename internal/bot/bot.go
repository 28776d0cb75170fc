// Package bot connects the conversation engine to Telegram using long polling.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cashflowbot/internal/conversation"
	"cashflowbot/internal/render"
)

// API is the subset of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Handler interface {
	Handle(ctx context.Context, u conversation.Update) conversation.Reply
}

type Bot struct {
	api     API
	handler Handler
	logger  *slog.Logger
	timeout int
}

func New(api API, handler Handler, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		api:     api,
		handler: handler,
		logger:  logger.With(slog.String("component", "bot")),
		timeout: 60,
	}
}

// Connect authenticates the token and routes the library's own logging
// through logger.
func Connect(token string, logger *slog.Logger) (*tgbotapi.BotAPI, error) {
	if err := tgbotapi.SetLogger(logAdapter{logger: logger.With(slog.String("component", "telegram"))}); err != nil {
		return nil, err
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}
	logger.Info("telegram authorized", slog.String("username", api.Self.UserName))
	return api, nil
}

// Run polls for updates until ctx is cancelled. Updates queued while the bot
// was offline are discarded first. Updates are handled one at a time.
func (b *Bot) Run(ctx context.Context) error {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		b.logger.Warn("drop pending updates", slog.Any("error", err))
	}

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = b.timeout
	updates := b.api.GetUpdatesChan(cfg)
	b.logger.Info("polling started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("polling stopped")
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			b.process(ctx, upd)
		}
	}
}

func (b *Bot) process(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.CallbackQuery != nil:
		b.processCallback(ctx, upd.CallbackQuery)
	case upd.Message != nil:
		b.processMessage(ctx, upd.Message)
	}
}

func (b *Bot) processMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Text == "" {
		return
	}
	reply := b.handler.Handle(ctx, conversation.Update{
		UserID:    msg.From.ID,
		ChatID:    msg.Chat.ID,
		FirstName: msg.From.FirstName,
		Text:      msg.Text,
	})
	b.send(msg.Chat.ID, reply)
}

func (b *Bot) processCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if q.From == nil {
		return
	}
	u := conversation.Update{UserID: q.From.ID, FirstName: q.From.FirstName, Data: q.Data}
	if q.Message != nil {
		u.ChatID = q.Message.Chat.ID
	}
	reply := b.handler.Handle(ctx, u)

	if reply.Alert {
		if _, err := b.api.Request(tgbotapi.NewCallbackWithAlert(q.ID, reply.Text)); err != nil {
			b.logger.Error("answer callback", slog.Any("error", err))
		}
		return
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.logger.Warn("answer callback", slog.Any("error", err))
	}
	if q.Message == nil {
		return
	}
	b.edit(q.Message.Chat.ID, q.Message.MessageID, reply)
}

func (b *Bot) send(chatID int64, reply conversation.Reply) {
	msg := tgbotapi.NewMessage(chatID, replyText(reply))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if kb, ok := markup(reply.Keyboard); ok {
		msg.ReplyMarkup = kb
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("send message", slog.Int64("chat_id", chatID), slog.Any("error", err))
		// Unbalanced markdown in user text is the usual cause; retry as plain text.
		msg.ParseMode = ""
		if _, err := b.api.Send(msg); err != nil {
			b.logger.Error("send plain message", slog.Int64("chat_id", chatID), slog.Any("error", err))
		}
	}
}

func (b *Bot) edit(chatID int64, messageID int, reply conversation.Reply) {
	var cfg tgbotapi.EditMessageTextConfig
	if kb, ok := markup(reply.Keyboard); ok {
		cfg = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, replyText(reply), kb)
	} else {
		cfg = tgbotapi.NewEditMessageText(chatID, messageID, replyText(reply))
	}
	cfg.ParseMode = tgbotapi.ModeMarkdown

	_, err := b.api.Send(cfg)
	switch {
	case err == nil:
	case notModified(err):
	default:
		b.logger.Warn("edit message, sending a new one", slog.Int64("chat_id", chatID), slog.Any("error", err))
		b.send(chatID, reply)
	}
}

func replyText(r conversation.Reply) string {
	if strings.TrimSpace(r.Text) == "" {
		return render.GenericError
	}
	return r.Text
}

func notModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}

// markup converts a keyboard; ok is false for an empty keyboard.
func markup(kb render.Keyboard) (tgbotapi.InlineKeyboardMarkup, bool) {
	if len(kb) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, r := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
		for _, btn := range r {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

type logAdapter struct {
	logger *slog.Logger
}

func (l logAdapter) Println(v ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintln(v...)))
}

func (l logAdapter) Printf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...))
}
