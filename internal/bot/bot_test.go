package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashflowbot/internal/conversation"
	"cashflowbot/internal/render"
)

type fakeAPI struct {
	mu        sync.Mutex
	sent      []tgbotapi.Chattable
	requested []tgbotapi.Chattable
	sendErrs  []error
	updates   chan tgbotapi.Update
	stopped   bool
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	if len(f.sendErrs) > 0 {
		err := f.sendErrs[0]
		f.sendErrs = f.sendErrs[1:]
		return tgbotapi.Message{}, err
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = append(f.requested, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.stopped = true
}

type stubHandler struct {
	got   []conversation.Update
	reply conversation.Reply
}

func (s *stubHandler) Handle(_ context.Context, u conversation.Update) conversation.Reply {
	s.got = append(s.got, u)
	return s.reply
}

func newTestBot(api *fakeAPI, reply conversation.Reply) (*Bot, *stubHandler) {
	h := &stubHandler{reply: reply}
	return New(api, h, slog.New(slog.NewTextHandler(io.Discard, nil))), h
}

func message(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: 42, FirstName: "Lan"},
		Chat:      &tgbotapi.Chat{ID: 42},
		Text:      text,
	}}
}

func press(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: 42},
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: 42}},
		Data:    data,
	}}
}

func TestMessageSendsMarkdownWithKeyboard(t *testing.T) {
	api := &fakeAPI{}
	b, h := newTestBot(api, conversation.Reply{Text: "hi", Keyboard: render.BackToMain()})

	b.process(context.Background(), message("/start"))

	require.Len(t, h.got, 1)
	assert.Equal(t, int64(42), h.got[0].UserID)
	assert.Equal(t, "Lan", h.got[0].FirstName)
	require.Len(t, api.sent, 1)
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, "menu_main", *kb.InlineKeyboard[0][0].CallbackData)
}

func TestCallbackEditsMessage(t *testing.T) {
	api := &fakeAPI{}
	b, h := newTestBot(api, conversation.Reply{Text: "menu", Keyboard: render.MainMenu()})

	b.process(context.Background(), press("menu_main"))

	require.Len(t, h.got, 1)
	assert.Equal(t, "menu_main", h.got[0].Data)
	require.Len(t, api.requested, 1)
	require.Len(t, api.sent, 1)
	edit, ok := api.sent[0].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, 7, edit.MessageID)
	assert.Equal(t, "menu", edit.Text)
}

func TestDeniedCallbackOnlyAlerts(t *testing.T) {
	api := &fakeAPI{}
	b, _ := newTestBot(api, conversation.Reply{Text: "denied", Alert: true})

	b.process(context.Background(), press("menu_main"))

	assert.Empty(t, api.sent)
	require.Len(t, api.requested, 1)
	cb, ok := api.requested[0].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.True(t, cb.ShowAlert)
	assert.Equal(t, "denied", cb.Text)
}

func TestNotModifiedEditIsIgnored(t *testing.T) {
	api := &fakeAPI{sendErrs: []error{errors.New("Bad Request: message is not modified")}}
	b, _ := newTestBot(api, conversation.Reply{Text: "menu"})

	b.process(context.Background(), press("menu_main"))
	assert.Len(t, api.sent, 1)
}

func TestFailedEditFallsBackToNewMessage(t *testing.T) {
	api := &fakeAPI{sendErrs: []error{errors.New("Bad Request: message to edit not found")}}
	b, _ := newTestBot(api, conversation.Reply{Text: "menu"})

	b.process(context.Background(), press("menu_main"))
	require.Len(t, api.sent, 2)
	_, ok := api.sent[1].(tgbotapi.MessageConfig)
	assert.True(t, ok)
}

func TestEmptyReplyBecomesGenericError(t *testing.T) {
	api := &fakeAPI{}
	b, _ := newTestBot(api, conversation.Reply{})

	b.process(context.Background(), message("hello"))
	msg := api.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, render.GenericError, msg.Text)
}

func TestRunStopsOnCancel(t *testing.T) {
	api := &fakeAPI{updates: make(chan tgbotapi.Update, 1)}
	b, h := newTestBot(api, conversation.Reply{Text: "ok"})
	api.updates <- message("/start")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	require.Eventually(t, func() bool { return api.sentCount() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, api.stopped)
	assert.Len(t, h.got, 1)

	_, ok := api.requested[0].(tgbotapi.DeleteWebhookConfig)
	assert.True(t, ok)
}
