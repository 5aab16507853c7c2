package service

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	chainService "option_chain/internal/modules/chain/service"
	"option_chain/internal/modules/config"
	healthService "option_chain/internal/modules/health/service"
)

// Sender: всё, что нужно от BotAPI для ответа.
type Sender interface {
	Send(c tgbot.Chattable) (tgbot.Message, error)
}

// Telegram — чат-поверхность цепочки. Без токена работает только как
// логирующий notifier.
type Telegram struct {
	bot    *tgbot.BotAPI
	sender Sender
	log    *zap.Logger
	chatID int64

	chain *chainService.Service
	state *healthService.State
}

func NewTelegram(log *zap.Logger, cfg *config.Config, chain *chainService.Service, state *healthService.State) (*Telegram, error) {
	t := &Telegram{
		log:    log,
		chatID: cfg.Telegram.ChatID,
		chain:  chain,
		state:  state,
	}
	if !cfg.TelegramEnabled() {
		log.Info("[TG] token or chat id not set, bot disabled")
		return t, nil
	}

	b, err := tgbot.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	t.bot = b
	t.sender = b
	return t, nil
}

// NewWithSender собирает бота поверх произвольного Sender (тесты, прокси).
func NewWithSender(log *zap.Logger, chatID int64, sender Sender, chain *chainService.Service, state *healthService.State) *Telegram {
	return &Telegram{log: log, chatID: chatID, sender: sender, chain: chain, state: state}
}

func (t *Telegram) Enabled() bool { return t.sender != nil }

func (t *Telegram) Send(_ context.Context, chatID int64, msg string) (tgbot.Message, error) {
	return t.sender.Send(tgbot.NewMessage(chatID, msg))
}

func (t *Telegram) SendMessage(_ context.Context, message tgbot.MessageConfig) (tgbot.Message, error) {
	return t.sender.Send(message)
}

// SendService — служебное сообщение в настроенный чат; без бота уходит в лог.
func (t *Telegram) SendService(ctx context.Context, format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	if !t.Enabled() {
		t.log.Info("[TG] service: " + text)
		return
	}
	if _, err := t.Send(ctx, t.chatID, text); err != nil {
		t.log.Warn("[TG] send service message", zap.Error(err))
	}
}

// Start читает апдейты в фоне до Stop.
func (t *Telegram) Start(ctx context.Context) {
	if t.bot == nil {
		return
	}
	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for update := range updates {
			t.handleUpdate(ctx, update)
		}
	}()
	t.log.Info("[TG] bot started", zap.String("user", t.bot.Self.UserName))
}

func (t *Telegram) Stop() {
	if t.bot != nil {
		t.bot.StopReceivingUpdates()
	}
}
