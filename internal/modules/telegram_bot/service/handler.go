package service

import (
	"context"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	chainService "option_chain/internal/modules/chain/service"
)

const helpText = "Команды:\n" +
	"/chain — текущая таблица\n" +
	"/formula <выражение> — задать формулу (без аргумента: показать)\n" +
	"/status — состояние фида\n" +
	"/resync — очистить данные и ждать полный снапшот"

func (t *Telegram) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return
	}
	chatID := msg.Chat.ID
	if t.chatID != 0 && chatID != t.chatID {
		t.log.Warn("[TG] command from unknown chat", zap.Int64("chat_id", chatID))
		return
	}

	reply := t.Handle(ctx, msg.Command(), msg.CommandArguments())

	out := tgbotapi.NewMessage(chatID, reply.Text)
	if reply.Pre {
		out.Text = "<pre>" + html.EscapeString(reply.Text) + "</pre>"
		out.ParseMode = tgbotapi.ModeHTML
	}
	if _, err := t.SendMessage(ctx, out); err != nil {
		t.log.Error("[TG] reply", zap.String("command", msg.Command()), zap.Error(err))
	}
}

// Reply — ответ на команду; Pre — моноширинный блок.
type Reply struct {
	Text string
	Pre  bool
}

// Handle выполняет команду и возвращает ответ.
func (t *Telegram) Handle(ctx context.Context, command, args string) Reply {
	switch command {
	case "chain":
		return Reply{Text: truncate(chainService.Table(t.chain.CurrentView(ctx)), maxMessageLen), Pre: true}

	case "formula":
		expr := strings.TrimSpace(args)
		if expr == "" {
			return Reply{Text: "Формула: " + t.chain.Formula()}
		}
		t.chain.SetFormula(expr)
		return Reply{Text: formatFormulaSet(expr, t.chain.CurrentView(ctx))}

	case "status":
		return Reply{Text: formatStatus(statusOf(t.chain, t.state))}

	case "resync":
		t.chain.Reset()
		return Reply{Text: "🔄 Данные очищены, ждём снапшот"}

	default:
		return Reply{Text: helpText}
	}
}
