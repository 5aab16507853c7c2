package service

import (
	"fmt"
	"strings"
	"time"

	"option_chain/internal/models"
	chainService "option_chain/internal/modules/chain/service"
	healthService "option_chain/internal/modules/health/service"
)

// лимит Telegram 4096 символов, оставляем запас под <pre>
const maxMessageLen = 4000

type status struct {
	Connected   bool
	Ready       bool
	Records     int
	LastMessage time.Time
	Uptime      time.Duration
	Formula     string
}

func statusOf(chain *chainService.Service, state *healthService.State) status {
	return status{
		Connected:   state.Connected(),
		Ready:       state.Ready(),
		Records:     chain.Store().Len(),
		LastMessage: state.LastMessage(),
		Uptime:      state.Uptime(),
		Formula:     chain.Formula(),
	}
}

func onOff(v bool) string {
	if v {
		return "✅"
	}
	return "❌"
}

func formatStatus(s status) string {
	last := "нет"
	if !s.LastMessage.IsZero() {
		last = s.LastMessage.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf(
		"📊 Статус\n"+
			"• Фид: %s\n"+
			"• Готов: %s\n"+
			"• Записей: %d\n"+
			"• Последний кадр: %s\n"+
			"• Аптайм: %s\n"+
			"• Формула: %s",
		onOff(s.Connected), onOff(s.Ready), s.Records, last,
		s.Uptime.Truncate(time.Second), s.Formula,
	)
}

func formatFormulaSet(expr string, view models.View) string {
	var errs int
	for _, r := range view.Rows {
		if r.Status == models.ResultError {
			errs++
		}
	}
	msg := "✅ Формула: " + expr
	if view.Min != nil {
		msg += "\nМинимум: " + chainService.FormatValue(*view.Min)
	}
	if errs > 0 && errs == len(view.Rows) {
		msg += "\n⚠️ Во всех строках Error"
	}
	return msg
}

// truncate режет по строкам, чтобы влезть в одно сообщение.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	var b strings.Builder
	for _, l := range strings.Split(s, "\n") {
		if b.Len()+len(l)+1 > limit-len("…") {
			break
		}
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString("…")
	return b.String()
}
