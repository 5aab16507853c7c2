package service

import (
	"strconv"

	"option_chain/internal/formula"
	"option_chain/internal/models"
	"option_chain/internal/modules/config"
)

const (
	waitingMessage      = "Waiting for data... Ensure you have logged in via the backend."
	disconnectedMessage = "Disconnected from feed. Waiting for data... Ensure you have logged in via the backend."
)

type Assembler struct {
	loginURL string
}

func NewAssembler(cfg *config.Config) *Assembler {
	return &Assembler{loginURL: cfg.Feed.LoginURL}
}

// Assemble вычисляет формулу по каждой строке и отмечает минимум.
// Ошибка компиляции формулы даёт Error во всех строках, но не ошибку сборки.
func (a *Assembler) Assemble(rows []models.Row, formulaText string, connected bool) models.View {
	view := models.View{
		Formula:   formulaText,
		Connected: connected,
		Rows:      make([]models.EvaluatedRow, 0, len(rows)),
	}

	prog, compileErr := formula.Compile(formulaText)

	var minVal float64
	hasMin := false
	for _, row := range rows {
		var res formula.Result
		if compileErr != nil {
			res = formula.Result{Status: formula.StatusError, Err: compileErr}
		} else {
			res = prog.Run(Bindings(row))
		}

		er := evaluated(row, res)
		if er.Value != nil && (!hasMin || *er.Value < minVal) {
			minVal = *er.Value
			hasMin = true
		}
		view.Rows = append(view.Rows, er)
	}

	if hasMin {
		view.Min = &minVal
		for i := range view.Rows {
			if v := view.Rows[i].Value; v != nil && *v == minVal {
				view.Rows[i].IsMin = true
			}
		}
	}

	if len(view.Rows) == 0 {
		view.Empty = a.EmptyState(connected)
	}
	return view
}

// EmptyState — что показать вместо таблицы, пока нет ни одной строки.
func (a *Assembler) EmptyState(connected bool) *models.EmptyState {
	msg := waitingMessage
	if !connected {
		msg = disconnectedMessage
	}
	return &models.EmptyState{Message: msg, LoginURL: a.loginURL}
}

// Bindings: входы формулы для строки; отсутствующая нога заменяется нулями.
func Bindings(row models.Row) formula.Bindings {
	b := formula.Bindings{
		CE:     formula.Placeholder(),
		PE:     formula.Placeholder(),
		Strike: row.Strike,
	}
	if row.CE != nil {
		b.CE = legOf(row.CE.Record)
	}
	if row.PE != nil {
		b.PE = legOf(row.PE.Record)
	}
	return b
}

// legOf: Quote плюс strike_price, как в исходной записи.
func legOf(r models.Record) formula.Leg {
	leg := make(formula.Leg, len(r.Quote)+1)
	for k, v := range r.Quote {
		leg[k] = v
	}
	leg[models.FieldStrikePrice] = r.StrikePrice
	return leg
}

func evaluated(row models.Row, res formula.Result) models.EvaluatedRow {
	er := models.EvaluatedRow{Row: row}
	switch res.Status {
	case formula.StatusOK:
		v := res.Value
		if v == 0 {
			v = 0 // -0 -> 0
		}
		er.Value = &v
		er.Display = FormatValue(v)
		er.Status = models.ResultOK
	case formula.StatusNoValue:
		er.Display = models.DisplayNoValue
		er.Status = models.ResultNoValue
	default:
		er.Display = models.DisplayError
		er.Status = models.ResultError
	}
	return er
}

// два знака после запятой
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatNumber печатает число как есть, без лишних нулей (страйк, OI, объём).
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
