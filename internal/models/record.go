package models

import (
	"github.com/bytedance/sonic"
)

// IndexStrike — strike_price у записи индекса (не опцион), в строки не попадает.
const IndexStrike float64 = -1

type OptionType string

const (
	OptionCall OptionType = "CE"
	OptionPut  OptionType = "PE"
)

// Стандартные поля котировки.
const (
	FieldLTP    = "ltp"
	FieldOI     = "oi"
	FieldVolume = "volume"

	FieldStrikePrice = "strike_price"
)

// Record — последняя известная запись по инструменту (одна нога или индекс).
// Quote хранит все числовые поля апдейта, кроме strike_price; отсутствующее поле
// отсутствует и в Quote.
type Record struct {
	Symbol      string
	StrikePrice float64
	OptionType  OptionType
	Quote       map[string]float64
}

// Field возвращает значение поля котировки и признак его наличия.
func (r Record) Field(name string) (float64, bool) {
	v, ok := r.Quote[name]
	return v, ok
}

func (r Record) IsIndex() bool { return r.StrikePrice == IndexStrike }

// Clone копирует запись вместе с Quote.
func (r Record) Clone() Record {
	out := r
	if r.Quote != nil {
		out.Quote = make(map[string]float64, len(r.Quote))
		for k, v := range r.Quote {
			out.Quote[k] = v
		}
	}
	return out
}

func (r *Record) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := sonic.Unmarshal(b, &raw); err != nil {
		return err
	}

	*r = Record{StrikePrice: IndexStrike, Quote: make(map[string]float64, len(raw))}
	for k, v := range raw {
		switch k {
		case "symbol":
			if s, ok := v.(string); ok {
				r.Symbol = s
			}
		case "option_type":
			if s, ok := v.(string); ok {
				r.OptionType = OptionType(s)
			}
		case FieldStrikePrice:
			if f, ok := v.(float64); ok {
				r.StrikePrice = f
			}
		default:
			if f, ok := v.(float64); ok {
				r.Quote[k] = f
			}
		}
	}
	return nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Quote)+3)
	for k, v := range r.Quote {
		out[k] = v
	}
	out["symbol"] = r.Symbol
	out[FieldStrikePrice] = r.StrikePrice
	if r.OptionType != "" {
		out["option_type"] = r.OptionType
	}
	return sonic.Marshal(out)
}

// Entry — запись в сторе вместе с порядковым номером прихода.
type Entry struct {
	Record
	Seq uint64
}

// Update — dirty-апдейт: только изменившиеся записи.
type Update struct {
	Calls []Record `json:"CE"`
	Puts  []Record `json:"PE"`
}

func (u Update) Len() int { return len(u.Calls) + len(u.Puts) }
