package service

import (
	"option_chain/internal/models"
)

type LegDTO struct {
	Symbol      string             `json:"symbol"`
	StrikePrice float64            `json:"strike_price"`
	OptionType  string             `json:"option_type"`
	Quote       map[string]float64 `json:"quote"`
}

type RowDTO struct {
	Strike  float64  `json:"strike"`
	CE      *LegDTO  `json:"CE"`
	PE      *LegDTO  `json:"PE"`
	Value   *float64 `json:"value"`
	Display string   `json:"display"`
	Status  string   `json:"status"`
	IsMin   bool     `json:"is_min"`
}

type EmptyDTO struct {
	Message  string `json:"message"`
	LoginURL string `json:"login_url,omitempty"`
}

type ViewDTO struct {
	Formula   string    `json:"formula"`
	Connected bool      `json:"connected"`
	Min       *float64  `json:"min"`
	Rows      []RowDTO  `json:"rows"`
	Empty     *EmptyDTO `json:"empty,omitempty"`
}

type FormulaDTO struct {
	Formula string `json:"formula"`
}

func legDTO(e *models.Entry) *LegDTO {
	if e == nil {
		return nil
	}
	return &LegDTO{
		Symbol:      e.Symbol,
		StrikePrice: e.StrikePrice,
		OptionType:  string(e.OptionType),
		Quote:       e.Quote,
	}
}

// ToDTO переводит view в форму ответа API.
func ToDTO(v models.View) ViewDTO {
	out := ViewDTO{
		Formula:   v.Formula,
		Connected: v.Connected,
		Min:       v.Min,
		Rows:      make([]RowDTO, 0, len(v.Rows)),
	}
	if v.Empty != nil {
		out.Empty = &EmptyDTO{Message: v.Empty.Message, LoginURL: v.Empty.LoginURL}
	}
	for _, r := range v.Rows {
		out.Rows = append(out.Rows, RowDTO{
			Strike:  r.Strike,
			CE:      legDTO(r.CE),
			PE:      legDTO(r.PE),
			Value:   r.Value,
			Display: r.Display,
			Status:  string(r.Status),
			IsMin:   r.IsMin,
		})
	}
	return out
}
