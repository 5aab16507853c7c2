package models

// Row — пара CE/PE на одном страйке. Пересобирается на каждый рендер.
type Row struct {
	Strike float64
	CE     *Entry
	PE     *Entry
}

type ResultStatus string

const (
	ResultOK      ResultStatus = "ok"
	ResultNoValue ResultStatus = "no_value"
	ResultError   ResultStatus = "error"
)

const (
	DisplayNoValue = "-"
	DisplayError   = "Error"
)

type EvaluatedRow struct {
	Row
	Value   *float64
	Display string
	Status  ResultStatus
	IsMin   bool
}

type EmptyState struct {
	Message  string
	LoginURL string
}

// View — готовый к отрисовке набор строк.
type View struct {
	Formula   string
	Connected bool
	Rows      []EvaluatedRow
	Min       *float64
	Empty     *EmptyState
}
