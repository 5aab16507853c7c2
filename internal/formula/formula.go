// Package formula вычисляет пользовательскую арифметическую формулу над строкой
// опционной цепочки. Кроме CE, PE и strike формуле ничего не доступно: ни функций,
// ни присваиваний, ни ввода-вывода.
package formula

import (
	"fmt"
	"math"
)

// Error — ошибка компиляции или вычисления; Pos — байтовое смещение в формуле.
type Error struct {
	Pos int
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("formula: col %d: %s", e.Pos+1, e.Msg)
}

func errorf(pos int, format string, args ...any) *Error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Program — скомпилированная формула. Без состояния, безопасна для параллельного Eval.
type Program struct {
	src  string
	root node
}

// Compile разбирает формулу. Пустая формула валидна и всегда даёт NaN.
func Compile(src string) (*Program, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &Program{src: src}
	if len(toks) == 1 {
		return p, nil
	}

	ps := &parser{toks: toks}
	root, err := ps.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := ps.peek(); t.kind != tokEOF {
		return nil, errorf(t.pos, "unexpected %s", describe(t))
	}
	p.root = root
	return p, nil
}

func (p *Program) String() string { return p.src }

// Eval возвращает числовое значение формулы; NaN/Inf не считаются ошибкой.
func (p *Program) Eval(b Bindings) (float64, error) {
	if p.root == nil {
		return math.NaN(), nil
	}
	v, err := p.root.eval(&b)
	if err != nil {
		return math.NaN(), err
	}
	return v.toNumber(), nil
}

type Status int

const (
	StatusOK Status = iota
	// StatusNoValue — результат не конечное число (NaN, ±Inf, в т.ч. деление на ноль).
	StatusNoValue
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoValue:
		return "no_value"
	default:
		return "error"
	}
}

type Result struct {
	Value  float64
	Status Status
	Err    error
}

// Classify превращает сырое значение в Result.
func Classify(v float64, err error) Result {
	if err != nil {
		return Result{Value: math.NaN(), Status: StatusError, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Result{Value: v, Status: StatusNoValue}
	}
	return Result{Value: v, Status: StatusOK}
}

// Run вычисляет программу без права паниковать наружу.
func (p *Program) Run(b Bindings) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Value: math.NaN(), Status: StatusError, Err: fmt.Errorf("formula: panic: %v", r)}
		}
	}()
	return Classify(p.Eval(b))
}

// Evaluate компилирует и вычисляет формулу за один вызов.
func Evaluate(src string, b Bindings) Result {
	p, err := Compile(src)
	if err != nil {
		return Result{Value: math.NaN(), Status: StatusError, Err: err}
	}
	return p.Run(b)
}
