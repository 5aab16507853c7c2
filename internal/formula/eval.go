package formula

import (
	"math"
)

const (
	BindCE     = "CE"
	BindPE     = "PE"
	BindStrike = "strike"
)

func isBinding(name string) bool {
	return name == BindCE || name == BindPE || name == BindStrike
}

// Leg — поля котировки одной ноги, доступные как CE.<field> / PE.<field>.
type Leg map[string]float64

// Placeholder подставляется вместо отсутствующей ноги.
func Placeholder() Leg {
	return Leg{"ltp": 0, "oi": 0, "volume": 0}
}

// Bindings: единственное, что видит формула.
type Bindings struct {
	CE     Leg
	PE     Leg
	Strike float64
}

type valueKind int

const (
	kindUndefined valueKind = iota
	kindNumber
	kindLeg
)

type value struct {
	kind valueKind
	num  float64
	leg  Leg
}

func number(f float64) value { return value{kind: kindNumber, num: f} }

// toNumber повторяет числовое приведение: нога и undefined дают NaN.
func (v value) toNumber() float64 {
	if v.kind == kindNumber {
		return v.num
	}
	return math.NaN()
}

type node interface {
	eval(b *Bindings) (value, error)
}

type numberNode struct{ v float64 }

func (n *numberNode) eval(*Bindings) (value, error) { return number(n.v), nil }

type identNode struct{ name string }

func (n *identNode) eval(b *Bindings) (value, error) {
	switch n.name {
	case BindCE:
		return value{kind: kindLeg, leg: b.CE}, nil
	case BindPE:
		return value{kind: kindLeg, leg: b.PE}, nil
	default:
		return number(b.Strike), nil
	}
}

type memberNode struct {
	object node
	field  string
	pos    int
}

func (n *memberNode) eval(b *Bindings) (value, error) {
	obj, err := n.object.eval(b)
	if err != nil {
		return value{}, err
	}
	switch obj.kind {
	case kindLeg:
		if f, ok := obj.leg[n.field]; ok {
			return number(f), nil
		}
		return value{kind: kindUndefined}, nil
	case kindNumber:
		return value{kind: kindUndefined}, nil
	}
	return value{}, errorf(n.pos, "cannot read %q of undefined", n.field)
}

type unaryNode struct {
	op      tokenKind
	operand node
}

func (n *unaryNode) eval(b *Bindings) (value, error) {
	v, err := n.operand.eval(b)
	if err != nil {
		return value{}, err
	}
	if n.op == tokMinus {
		return number(-v.toNumber()), nil
	}
	return number(v.toNumber()), nil
}

type binaryNode struct {
	op          tokenKind
	left, right node
}

func (n *binaryNode) eval(b *Bindings) (value, error) {
	l, err := n.left.eval(b)
	if err != nil {
		return value{}, err
	}
	r, err := n.right.eval(b)
	if err != nil {
		return value{}, err
	}
	x, y := l.toNumber(), r.toNumber()
	switch n.op {
	case tokPlus:
		return number(x + y), nil
	case tokMinus:
		return number(x - y), nil
	case tokStar:
		return number(x * y), nil
	case tokSlash:
		return number(x / y), nil
	case tokPercent:
		return number(math.Mod(x, y)), nil
	case tokPow:
		return number(pow(x, y)), nil
	}
	return value{}, errorf(0, "unknown operator %s", n.op)
}

// pow как math.Pow, но степень NaN и (±1) ** ±Inf дают NaN; x ** 0 остаётся 1.
func pow(x, y float64) float64 {
	if math.IsNaN(y) || (math.IsInf(y, 0) && math.Abs(x) == 1) {
		return math.NaN()
	}
	return math.Pow(x, y)
}
