package formula

import (
	"strconv"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPercent
	tokPow
	tokLParen
	tokRParen
	tokDot
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of formula"
	case tokNumber:
		return "number"
	case tokIdent:
		return "identifier"
	case tokPlus:
		return "'+'"
	case tokMinus:
		return "'-'"
	case tokStar:
		return "'*'"
	case tokSlash:
		return "'/'"
	case tokPercent:
		return "'%'"
	case tokPow:
		return "'**'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokDot:
		return "'.'"
	}
	return "token"
}

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

// lex разбивает формулу на токены целиком, до парсинга.
func lex(src string) ([]token, error) {
	var out []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			t, next, err := lexNumber(src, i)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
			i = next
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			out = append(out, token{kind: tokIdent, text: src[start:i], pos: start})
		default:
			kind, width := punct(src, i)
			if width == 0 {
				return nil, errorf(i, "unexpected character %q", c)
			}
			out = append(out, token{kind: kind, text: src[i : i+width], pos: i})
			i += width
		}
	}
	out = append(out, token{kind: tokEOF, pos: len(src)})
	return out, nil
}

func lexNumber(src string, start int) (token, int, error) {
	i := start
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j >= len(src) || !isDigit(src[j]) {
			return token{}, 0, errorf(i, "malformed exponent")
		}
		for j < len(src) && isDigit(src[j]) {
			j++
		}
		i = j
	}
	// 2x, 1.5abc: ошибка, неявного умножения нет
	if i < len(src) && isIdentStart(src[i]) {
		return token{}, 0, errorf(i, "identifier directly after number")
	}

	text := src[start:i]
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, 0, errorf(start, "bad number %q", text)
	}
	return token{kind: tokNumber, text: text, num: f, pos: start}, i, nil
}

func punct(src string, i int) (tokenKind, int) {
	switch src[i] {
	case '+':
		return tokPlus, 1
	case '-':
		return tokMinus, 1
	case '*':
		if i+1 < len(src) && src[i+1] == '*' {
			return tokPow, 2
		}
		return tokStar, 1
	case '/':
		return tokSlash, 1
	case '%':
		return tokPercent, 1
	case '(':
		return tokLParen, 1
	case ')':
		return tokRParen, 1
	case '.':
		return tokDot, 1
	}
	return tokEOF, 0
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }
