// Package lexer is a reference scanner that turns Z80 assembly source text
// into the token.Token stream the operand recognizer consumes. It exists so
// the recognizer and its tests have real input to work against; the
// tokenizer itself is an external collaborator per the specification, and
// pkg/operand never imports this package.
package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oisee/z80-operands/pkg/token"
)

// Lex scans one line of operand text (no label, no mnemonic — just the
// operand expression(s)) into a token stream.
func Lex(src string) ([]token.Token, error) {
	var toks []token.Token
	r := []rune(src)
	i := 0
	for i < len(r) {
		c := r[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			toks = append(toks, token.Token{Kind: token.PAR_OPEN, Source: "("})
			i++
		case c == ')':
			toks = append(toks, token.Token{Kind: token.PAR_CLOSE, Source: ")"})
			i++
		case c == '+':
			toks = append(toks, token.Token{Kind: token.OP_PLUS, Source: "+"})
			i++
		case c == '-':
			toks = append(toks, token.Token{Kind: token.OP_MINUS, Source: "-"})
			i++
		case c == '*':
			toks = append(toks, token.Token{Kind: token.OP_MUL, Source: "*"})
			i++
		case c == '/':
			toks = append(toks, token.Token{Kind: token.OP_DIV, Source: "/"})
			i++
		case c == '&':
			toks = append(toks, token.Token{Kind: token.OP_AND, Source: "&"})
			i++
		case c == '|':
			toks = append(toks, token.Token{Kind: token.OP_OR, Source: "|"})
			i++
		case c == '^':
			toks = append(toks, token.Token{Kind: token.OP_XOR, Source: "^"})
			i++
		case c == '~':
			toks = append(toks, token.Token{Kind: token.OP_NOT, Source: "~"})
			i++
		case c == ',':
			toks = append(toks, token.Token{Kind: token.COMMA, Source: ","})
			i++
		case c == '\'':
			tok, n, err := lexString(r, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i += n
		case c == '%':
			tok, n, err := lexRadix(r, i+1, 2, "%")
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i += n
		case c == '$':
			tok, n, err := lexRadix(r, i+1, 16, "$")
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i += n
		case isDigit(c):
			tok, n, err := lexNumber(r, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			i += n
		case isIdentStart(c):
			n := 1
			for i+n < len(r) && (isIdentPart(r[i+n]) || r[i+n] == '\'') {
				n++
			}
			toks = append(toks, token.Token{Kind: token.LETTERS, Source: string(r[i : i+n])})
			i += n
		default:
			return nil, fmt.Errorf("lexer: unexpected character %q at offset %d", c, i)
		}
	}
	return toks, nil
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }

func isIdentStart(c rune) bool {
	return c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isIdentPart(c rune) bool {
	return isIdentStart(c) || isDigit(c)
}

func lexString(r []rune, start int) (token.Token, int, error) {
	i := start + 1
	for i < len(r) && r[i] != '\'' {
		i++
	}
	if i >= len(r) {
		return token.Token{}, 0, fmt.Errorf("lexer: unterminated string literal at offset %d", start)
	}
	return token.Token{Kind: token.STRING, Source: string(r[start : i+1])}, i + 1 - start, nil
}

// lexRadix scans digits in the given base, prefixed by a marker character
// already consumed by the caller (e.g. "%" for binary, "$" for hex).
func lexRadix(r []rune, start, base int, marker string) (token.Token, int, error) {
	i := start
	for i < len(r) && isRadixDigit(r[i], base) {
		i++
	}
	if i == start {
		return token.Token{}, 0, fmt.Errorf("lexer: %q with no digits at offset %d", marker, start)
	}
	digits := string(r[start:i])
	v, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		return token.Token{}, 0, fmt.Errorf("lexer: invalid %s%s: %w", marker, digits, err)
	}
	kind := token.BINNUMBER
	if base == 16 {
		kind = token.HEXNUMBER
	}
	return token.Token{Kind: kind, Source: marker + digits, Value: int32(v)}, (i - start) + len(marker), nil
}

func isRadixDigit(c rune, base int) bool {
	switch base {
	case 2:
		return c == '0' || c == '1'
	case 16:
		return isDigit(c) || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f')
	}
	return false
}

// lexNumber scans a decimal, or a hex/octal/binary literal using the
// trailing-letter convention (1Ah, 17o/17q, 1010b).
//
// A pure decimal-digit run is tried for a trailing B/b suffix first: 'B' is
// itself a valid hex digit, so a greedy hex-range scan would otherwise
// swallow a binary literal's suffix into digits (e.g. "1010B" scanning as
// digits "1010B" with no suffix left to find), leaving nothing to parse as
// decimal. A B followed by another identifier character (as in "1BH") is a
// hex digit, not the binary suffix. Only once that binary case is ruled out
// does the hex-range scan run, for the "1AH"-style hex suffix.
func lexNumber(r []rune, start int) (token.Token, int, error) {
	j := start
	for j < len(r) && isDigit(r[j]) {
		j++
	}
	if j < len(r) && (r[j] == 'B' || r[j] == 'b') && allBinaryDigits(r[start:j]) &&
		(j+1 >= len(r) || !isIdentPart(r[j+1])) {
		digits := string(r[start:j])
		v, err := strconv.ParseInt(digits, 2, 64)
		if err != nil {
			return token.Token{}, 0, fmt.Errorf("lexer: invalid binary literal %s%c: %w", digits, r[j], err)
		}
		return token.Token{Kind: token.BINNUMBER, Source: digits + string(r[j]), Value: int32(v)}, j + 1 - start, nil
	}

	i := start
	for i < len(r) && (isDigit(r[i]) || (r[i] >= 'A' && r[i] <= 'F') || (r[i] >= 'a' && r[i] <= 'f')) {
		i++
	}
	digits := string(r[start:i])
	suffix := rune(0)
	if i < len(r) {
		suffix = r[i]
	}
	switch strings.ToUpper(string(suffix)) {
	case "H":
		v, err := strconv.ParseInt(digits, 16, 64)
		if err != nil {
			return token.Token{}, 0, fmt.Errorf("lexer: invalid hex literal %s%c: %w", digits, suffix, err)
		}
		return token.Token{Kind: token.HEXNUMBER, Source: digits + string(suffix), Value: int32(v)}, i + 1 - start, nil
	case "O", "Q":
		v, err := strconv.ParseInt(digits, 8, 64)
		if err != nil {
			return token.Token{}, 0, fmt.Errorf("lexer: invalid octal literal %s%c: %w", digits, suffix, err)
		}
		return token.Token{Kind: token.OCTNUMBER, Source: digits + string(suffix), Value: int32(v)}, i + 1 - start, nil
	case "B":
		v, err := strconv.ParseInt(digits, 2, 64)
		if err != nil {
			return token.Token{}, 0, fmt.Errorf("lexer: invalid binary literal %s%c: %w", digits, suffix, err)
		}
		return token.Token{Kind: token.BINNUMBER, Source: digits + string(suffix), Value: int32(v)}, i + 1 - start, nil
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return token.Token{}, 0, fmt.Errorf("lexer: invalid decimal literal %s: %w", digits, err)
	}
	return token.Token{Kind: token.DECNUMBER, Source: digits, Value: int32(v)}, i - start, nil
}

// allBinaryDigits reports whether every rune in s is '0' or '1'.
func allBinaryDigits(s []rune) bool {
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		if c != '0' && c != '1' {
			return false
		}
	}
	return true
}
