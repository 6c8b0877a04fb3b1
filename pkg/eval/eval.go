// Package eval is a reference implementation of the Evaluator contract the
// operand recognizer consumes: fold a token range into a value, reporting
// how far it read and whether the result depends on an unresolved symbol.
//
// The real assembler's expression evaluator is an external collaborator
// (spec §6.2); this package gives the recognizer and its tests something
// real to call so the core can be exercised end-to-end. pkg/operand depends
// only on the Evaluate/SetDefaultConversion contract below, never on this
// package's internals.
package eval

import (
	"strconv"

	"github.com/oisee/z80-operands/pkg/token"
)

// SymbolResolver looks up a label's current value. During pass 1 a forward
// reference legitimately returns ok=false; by pass 2 every label must
// resolve.
type SymbolResolver interface {
	Resolve(name string) (value int32, ok bool)
}

// Evaluator folds a token range starting at some index into a single value.
type Evaluator struct {
	symbols    SymbolResolver
	convertTo  token.Kind
	converting bool
}

// New creates an Evaluator backed by the given symbol resolver.
func New(symbols SymbolResolver) *Evaluator {
	return &Evaluator{symbols: symbols}
}

// SetDefaultConversion records the token kind (DECNUMBER, STRING, or BOOL)
// that every resolved result of Evaluate is tagged with, replacing whatever
// kind the folding produced; unsolved results keep their kind. This matches the three evaluator instances spec §4.3 describes
// (number/string/boolean default conversion).
func (e *Evaluator) SetDefaultConversion(k token.Kind) {
	e.convertTo = k
	e.converting = true
}

// Evaluate folds tokens[start:] into a value.
//
// end is in/out: pass -1 to mean "auto-detect the end of the expression";
// on return *end holds the index of the last token consumed. This mirrors
// the original evaluator's in/out contract exactly (spec §6.2, §9).
func (e *Evaluator) Evaluate(tokens []token.Token, start int, end *int) token.Token {
	p := &parser{tokens: tokens, pos: start, symbols: e.symbols}
	if end != nil && *end >= start {
		p.limit = *end + 1
	} else {
		p.limit = len(tokens)
	}

	result := p.expr()
	if end != nil {
		*end = p.pos - 1
	}
	if !result.Unsolved && e.converting {
		result.Kind = e.convertTo
	}
	return result
}

// parser is a small precedence-climbing recursive-descent evaluator over
// + - * / & | ^ with unary - and ~, and parenthesized sub-expressions.
type parser struct {
	tokens  []token.Token
	pos     int
	limit   int
	symbols SymbolResolver
}

func (p *parser) peek() (token.Token, bool) {
	if p.pos >= p.limit || p.pos >= len(p.tokens) {
		return token.Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) expr() token.Token {
	return p.binary(0)
}

// precedence levels, lowest first: |,^ then & then +,- then *,/
var precTable = [...]struct {
	kind token.Kind
	prec int
}{
	{token.OP_OR, 1}, {token.OP_XOR, 1},
	{token.OP_AND, 2},
	{token.OP_PLUS, 3}, {token.OP_MINUS, 3},
	{token.OP_MUL, 4}, {token.OP_DIV, 4},
}

func precOf(k token.Kind) (int, bool) {
	for _, e := range precTable {
		if e.kind == k {
			return e.prec, true
		}
	}
	return 0, false
}

func (p *parser) binary(minPrec int) token.Token {
	left := p.unary()
	for {
		tok, ok := p.peek()
		if !ok {
			break
		}
		prec, isOp := precOf(tok.Kind)
		if !isOp || prec < minPrec {
			break
		}
		p.pos++
		right := p.binary(prec + 1)
		left = applyBinary(tok.Kind, left, right)
	}
	return left
}

func (p *parser) unary() token.Token {
	tok, ok := p.peek()
	if ok && tok.Kind == token.OP_MINUS {
		p.pos++
		v := p.unary()
		if v.Unsolved {
			return v
		}
		v.Value = -v.Value
		return v
	}
	if ok && tok.Kind == token.OP_NOT {
		p.pos++
		v := p.unary()
		if v.Unsolved {
			return v
		}
		v.Value = ^v.Value
		return v
	}
	return p.primary()
}

func (p *parser) primary() token.Token {
	tok, ok := p.peek()
	if !ok {
		return token.Token{Kind: token.DECNUMBER, Value: 0}
	}
	switch tok.Kind {
	case token.PAR_OPEN:
		p.pos++
		inner := p.expr()
		if c, ok := p.peek(); ok && c.Kind == token.PAR_CLOSE {
			p.pos++
		}
		return inner
	case token.DECNUMBER, token.HEXNUMBER, token.BINNUMBER, token.OCTNUMBER:
		p.pos++
		return tok
	case token.STRING:
		p.pos++
		v := stringLiteralValue(tok.Source)
		return token.Token{Kind: token.STRING, Source: tok.Source, Value: v}
	case token.LETTERS:
		p.pos++
		if v, ok := p.symbols.Resolve(tok.Source); ok {
			return token.Token{Kind: token.DECNUMBER, Source: tok.Source, Value: v}
		}
		return token.Token{Kind: token.DECNUMBER, Source: tok.Source, Unsolved: true}
	}
	// Nothing recognizable at this position: stop here without advancing
	// further than what's already been consumed.
	return token.Token{Kind: token.DECNUMBER, Value: 0}
}

func applyBinary(op token.Kind, a, b token.Token) token.Token {
	if a.Unsolved || b.Unsolved {
		return token.Token{Kind: token.DECNUMBER, Unsolved: true}
	}
	var v int32
	switch op {
	case token.OP_PLUS:
		v = a.Value + b.Value
	case token.OP_MINUS:
		v = a.Value - b.Value
	case token.OP_MUL:
		v = a.Value * b.Value
	case token.OP_DIV:
		if b.Value == 0 {
			v = 0
		} else {
			v = a.Value / b.Value
		}
	case token.OP_AND:
		v = a.Value & b.Value
	case token.OP_OR:
		v = a.Value | b.Value
	case token.OP_XOR:
		v = a.Value ^ b.Value
	}
	return token.Token{Kind: token.DECNUMBER, Value: v}
}

// stringLiteralValue folds a single-character literal ('A') into its byte
// value, matching the original evaluator's ability to fold a quoted char
// into a usable number (e.g. as a bit number or immediate).
func stringLiteralValue(src string) int32 {
	if len(src) == 3 && src[0] == '\'' && src[2] == '\'' {
		return int32(src[1])
	}
	if n, err := strconv.Atoi(src); err == nil {
		return int32(n)
	}
	return 0
}
