package operand

import (
	"testing"

	"github.com/oisee/z80-operands/pkg/token"
)

// fakeEvaluator is a scripted stand-in for the real expression evaluator,
// used to drive the matchers/gate through exact scenarios (unsolved vs.
// resolved, consuming an exact number of tokens) without depending on
// pkg/eval's own correctness.
type fakeEvaluator struct {
	unsolved bool
	value    int32
	kind     token.Kind // zero value is LETTERS, which the numeric matchers reject; set explicitly where a number is needed
	consume  int        // number of tokens from start this "expression" spans; 0 means 1
}

func (f fakeEvaluator) Evaluate(tokens []token.Token, start int, end *int) token.Token {
	n := f.consume
	if n <= 0 {
		n = 1
	}
	if end != nil {
		*end = start + n - 1
	}
	return token.Token{Kind: f.kind, Value: f.value, Unsolved: f.unsolved}
}

func letters(s string) token.Token { return token.Token{Kind: token.LETTERS, Source: s} }
func parOpen() token.Token         { return token.Token{Kind: token.PAR_OPEN, Source: "("} }
func parClose() token.Token        { return token.Token{Kind: token.PAR_CLOSE, Source: ")"} }
func plus() token.Token            { return token.Token{Kind: token.OP_PLUS, Source: "+"} }
func dec(v int32) token.Token      { return token.Token{Kind: token.DECNUMBER, Value: v} }

func TestReg8MatchAndRollback(t *testing.T) {
	toks := []token.Token{letters("a")}
	cur := 0
	v, ok := reg8(toks, &cur)
	if !ok || v != A || cur != 1 {
		t.Fatalf("reg8(%q) = %v, %v, cur=%d; want A, true, 1", "a", v, ok, cur)
	}

	toks = []token.Token{letters("ZZZ")}
	cur = 0
	_, ok = reg8(toks, &cur)
	if ok || cur != 0 {
		t.Fatalf("reg8(%q) matched unexpectedly or moved cursor: ok=%v cur=%d", "ZZZ", ok, cur)
	}
}

func TestIndirectRegCaseSensitive(t *testing.T) {
	// "hl" (lowercase) must NOT match the fixed-shape (HL) matcher: spec
	// §4.2.2 compares the literal uppercase spelling, not a case-folded one.
	toks := []token.Token{parOpen(), letters("hl"), parClose()}
	cur := 0
	if _, ok := indirectReg(toks, &cur, "HL", IndHL); ok || cur != 0 {
		t.Fatalf("indirectReg matched lowercase \"hl\" or moved cursor: cur=%d", cur)
	}

	toks = []token.Token{parOpen(), letters("HL"), parClose()}
	cur = 0
	v, ok := indirectReg(toks, &cur, "HL", IndHL)
	if !ok || v != IndHL || cur != 3 {
		t.Fatalf("indirectReg(HL) = %v, %v, cur=%d; want IndHL, true, 3", v, ok, cur)
	}
}

func TestIndirectXAdvancesOnUnsolved(t *testing.T) {
	// (IX + LABEL): 5 tokens, LABEL unresolved.
	toks := []token.Token{parOpen(), letters("IX"), plus(), letters("LABEL"), parClose()}
	cur := 0
	fe := fakeEvaluator{unsolved: true, consume: 1}
	v, d, operr := indirectX(toks, &cur, fe)
	if operr != OperrUnsolved || v != IX || d != 0 || cur != 5 {
		t.Fatalf("indirectX unsolved = variant=%v d=%v err=%v cur=%d; want IX,0,Unsolved,5", v, d, operr, cur)
	}
}

func TestIndirectXResolved(t *testing.T) {
	toks := []token.Token{parOpen(), letters("IX"), plus(), dec(5), parClose()}
	cur := 0
	fe := fakeEvaluator{value: 5, consume: 1}
	v, d, operr := indirectX(toks, &cur, fe)
	if operr != OperrOK || v != IX || d != 5 || cur != 5 {
		t.Fatalf("indirectX resolved = variant=%v d=%v err=%v cur=%d; want IX,5,OK,5", v, d, operr, cur)
	}
}

func TestIndirectXWrongOperatorLeavesCursor(t *testing.T) {
	toks := []token.Token{parOpen(), letters("IX"), letters("NOTPLUS"), dec(5), parClose()}
	cur := 0
	fe := fakeEvaluator{}
	_, _, operr := indirectX(toks, &cur, fe)
	if operr != OperrWrongOp || cur != 0 {
		t.Fatalf("indirectX wrong-op = err=%v cur=%d; want WrongOp,0", operr, cur)
	}
}

func TestBitNumberInRange(t *testing.T) {
	toks := []token.Token{dec(3)}
	cur := 0
	fe := fakeEvaluator{value: 3, kind: token.DECNUMBER, consume: 1}
	v, operr := bitNumber(toks, &cur, fe)
	if operr != OperrOK || v != Bit3 || cur != 1 {
		t.Fatalf("bitNumber(3) = %v, %v, cur=%d; want Bit3, OK, 1", v, operr, cur)
	}
}

func TestBitNumberOutOfRangeLeavesCursor(t *testing.T) {
	toks := []token.Token{dec(9)}
	cur := 0
	fe := fakeEvaluator{value: 9, kind: token.DECNUMBER, consume: 1}
	_, operr := bitNumber(toks, &cur, fe)
	if operr != OperrNotBit || cur != 0 {
		t.Fatalf("bitNumber(9) = err=%v cur=%d; want NotBit,0", operr, cur)
	}
}

func TestConditionCaseSensitivity(t *testing.T) {
	// Documented quirk (spec §9 Open Question 1): condition lookup does
	// NOT upper-case before probing the catalog, unlike reg8/reg16.
	toks := []token.Token{letters("nz")}
	cur := 0
	_, operr := condition(toks, &cur)
	if operr != OperrNotCondition || cur != 0 {
		t.Fatalf("condition(\"nz\") = err=%v cur=%d; want NotCondition,0 (lowercase must not match)", operr, cur)
	}

	toks = []token.Token{letters("NZ")}
	cur = 0
	v, operr := condition(toks, &cur)
	if operr != OperrOK || v != CondNZ || cur != 1 {
		t.Fatalf("condition(\"NZ\") = %v, %v, cur=%d; want CondNZ, OK, 1", v, operr, cur)
	}
}

func TestNumber8TooBig(t *testing.T) {
	toks := []token.Token{dec(256)}
	cur := 0
	fe := fakeEvaluator{value: 256, kind: token.DECNUMBER, consume: 1}
	_, operr := number8(toks, &cur, fe)
	if operr != OperrTooBig {
		t.Fatalf("number8(256) = err=%v; want TooBig", operr)
	}
}

func TestIndirect16DoesNotCommitCursor(t *testing.T) {
	// indirect16 never writes *cur itself — only the caller commits
	// lasttoken (spec §4.2.7).
	toks := []token.Token{parOpen(), dec(0x1234), parClose()}
	fe := fakeEvaluator{value: 0x1234, kind: token.DECNUMBER, consume: 1}
	value, lasttoken, operr := indirect16(toks, 0, fe)
	if operr != OperrOK || value != 0x1234 || lasttoken != 3 {
		t.Fatalf("indirect16 = value=%v last=%v err=%v; want 0x1234,3,OK", value, lasttoken, operr)
	}
}

func TestIndirect16MissingParClose(t *testing.T) {
	toks := []token.Token{parOpen(), dec(1), dec(2)}
	fe := fakeEvaluator{}
	_, _, operr := indirect16(toks, 0, fe)
	if operr != OperrMissingParClose {
		t.Fatalf("indirect16 missing close = err=%v; want MissingParClose", operr)
	}
}
