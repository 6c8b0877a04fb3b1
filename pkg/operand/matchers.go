package operand

import "github.com/oisee/z80-operands/pkg/token"

// Evaluator is the contract this package consumes from the assembler's
// expression evaluator (spec §6.2). end is in/out: -1 means "auto-detect",
// and on return *end holds the index of the last token consumed.
// pkg/eval is a reference implementation; this package never imports it.
type Evaluator interface {
	Evaluate(tokens []token.Token, start int, end *int) token.Token
}

// isNumeric reports whether an evaluated token's kind is one of the two
// "numeric" kinds the reference evaluator may tag a folded result with
// (spec §4.2.4/§4.2.6's glossary note: STRING from character-literal
// folding, or DECNUMBER from arithmetic folding — both count as a number
// here).
func isNumeric(k token.Kind) bool {
	return k == token.STRING || k == token.DECNUMBER
}

// reg8 matches an 8-bit register name at tokens[*cur]. On success it writes
// the variant, advances *cur by 1, and returns true. On failure *cur is left
// untouched.
func reg8(tokens []token.Token, cur *int) (Variant, bool) {
	if *cur >= len(tokens) {
		return 0, false
	}
	tok := tokens[*cur]
	if tok.Kind != token.LETTERS {
		return 0, false
	}
	v, ok := lookupReg8(upper(tok.Source))
	if !ok {
		return 0, false
	}
	*cur++
	return v, true
}

// reg16 matches a 16-bit register pair name, including the shadow AF'.
func reg16(tokens []token.Token, cur *int) (Variant, bool) {
	if *cur >= len(tokens) {
		return 0, false
	}
	tok := tokens[*cur]
	if tok.Kind != token.LETTERS {
		return 0, false
	}
	v, ok := lookupReg16(upper(tok.Source))
	if !ok {
		return 0, false
	}
	*cur++
	return v, true
}

// indirectReg matches the fixed three-token shape "(" NAME ")" where NAME
// must equal name exactly (case-sensitive, per spec §4.2.2 — the reference
// assembler compares against the uppercase spelling literally, not via
// reg8/reg16 lookup).
func indirectReg(tokens []token.Token, cur *int, name string, v Variant) (Variant, bool) {
	if len(tokens)-*cur < 3 {
		return 0, false
	}
	if tokens[*cur].Kind != token.PAR_OPEN {
		return 0, false
	}
	mid := tokens[*cur+1]
	if mid.Kind != token.LETTERS || mid.Source != name {
		return 0, false
	}
	if tokens[*cur+2].Kind != token.PAR_CLOSE {
		return 0, false
	}
	*cur += 3
	return v, true
}

// indirectX matches (IX+d) or (IY+d). Like bitNumber and numberN, it may
// advance *cur even when it returns OperrUnsolved: once the
// "(" reg16 "+" shape is confirmed, the displacement expression is
// syntactically valid regardless of whether its value is known yet, so the
// cursor commits past the closing parenthesis in both the OperrOK and
// OperrUnsolved cases (spec §4.2.3 step 5 — a deliberate, documented
// exception to the "no mutation on failure" rule).
func indirectX(tokens []token.Token, cur *int, eval Evaluator) (Variant, int32, OperandError) {
	if len(tokens)-*cur < 5 {
		return 0, 0, OperrTokenNumber
	}
	if tokens[*cur].Kind != token.PAR_OPEN {
		return 0, 0, OperrMissingParOpen
	}
	regCur := *cur + 1
	regX, ok := reg16(tokens, &regCur)
	if !ok || (regX != IX && regX != IY) {
		return 0, 0, OperrRegisterName
	}
	if tokens[*cur+2].Kind != token.OP_PLUS {
		return 0, 0, OperrWrongOp
	}

	// Scan forward from just past "+" for the matching close paren,
	// balancing nested parentheses in the displacement expression.
	i := *cur + 3
	depth := 1
	closeIdx := -1
	for ; i < len(tokens); i++ {
		switch tokens[i].Kind {
		case token.PAR_OPEN:
			depth++
		case token.PAR_CLOSE:
			depth--
			if depth == 0 {
				closeIdx = i
			}
		}
		if closeIdx >= 0 {
			break
		}
	}
	if closeIdx < 0 {
		return 0, 0, OperrMissingParClose
	}

	end := closeIdx - 1
	evaluated := eval.Evaluate(tokens, *cur+3, &end)
	*cur = closeIdx + 1
	if evaluated.Unsolved {
		return regX, 0, OperrUnsolved
	}
	return regX, evaluated.AsNumber(), OperrOK
}

// bitNumber evaluates the expression at *cur with no forced terminator,
// expecting a value 0..7. Like indirectX, it advances *cur on OperrUnsolved
// as well as OperrOK; on OperrNotBit the cursor is left untouched.
func bitNumber(tokens []token.Token, cur *int, eval Evaluator) (Variant, OperandError) {
	end := -1
	evaluated := eval.Evaluate(tokens, *cur, &end)
	if evaluated.Unsolved {
		*cur = end + 1
		return Bit0, OperrUnsolved
	}
	if !isNumeric(evaluated.Kind) {
		return 0, OperrNotBit
	}
	v := evaluated.AsNumber()
	if v < 0 || v > 7 {
		return 0, OperrNotBit
	}
	*cur = end + 1
	return bitVariant(int(v)), OperrOK
}

// condition matches a condition code name. Per spec §4.1/§9, the token
// source is probed as-is — NOT upper-cased — against the (uppercase-only)
// condition catalog. This means "nz" never matches; only "NZ" does. This is
// flagged in the original assembler as a likely latent bug and is
// preserved rather than silently fixed.
func condition(tokens []token.Token, cur *int) (Variant, OperandError) {
	if *cur >= len(tokens) {
		return 0, OperrNotString
	}
	tok := tokens[*cur]
	if tok.Kind != token.LETTERS {
		return 0, OperrNotString
	}
	v, ok := lookupCondition(tok.Source)
	if !ok {
		return 0, OperrNotCondition
	}
	*cur++
	return v, OperrOK
}

// number8 evaluates the expression at *cur as an 8-bit number.
func number8(tokens []token.Token, cur *int, eval Evaluator) (int32, OperandError) {
	return numberN(tokens, cur, eval, 255)
}

// number16 evaluates the expression at *cur as a 16-bit number.
func number16(tokens []token.Token, cur *int, eval Evaluator) (int32, OperandError) {
	return numberN(tokens, cur, eval, 65535)
}

func numberN(tokens []token.Token, cur *int, eval Evaluator, max int32) (int32, OperandError) {
	end := -1
	evaluated := eval.Evaluate(tokens, *cur, &end)
	if evaluated.Unsolved {
		*cur = end + 1
		return 0, OperrUnsolved
	}
	if !isNumeric(evaluated.Kind) {
		return 0, OperrNotNumber
	}
	v := evaluated.AsNumber()
	if v > max {
		return 0, OperrTooBig
	}
	*cur = end + 1
	return v, OperrOK
}

// indirect16 matches the absolute-indirect shape "(" expr ")". Unlike the
// other matchers, it does NOT write back to *cur itself; it returns the
// post-close-paren index via lasttoken, and the caller (Tools.GetInd16) is
// responsible for committing it (spec §4.2.7).
func indirect16(tokens []token.Token, cur int, eval Evaluator) (value int32, lasttoken int, operr OperandError) {
	if len(tokens)-cur < 3 {
		return 0, cur, OperrTokenNumber
	}
	if tokens[cur].Kind != token.PAR_OPEN {
		return 0, cur, OperrMissingParOpen
	}

	i := cur + 1
	depth := 1
	closeIdx := -1
	for ; i < len(tokens); i++ {
		switch tokens[i].Kind {
		case token.PAR_OPEN:
			depth++
		case token.PAR_CLOSE:
			depth--
			if depth == 0 {
				closeIdx = i
			}
		}
		if closeIdx >= 0 {
			break
		}
	}
	if closeIdx < 0 {
		return 0, cur, OperrMissingParClose
	}

	end := closeIdx - 1
	evaluated := eval.Evaluate(tokens, cur+1, &end)
	lasttoken = closeIdx + 1
	if evaluated.Unsolved {
		return 0, lasttoken, OperrUnsolved
	}
	if !isNumeric(evaluated.Kind) {
		return 0, lasttoken, OperrNotNumber
	}
	return evaluated.AsNumber(), lasttoken, OperrOK
}
