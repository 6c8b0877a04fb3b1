package operand

import "github.com/oisee/z80-operands/pkg/token"

// RegMask is a bitfield selecting which Variant tags a GetReg8/GetReg16 call
// accepts; bit i corresponds to Variant(i).
type RegMask uint64

// Mask ORs the bit for each given variant into a RegMask, for building an
// allow-list inline at a call site (e.g. operand.Mask(operand.B, operand.C)).
func Mask(variants ...Variant) RegMask {
	var m RegMask
	for _, v := range variants {
		m |= 1 << uint(v)
	}
	return m
}

// AllRegs accepts every 8-bit-register-range or 16-bit-register-range
// variant; instruction handlers that don't need to restrict the register
// set pass this.
const AllRegs RegMask = ^RegMask(0)

// RegAccept reports whether mask permits variant v.
func RegAccept(mask RegMask, v Variant) bool {
	bit := RegMask(1) << uint(v)
	return mask&bit == bit
}

// Tools is the high-level, pass-aware entry point instruction handlers use.
// One Tools instance serves one assembly run; its Evaluator is shared with
// the rest of that run's expression folding.
type Tools struct {
	Eval Evaluator
}

// New creates a Tools bound to the given expression evaluator.
func New(eval Evaluator) *Tools {
	return &Tools{Eval: eval}
}

func enoughTokensLeft(line *token.Line, n int) bool {
	return line.Remaining() >= n
}

// GetReg8 matches an 8-bit register, rejecting any variant mask doesn't
// accept. On mask rejection the cursor is rolled back.
func (t *Tools) GetReg8(line *token.Line, mask RegMask) (Variant, OperandError) {
	if !enoughTokensLeft(line, 1) {
		return 0, OperrTokenNumber
	}
	work := line.Curtoken
	v, ok := reg8(line.Tokens, &work)
	if !ok {
		return 0, OperrNotRegister
	}
	if !RegAccept(mask, v) {
		return 0, OperrWrongRegister
	}
	line.Curtoken = work
	return v, OperrOK
}

// GetReg16 matches a 16-bit register pair, rejecting any variant mask
// doesn't accept.
func (t *Tools) GetReg16(line *token.Line, mask RegMask) (Variant, OperandError) {
	if !enoughTokensLeft(line, 1) {
		return 0, OperrTokenNumber
	}
	work := line.Curtoken
	v, ok := reg16(line.Tokens, &work)
	if !ok {
		return 0, OperrNotRegister
	}
	if !RegAccept(mask, v) {
		return 0, OperrWrongRegister
	}
	line.Curtoken = work
	return v, OperrOK
}

func (t *Tools) getIndirectReg(line *token.Line, name string, v Variant) OperandError {
	if !enoughTokensLeft(line, 3) {
		return OperrTokenNumber
	}
	work := line.Curtoken
	if _, ok := indirectReg(line.Tokens, &work, name, v); ok {
		line.Curtoken = work
		return OperrOK
	}
	return OperrWrongRegister
}

// GetIndC matches (C).
func (t *Tools) GetIndC(line *token.Line) OperandError { return t.getIndirectReg(line, "C", IndC) }

// GetIndHL matches (HL).
func (t *Tools) GetIndHL(line *token.Line) OperandError { return t.getIndirectReg(line, "HL", IndHL) }

// GetIndBC matches (BC).
func (t *Tools) GetIndBC(line *token.Line) OperandError { return t.getIndirectReg(line, "BC", IndBC) }

// GetIndDE matches (DE).
func (t *Tools) GetIndDE(line *token.Line) OperandError { return t.getIndirectReg(line, "DE", IndDE) }

// GetIndSP matches (SP).
func (t *Tools) GetIndSP(line *token.Line) OperandError { return t.getIndirectReg(line, "SP", IndSP) }

// GetIndX matches (IX+d) or (IY+d). During pass 1, an unsolved displacement
// is neutralized to d=0 and reported as OperrOK — the encoder needs a
// stable instruction length across both passes (spec §4.3's central
// pass-1 policy). During pass 2 a genuine unresolved expression surfaces as
// OperrUnsolved.
//
// The returned d is not range-checked against signed 8-bit; the caller
// clamps/validates it for the instruction being assembled (spec §4.2.3
// "Range").
func (t *Tools) GetIndX(line *token.Line) (Variant, int32, OperandError) {
	if !enoughTokensLeft(line, 5) {
		return 0, 0, OperrTokenNumber
	}
	cur := line.Curtoken
	regX, d, operr := indirectX(line.Tokens, &cur, t.Eval)
	line.Curtoken = cur
	if operr == OperrOK {
		return regX, d, OperrOK
	}
	if operr == OperrUnsolved && line.Ctx.IsFirstPass() {
		return regX, 0, OperrOK
	}
	if operr == OperrUnsolved {
		return regX, 0, OperrUnsolved
	}
	return 0, 0, OperrWrongRegister
}

// GetBitNumber matches a bit index 0..7. It first checks, on a scratch
// cursor, that the current token isn't a register name — reg8/reg16 are
// probed against a copy of Curtoken, so a register name at the cursor is
// rejected as OperrWrongRegister without ever consuming a token (this is a
// documented, load-bearing detail: a naive port that probed the real
// cursor would accidentally advance past a register name it then rejects).
func (t *Tools) GetBitNumber(line *token.Line) (Variant, OperandError) {
	if !enoughTokensLeft(line, 1) {
		return 0, OperrTokenNumber
	}
	scratch := line.Curtoken
	if _, ok := reg8(line.Tokens, &scratch); ok {
		return 0, OperrWrongRegister
	}
	scratch = line.Curtoken
	if _, ok := reg16(line.Tokens, &scratch); ok {
		return 0, OperrWrongRegister
	}

	cur := line.Curtoken
	bit, operr := bitNumber(line.Tokens, &cur, t.Eval)
	line.Curtoken = cur
	if operr == OperrOK {
		return bit, OperrOK
	}
	if operr == OperrUnsolved && line.Ctx.IsFirstPass() {
		return Bit0, OperrOK
	}
	return bit, operr
}

// GetCond matches a condition code.
func (t *Tools) GetCond(line *token.Line) (Variant, OperandError) {
	if !enoughTokensLeft(line, 1) {
		return 0, OperrTokenNumber
	}
	cur := line.Curtoken
	v, operr := condition(line.Tokens, &cur)
	if operr != OperrOK {
		return 0, OperrNotCondition
	}
	line.Curtoken = cur
	return v, OperrOK
}

// GetNum8 matches an 8-bit immediate expression. Register names are
// rejected up front (on a scratch cursor) the same way GetBitNumber does.
// Note that both OperrNotNumber and the more specific OperrTooBig from the
// underlying matcher collapse to OperrNotNumber here — this loses
// information to the caller but matches the reference assembler's gate
// exactly (see DESIGN.md Open Question 3).
func (t *Tools) GetNum8(line *token.Line) (int32, OperandError) {
	return t.getNum(line, number8)
}

// GetNum16 matches a 16-bit immediate expression, same shape as GetNum8.
func (t *Tools) GetNum16(line *token.Line) (int32, OperandError) {
	return t.getNum(line, number16)
}

func (t *Tools) getNum(line *token.Line, match func([]token.Token, *int, Evaluator) (int32, OperandError)) (int32, OperandError) {
	if !enoughTokensLeft(line, 1) {
		return 0, OperrTokenNumber
	}
	scratch := line.Curtoken
	if _, ok := reg8(line.Tokens, &scratch); ok {
		return 0, OperrWrongRegister
	}
	scratch = line.Curtoken
	if _, ok := reg16(line.Tokens, &scratch); ok {
		return 0, OperrWrongRegister
	}

	cur := line.Curtoken
	value, operr := match(line.Tokens, &cur, t.Eval)
	line.Curtoken = cur
	switch {
	case operr == OperrOK:
		return value, OperrOK
	case operr == OperrUnsolved && line.Ctx.IsFirstPass():
		return 0, OperrOK
	case operr == OperrUnsolved:
		// Pass 2: a genuine unresolved expression must surface, not be
		// masked behind OperrNotNumber (spec invariant 6).
		return 0, OperrUnsolved
	default:
		// operrTOOBIG (and anything else number8/number16 can return)
		// collapses to the generic OperrNotNumber here, matching the
		// reference gate exactly — see DESIGN.md Open Question 3.
		return 0, OperrNotNumber
	}
}

// GetInd16 matches absolute-indirect (nn). On pass 1, an unsolved inner
// expression still commits the cursor past the closing parenthesis and
// reports OperrOK with value 0 (spec §4.3). On a true mismatch (missing
// parens, not a number) the cursor is left alone; the underlying matcher
// never writes it, and only this method commits lasttoken.
func (t *Tools) GetInd16(line *token.Line) (int32, OperandError) {
	if !enoughTokensLeft(line, 3) {
		return 0, OperrTokenNumber
	}
	value, lasttoken, operr := indirect16(line.Tokens, line.Curtoken, t.Eval)
	switch {
	case operr == OperrOK:
		line.Curtoken = lasttoken
		return value, OperrOK
	case operr == OperrUnsolved && line.Ctx.IsFirstPass():
		line.Curtoken = lasttoken
		return 0, OperrOK
	case operr == OperrUnsolved:
		// Pass 2: surface the unresolved expression rather than masking it
		// (spec invariant 6); the paren structure was still valid, so the
		// cursor still commits past it.
		line.Curtoken = lasttoken
		return 0, OperrUnsolved
	default:
		// Missing-paren/non-numeric errors leave the cursor untouched.
		return 0, OperrNotNumber
	}
}
