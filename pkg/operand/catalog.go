package operand

import "strings"

// reg8Names, reg16Names, and conditionNames are the three lookup surfaces of
// spec §4.1: name -> Variant. subcode and prefix are the two encoding
// metadata maps of spec §3.2: Variant -> the opcode bitfield contribution,
// and Variant -> the leading prefix byte (0 if none). All five are built
// once in init() and never written to again (spec invariant 1).
var (
	reg8Names      map[string]Variant
	reg16Names     map[string]Variant
	conditionNames map[string]Variant
	subcode        map[Variant]uint8
	prefix         map[Variant]uint8
)

func init() {
	reg8Names = map[string]Variant{
		"A": A, "B": B, "C": C, "D": D, "E": E, "H": H, "L": L,
		"I": I, "R": R, "F": F,
		"IXH": IXH, "IXL": IXL, "IYH": IYH, "IYL": IYL,
	}

	reg16Names = map[string]Variant{
		"AF": AF, "AF'": AFshadow,
		"BC": BC, "DE": DE, "HL": HL, "SP": SP,
		"IX": IX, "IY": IY,
	}

	// Condition lookup is intentionally NOT upper-cased before this map is
	// probed (see the condition matcher) — only the uppercase spellings are keys
	// here, by design, preserving a documented quirk of the assembler this
	// was modeled on: "nz" never matches, only "NZ" does.
	conditionNames = map[string]Variant{
		"NC": CondNC, "C": CondC, "NZ": CondNZ, "Z": CondZ,
		"PE": CondPE, "PO": CondPO, "P": CondP, "M": CondM,
	}

	subcode = map[Variant]uint8{
		B: 0, C: 1, D: 2, E: 3, H: 4, L: 5, F: 6, A: 7,
		IndHL: 6, // (HL) shares the register-field encoding of F
		IXH:    4, IYH: 4,
		IXL:    5, IYL: 5,
		I: 0x07, R: 0x0F,

		BC: 0x00, DE: 0x10, HL: 0x20, SP: 0x30,
		AF: 0x30, // PUSH/POP encoders reuse the SP slot for AF
		IX: 0x20, IY: 0x20, // reuse the HL slot; prefix disambiguates

		Bit0: 0 << 3, Bit1: 1 << 3, Bit2: 2 << 3, Bit3: 3 << 3,
		Bit4: 4 << 3, Bit5: 5 << 3, Bit6: 6 << 3, Bit7: 7 << 3,

		CondNZ: 0x00, CondZ: 0x08, CondNC: 0x10, CondC: 0x18,
		CondPO: 0x20, CondPE: 0x28, CondP: 0x30, CondM: 0x38,
	}

	prefix = map[Variant]uint8{
		IX: 0xDD, IXH: 0xDD, IXL: 0xDD,
		IY: 0xFD, IYH: 0xFD, IYL: 0xFD,
	}
}

// lookupReg8 matches name (already expected upper-cased by the caller)
// against the 8-bit register alphabet.
func lookupReg8(name string) (Variant, bool) {
	v, ok := reg8Names[name]
	return v, ok
}

// lookupReg16 matches name (upper-cased) against the 16-bit pair alphabet,
// including the quoted shadow accumulator AF'.
func lookupReg16(name string) (Variant, bool) {
	v, ok := reg16Names[name]
	return v, ok
}

// lookupCondition matches name, as-is (no case folding — see package doc),
// against the condition-code alphabet.
func lookupCondition(name string) (Variant, bool) {
	v, ok := conditionNames[name]
	return v, ok
}

// subcodeOf returns the opcode bitfield contribution of v, or 0 for any
// variant with no subcode (spec invariant 4).
func subcodeOf(v Variant) uint8 {
	return subcode[v]
}

// prefixOf returns the leading prefix byte for v (0xDD, 0xFD), or 0 if v
// needs none (spec invariant 4).
func prefixOf(v Variant) uint8 {
	return prefix[v]
}

// upper upper-cases s with strings.ToUpper (Unicode case mapping, not just
// ASCII), standing in for the reference assembler's to_upper helper used
// before register-name lookups.
func upper(s string) string {
	return strings.ToUpper(s)
}

// Entry is one row of the public catalog: a register/condition/bit name
// alongside the encoding metadata an instruction encoder needs for it.
type Entry struct {
	Variant Variant
	Name    string
	Subcode uint8
	Prefix  uint8
}

// Catalog lists every named Variant (registers, register-indirect forms,
// conditions, bit indices) with its encoding metadata, for tooling that
// wants to print or export the whole recognized alphabet (e.g. cmd/z80ops's
// catalog subcommand) without reaching into this package's internals.
func Catalog() []Entry {
	entries := make([]Entry, 0, int(variantCount)-1)
	for v := Variant(1); v < variantCount; v++ {
		entries = append(entries, Entry{
			Variant: v,
			Name:    v.String(),
			Subcode: subcodeOf(v),
			Prefix:  prefixOf(v),
		})
	}
	return entries
}

// ParseRegisterName resolves name as either an 8-bit or 16-bit register,
// upper-casing it first the same way the matchers do. It exists for callers
// (like cmd/z80ops's --mask flag) that need to build a RegMask from text
// without depending on this package's lookup tables directly.
func ParseRegisterName(name string) (Variant, bool) {
	u := upper(name)
	if v, ok := lookupReg8(u); ok {
		return v, true
	}
	if v, ok := lookupReg16(u); ok {
		return v, true
	}
	return 0, false
}
