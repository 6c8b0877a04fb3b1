package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/oisee/z80-operands/pkg/eval"
	"github.com/oisee/z80-operands/pkg/lexer"
	"github.com/oisee/z80-operands/pkg/operand"
	"github.com/oisee/z80-operands/pkg/symtab"
	"github.com/oisee/z80-operands/pkg/token"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "z80ops",
		Short: "Z80 operand recognizer — classify an assembly operand's addressing mode",
	}

	rootCmd.AddCommand(newRecognizeCmd())
	rootCmd.AddCommand(newCatalogCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRecognizeCmd() *cobra.Command {
	var pass2 bool
	var maskNames []string

	cmd := &cobra.Command{
		Use:   "recognize <operand-text>",
		Short: "Classify a single operand's addressing mode",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			toks, err := lexer.Lex(text)
			if err != nil {
				return fmt.Errorf("z80ops: lex %q: %w", text, err)
			}

			mask := operand.AllRegs
			if len(maskNames) > 0 {
				mask = 0
				for _, name := range maskNames {
					v, ok := operand.ParseRegisterName(name)
					if !ok {
						return fmt.Errorf("z80ops: %q is not a known register name", name)
					}
					mask |= operand.Mask(v)
				}
			}

			symbols := symtab.New()
			if pass2 {
				symbols.BeginPass2()
			}
			evaluator := eval.New(symbols)
			evaluator.SetDefaultConversion(token.DECNUMBER)

			line := &token.Line{Tokens: toks, Ctx: symbols}
			result, err := recognize(operand.New(evaluator), line, mask)
			if err != nil {
				return err
			}
			fmt.Println(result)
			return nil
		},
	}
	cmd.Flags().BoolVar(&pass2, "pass2", false, "recognize as if running the assembler's second pass")
	cmd.Flags().StringSliceVar(&maskNames, "mask", nil, "restrict register matches to this comma-separated list of names")
	return cmd
}

// recognize tries each addressing mode gate in turn and reports the first
// one that accepts the whole operand text. It exists only to give the CLI
// something to print; an instruction encoder would instead know which
// shapes a given mnemonic accepts and call the matching Get* directly.
func recognize(tools *operand.Tools, line *token.Line, mask operand.RegMask) (string, error) {
	type attempt struct {
		name string
		try  func() (string, operand.OperandError)
	}
	attempts := []attempt{
		{"reg8", func() (string, operand.OperandError) {
			v, e := tools.GetReg8(line, mask)
			return v.String(), e
		}},
		{"reg16", func() (string, operand.OperandError) {
			v, e := tools.GetReg16(line, mask)
			return v.String(), e
		}},
		{"(HL)", func() (string, operand.OperandError) { return "(HL)", tools.GetIndHL(line) }},
		{"(BC)", func() (string, operand.OperandError) { return "(BC)", tools.GetIndBC(line) }},
		{"(DE)", func() (string, operand.OperandError) { return "(DE)", tools.GetIndDE(line) }},
		{"(SP)", func() (string, operand.OperandError) { return "(SP)", tools.GetIndSP(line) }},
		{"(C)", func() (string, operand.OperandError) { return "(C)", tools.GetIndC(line) }},
		{"indexed", func() (string, operand.OperandError) {
			v, d, e := tools.GetIndX(line)
			return fmt.Sprintf("%s+%d", v, d), e
		}},
		{"condition", func() (string, operand.OperandError) {
			v, e := tools.GetCond(line)
			return v.String(), e
		}},
		{"bitnumber", func() (string, operand.OperandError) {
			v, e := tools.GetBitNumber(line)
			return v.String(), e
		}},
		{"num8", func() (string, operand.OperandError) {
			v, e := tools.GetNum8(line)
			return fmt.Sprintf("%d", v), e
		}},
		{"num16", func() (string, operand.OperandError) {
			v, e := tools.GetNum16(line)
			return fmt.Sprintf("%d", v), e
		}},
		{"(nn)", func() (string, operand.OperandError) {
			v, e := tools.GetInd16(line)
			return fmt.Sprintf("(%d)", v), e
		}},
	}

	for _, a := range attempts {
		start := line.Curtoken
		desc, operr := a.try()
		if operr == operand.OperrOK && line.Curtoken == len(line.Tokens) {
			return fmt.Sprintf("%s: %s", a.name, desc), nil
		}
		line.Curtoken = start
	}
	return "", fmt.Errorf("z80ops: no addressing mode recognized the operand")
}

func newCatalogCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the recognized register/condition/bit catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := operand.Catalog()
			switch format {
			case "", "text":
				for _, e := range entries {
					fmt.Printf("%-8s subcode=%#02x prefix=%#02x\n", e.Name, e.Subcode, e.Prefix)
				}
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(entries); err != nil {
					return fmt.Errorf("z80ops: encode catalog: %w", err)
				}
			default:
				return fmt.Errorf("z80ops: unknown --format %q (want text or json)", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	return cmd
}
