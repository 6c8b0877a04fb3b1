// Package symtab is a minimal two-pass symbol table: just enough for the
// operand recognizer's reference collaborators (pkg/eval, pkg/lexer-driven
// tests) to exercise forward-reference and pass-1/pass-2 behavior. It is not
// a general symbol table — no scoping, no EQU re-definition rules, no
// macro-local labels — only label name -> value plus the first/second pass
// flag the operand gate consults.
package symtab

import "sync"

// Table holds label values across a two-pass assembly run. The locking
// mirrors the teacher repo's result.Table shape even though a single
// assembly run drives one pass at a time from one goroutine; it is kept so
// a caller running multiple independent assemblies can safely share nothing
// while still matching the teacher's defensive locking idiom.
type Table struct {
	mu        sync.Mutex
	values    map[string]int32
	firstPass bool
}

// New creates a symbol table positioned at pass 1.
func New() *Table {
	return &Table{values: make(map[string]int32), firstPass: true}
}

// Define records (or updates) a label's value.
func (t *Table) Define(name string, value int32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values[name] = value
}

// Resolve implements eval.SymbolResolver.
func (t *Table) Resolve(name string) (int32, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.values[name]
	return v, ok
}

// IsFirstPass implements token.PassContext.
func (t *Table) IsFirstPass() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.firstPass
}

// BeginPass2 switches the table into second-pass mode. By this point every
// label an assembly run will ever define should already be in the table;
// any name Resolve still can't find is a genuine undefined-symbol error,
// not a forward reference.
func (t *Table) BeginPass2() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.firstPass = false
}
