package vm

import "math"

// MaxOperand is the largest table index or argument count one operand word
// can carry.
const MaxOperand = 0xFFFF

// LineEntry maps the first instruction of a source line to that line.
type LineEntry struct {
	PC   int
	Line int
}

// JumpRecord is the debug trace of a compiled control construct: where it
// started, where continue and break jumps were patched to, and its labels.
type JumpRecord struct {
	Kind     string
	Labels   []string
	Start    int
	Continue int // -1 when the construct has no continue target
	Exit     int
}

// Function is a compiled unit. It is built once by the compiler and then
// shared read-only by every closure created from it.
type Function struct {
	Name          string
	Script        bool // top-level script rather than a callable function
	Strict        bool
	UsesArguments bool
	Expression    bool // named function expression, binds its own name
	NumParams     int

	Code    []uint16
	Numbers []float64
	Strings []string
	Vars    []string // parameters first, then hoisted names
	Funcs   []*Function

	Lines []LineEntry
	Jumps []JumpRecord

	stringIndex map[string]int
}

// NewFunction creates an empty function ready for emission.
func NewFunction(name string, script bool) *Function {
	return &Function{
		Name:   name,
		Script: script,
		Code:   make([]uint16, 0, 64),
	}
}

// Here returns the address of the next instruction to be emitted.
func (f *Function) Here() int {
	return len(f.Code)
}

// Emit appends an opcode without operands and returns its address.
func (f *Function) Emit(op Opcode) int {
	pc := len(f.Code)
	f.Code = append(f.Code, uint16(op))
	return pc
}

// EmitArg appends an opcode with a single operand word.
func (f *Function) EmitArg(op Opcode, arg uint16) int {
	pc := f.Emit(op)
	f.Code = append(f.Code, arg)
	return pc
}

// EmitJump appends a jump with a placeholder address and returns the
// position of the address words for PatchJump.
func (f *Function) EmitJump(op Opcode) int {
	f.Emit(op)
	pos := len(f.Code)
	f.Code = append(f.Code, 0xFFFF, 0xFFFF)
	return pos
}

// EmitJumpTo appends a jump to a known address (backward jumps).
func (f *Function) EmitJumpTo(op Opcode, target int) {
	f.Emit(op)
	hi, lo := SplitAddress(target)
	f.Code = append(f.Code, hi, lo)
}

// PatchJump writes target into the address words at pos.
func (f *Function) PatchJump(pos, target int) {
	f.Code[pos], f.Code[pos+1] = SplitAddress(target)
}

// PatchJumpHere points the jump at pos to the next instruction.
func (f *Function) PatchJumpHere(pos int) {
	f.PatchJump(pos, len(f.Code))
}

// AddNumber adds a numeric constant to the pool and returns its index.
// If the constant already exists, returns the existing index.
func (f *Function) AddNumber(n float64) int {
	for i, v := range f.Numbers {
		// NaN never matches itself, so it is appended each time.
		if v == n && math.Signbit(v) == math.Signbit(n) {
			return i
		}
	}
	f.Numbers = append(f.Numbers, n)
	return len(f.Numbers) - 1
}

// AddString adds a string constant to the pool and returns its index.
func (f *Function) AddString(s string) int {
	if f.stringIndex == nil {
		f.stringIndex = make(map[string]int, len(f.Strings))
		for i, v := range f.Strings {
			if _, ok := f.stringIndex[v]; !ok {
				f.stringIndex[v] = i
			}
		}
	}
	if i, ok := f.stringIndex[s]; ok {
		return i
	}
	f.Strings = append(f.Strings, s)
	f.stringIndex[s] = len(f.Strings) - 1
	return len(f.Strings) - 1
}

// AddVar adds a name to the variable table unless already present and
// returns its index.
func (f *Function) AddVar(name string) int {
	if i := f.VarIndex(name); i >= 0 {
		return i
	}
	f.Vars = append(f.Vars, name)
	return len(f.Vars) - 1
}

// VarIndex returns the variable table index of name, or -1.
func (f *Function) VarIndex(name string) int {
	for i, v := range f.Vars {
		if v == name {
			return i
		}
	}
	return -1
}

// AddFunc appends a nested function and returns its index.
func (f *Function) AddFunc(fn *Function) int {
	f.Funcs = append(f.Funcs, fn)
	return len(f.Funcs) - 1
}

// MarkLine records that code emitted from here on belongs to line.
func (f *Function) MarkLine(line int) {
	if line <= 0 {
		return
	}
	if n := len(f.Lines); n > 0 {
		last := &f.Lines[n-1]
		if last.Line == line {
			return
		}
		if last.PC == len(f.Code) {
			last.Line = line
			return
		}
	}
	f.Lines = append(f.Lines, LineEntry{PC: len(f.Code), Line: line})
}

// LineAt returns the source line of the instruction at pc, or 0.
func (f *Function) LineAt(pc int) int {
	line := 0
	for _, e := range f.Lines {
		if e.PC > pc {
			break
		}
		line = e.Line
	}
	return line
}
