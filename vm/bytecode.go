package vm

import "fmt"

// Opcode is a single bytecode instruction word. Instructions are sequences
// of 16-bit words: the opcode, followed by the operand words described by
// its OpcodeInfo.
type Opcode uint16

const (
	// ========================================================================
	// Stack manipulation
	// ========================================================================

	OpNop  Opcode = iota // No operation
	OpPop                // a ->
	OpDup                // a -> a a
	OpDup2               // a b -> a b a b
	OpRot2               // a b -> b a
	OpRot3               // a b c -> c a b
	OpRot4               // a b c d -> d a b c

	// ========================================================================
	// Literals
	// ========================================================================

	OpInteger // Push inline int16: OpInteger <imm>
	OpNumber  // Push number pool entry: OpNumber <num>
	OpString  // Push string pool entry: OpString <str>
	OpUndef
	OpNull
	OpTrue
	OpFalse

	// ========================================================================
	// Construction
	// ========================================================================

	OpClosure   // Push closure over the current environment: OpClosure <func>
	OpNewArray  // -> array
	OpNewObject // -> object

	// ========================================================================
	// Frame access
	// ========================================================================

	OpThis    // Push the frame's this slot
	OpCurrent // Push the frame's callee slot

	// ========================================================================
	// Variables: local forms index the variable table, name forms the string pool
	// ========================================================================

	OpGetLocal // -> value
	OpSetLocal // value -> value
	OpDelLocal // -> bool
	OpHasVar   // -> value or undefined, never throws
	OpGetVar   // -> value
	OpSetVar   // value -> value
	OpDelVar   // -> bool

	// ========================================================================
	// Properties
	// ========================================================================

	OpInitProp   // obj name value -> obj
	OpInitGetter // obj name func -> obj
	OpInitSetter // obj name func -> obj
	OpGetProp    // obj name -> value
	OpGetPropS   // obj -> value: OpGetPropS <str>
	OpSetProp    // obj name value -> value
	OpSetPropS   // obj value -> value: OpSetPropS <str>
	OpDelProp    // obj name -> bool
	OpDelPropS   // obj -> bool: OpDelPropS <str>

	// ========================================================================
	// Iteration
	// ========================================================================

	OpIterator // obj -> iter
	OpNextIter // iter -> iter key true | false

	// ========================================================================
	// Calls
	// ========================================================================

	OpCall // func this args... -> result: OpCall <argc>
	OpNew  // func args... -> result: OpNew <argc>

	// ========================================================================
	// Unary operators
	// ========================================================================

	OpTypeof
	OpPos
	OpNeg
	OpBitNot
	OpLogNot
	OpInc     // a -> a+1
	OpDec     // a -> a-1
	OpPostInc // a -> a+1 a
	OpPostDec // a -> a-1 a

	// ========================================================================
	// Binary operators: a b -> result
	// ========================================================================

	OpMul
	OpDiv
	OpMod
	OpAdd
	OpSub
	OpShl
	OpShr
	OpUShr
	OpLt
	OpGt
	OpLe
	OpGe
	OpEq
	OpNe
	OpStrictEq
	OpStrictNe
	OpBitAnd
	OpBitXor
	OpBitOr
	OpInstanceOf
	OpIn

	// ========================================================================
	// Exceptions and scopes
	// ========================================================================

	OpThrow    // value ->
	OpTry      // Push handler: OpTry <addr>
	OpEndTry   // Pop handler
	OpCatch    // value -> (binds name in a child environment): OpCatch <str>
	OpEndCatch // Restore the environment outside the catch block
	OpWith     // obj -> (object environment becomes current)
	OpEndWith  // Restore the environment outside the with block
	OpDebugger

	// ========================================================================
	// Control flow
	// ========================================================================

	OpJump   // OpJump <addr>
	OpJTrue  // a -> : OpJTrue <addr>
	OpJFalse // a -> : OpJFalse <addr>
	OpJCase  // a b -> a (no match) or -> (match, jumps): OpJCase <addr>
	OpReturn // value ->

	opcodeCount
)

// OperandKind describes how the words following an opcode are interpreted.
type OperandKind uint8

const (
	OperandNone    OperandKind = iota
	OperandInt                 // one word, signed immediate
	OperandArgc                // one word, argument count
	OperandNumber              // one word, index into Numbers
	OperandString              // one word, index into Strings
	OperandVar                 // one word, index into Vars
	OperandFunc                // one word, index into Funcs
	OperandAddress             // two words, absolute address, high word first
)

// Width returns the number of words the operand occupies.
func (k OperandKind) Width() int {
	switch k {
	case OperandNone:
		return 0
	case OperandAddress:
		return 2
	default:
		return 1
	}
}

// OpcodeInfo provides metadata about each opcode for the disassembler and
// for validation.
type OpcodeInfo struct {
	Name    string      // Human-readable name
	Operand OperandKind // Operand words following the opcode
	Pop     int         // Values popped (-1 = variable)
	Push    int         // Values pushed (-1 = variable)
}

var opcodeInfoTable = [opcodeCount]OpcodeInfo{
	OpNop:  {"NOP", OperandNone, 0, 0},
	OpPop:  {"POP", OperandNone, 1, 0},
	OpDup:  {"DUP", OperandNone, 1, 2},
	OpDup2: {"DUP2", OperandNone, 2, 4},
	OpRot2: {"ROT2", OperandNone, 2, 2},
	OpRot3: {"ROT3", OperandNone, 3, 3},
	OpRot4: {"ROT4", OperandNone, 4, 4},

	OpInteger: {"INTEGER", OperandInt, 0, 1},
	OpNumber:  {"NUMBER", OperandNumber, 0, 1},
	OpString:  {"STRING", OperandString, 0, 1},
	OpUndef:   {"UNDEF", OperandNone, 0, 1},
	OpNull:    {"NULL", OperandNone, 0, 1},
	OpTrue:    {"TRUE", OperandNone, 0, 1},
	OpFalse:   {"FALSE", OperandNone, 0, 1},

	OpClosure:   {"CLOSURE", OperandFunc, 0, 1},
	OpNewArray:  {"NEWARRAY", OperandNone, 0, 1},
	OpNewObject: {"NEWOBJECT", OperandNone, 0, 1},

	OpThis:    {"THIS", OperandNone, 0, 1},
	OpCurrent: {"CURRENT", OperandNone, 0, 1},

	OpGetLocal: {"GETLOCAL", OperandVar, 0, 1},
	OpSetLocal: {"SETLOCAL", OperandVar, 1, 1},
	OpDelLocal: {"DELLOCAL", OperandVar, 0, 1},
	OpHasVar:   {"HASVAR", OperandString, 0, 1},
	OpGetVar:   {"GETVAR", OperandString, 0, 1},
	OpSetVar:   {"SETVAR", OperandString, 1, 1},
	OpDelVar:   {"DELVAR", OperandString, 0, 1},

	OpInitProp:   {"INITPROP", OperandNone, 3, 1},
	OpInitGetter: {"INITGETTER", OperandNone, 3, 1},
	OpInitSetter: {"INITSETTER", OperandNone, 3, 1},
	OpGetProp:    {"GETPROP", OperandNone, 2, 1},
	OpGetPropS:   {"GETPROP_S", OperandString, 1, 1},
	OpSetProp:    {"SETPROP", OperandNone, 3, 1},
	OpSetPropS:   {"SETPROP_S", OperandString, 2, 1},
	OpDelProp:    {"DELPROP", OperandNone, 2, 1},
	OpDelPropS:   {"DELPROP_S", OperandString, 1, 1},

	OpIterator: {"ITERATOR", OperandNone, 1, 1},
	OpNextIter: {"NEXTITER", OperandNone, 1, -1},

	OpCall: {"CALL", OperandArgc, -1, 1},
	OpNew:  {"NEW", OperandArgc, -1, 1},

	OpTypeof:  {"TYPEOF", OperandNone, 1, 1},
	OpPos:     {"POS", OperandNone, 1, 1},
	OpNeg:     {"NEG", OperandNone, 1, 1},
	OpBitNot:  {"BITNOT", OperandNone, 1, 1},
	OpLogNot:  {"LOGNOT", OperandNone, 1, 1},
	OpInc:     {"INC", OperandNone, 1, 1},
	OpDec:     {"DEC", OperandNone, 1, 1},
	OpPostInc: {"POSTINC", OperandNone, 1, 2},
	OpPostDec: {"POSTDEC", OperandNone, 1, 2},

	OpMul:        {"MUL", OperandNone, 2, 1},
	OpDiv:        {"DIV", OperandNone, 2, 1},
	OpMod:        {"MOD", OperandNone, 2, 1},
	OpAdd:        {"ADD", OperandNone, 2, 1},
	OpSub:        {"SUB", OperandNone, 2, 1},
	OpShl:        {"SHL", OperandNone, 2, 1},
	OpShr:        {"SHR", OperandNone, 2, 1},
	OpUShr:       {"USHR", OperandNone, 2, 1},
	OpLt:         {"LT", OperandNone, 2, 1},
	OpGt:         {"GT", OperandNone, 2, 1},
	OpLe:         {"LE", OperandNone, 2, 1},
	OpGe:         {"GE", OperandNone, 2, 1},
	OpEq:         {"EQ", OperandNone, 2, 1},
	OpNe:         {"NE", OperandNone, 2, 1},
	OpStrictEq:   {"STRICTEQ", OperandNone, 2, 1},
	OpStrictNe:   {"STRICTNE", OperandNone, 2, 1},
	OpBitAnd:     {"BITAND", OperandNone, 2, 1},
	OpBitXor:     {"BITXOR", OperandNone, 2, 1},
	OpBitOr:      {"BITOR", OperandNone, 2, 1},
	OpInstanceOf: {"INSTANCEOF", OperandNone, 2, 1},
	OpIn:         {"IN", OperandNone, 2, 1},

	OpThrow:    {"THROW", OperandNone, 1, 0},
	OpTry:      {"TRY", OperandAddress, 0, 0},
	OpEndTry:   {"ENDTRY", OperandNone, 0, 0},
	OpCatch:    {"CATCH", OperandString, 1, 0},
	OpEndCatch: {"ENDCATCH", OperandNone, 0, 0},
	OpWith:     {"WITH", OperandNone, 1, 0},
	OpEndWith:  {"ENDWITH", OperandNone, 0, 0},
	OpDebugger: {"DEBUGGER", OperandNone, 0, 0},

	OpJump:   {"JUMP", OperandAddress, 0, 0},
	OpJTrue:  {"JTRUE", OperandAddress, 1, 0},
	OpJFalse: {"JFALSE", OperandAddress, 1, 0},
	OpJCase:  {"JCASE", OperandAddress, -1, -1},
	OpReturn: {"RETURN", OperandNone, 1, 0},
}

// Info returns the metadata for an opcode. Unknown opcodes report an empty name.
func (op Opcode) Info() OpcodeInfo {
	if op >= opcodeCount {
		return OpcodeInfo{}
	}
	return opcodeInfoTable[op]
}

// Valid reports whether op is a defined opcode.
func (op Opcode) Valid() bool {
	return op < opcodeCount
}

// Size returns the instruction length in words, opcode included.
func (op Opcode) Size() int {
	return 1 + op.Info().Operand.Width()
}

// IsJump reports whether the opcode carries an address operand.
func (op Opcode) IsJump() bool {
	return op.Info().Operand == OperandAddress
}

func (op Opcode) String() string {
	if info := op.Info(); info.Name != "" {
		return info.Name
	}
	return fmt.Sprintf("OP_%d", uint16(op))
}

// SplitAddress encodes an absolute address as two instruction words.
func SplitAddress(addr int) (hi, lo uint16) {
	return uint16(uint32(addr) >> 16), uint16(uint32(addr))
}

// JoinAddress decodes a two-word address.
func JoinAddress(hi, lo uint16) int {
	return int(uint32(hi)<<16 | uint32(lo))
}
