package vm

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of fn and its nested
// functions. It only relies on the function's own tables.
func Disassemble(fn *Function) string {
	var sb strings.Builder
	disassemble(&sb, fn, "")
	return sb.String()
}

func disassemble(sb *strings.Builder, fn *Function, path string) {
	kind := "function"
	if fn.Script {
		kind = "script"
	}
	fmt.Fprintf(sb, "; === %s %s%s ===\n", kind, path, displayName(fn))

	var flags []string
	if fn.Strict {
		flags = append(flags, "STRICT")
	}
	if fn.UsesArguments {
		flags = append(flags, "ARGUMENTS")
	}
	if fn.Expression {
		flags = append(flags, "EXPRESSION")
	}
	if len(flags) > 0 {
		fmt.Fprintf(sb, "; Flags: [%s]\n", strings.Join(flags, " "))
	}
	if fn.NumParams > 0 {
		fmt.Fprintf(sb, "; Parameters (%d): %s\n", fn.NumParams, strings.Join(fn.Vars[:fn.NumParams], ", "))
	}
	if len(fn.Vars) > fn.NumParams {
		fmt.Fprintf(sb, "; Hoisted: %s\n", strings.Join(fn.Vars[fn.NumParams:], ", "))
	}
	if len(fn.Numbers) > 0 {
		sb.WriteString("; Numbers:\n")
		for i, n := range fn.Numbers {
			fmt.Fprintf(sb, ";   [%3d] %s\n", i, FormatNumber(n))
		}
	}
	if len(fn.Strings) > 0 {
		sb.WriteString("; Strings:\n")
		for i, s := range fn.Strings {
			fmt.Fprintf(sb, ";   [%3d] %q\n", i, truncate(s, 40))
		}
	}
	for _, j := range fn.Jumps {
		fmt.Fprintf(sb, "; Jump table: %s start=%04d exit=%04d", j.Kind, j.Start, j.Exit)
		if j.Continue >= 0 {
			fmt.Fprintf(sb, " continue=%04d", j.Continue)
		}
		if len(j.Labels) > 0 {
			fmt.Fprintf(sb, " labels=%s", strings.Join(j.Labels, ","))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("; Code:\n")
	line := 0
	for pc := 0; pc < len(fn.Code); {
		text, size := DisassembleInstruction(fn, pc)
		if l := fn.LineAt(pc); l != line && l > 0 {
			line = l
			fmt.Fprintf(sb, "%04d  %-32s ; line %d\n", pc, text, l)
		} else {
			fmt.Fprintf(sb, "%04d  %s\n", pc, text)
		}
		pc += size
	}
	sb.WriteString("\n")

	for i, sub := range fn.Funcs {
		disassemble(sb, sub, fmt.Sprintf("%s%d/", path, i))
	}
}

// DisassembleInstruction formats the instruction at pc and returns its
// length in words.
func DisassembleInstruction(fn *Function, pc int) (string, int) {
	op := Opcode(fn.Code[pc])
	if !op.Valid() {
		return fmt.Sprintf("<bad opcode %d>", uint16(op)), 1
	}
	info := op.Info()
	size := op.Size()
	if pc+size > len(fn.Code) {
		return fmt.Sprintf("%s <truncated>", info.Name), len(fn.Code) - pc
	}
	if info.Operand == OperandNone {
		return info.Name, 1
	}
	w := fn.Code[pc+1]
	switch info.Operand {
	case OperandInt:
		return fmt.Sprintf("%-10s %d", info.Name, int16(w)), size
	case OperandArgc:
		return fmt.Sprintf("%-10s %d", info.Name, w), size
	case OperandNumber:
		return fmt.Sprintf("%-10s %d ; %s", info.Name, w, lookup(fn.Numbers, int(w), FormatNumber)), size
	case OperandString:
		return fmt.Sprintf("%-10s %d ; %s", info.Name, w, lookup(fn.Strings, int(w), quote)), size
	case OperandVar:
		return fmt.Sprintf("%-10s %d ; %s", info.Name, w, lookup(fn.Vars, int(w), ident)), size
	case OperandFunc:
		return fmt.Sprintf("%-10s %d ; %s", info.Name, w, lookup(fn.Funcs, int(w), displayName)), size
	case OperandAddress:
		return fmt.Sprintf("%-10s %04d", info.Name, JoinAddress(w, fn.Code[pc+2])), size
	}
	return info.Name, size
}

func lookup[T any](table []T, i int, format func(T) string) string {
	if i >= len(table) {
		return "<out of range>"
	}
	return format(table[i])
}

func quote(s string) string { return fmt.Sprintf("%q", truncate(s, 20)) }
func ident(s string) string { return s }

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-3] + "..."
	}
	return s
}
