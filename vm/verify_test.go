package vm

import (
	"strings"
	"testing"
)

func validFunction() *Function {
	fn := NewFunction("main", true)
	pos := fn.EmitJump(OpJump)
	fn.EmitArg(OpString, uint16(fn.AddString("x")))
	fn.PatchJumpHere(pos)
	fn.Emit(OpUndef)
	fn.Emit(OpReturn)
	child := NewFunction("f", false)
	child.Vars = []string{"a"}
	child.NumParams = 1
	child.EmitArg(OpGetLocal, 0)
	child.Emit(OpReturn)
	fn.AddFunc(child)
	return fn
}

func TestValidate(t *testing.T) {
	if err := validFunction().Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	tests := []struct {
		name   string
		breaks func(fn *Function)
		want   string
	}{
		{"unknown opcode", func(fn *Function) { fn.Code[0] = 9999 }, "unknown opcode"},
		{"truncated", func(fn *Function) { fn.Code = fn.Code[:2] }, "truncated JUMP"},
		{"string index", func(fn *Function) { fn.Strings = nil }, "STRING operand 0 out of range"},
		{"mid-instruction jump", func(fn *Function) { fn.Code[2] = 4 }, "jump target 4"},
		{"params", func(fn *Function) { fn.NumParams = 3 }, "3 parameters"},
		{"nested", func(fn *Function) { fn.Funcs[0].Vars = nil; fn.Funcs[0].NumParams = 0 }, "main/0/f"},
		{"nested script", func(fn *Function) { fn.Funcs[0].Script = true }, "is a script"},
	}
	for _, tt := range tests {
		fn := validFunction()
		tt.breaks(fn)
		err := fn.Validate()
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: Validate() = %v, want error containing %q", tt.name, err, tt.want)
		}
	}
}
