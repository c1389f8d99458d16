package vm

import "fmt"

// Validate checks that fn and its nested functions decode cleanly: every
// opcode is known, no instruction is truncated, operand indices are inside
// their tables and jump targets land on instruction boundaries. Functions
// loaded from outside the compiler are validated before they run.
func (f *Function) Validate() error {
	return f.validate(displayName(f))
}

func (f *Function) validate(path string) error {
	if f.NumParams < 0 || f.NumParams > len(f.Vars) {
		return fmt.Errorf("%s: %d parameters but %d variables", path, f.NumParams, len(f.Vars))
	}

	starts := make(map[int]bool)
	var targets []int
	for pc := 0; pc < len(f.Code); {
		op := Opcode(f.Code[pc])
		if !op.Valid() {
			return fmt.Errorf("%s: unknown opcode %d at pc %d", path, f.Code[pc], pc)
		}
		if pc+op.Size() > len(f.Code) {
			return fmt.Errorf("%s: truncated %s at pc %d", path, op, pc)
		}
		starts[pc] = true
		if err := f.checkOperand(op, pc); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if op.IsJump() {
			targets = append(targets, JoinAddress(f.Code[pc+1], f.Code[pc+2]))
		}
		pc += op.Size()
	}
	for _, t := range targets {
		if t != len(f.Code) && !starts[t] {
			return fmt.Errorf("%s: jump target %d is not an instruction", path, t)
		}
	}

	for i, child := range f.Funcs {
		if child == nil {
			return fmt.Errorf("%s: nil function at index %d", path, i)
		}
		if child.Script {
			return fmt.Errorf("%s: nested function %d is a script", path, i)
		}
		if err := child.validate(fmt.Sprintf("%s/%d/%s", path, i, displayName(child))); err != nil {
			return err
		}
	}
	return nil
}

func (f *Function) checkOperand(op Opcode, pc int) error {
	var limit int
	switch op.Info().Operand {
	case OperandNumber:
		limit = len(f.Numbers)
	case OperandString:
		limit = len(f.Strings)
	case OperandVar:
		limit = len(f.Vars)
	case OperandFunc:
		limit = len(f.Funcs)
	case OperandNone, OperandInt, OperandArgc, OperandAddress:
		return nil
	}
	if i := int(f.Code[pc+1]); i >= limit {
		return fmt.Errorf("%s operand %d out of range (%d entries) at pc %d", op, i, limit, pc)
	}
	return nil
}
