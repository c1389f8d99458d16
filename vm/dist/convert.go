package dist

import (
	"fmt"

	"github.com/chazu/teajs/vm"
)

// NewImage flattens a compiled script into an image tagged with the hash
// of its source.
func NewImage(name string, hash [16]byte, fn *vm.Function) *Image {
	return &Image{
		Version:  FormatVersion,
		Hash:     hash,
		Name:     name,
		Function: FunctionToImage(fn),
	}
}

// FunctionToImage converts fn and its nested functions.
func FunctionToImage(fn *vm.Function) *FunctionImage {
	img := &FunctionImage{
		Name:      fn.Name,
		NumParams: fn.NumParams,
		Code:      fn.Code,
		Numbers:   fn.Numbers,
		Strings:   fn.Strings,
		Vars:      fn.Vars,
	}
	if fn.Script {
		img.Flags |= FlagScript
	}
	if fn.Strict {
		img.Flags |= FlagStrict
	}
	if fn.UsesArguments {
		img.Flags |= FlagArguments
	}
	if fn.Expression {
		img.Flags |= FlagExpression
	}
	for _, child := range fn.Funcs {
		img.Funcs = append(img.Funcs, FunctionToImage(child))
	}
	for _, l := range fn.Lines {
		img.Lines = append(img.Lines, LineImage{PC: l.PC, Line: l.Line})
	}
	for _, j := range fn.Jumps {
		img.Jumps = append(img.Jumps, JumpImage{
			Kind:     j.Kind,
			Labels:   j.Labels,
			Start:    j.Start,
			Continue: j.Continue,
			Exit:     j.Exit,
		})
	}
	return img
}

// Load rebuilds the compiled script held by the image and validates
// its bytecode.
func (img *Image) Load() (*vm.Function, error) {
	if img.Version != FormatVersion {
		return nil, fmt.Errorf("dist: image format %d, want %d", img.Version, FormatVersion)
	}
	if img.Function == nil {
		return nil, fmt.Errorf("dist: image %q has no function", img.Name)
	}
	fn := img.Function.function()
	if !fn.Script {
		return nil, fmt.Errorf("dist: image %q does not hold a script", img.Name)
	}
	if err := fn.Validate(); err != nil {
		return nil, fmt.Errorf("dist: invalid image %q: %w", img.Name, err)
	}
	return fn, nil
}

func (fi *FunctionImage) function() *vm.Function {
	fn := vm.NewFunction(fi.Name, fi.Flags&FlagScript != 0)
	fn.Strict = fi.Flags&FlagStrict != 0
	fn.UsesArguments = fi.Flags&FlagArguments != 0
	fn.Expression = fi.Flags&FlagExpression != 0
	fn.NumParams = fi.NumParams
	fn.Code = append(fn.Code, fi.Code...)
	fn.Numbers = fi.Numbers
	fn.Strings = fi.Strings
	fn.Vars = fi.Vars
	for _, child := range fi.Funcs {
		if child == nil {
			fn.Funcs = append(fn.Funcs, nil)
			continue
		}
		fn.Funcs = append(fn.Funcs, child.function())
	}
	for _, l := range fi.Lines {
		fn.Lines = append(fn.Lines, vm.LineEntry{PC: l.PC, Line: l.Line})
	}
	for _, j := range fi.Jumps {
		fn.Jumps = append(fn.Jumps, vm.JumpRecord{
			Kind:     j.Kind,
			Labels:   j.Labels,
			Start:    j.Start,
			Continue: j.Continue,
			Exit:     j.Exit,
		})
	}
	return fn
}
