package compiler

import (
	"slices"

	"github.com/chazu/teajs/vm"
)

// ---------------------------------------------------------------------------
// Jump tables
//
// Every control construct that break, continue or an exception region
// interacts with pushes a scope while its body is compiled. Pending break
// and continue jumps are recorded on the scope they target and patched
// when the scope is popped.
// ---------------------------------------------------------------------------

type scopeKind uint8

const (
	scopeFor scopeKind = iota
	scopeForIn
	scopeDo
	scopeWhile
	scopeSwitch
	scopeLabel
	scopeTry
	scopeCatch
	scopeWith
)

var scopeNames = [...]string{
	scopeFor:    "for",
	scopeForIn:  "for-in",
	scopeDo:     "do",
	scopeWhile:  "while",
	scopeSwitch: "switch",
	scopeLabel:  "label",
	scopeTry:    "try",
	scopeCatch:  "catch",
	scopeWith:   "with",
}

func (k scopeKind) String() string { return scopeNames[k] }

func (k scopeKind) isLoop() bool {
	switch k {
	case scopeFor, scopeForIn, scopeDo, scopeWhile:
		return true
	}
	return false
}

type scope struct {
	kind      scopeKind
	labels    []string
	start     int
	breaks    []int
	continues []int

	// try and catch regions
	finally  *Node // inlined on every exit, nil if absent
	handlers int   // TRY handlers still live inside the region
	bound    bool  // catch scope created an environment
}

func (s *scope) hasLabel(label string) bool {
	return slices.Contains(s.labels, label)
}

// takeLabels returns and clears the labels waiting for the next loop or
// switch statement.
func (c *Compiler) takeLabels() []string {
	labels := c.labels
	c.labels = nil
	return labels
}

func (c *Compiler) pushScope(kind scopeKind, labels []string) *scope {
	s := &scope{kind: kind, labels: labels, start: c.fn.Here()}
	c.scopes = append(c.scopes, s)
	return s
}

// popScope removes the innermost scope, patching its pending jumps. A
// negative cont means the construct has no continue target.
func (c *Compiler) popScope(s *scope, cont, exit int) {
	if n := len(c.scopes); n == 0 || c.scopes[n-1] != s {
		panic("compiler: unbalanced scope stack")
	}
	c.scopes = c.scopes[:len(c.scopes)-1]
	for _, pos := range s.breaks {
		c.fn.PatchJump(pos, exit)
	}
	for _, pos := range s.continues {
		c.fn.PatchJump(pos, cont)
	}
	switch s.kind {
	case scopeTry, scopeCatch, scopeWith:
		return
	}
	c.fn.Jumps = append(c.fn.Jumps, vm.JumpRecord{
		Kind:     s.kind.String(),
		Labels:   s.labels,
		Start:    s.start,
		Continue: cont,
		Exit:     exit,
	})
}

// labelInUse reports whether an enclosing statement already has label.
func (c *Compiler) labelInUse(label string) bool {
	if slices.Contains(c.labels, label) {
		return true
	}
	for _, s := range c.scopes {
		if s.hasLabel(label) {
			return true
		}
	}
	return false
}

// findTarget resolves a break or continue to an index into the scope
// stack, or -1 after reporting an error.
func (c *Compiler) findTarget(n *Node, isBreak bool) int {
	label := n.String
	for i := len(c.scopes) - 1; i >= 0; i-- {
		s := c.scopes[i]
		if label != "" {
			if !s.hasLabel(label) {
				continue
			}
			if !isBreak && !s.kind.isLoop() {
				c.errorf(n, "continue target %q is not a loop", label)
				return -1
			}
			return i
		}
		if s.kind.isLoop() || (isBreak && s.kind == scopeSwitch) {
			return i
		}
	}
	switch {
	case label != "":
		c.errorf(n, "undefined label %q", label)
	case isBreak:
		c.errorf(n, "break outside of loop or switch")
	default:
		c.errorf(n, "continue outside of loop")
	}
	return -1
}

// unwind emits the exit sequence of every scope above target, innermost
// first. A return unwinds every scope (target -1) and leaves iterators on
// the stack since RETURN discards the frame anyway.
func (c *Compiler) unwind(target int, isReturn bool) {
	for i := len(c.scopes) - 1; i > target; i-- {
		s := c.scopes[i]
		switch s.kind {
		case scopeForIn:
			if !isReturn {
				c.fn.Emit(vm.OpPop)
			}
		case scopeWith:
			c.fn.Emit(vm.OpEndWith)
		case scopeCatch:
			if s.bound {
				c.fn.Emit(vm.OpEndCatch)
			}
			c.leaveTry(s, i)
		case scopeTry:
			c.leaveTry(s, i)
		case scopeFor, scopeDo, scopeWhile, scopeSwitch, scopeLabel:
		}
	}
}

// leaveTry pops the region's live handlers and inlines its finally block.
// The finally block is compiled as if it appeared outside the region.
func (c *Compiler) leaveTry(s *scope, depth int) {
	for i := 0; i < s.handlers; i++ {
		c.fn.Emit(vm.OpEndTry)
	}
	if s.finally == nil {
		return
	}
	saved := c.scopes
	c.scopes = slices.Clone(c.scopes[:depth])
	c.statement(s.finally)
	c.scopes = saved
}

// jump compiles break and continue.
func (c *Compiler) jump(n *Node) {
	isBreak := n.Kind == NodeBreak
	target := c.findTarget(n, isBreak)
	if target < 0 {
		return
	}
	c.unwind(target, false)
	pos := c.fn.EmitJump(vm.OpJump)
	s := c.scopes[target]
	if isBreak {
		s.breaks = append(s.breaks, pos)
	} else {
		s.continues = append(s.continues, pos)
	}
}
