package vm

// Operand stack primitives. Underflow and overflow are host-fatal and
// abort the run through fatalf.

// Push pushes a value onto the operand stack.
func (rt *Runtime) Push(v Value) {
	if len(rt.stack) >= rt.maxStack {
		fatalf("operand stack overflow (limit %d)", rt.maxStack)
	}
	rt.stack = append(rt.stack, v)
}

// Pop removes and returns the top of the stack.
func (rt *Runtime) Pop() Value {
	n := len(rt.stack)
	if n == 0 {
		fatalf("operand stack underflow")
	}
	v := rt.stack[n-1]
	rt.stack[n-1] = Undefined
	rt.stack = rt.stack[:n-1]
	return v
}

// Top returns the value at a negative offset from the top: Top(-1) is the
// topmost value.
func (rt *Runtime) Top(offset int) Value {
	i := len(rt.stack) + offset
	if offset >= 0 || i < 0 {
		fatalf("operand stack underflow")
	}
	return rt.stack[i]
}

// setTop overwrites the value at a negative offset from the top.
func (rt *Runtime) setTop(offset int, v Value) {
	i := len(rt.stack) + offset
	if offset >= 0 || i < 0 {
		fatalf("operand stack underflow")
	}
	rt.stack[i] = v
}

// StackDepth returns the number of values on the operand stack.
func (rt *Runtime) StackDepth() int {
	return len(rt.stack)
}

// truncate shrinks the stack to depth, clearing released slots.
func (rt *Runtime) truncate(depth int) {
	if depth < 0 || depth > len(rt.stack) {
		fatalf("operand stack underflow")
	}
	clear(rt.stack[depth:])
	rt.stack = rt.stack[:depth]
}

// rotate moves the top value down n-1 slots: rotate(3) turns a b c into
// c a b.
func (rt *Runtime) rotate(n int) {
	top := len(rt.stack)
	if n > top {
		fatalf("operand stack underflow")
	}
	v := rt.stack[top-1]
	copy(rt.stack[top-n+1:top], rt.stack[top-n:top-1])
	rt.stack[top-n] = v
}

// insert places v at absolute stack index i, shifting later values up.
func (rt *Runtime) insert(i int, v Value) {
	rt.Push(Undefined)
	copy(rt.stack[i+1:], rt.stack[i:len(rt.stack)-1])
	rt.stack[i] = v
}
