package genotype

import "stackgp/internal/model"

// Evaluate runs genome with args pushed ahead of it and returns the
// bottom-most operand left on the stack, or 0 when the stack is empty.
func Evaluate(genome model.Genome, args []int32) int32 {
	var m Machine
	return m.Run(genome, args)
}

// Machine is a reusable operand stack. It is not safe for concurrent use.
type Machine struct {
	stack []int32
}

func (m *Machine) Run(genome model.Genome, args []int32) int32 {
	m.stack = append(m.stack[:0], args...)
	for _, inst := range genome {
		m.step(inst)
	}
	if len(m.stack) == 0 {
		return 0
	}
	return m.stack[0]
}

// step applies one instruction. Instructions without enough operands are
// skipped. Arithmetic wraps on overflow.
func (m *Machine) step(inst model.Instruction) {
	if len(m.stack) < inst.Arity() {
		return
	}
	top := len(m.stack) - 1
	switch inst.Op {
	case model.OpInteger:
		m.stack = append(m.stack, inst.Value)
	case model.OpSum:
		m.stack[top-1] += m.stack[top]
		m.stack = m.stack[:top]
	case model.OpMultiply:
		m.stack[top-1] *= m.stack[top]
		m.stack = m.stack[:top]
	case model.OpNeg:
		m.stack[top] = -m.stack[top]
	case model.OpDuplicate:
		m.stack = append(m.stack, m.stack[top])
	case model.OpSwap:
		m.stack[top-1], m.stack[top] = m.stack[top], m.stack[top-1]
	}
}
