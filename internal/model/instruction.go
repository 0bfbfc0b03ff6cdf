package model

import (
	"fmt"
	"strings"
)

// Opcode tags an Instruction.
type Opcode uint8

const (
	OpInteger Opcode = iota
	OpSum
	OpMultiply
	OpNeg
	OpDuplicate
	OpSwap
)

var opcodeNames = [...]string{
	OpInteger:   "integer",
	OpSum:       "sum",
	OpMultiply:  "multiply",
	OpNeg:       "neg",
	OpDuplicate: "duplicate",
	OpSwap:      "swap",
}

func (o Opcode) String() string {
	if int(o) < len(opcodeNames) {
		return opcodeNames[o]
	}
	return fmt.Sprintf("opcode(%d)", uint8(o))
}

// Valid reports whether o is part of the instruction set.
func (o Opcode) Valid() bool {
	return o <= OpSwap
}

// ParseOpcode resolves an opcode by its lower-case name.
func ParseOpcode(name string) (Opcode, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, candidate := range opcodeNames {
		if candidate == name {
			return Opcode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown opcode: %q", name)
}

// Instruction is one stack-machine operation. Value is only meaningful for
// OpInteger.
type Instruction struct {
	Op    Opcode
	Value int32
}

var (
	Sum       = Instruction{Op: OpSum}
	Multiply  = Instruction{Op: OpMultiply}
	Neg       = Instruction{Op: OpNeg}
	Duplicate = Instruction{Op: OpDuplicate}
	Swap      = Instruction{Op: OpSwap}
)

func Integer(v int32) Instruction {
	return Instruction{Op: OpInteger, Value: v}
}

// Arity is the number of operands the instruction consumes.
func (i Instruction) Arity() int {
	switch i.Op {
	case OpSum, OpMultiply, OpSwap:
		return 2
	case OpNeg, OpDuplicate:
		return 1
	default:
		return 0
	}
}

func (i Instruction) String() string {
	switch i.Op {
	case OpInteger:
		return fmt.Sprintf("Integer(%d)", i.Value)
	case OpSum:
		return "Sum"
	case OpMultiply:
		return "Multiply"
	case OpNeg:
		return "Neg"
	case OpDuplicate:
		return "Duplicate"
	case OpSwap:
		return "Swap"
	default:
		return i.Op.String()
	}
}
