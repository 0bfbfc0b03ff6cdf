package model

import "strings"

// Genome is an ordered stack-machine program.
type Genome []Instruction

func (g Genome) Clone() Genome {
	if g == nil {
		return nil
	}
	out := make(Genome, len(g))
	copy(out, g)
	return out
}

// Equal reports element-wise equality.
func (g Genome) Equal(other Genome) bool {
	if len(g) != len(other) {
		return false
	}
	for i := range g {
		if g[i] != other[i] {
			return false
		}
	}
	return true
}

func (g Genome) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, inst := range g {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(inst.String())
	}
	b.WriteByte(']')
	return b.String()
}

// Row holds the inputs of one sample followed by its expected output.
type Row []int32

// Inputs returns every element except the last.
func (r Row) Inputs() []int32 {
	if len(r) == 0 {
		return nil
	}
	return r[:len(r)-1]
}

// Expected returns the last element.
func (r Row) Expected() int32 {
	if len(r) == 0 {
		return 0
	}
	return r[len(r)-1]
}

type Dataset []Row
