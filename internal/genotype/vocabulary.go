package genotype

import (
	"fmt"
	"math/rand"
	"strings"

	"stackgp/internal/model"
)

// DefaultVocabulary is the operator set drawn from when synthesizing or
// growing programs. Integer literals only enter a program as arguments.
var DefaultVocabulary = []model.Opcode{
	model.OpSum,
	model.OpMultiply,
	model.OpNeg,
	model.OpDuplicate,
	model.OpSwap,
}

// ValidateVocabulary rejects empty vocabularies and literal opcodes.
func ValidateVocabulary(vocab []model.Opcode) error {
	if len(vocab) == 0 {
		return fmt.Errorf("vocabulary is empty")
	}
	for _, op := range vocab {
		if !op.Valid() {
			return fmt.Errorf("unknown opcode in vocabulary: %s", op)
		}
		if op == model.OpInteger {
			return fmt.Errorf("integer literals cannot be synthesized")
		}
	}
	return nil
}

// ParseVocabulary parses a comma separated opcode list such as "neg,sum,multiply".
func ParseVocabulary(list string) ([]model.Opcode, error) {
	if strings.TrimSpace(list) == "" {
		return append([]model.Opcode(nil), DefaultVocabulary...), nil
	}
	parts := strings.Split(list, ",")
	out := make([]model.Opcode, 0, len(parts))
	for _, part := range parts {
		op, err := model.ParseOpcode(part)
		if err != nil {
			return nil, err
		}
		out = append(out, op)
	}
	if err := ValidateVocabulary(out); err != nil {
		return nil, err
	}
	return out, nil
}

// RandomOperator draws an operator uniformly from vocab, falling back to
// DefaultVocabulary when vocab is empty.
func RandomOperator(rng *rand.Rand, vocab []model.Opcode) (model.Instruction, error) {
	if len(vocab) == 0 {
		vocab = DefaultVocabulary
	}
	op, err := RandomElement(rng, vocab)
	if err != nil {
		return model.Instruction{}, err
	}
	return model.Instruction{Op: op}, nil
}
