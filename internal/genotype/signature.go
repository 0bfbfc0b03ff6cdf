package genotype

import (
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"

	"stackgp/internal/model"
)

// Fingerprint is a stable content hash of a program, used to count distinct
// programs in a population.
func Fingerprint(genome model.Genome) string {
	h := sha1.New()
	var buf [5]byte
	for _, inst := range genome {
		buf[0] = byte(inst.Op)
		binary.LittleEndian.PutUint32(buf[1:], uint32(inst.Value))
		_, _ = h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Distinct counts unique programs.
func Distinct(genomes []model.Genome) int {
	seen := make(map[string]struct{}, len(genomes))
	for _, g := range genomes {
		seen[Fingerprint(g)] = struct{}{}
	}
	return len(seen)
}
