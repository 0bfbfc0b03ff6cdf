package scape

import "stackgp/internal/model"

// FitnessCache memoizes a score together with the exact program it was
// computed from. The entry is valid only while that program is unchanged and
// the same scape is asked; validity is checked on read.
type FitnessCache struct {
	source   Scape
	snapshot model.Genome
	value    float32
	valid    bool
}

// Fitness returns the cached score for genome, scoring it with s only when
// the program differs from the cached snapshot. hit reports whether the
// cached value was reused.
func (c *FitnessCache) Fitness(s Scape, genome model.Genome) (value float32, hit bool) {
	if c.valid && c.source == s && c.snapshot.Equal(genome) {
		return c.value, true
	}
	c.value = s.Score(genome)
	c.source = s
	c.snapshot = genome.Clone()
	c.valid = true
	return c.value, false
}

// Cached returns the last computed value without checking freshness.
func (c *FitnessCache) Cached() (float32, bool) {
	return c.value, c.valid
}

func (c *FitnessCache) Invalidate() {
	c.source = nil
	c.snapshot = nil
	c.value = 0
	c.valid = false
}

func (c *FitnessCache) Clone() FitnessCache {
	return FitnessCache{source: c.source, snapshot: c.snapshot.Clone(), value: c.value, valid: c.valid}
}
