package testutil

import (
	"math/rand/v2"
	"sync"
)

// NewSeededRand returns a PCG-backed source that yields the same sequence for
// the same seed.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// ScriptedRand replays a fixed list of choices. IntN(n) returns the next
// scripted value modulo n and wraps around at the end of the script. An empty
// script always returns 0.
//
// Thread-safety: ScriptedRand is safe for concurrent use.
type ScriptedRand struct {
	mu     sync.Mutex
	script []int
	pos    int
}

// NewScriptedRand creates a ScriptedRand replaying choices.
func NewScriptedRand(choices ...int) *ScriptedRand {
	return &ScriptedRand{script: choices}
}

// IntN returns the next scripted choice in [0, n). It panics if n <= 0, like
// math/rand/v2.
func (r *ScriptedRand) IntN(n int) int {
	if n <= 0 {
		panic("testutil: invalid argument to IntN")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.script) == 0 {
		return 0
	}
	v := r.script[r.pos%len(r.script)]
	r.pos++
	if v < 0 {
		v = -v
	}
	return v % n
}

// FixedIDGenerator returns the same catalog id every time.
//
// If id is empty, Generate returns "test-catalog".
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a FixedIDGenerator.
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-catalog"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed id.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
