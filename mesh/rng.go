package mesh

// counterRNG is a tiny splitmix64-based generator seeded from an
// incrementing counter rather than wall-clock time, so that the
// stochastic walker and bootstrap's sampling step are reproducible: the
// same vertex sequence and nominal point spacing always produce the
// same mesh, per the determinism spec calls for in the concurrency
// section. No pack example wires in a dedicated PRNG library, and a
// splitmix64 step is three lines of arithmetic, so this stays on the
// standard library rather than pulling in a dependency for one counter.
type counterRNG struct {
	state uint64
}

func newCounterRNG(seed uint64) *counterRNG {
	return &counterRNG{state: seed}
}

func (r *counterRNG) next() uint64 {
	r.state += 0x9E3779B97F4A7C15
	z := r.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// intn returns a pseudorandom integer in [0, n).
func (r *counterRNG) intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.next() % uint64(n))
}
