package systems

// Rand is the random source the factory draws from.
// *math/rand.Rand satisfies it; tests seed one for reproducible output.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// between returns a value in [lo, hi). A degenerate range returns lo
// without consuming randomness.
func between(rng Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}

// jitter returns a value in [-amount, +amount).
func jitter(rng Rand, amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	return (rng.Float64()*2 - 1) * amount
}
