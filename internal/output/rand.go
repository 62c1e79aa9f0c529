package output

import (
	"math/rand"
	"time"
)

// Rand picks frame counts for keystrokes.
type Rand interface {
	// IntRange returns an integer in [lo, hi]. When hi < lo it returns lo.
	IntRange(lo, hi int) int
}

type mathRand struct {
	r *rand.Rand
}

// NewRand returns a Rand seeded with seed, or with the current time when seed is 0.
func NewRand(seed int64) Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &mathRand{r: rand.New(rand.NewSource(seed))}
}

func (m *mathRand) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + m.r.Intn(hi-lo+1)
}
