package browser

import (
	"fmt"
	"sync/atomic"
)

// ReentrancyGuard bounds how many initializations may be in flight on one
// manager, counting callers that are waiting as well as the one connecting.
type ReentrancyGuard struct {
	maxDepth int32
	depth    atomic.Int32
}

// NewReentrancyGuard creates a guard admitting at most maxDepth callers.
func NewReentrancyGuard(maxDepth int) *ReentrancyGuard {
	if maxDepth < 1 {
		maxDepth = 1
	}
	return &ReentrancyGuard{maxDepth: int32(maxDepth)}
}

// Enter admits the caller or fails with ErrDepthExceeded. The returned
// release must be called exactly once, typically via defer.
func (g *ReentrancyGuard) Enter() (release func(), err error) {
	for {
		cur := g.depth.Load()
		if cur >= g.maxDepth {
			return nil, fmt.Errorf("%w: %d initializations already in flight (max %d)", ErrDepthExceeded, cur, g.maxDepth)
		}
		if g.depth.CompareAndSwap(cur, cur+1) {
			break
		}
	}

	var released atomic.Bool
	return func() {
		if released.CompareAndSwap(false, true) {
			g.depth.Add(-1)
		}
	}, nil
}

// Depth returns the number of admitted callers.
func (g *ReentrancyGuard) Depth() int {
	return int(g.depth.Load())
}
