package lending

import (
	"sync"

	"lendingScope/internal/txn"
)

// Guard tracks which operation kinds have a submission outstanding.
type Guard struct {
	mu       sync.Mutex
	inFlight map[txn.Operation]bool
}

func NewGuard() *Guard {
	return &Guard{inFlight: make(map[txn.Operation]bool)}
}

// Acquire marks op as in flight. It fails with ErrInFlight if op already is.
// The returned release must be called exactly once.
func (g *Guard) Acquire(op txn.Operation) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inFlight[op] {
		return nil, ErrInFlight
	}
	g.inFlight[op] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.inFlight, op)
			g.mu.Unlock()
		})
	}, nil
}

// Busy reports whether any operation is in flight.
func (g *Guard) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inFlight) > 0
}
