package authsvc

import (
	"slices"
	"sync"

	"github.com/mkrupp/storefront/internal/domain"
)

// sessionBroadcast holds the last published session state and replays it to new subscribers.
// Deliveries happen in publication order on the publishing goroutine. A subscriber may read
// the current state or unsubscribe from inside its callback.
type sessionBroadcast struct {
	deliverMu sync.Mutex // orders deliveries

	mu      sync.Mutex
	current domain.SessionState
	subs    map[uint64]func(domain.SessionState)
	nextID  uint64
}

func newSessionBroadcast(initial domain.SessionState) *sessionBroadcast {
	return &sessionBroadcast{
		current: initial,
		subs:    make(map[uint64]func(domain.SessionState)),
	}
}

func (b *sessionBroadcast) Current() domain.SessionState {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.current
}

func (b *sessionBroadcast) Subscribe(fn func(domain.SessionState)) (unsubscribe func()) {
	b.deliverMu.Lock()
	defer b.deliverMu.Unlock()

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	current := b.current
	b.mu.Unlock()

	fn(current)

	var once sync.Once

	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			delete(b.subs, id)
		})
	}
}

func (b *sessionBroadcast) Publish(state domain.SessionState) {
	b.deliverMu.Lock()
	defer b.deliverMu.Unlock()

	b.mu.Lock()
	b.current = state

	ids := make([]uint64, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	b.mu.Unlock()

	slices.Sort(ids)

	for _, id := range ids {
		b.mu.Lock()
		fn, ok := b.subs[id]
		b.mu.Unlock()

		if ok {
			fn(state)
		}
	}
}
