package ledgerservice

import (
	"context"
	"sort"
	"sync"
)

// accountLocks hands out per-account mutation rights.
//
// A slot lives only while someone holds or waits for it.
type accountLocks struct {
	mu    sync.Mutex
	slots map[int64]*lockSlot
}

type lockSlot struct {
	sem  chan struct{}
	refs int
}

func newAccountLocks() *accountLocks {
	return &accountLocks{slots: make(map[int64]*lockSlot)}
}

// acquire takes the rights on all ids in ascending order and returns the function releasing them.
// If ctx is done while waiting, the rights taken so far are given back.
func (l *accountLocks) acquire(ctx context.Context, ids ...int64) (func(), error) {
	ordered := uniqueSorted(ids)
	held := make([]int64, 0, len(ordered))

	for _, id := range ordered {
		slot := l.ref(id)

		select {
		case slot.sem <- struct{}{}:
			held = append(held, id)
		case <-ctx.Done():
			l.unref(id)
			l.release(held)

			return nil, ctx.Err()
		}
	}

	var once sync.Once

	return func() {
		once.Do(func() { l.release(held) })
	}, nil
}

func (l *accountLocks) release(held []int64) {
	for i := len(held) - 1; i >= 0; i-- {
		l.mu.Lock()
		slot := l.slots[held[i]]
		l.mu.Unlock()

		<-slot.sem
		l.unref(held[i])
	}
}

func (l *accountLocks) ref(id int64) *lockSlot {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot, ok := l.slots[id]
	if !ok {
		slot = &lockSlot{sem: make(chan struct{}, 1)}
		l.slots[id] = slot
	}

	slot.refs++

	return slot
}

func (l *accountLocks) unref(id int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	slot := l.slots[id]

	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, id)
	}
}

// size returns the number of live slots.
func (l *accountLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.slots)
}

func uniqueSorted(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	out = append(out, ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	n := 0

	for i, id := range out {
		if i > 0 && id == out[n-1] {
			continue
		}

		out[n] = id
		n++
	}

	return out[:n]
}
