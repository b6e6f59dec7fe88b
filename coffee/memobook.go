package coffee

import (
	"sync"

	"buymeacoffee/contract"
)

// MemoBook is the session's memo list. Append is its only mutation: memos
// are never removed or changed once held. Both the live listener and
// refreshes write through it, so deliveries from either source are
// serialised in arrival order.
type MemoBook struct {
	mu      sync.RWMutex
	memos   []contract.Memo
	counts  map[contract.MemoKey]int
	changed chan struct{}
}

func NewMemoBook() *MemoBook {
	return &MemoBook{
		counts:  make(map[contract.MemoKey]int),
		changed: make(chan struct{}, 1),
	}
}

// Add appends m unless a memo with the same key is already held. It reports
// whether the list grew.
func (b *MemoBook) Add(m contract.Memo) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.counts[m.Key()] > 0 {
		return false
	}
	b.appendLocked(m)
	b.notify()
	return true
}

// Merge folds a full chain snapshot into the book. Keys are counted as a
// multiset, so only occurrences beyond those already held are appended, in
// snapshot order. It returns the number of memos appended.
func (b *MemoBook) Merge(snapshot []contract.Memo) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	seen := make(map[contract.MemoKey]int, len(snapshot))
	added := 0
	for _, m := range snapshot {
		k := m.Key()
		seen[k]++
		if seen[k] > b.counts[k] {
			b.appendLocked(m)
			added++
		}
	}
	if added > 0 {
		b.notify()
	}
	return added
}

func (b *MemoBook) appendLocked(m contract.Memo) {
	b.memos = append(b.memos, m)
	b.counts[m.Key()]++
}

// notify coalesces change signals; readers re-read the snapshot.
func (b *MemoBook) notify() {
	select {
	case b.changed <- struct{}{}:
	default:
	}
}

// Snapshot returns a copy of the memos in insertion order.
func (b *MemoBook) Snapshot() []contract.Memo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]contract.Memo, len(b.memos))
	copy(out, b.memos)
	return out
}

func (b *MemoBook) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.memos)
}

// Changed signals after the book grows. Signals are coalesced.
func (b *MemoBook) Changed() <-chan struct{} {
	return b.changed
}
