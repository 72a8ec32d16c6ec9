package schedule

import (
	"sort"
	"sync"
)

// keyedMutex serializes mutations per entity id. Different employees and
// shifts lock independently, so unrelated mutations run in parallel. Entries
// are never evicted; the table grows with the entity count, which stays small
// for the org sizes this serves.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

// lockAll acquires the mutexes for every key in sorted order, so two callers
// locking overlapping key sets cannot deadlock. Duplicate keys are collapsed.
// The returned func releases everything.
func (k *keyedMutex) lockAll(keys ...string) func() {
	seen := make(map[string]bool, len(keys))
	uniq := keys[:0]
	for _, key := range keys {
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		uniq = append(uniq, key)
	}
	sort.Strings(uniq)

	held := make([]*sync.Mutex, 0, len(uniq))
	for _, key := range uniq {
		m := k.get(key)
		m.Lock()
		held = append(held, m)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func employeeKey(id string) string { return "employee:" + id }
func shiftKey(id string) string    { return "shift:" + id }
