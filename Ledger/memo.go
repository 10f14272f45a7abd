package Ledger

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// Memo caches Resolve results. A vendor edit moves UpdatedAt and a ledger
// insert or delete changes the entry count or the newest id, so either one
// produces a new key and the stale result simply ages out.
type Memo struct {
	store *cache.Cache
}

// NewMemo creates a memo whose results live for ttl.
func NewMemo(ttl time.Duration) *Memo {
	return &Memo{store: cache.New(ttl, 2*ttl)}
}

// Resolve returns the cached balance for v and its entries, computing it on a miss.
// entries must already be filtered to v; unrelated entries would only waste the key.
func (m *Memo) Resolve(v Vendor, entries []Entry) Balance {
	key := memoKey(v, entries)
	if cached, found := m.store.Get(key); found {
		return cached.(Balance)
	}
	b := Resolve(v, entries)
	m.store.SetDefault(key, b)
	return b
}

// Flush drops every cached balance.
func (m *Memo) Flush() {
	m.store.Flush()
}

// Len reports how many balances are cached.
func (m *Memo) Len() int {
	return m.store.ItemCount()
}

func memoKey(v Vendor, entries []Entry) string {
	var newest uint
	for _, e := range entries {
		if e.ID > newest {
			newest = e.ID
		}
	}
	return fmt.Sprintf("%s\x00%d\x00%d\x00%d\x00%d", v.Type, v.ID, v.UpdatedAt.UnixNano(), len(entries), newest)
}
