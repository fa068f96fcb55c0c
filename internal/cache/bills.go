package cache

import (
	"context"
	"strings"
	"time"

	"billed/internal/core"
	"billed/internal/store"
)

var _ store.BillLister = (*BillListCache)(nil)

// BillListCache memoizes ListBills per user. Writers call Invalidate after a
// successful submission so the next list reflects it.
type BillListCache struct {
	next  store.BillLister
	cache *LRUCache[[]core.Bill]
}

func NewBillListCache(next store.BillLister, maxUsers int, ttl time.Duration) *BillListCache {
	return &BillListCache{next: next, cache: NewLRUCache[[]core.Bill](maxUsers, ttl)}
}

func (c *BillListCache) ListBills(ctx context.Context, email string) ([]core.Bill, error) {
	key := strings.ToLower(email)
	if bills, ok := c.cache.Get(key); ok {
		return append([]core.Bill(nil), bills...), nil
	}

	bills, err := c.next.ListBills(ctx, email)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, append([]core.Bill(nil), bills...))
	return bills, nil
}

func (c *BillListCache) Invalidate(email string) {
	c.cache.Delete(strings.ToLower(email))
}

// CleanExpired lets a Manager sweep the cache.
func (c *BillListCache) CleanExpired() int {
	return c.cache.CleanExpired()
}
