package client

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/nemopss/fin-ng/backend/models"
)

// Cache держит локальную копию транзакций и текущий фильтр. Отфильтрованный
// список пересчитывается при любом изменении тем же предикатом, что и на сервере.
type Cache struct {
	mu       sync.RWMutex
	items    []models.Transaction
	filter   models.Filter
	filtered []models.Transaction
}

func NewCache() *Cache {
	return &Cache{}
}

// Sync replaces the cache with every transaction visible to the session.
func (c *Cache) Sync(ctx context.Context, cl *Client) error {
	items, err := cl.FetchAll(ctx, models.Filter{})
	if err != nil {
		return err
	}
	c.Replace(items)
	return nil
}

func (c *Cache) Replace(items []models.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = slices.Clone(items)
	sortNewestFirst(c.items)
	c.apply()
}

func (c *Cache) SetFilter(f models.Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f
	c.apply()
}

func (c *Cache) Filter() models.Filter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

func (c *Cache) All() []models.Transaction {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.items)
}

func (c *Cache) Filtered() []models.Transaction {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.filtered)
}

// Upsert inserts t or replaces the cached transaction with the same id.
func (c *Cache) Upsert(t models.Transaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := slices.IndexFunc(c.items, func(x models.Transaction) bool { return x.ID == t.ID }); i >= 0 {
		c.items[i] = t
	} else {
		c.items = append(c.items, t)
	}
	sortNewestFirst(c.items)
	c.apply()
}

func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = slices.DeleteFunc(c.items, func(x models.Transaction) bool { return x.ID == id })
	c.apply()
}

func (c *Cache) apply() {
	c.filtered = c.filtered[:0]
	for _, t := range c.items {
		if c.filter.Match(t) {
			c.filtered = append(c.filtered, t)
		}
	}
}

// sortNewestFirst повторяет порядок сервера: date DESC, id DESC.
func sortNewestFirst(items []models.Transaction) {
	slices.SortStableFunc(items, func(a, b models.Transaction) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return compareIDs(b.ID, a.ID)
	})
}

// compareIDs сравнивает числовые id SQL по значению, а hex ObjectID
// одинаковой длины лексикографически. Для обоих хватает сравнения длины, затем строки.
func compareIDs(a, b string) int {
	if c := cmp.Compare(len(a), len(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
