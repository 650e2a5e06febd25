package browse

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"StreamBox/internal/catalog"
)

type CategoryRow struct {
	Category string          `json:"category"`
	Videos   []catalog.Video `json:"videos"`
}

// HomeCache memoizes the grouped home view. It starts empty, is filled by the
// first successful load and is never invalidated. A failed load leaves it
// empty so the next caller loads again. Concurrent first loads share one
// upstream fetch.
type HomeCache struct {
	mu     sync.RWMutex
	rows   []CategoryRow
	loaded bool

	group singleflight.Group
}

func NewHomeCache() *HomeCache {
	return &HomeCache{}
}

func (c *HomeCache) Get() ([]CategoryRow, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.loaded {
		return nil, false
	}
	return slices.Clone(c.rows), true
}

// Load returns the cached rows, calling load only while the cache is empty.
func (c *HomeCache) Load(ctx context.Context, load func(context.Context) ([]CategoryRow, error)) ([]CategoryRow, error) {
	if rows, ok := c.Get(); ok {
		return rows, nil
	}

	v, err, _ := c.group.Do("home", func() (any, error) {
		if rows, ok := c.Get(); ok {
			return rows, nil
		}

		// Shared by every waiter, so one caller going away must not cancel it.
		// The client timeout still bounds the fetch.
		rows, err := load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.rows = rows
		c.loaded = true
		c.mu.Unlock()
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]CategoryRow)), nil
}
