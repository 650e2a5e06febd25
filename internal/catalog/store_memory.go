package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Catalog is the immutable snapshot served for the process lifetime. All
// methods are safe for concurrent use because nothing writes after Load.
type Catalog struct {
	source     string
	loadedAt   time.Time
	categories []string
	videos     []Video
}

// Load reads src once. Any failure is wrapped in ErrLoad and is not retried.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	ds, err := src.Dataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, src.Name(), err)
	}
	return newCatalog(src.Name(), ds)
}

// FromDataset builds a catalog from an in-memory dataset, applying the same
// validation as Load.
func FromDataset(ds Dataset) (*Catalog, error) {
	return newCatalog("memory", ds)
}

func newCatalog(source string, ds Dataset) (*Catalog, error) {
	if err := validateDataset(ds); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, source, err)
	}
	return &Catalog{
		source:     source,
		loadedAt:   time.Now().UTC(),
		categories: slices.Clone(ds.Categories),
		videos:     slices.Clone(ds.Videos),
	}, nil
}

func (c *Catalog) Source() string      { return c.source }
func (c *Catalog) LoadedAt() time.Time { return c.loadedAt }
func (c *Catalog) Len() int            { return len(c.videos) }

// Categories returns the categories in declaration order.
func (c *Catalog) Categories() []string { return slices.Clone(c.categories) }

// Videos returns every video in load order.
func (c *Catalog) Videos() []Video { return slices.Clone(c.videos) }

func (c *Catalog) ListCategories() []string { return c.Categories() }

// ListVideos returns the videos whose category equals filter, ignoring case.
// An empty filter returns the whole catalog. Order follows the load order.
func (c *Catalog) ListVideos(filter string) []Video {
	if filter == "" {
		return c.Videos()
	}

	out := make([]Video, 0, len(c.videos))
	for _, v := range c.videos {
		if categoryMatches(v.Category, filter) {
			out = append(out, v)
		}
	}
	return out
}

// GetVideo returns the first video whose id has the textual form id.
// Duplicate ids are not rejected at load; the earliest record wins.
func (c *Catalog) GetVideo(id string) (Video, error) {
	for _, v := range c.videos {
		if v.ID.String() == id {
			return v, nil
		}
	}
	return Video{}, ErrNotFound
}

// categoryMatches is equality, not containment.
func categoryMatches(category, filter string) bool {
	return strings.EqualFold(category, filter)
}
