package browse

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"StreamBox/internal/catalog"
)

type Detail struct {
	Video   catalog.Video   `json:"video"`
	Related []catalog.Video `json:"related"`
}

// Browser composes the catalog into the views a front end renders.
type Browser struct {
	Catalog CatalogAPI
	Cache   *HomeCache
	Log     *zap.Logger
}

func NewBrowser(api CatalogAPI, cache *HomeCache, log *zap.Logger) *Browser {
	if cache == nil {
		cache = NewHomeCache()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Browser{Catalog: api, Cache: cache, Log: log}
}

// Home returns one row per category in declaration order, empty rows
// included.
func (b *Browser) Home(ctx context.Context) ([]CategoryRow, error) {
	return b.Cache.Load(ctx, b.loadHome)
}

func (b *Browser) loadHome(ctx context.Context) ([]CategoryRow, error) {
	categories, err := b.Catalog.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	videos, err := b.Catalog.ListVideos(ctx, "")
	if err != nil {
		return nil, err
	}

	grouped := GroupByCategory(videos, categories)
	rows := make([]CategoryRow, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, CategoryRow{Category: c, Videos: grouped[c]})
	}

	b.Log.Info("home view loaded",
		zap.Int("categories", len(categories)),
		zap.Int("videos", len(videos)),
	)
	return rows, nil
}

// Search fetches the full list and filters it locally. A blank term returns
// no results without calling the catalog.
func (b *Browser) Search(ctx context.Context, term string) ([]catalog.Video, error) {
	if strings.TrimSpace(term) == "" {
		return []catalog.Video{}, nil
	}

	videos, err := b.Catalog.ListVideos(ctx, "")
	if err != nil {
		return nil, err
	}
	return SubstringSearch(videos, term), nil
}

// Detail returns the video and its related list. If the related list cannot
// be fetched the detail is still returned with no related videos.
func (b *Browser) Detail(ctx context.Context, id string) (Detail, error) {
	v, err := b.Catalog.GetVideo(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	d := Detail{Video: v, Related: []catalog.Video{}}

	same, err := b.Catalog.ListVideos(ctx, v.Category)
	if err != nil {
		b.Log.Warn("related videos unavailable",
			zap.Error(err),
			zap.String("id", id),
			zap.String("category", v.Category),
		)
		return d, nil
	}

	d.Related = RelatedVideos(v, same)
	return d, nil
}
