package browse

import (
	"strings"

	"StreamBox/internal/catalog"
)

// MaxRelated caps the related list on a detail view.
const MaxRelated = 18

// GroupByCategory maps every category to the videos whose category equals it
// exactly. Every category is present, with an empty slice when nothing
// matches. Videos with an undeclared category are left out.
func GroupByCategory(videos []catalog.Video, categories []string) map[string][]catalog.Video {
	out := make(map[string][]catalog.Video, len(categories))
	for _, c := range categories {
		out[c] = []catalog.Video{}
	}
	for _, v := range videos {
		if vs, ok := out[v.Category]; ok {
			out[v.Category] = append(vs, v)
		}
	}
	return out
}

// SubstringSearch returns the videos whose title or category contains term,
// ignoring case. A blank term matches nothing.
func SubstringSearch(videos []catalog.Video, term string) []catalog.Video {
	term = strings.TrimSpace(term)
	out := []catalog.Video{}
	if term == "" {
		return out
	}

	for _, v := range videos {
		if containsFold(v.Title, term) || containsFold(v.Category, term) {
			out = append(out, v)
		}
	}
	return out
}

// RelatedVideos returns up to MaxRelated videos from sameCategory that share
// video's category, excluding video itself.
func RelatedVideos(video catalog.Video, sameCategory []catalog.Video) []catalog.Video {
	out := make([]catalog.Video, 0, min(len(sameCategory), MaxRelated))
	for _, v := range sameCategory {
		if len(out) == MaxRelated {
			break
		}
		if v.ID.String() == video.ID.String() {
			continue
		}
		if !strings.EqualFold(v.Category, video.Category) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// containsFold is containment, not equality.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
