package resolver

import (
	"fmt"
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/rickykresslein/yattee/video"
	"github.com/samber/lo"
)

// normalizedTitle returns a lowercased, trimmed string for consistent comparison.
func normalizedTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// FindClosest searches the resolver and returns the result whose title is
// closest to the query by levenshtein distance. Used by non-interactive
// flows where prompting for a pick is not possible.
func FindClosest(src Source, query string) (*video.Video, error) {
	results, err := src.Search(query)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no results found for %q", query)
	}

	normalized := normalizedTitle(query)
	closest := lo.MinBy(results, func(a, b *video.Video) bool {
		return levenshtein.Distance(
			normalized,
			normalizedTitle(a.Title),
		) < levenshtein.Distance(
			normalized,
			normalizedTitle(b.Title),
		)
	})

	return closest, nil
}
