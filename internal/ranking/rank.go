package ranking

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jonesrussell/reelranker/internal/reelapi"
)

// SortKey selects the metric Rank orders by.
type SortKey string

// Sort keys.
const (
	SortByViews      SortKey = "views"
	SortByLikes      SortKey = "likes"
	SortByEngagement SortKey = "engagement"
)

// ErrUnknownSortKey is returned for a key other than views, likes or engagement.
var ErrUnknownSortKey = errors.New("unknown sort key")

// SortKeys lists the accepted keys.
func SortKeys() []SortKey {
	return []SortKey{SortByViews, SortByLikes, SortByEngagement}
}

// ParseSortKey parses a user supplied key, case-insensitively.
func ParseSortKey(s string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(SortKeys(), key) {
		return key, nil
	}
	return "", fmt.Errorf("%w: %q (want views, likes or engagement)", ErrUnknownSortKey, s)
}

// Rank returns a copy of videos ordered by key, highest first. Ties keep
// their input order and videos itself is not modified.
func Rank(videos []reelapi.VideoSummary, key SortKey) ([]reelapi.VideoSummary, error) {
	var cmp func(a, b reelapi.VideoSummary) int
	switch key {
	case SortByViews:
		cmp = func(a, b reelapi.VideoSummary) int { return compareDesc(a.Views, b.Views) }
	case SortByLikes:
		cmp = func(a, b reelapi.VideoSummary) int { return compareDesc(a.Likes, b.Likes) }
	case SortByEngagement:
		cmp = func(a, b reelapi.VideoSummary) int { return compareDesc(a.EngagementRate, b.EngagementRate) }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSortKey, string(key))
	}

	ranked := slices.Clone(videos)
	slices.SortStableFunc(ranked, cmp)
	return ranked, nil
}

func compareDesc[T reelapi.Count | float64](a, b T) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
