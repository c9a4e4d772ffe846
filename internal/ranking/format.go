package ranking

import (
	"fmt"
	"math"

	"github.com/jonesrussell/reelranker/internal/reelapi"
)

// Format renders a count for display: 2500000 is "2.5M", 1500 is "1.5K",
// 999 is "999". Strings are assumed to be formatted already and pass
// through; nil is "0".
func Format(v any) string {
	switch n := v.(type) {
	case nil:
		return "0"
	case string:
		return n
	case reelapi.Count:
		return reelapi.FormatCount(int64(n))
	case int:
		return reelapi.FormatCount(int64(n))
	case int32:
		return reelapi.FormatCount(int64(n))
	case int64:
		return reelapi.FormatCount(n)
	case uint:
		return reelapi.FormatCount(int64(n))
	case uint32:
		return reelapi.FormatCount(int64(n))
	case uint64:
		if n > math.MaxInt64 {
			return reelapi.FormatCount(math.MaxInt64)
		}
		return reelapi.FormatCount(int64(n))
	case float32:
		return reelapi.FormatCount(int64(math.Round(float64(n))))
	case float64:
		return reelapi.FormatCount(int64(math.Round(n)))
	case fmt.Stringer:
		return n.String()
	default:
		return fmt.Sprint(v)
	}
}

// Percent renders a 0-1 ratio as a percentage with one decimal.
func Percent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}

// Tier is a coarse quality band.
type Tier string

// Tiers.
const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"

	TierGood Tier = "good"
	TierFair Tier = "fair"
	TierPoor Tier = "poor"
)

// Engagement thresholds as ratios.
const (
	HighEngagement   = 0.05
	MediumEngagement = 0.02
)

// EngagementTier bands an engagement rate: above 5% is high, above 2% medium.
func EngagementTier(rate float64) Tier {
	switch {
	case rate > HighEngagement:
		return TierHigh
	case rate > MediumEngagement:
		return TierMedium
	default:
		return TierLow
	}
}

// ScoreTier bands a 0-10 viral score: 8 and up is good, 6 and up fair.
func ScoreTier(score float64) Tier {
	switch {
	case score >= 8:
		return TierGood
	case score >= 6:
		return TierFair
	default:
		return TierPoor
	}
}
