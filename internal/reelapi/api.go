// Package reelapi binds each remote ReelRanker operation to its verb, path
// and payload types. Every call goes through a Caller; nothing here talks
// to the network directly.
package reelapi

import (
	"context"
	"net/url"
)

// Remote paths.
const (
	PathGenerate         = "/api/v1/generate"
	PathAnalyzeTopic     = "/api/v1/generate/analyze-topic"
	PathGenerateHashtags = "/api/v1/generate/hashtags"
	PathScore            = "/api/v1/score"
	PathScoreBatch       = "/api/v1/score/batch"
	PathShortsTrending   = "/api/v1/shorts/trending"
	PathShortsSearch     = "/api/v1/shorts/search"
	PathShortsVideo      = "/api/v1/shorts/video/"
	PathTopicsTrending   = "/api/v1/topics/trending"
	PathTopicAnalysis    = "/api/v1/topics/analysis/"
	PathTrendsViral      = "/api/v1/trends/viral"
	PathTrendAnalysis    = "/api/v1/trends/analysis/"
	PathHealth           = "/health"
	PathStatus           = "/api/v1/status"
)

// Caller performs decoded JSON calls. *transport.Client satisfies it.
type Caller interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// API bundles every facade over one Caller.
type API struct {
	Content *ContentAPI
	Scoring *ScoringAPI
	Shorts  *ShortsAPI
	Topics  *TopicsAPI
	Trends  *TrendsAPI
	Health  *HealthAPI
}

// New creates all facades over c.
func New(c Caller) *API {
	return &API{
		Content: &ContentAPI{c: c},
		Scoring: &ScoringAPI{c: c},
		Shorts:  &ShortsAPI{c: c},
		Topics:  &TopicsAPI{c: c},
		Trends:  &TrendsAPI{c: c},
		Health:  &HealthAPI{c: c},
	}
}

func withParam(prefix, value string) string {
	return prefix + url.PathEscape(value)
}
