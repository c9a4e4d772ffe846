package reelapi

import (
	"context"
	"net/url"
	"strconv"
)

// ShortsAPI discovers short-form videos.
type ShortsAPI struct {
	c Caller
}

func (p TrendingParams) values() url.Values {
	q := url.Values{}
	if p.Topic != "" {
		q.Set("topic", p.Topic)
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Region != "" {
		q.Set("region", p.Region)
	}
	return q
}

// Trending returns the trending feed.
func (a *ShortsAPI) Trending(ctx context.Context, params TrendingParams) (*TrendingVideos, error) {
	var out TrendingVideos
	if err := a.c.Get(ctx, PathShortsTrending, params.values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search finds videos matching query. limit of zero leaves the service default.
func (a *ShortsAPI) Search(ctx context.Context, query string, limit int) (*SearchResults, error) {
	q := url.Values{"query": {query}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var out SearchResults
	if err := a.c.Get(ctx, PathShortsSearch, q, &out); err != nil {
		return nil, err
	}
	if out.Query == "" {
		out.Query = query
	}
	return &out, nil
}

// Video returns one video by ID.
func (a *ShortsAPI) Video(ctx context.Context, id string) (*VideoSummary, error) {
	var out VideoSummary
	if err := a.c.Get(ctx, withParam(PathShortsVideo, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
