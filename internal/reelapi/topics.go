package reelapi

import "context"

// TopicsAPI reads topic analytics.
type TopicsAPI struct {
	c Caller
}

// Trending lists topics by engagement.
func (a *TopicsAPI) Trending(ctx context.Context) (*TrendingTopics, error) {
	var out TrendingTopics
	if err := a.c.Get(ctx, PathTopicsTrending, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analysis returns the analysis of one topic.
func (a *TopicsAPI) Analysis(ctx context.Context, topic string) (*TopicAnalysis, error) {
	var out TopicAnalysis
	if err := a.c.Get(ctx, withParam(PathTopicAnalysis, topic), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TrendsAPI reads trend analytics.
type TrendsAPI struct {
	c Caller
}

// Viral lists trends currently gaining traction.
func (a *TrendsAPI) Viral(ctx context.Context) (*ViralTrends, error) {
	var out ViralTrends
	if err := a.c.Get(ctx, PathTrendsViral, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analysis returns the history of one trend.
func (a *TrendsAPI) Analysis(ctx context.Context, trend string) (*TrendAnalysis, error) {
	var out TrendAnalysis
	if err := a.c.Get(ctx, withParam(PathTrendAnalysis, trend), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
