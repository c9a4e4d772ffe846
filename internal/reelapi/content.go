package reelapi

import "context"

// ContentAPI generates titles, hashtags and topic insights.
type ContentAPI struct {
	c Caller
}

// Generate produces viral titles and hashtags for a topic.
func (a *ContentAPI) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	var out GenerateResponse
	if err := a.c.Post(ctx, PathGenerate, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeTopic asks the service what performs well for topic.
func (a *ContentAPI) AnalyzeTopic(ctx context.Context, topic string) (*TopicAnalysis, error) {
	var out TopicAnalysis
	if err := a.c.Post(ctx, PathAnalyzeTopic, GenerateRequest{Topic: topic}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateHashtags produces hashtags only.
func (a *ContentAPI) GenerateHashtags(ctx context.Context, req GenerateRequest) (*HashtagsResponse, error) {
	var out HashtagsResponse
	if err := a.c.Post(ctx, PathGenerateHashtags, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
