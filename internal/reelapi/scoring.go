package reelapi

import "context"

// ScoringAPI predicts how well titles will perform.
type ScoringAPI struct {
	c Caller
}

// ScoreTitle scores a single title. The service does not echo the title
// back, so it is copied from the request.
func (a *ScoringAPI) ScoreTitle(ctx context.Context, req ScoreRequest) (*ScoreResult, error) {
	var out ScoreResult
	if err := a.c.Post(ctx, PathScore, req, &out); err != nil {
		return nil, err
	}
	if out.Title == "" {
		out.Title = req.Title
	}
	return &out, nil
}

// ScoreTitles scores many titles in one call. Results come back sorted by
// score; see ranking.ScoreBatch for input-order alignment.
func (a *ScoringAPI) ScoreTitles(ctx context.Context, reqs []ScoreRequest) (*BatchScoreResponse, error) {
	var out BatchScoreResponse
	if err := a.c.Post(ctx, PathScoreBatch, BatchRequest(reqs), &out); err != nil {
		return nil, err
	}
	return &out, nil
}
