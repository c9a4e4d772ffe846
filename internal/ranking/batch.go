// Package ranking shapes requests and decoded results on the client side.
// Nothing here touches the network.
package ranking

import (
	"context"
	"strings"

	"github.com/jonesrussell/reelranker/internal/reelapi"
)

// BatchScorer is the slice of the scoring facade ScoreBatch needs.
type BatchScorer interface {
	ScoreTitles(ctx context.Context, reqs []reelapi.ScoreRequest) (*reelapi.BatchScoreResponse, error)
}

// SplitLines splits a pasted block of titles into lines.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// ShapeBatch turns raw lines into score requests: lines are trimmed, blank
// lines dropped, and each survivor gets empty tag lists and no topic.
func ShapeBatch(lines []string) []reelapi.ScoreRequest {
	reqs := make([]reelapi.ScoreRequest, 0, len(lines))
	for _, line := range lines {
		title := strings.TrimSpace(line)
		if title == "" {
			continue
		}
		reqs = append(reqs, reelapi.ScoreRequest{
			Title:    title,
			Tags:     []string{},
			Hashtags: []string{},
		})
	}
	return reqs
}

// BatchOutcome is a batch scoring result aligned to input order.
// Results[i] answers Titles[i]; Missing lists titles the service did not
// return a result for.
type BatchOutcome struct {
	Titles  []string              `json:"titles"`
	Results []reelapi.ScoreResult `json:"results"`
	Missing []string              `json:"missing,omitempty"`
	Total   int                   `json:"total"`
}

// ScoreBatch shapes lines, submits one batch call and aligns the results to
// input order. With no usable titles it returns an empty outcome without
// calling the service.
func ScoreBatch(ctx context.Context, scorer BatchScorer, lines []string) (*BatchOutcome, error) {
	reqs := ShapeBatch(lines)
	if len(reqs) == 0 {
		return &BatchOutcome{}, nil
	}

	resp, err := scorer.ScoreTitles(ctx, reqs)
	if err != nil {
		return nil, err
	}

	titles := make([]string, len(reqs))
	for i, req := range reqs {
		titles[i] = req.Title
	}

	outcome := Align(titles, resp.Results)
	outcome.Total = resp.Total
	return outcome, nil
}

// Align matches results to titles by the title each result echoes.
// Duplicate titles consume matching results in order.
func Align(titles []string, results []reelapi.ScoreResult) *BatchOutcome {
	pending := make(map[string][]reelapi.ScoreResult, len(results))
	for _, r := range results {
		pending[r.Title] = append(pending[r.Title], r)
	}

	outcome := &BatchOutcome{
		Titles:  make([]string, 0, len(titles)),
		Results: make([]reelapi.ScoreResult, 0, len(titles)),
	}
	for _, title := range titles {
		queue := pending[title]
		if len(queue) == 0 {
			outcome.Missing = append(outcome.Missing, title)
			continue
		}
		outcome.Titles = append(outcome.Titles, title)
		outcome.Results = append(outcome.Results, queue[0])
		pending[title] = queue[1:]
	}
	return outcome
}
