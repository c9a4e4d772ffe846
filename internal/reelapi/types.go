package reelapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MaxGenerateCount is the most titles the service will generate per call.
const MaxGenerateCount = 20

// GenerateRequest asks for titles and hashtags for a topic. Zero Count and
// empty Style leave the service defaults (10, "viral").
type GenerateRequest struct {
	Topic string `json:"topic"`
	Count int    `json:"count,omitempty"`
	Style string `json:"style,omitempty"`
}

// Validate rejects requests the service would answer with a 400.
func (r GenerateRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return errors.New("topic is required")
	}
	if r.Count < 0 || r.Count > MaxGenerateCount {
		return fmt.Errorf("count must be between 1 and %d", MaxGenerateCount)
	}
	return nil
}

// GeneratedTitle is one generated title with its predicted score.
type GeneratedTitle struct {
	Title      string  `json:"title"`
	ViralScore float64 `json:"viral_score"`
}

// GenerateResponse is the result of content generation.
type GenerateResponse struct {
	Titles   []GeneratedTitle `json:"titles"`
	Hashtags []string         `json:"hashtags"`
	Topic    string           `json:"topic"`
	Provider string           `json:"provider,omitempty"`
}

// HashtagsResponse is the result of hashtag-only generation.
type HashtagsResponse struct {
	Hashtags []string `json:"hashtags"`
	Topic    string   `json:"topic"`
}

// ScoreRequest is one title to score. Topic is optional and encodes as null
// when absent; Tags and Hashtags always encode as arrays.
type ScoreRequest struct {
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
	Hashtags []string `json:"hashtags"`
	Topic    *string  `json:"topic"`
}

// MarshalJSON writes nil tag lists as [] rather than null.
func (r ScoreRequest) MarshalJSON() ([]byte, error) {
	type wire ScoreRequest
	w := wire(r)
	if w.Tags == nil {
		w.Tags = []string{}
	}
	if w.Hashtags == nil {
		w.Hashtags = []string{}
	}
	return json.Marshal(w)
}

// Validate rejects blank titles.
func (r ScoreRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	return nil
}

// BatchRequest is the body of a batch scoring call. It is sent as a bare
// JSON array.
type BatchRequest []ScoreRequest

// Validate rejects an empty batch or any blank title.
func (b BatchRequest) Validate() error {
	if len(b) == 0 {
		return errors.New("batch must contain at least one title")
	}
	for i, req := range b {
		if err := req.Validate(); err != nil {
			return fmt.Errorf("batch item %d: %w", i, err)
		}
	}
	return nil
}

// ScoreResult is the service's verdict on one title. ViralScore is 0-10.
type ScoreResult struct {
	Title       string   `json:"title"`
	ViralScore  float64  `json:"viral_score"`
	Reasons     []string `json:"reasons"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// BatchScoreResponse holds batch results. The service orders Results by
// score, not by submission order.
type BatchScoreResponse struct {
	Results []ScoreResult `json:"results"`
	Total   int           `json:"total"`
}

// VideoSummary is one short-form video as returned by discovery calls.
type VideoSummary struct {
	ID             string   `json:"video_id"`
	Title          string   `json:"title"`
	ChannelTitle   string   `json:"channel_title,omitempty"`
	Views          Count    `json:"views"`
	Likes          Count    `json:"likes"`
	Comments       Count    `json:"comments"`
	EngagementRate float64  `json:"engagement_rate"`
	ViralScore     float64  `json:"viral_score,omitempty"`
	Duration       int      `json:"duration,omitempty"`
	ThumbnailURL   string   `json:"thumbnail_url,omitempty"`
	Tags           []string `json:"tags"`
	Hashtags       []string `json:"hashtags"`
	PublishedAt    string   `json:"published_at,omitempty"`
}

// TrendingParams filters the trending feed. Zero values are omitted.
type TrendingParams struct {
	Topic  string
	Limit  int
	Region string
}

// TrendingVideos is the trending feed.
type TrendingVideos struct {
	Topic  string         `json:"topic"`
	Videos []VideoSummary `json:"videos"`
}

// SearchResults is the result of a video search.
type SearchResults struct {
	Query  string         `json:"query"`
	Videos []VideoSummary `json:"videos"`
	Total  int            `json:"total,omitempty"`
}

// ScoredTag is a tag with its relevance (0-1).
type ScoredTag struct {
	Tag   string  `json:"tag"`
	Score float64 `json:"score"`
}

// ScoredHashtag is a hashtag with its relevance (0-1).
type ScoredHashtag struct {
	Hashtag string  `json:"hashtag"`
	Score   float64 `json:"score"`
}

// TopicAnalysis describes what performs well for a topic.
type TopicAnalysis struct {
	Topic            string          `json:"topic"`
	TopTags          []ScoredTag     `json:"top_tags"`
	TopHashtags      []ScoredHashtag `json:"top_hashtags"`
	ViralPatterns    []string        `json:"viral_patterns"`
	TrendingKeywords []string        `json:"trending_keywords"`
}

// TrendingTopic is one entry of the trending topics list.
type TrendingTopic struct {
	Topic          string  `json:"topic"`
	AvgEngagement  float64 `json:"avg_engagement"`
	TotalViews     Count   `json:"total_views"`
	VideoCount     int     `json:"video_count"`
	TrendScore     float64 `json:"trend_score,omitempty"`
	TrendDirection string  `json:"trend_direction,omitempty"`
}

// TrendingTopics is the trending topics list.
type TrendingTopics struct {
	TrendingTopics []TrendingTopic `json:"trending_topics"`
}

// ViralTrend is a trend currently gaining traction.
type ViralTrend struct {
	Trend       string   `json:"trend"`
	ViralScore  float64  `json:"viral_score"`
	GrowthRate  float64  `json:"growth_rate"`
	VideoCount  int      `json:"video_count"`
	TopHashtags []string `json:"top_hashtags,omitempty"`
}

// ViralTrends is the viral trends list.
type ViralTrends struct {
	Trends []ViralTrend `json:"trends"`
}

// TrendPoint is one day of a trend's history.
type TrendPoint struct {
	Date     string `json:"date"`
	AvgViews Count  `json:"avg_views"`
	TopTag   string `json:"top_tag,omitempty"`
}

// TrendAnalysis is the history of one trend.
type TrendAnalysis struct {
	Trend  string       `json:"trend"`
	Period string       `json:"period"`
	Points []TrendPoint `json:"trends"`
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

// HealthReport is what HealthAPI.Check returns; it never carries a Go error.
type HealthReport struct {
	Status string
	Data   *HealthStatus
	Error  string
}

// Healthy reports whether the check succeeded.
func (r HealthReport) Healthy() bool {
	return r.Status == HealthHealthy
}

// ServiceStatus is the body of GET /api/v1/status.
type ServiceStatus struct {
	Status      string            `json:"status"`
	Version     string            `json:"version"`
	Environment string            `json:"environment"`
	Uptime      string            `json:"uptime,omitempty"`
	Components  map[string]string `json:"components,omitempty"`
}
