package mockserver

import (
	"cmp"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/reelranker/internal/reelapi"
)

type handlers struct {
	cfg     Config
	scorer  *TitleScorer
	started time.Time
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, reelapi.HealthStatus{
		Status:      reelapi.HealthHealthy,
		Version:     h.cfg.Version,
		Environment: h.cfg.Environment,
	})
}

func (h *handlers) status(c *gin.Context) {
	c.JSON(http.StatusOK, reelapi.ServiceStatus{
		Status:      "operational",
		Version:     h.cfg.Version,
		Environment: h.cfg.Environment,
		Uptime:      time.Since(h.started).Round(time.Second).String(),
		Components: map[string]string{
			"scoring":    "heuristic",
			"generation": generationProvider,
			"database":   "mock",
		},
	})
}

// bindGenerate reads a generate-style body and applies the service defaults.
func bindGenerate(c *gin.Context) (reelapi.GenerateRequest, bool) {
	var req reelapi.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return req, false
	}
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		abortWithError(c, http.StatusBadRequest, "Topic is required")
		return req, false
	}
	if req.Count == 0 {
		req.Count = defaultGenerateCount
	}
	if req.Count > reelapi.MaxGenerateCount {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Count cannot exceed %d", reelapi.MaxGenerateCount))
		return req, false
	}
	return req, true
}

func (h *handlers) generate(c *gin.Context) {
	req, ok := bindGenerate(c)
	if !ok {
		return
	}

	n := min(req.Count, len(viralTitlePatterns))
	titles := make([]reelapi.GeneratedTitle, 0, n)
	for _, pattern := range viralTitlePatterns[:n] {
		title := fmt.Sprintf(pattern, req.Topic)
		raw, _ := h.scorer.raw(title, req.Topic)
		titles = append(titles, reelapi.GeneratedTitle{Title: title, ViralScore: toScale(raw)})
	}
	slices.SortStableFunc(titles, func(a, b reelapi.GeneratedTitle) int {
		return cmp.Compare(b.ViralScore, a.ViralScore)
	})

	c.JSON(http.StatusOK, reelapi.GenerateResponse{
		Titles:   titles,
		Hashtags: h.hashtags(req.Topic, req.Count),
		Topic:    req.Topic,
		Provider: generationProvider,
	})
}

func (h *handlers) generateHashtags(c *gin.Context) {
	req, ok := bindGenerate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, reelapi.HashtagsResponse{
		Hashtags: h.hashtags(req.Topic, req.Count),
		Topic:    req.Topic,
	})
}

// hashtags builds the fallback hashtag list: the topic itself, two from
// each category, then topic keywords.
func (h *handlers) hashtags(topic string, count int) []string {
	candidates := []string{h.scorer.Hashtag(topic)}
	for _, category := range hashtagCategories {
		candidates = append(candidates, category[:2]...)
	}
	for _, keyword := range extractKeywords(topic) {
		candidates = append(candidates, h.scorer.Hashtag(keyword))
	}

	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, count)
	for _, tag := range candidates {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
		if len(out) == count {
			break
		}
	}
	return out
}

func (h *handlers) analyzeTopic(c *gin.Context) {
	req, ok := bindGenerate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.fallbackAnalysis(req.Topic))
}

// fallbackAnalysis derives an analysis from the topic's own keywords.
func (h *handlers) fallbackAnalysis(topic string) reelapi.TopicAnalysis {
	keywords := extractKeywords(topic)
	if len(keywords) > 5 {
		keywords = keywords[:5]
	}

	analysis := reelapi.TopicAnalysis{
		Topic:       topic,
		TopTags:     make([]reelapi.ScoredTag, 0, len(keywords)),
		TopHashtags: make([]reelapi.ScoredHashtag, 0, len(keywords)),
		ViralPatterns: []string{
			"The Shocking Truth About " + topic,
			"How " + topic + " Changed Everything",
			"Why " + topic + " is Going Viral",
		},
		TrendingKeywords: keywords,
	}
	for i, keyword := range keywords {
		score := 0.8 - float64(i)*0.1
		tag := h.scorer.Hashtag(keyword)
		analysis.TopTags = append(analysis.TopTags, reelapi.ScoredTag{Tag: strings.TrimPrefix(tag, "#"), Score: score})
		analysis.TopHashtags = append(analysis.TopHashtags, reelapi.ScoredHashtag{Hashtag: tag, Score: score})
	}
	return analysis
}

func (h *handlers) score(c *gin.Context) {
	var req reelapi.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		abortWithError(c, http.StatusBadRequest, "Title is required")
		return
	}

	result := h.scorer.Score(req)
	c.JSON(http.StatusOK, gin.H{
		"viral_score": result.ViralScore,
		"reasons":     result.Reasons,
		"suggestions": result.Suggestions,
	})
}

func (h *handlers) scoreBatch(c *gin.Context) {
	var reqs []reelapi.ScoreRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		abortWithError(c, http.StatusUnprocessableEntity, "expected a JSON array of titles: "+err.Error())
		return
	}

	results := make([]reelapi.ScoreResult, 0, len(reqs))
	for _, req := range reqs {
		r := h.scorer.Score(req)
		r.Suggestions = nil
		results = append(results, r)
	}
	// The service answers best first, not in submission order.
	slices.SortStableFunc(results, func(a, b reelapi.ScoreResult) int {
		return cmp.Compare(b.ViralScore, a.ViralScore)
	})

	c.JSON(http.StatusOK, reelapi.BatchScoreResponse{Results: results, Total: len(results)})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func filterVideos(term string, limit int) []reelapi.VideoSummary {
	out := make([]reelapi.VideoSummary, 0)
	for _, v := range mockVideos() {
		if matchesVideo(v, term) {
			out = append(out, v)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (h *handlers) trendingShorts(c *gin.Context) {
	topic := strings.TrimSpace(c.Query("topic"))
	limit := queryInt(c, "limit", defaultTrendingLimit)

	label := topic
	if label == "" {
		label = "trending"
	}
	c.Header("X-Region", c.DefaultQuery("region", defaultRegion))
	c.JSON(http.StatusOK, reelapi.TrendingVideos{Topic: label, Videos: filterVideos(topic, limit)})
}

func (h *handlers) searchShorts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		abortWithError(c, http.StatusBadRequest, "Query is required")
		return
	}
	videos := filterVideos(query, queryInt(c, "limit", defaultTrendingLimit))
	c.JSON(http.StatusOK, reelapi.SearchResults{Query: query, Videos: videos, Total: len(videos)})
}

func (h *handlers) video(c *gin.Context) {
	id := c.Param("id")
	for _, v := range mockVideos() {
		if v.ID == id {
			c.JSON(http.StatusOK, v)
			return
		}
	}
	abortWithError(c, http.StatusNotFound, "Video not found")
}

func (h *handlers) trendingTopics(c *gin.Context) {
	topics := mockTrendingTopics()
	if limit := queryInt(c, "limit", len(topics)); limit < len(topics) {
		topics = topics[:limit]
	}
	c.JSON(http.StatusOK, reelapi.TrendingTopics{TrendingTopics: topics})
}

func (h *handlers) topicAnalysis(c *gin.Context) {
	topic := strings.TrimSpace(c.Param("topic"))
	if strings.Contains(strings.ToLower(topic), "independence") {
		c.JSON(http.StatusOK, mockTopicAnalysis(topic))
		return
	}
	c.JSON(http.StatusOK, h.fallbackAnalysis(topic))
}

func (h *handlers) viralTrends(c *gin.Context) {
	topics := mockTrendingTopics()
	trends := make([]reelapi.ViralTrend, 0, len(topics))
	for _, t := range topics {
		trends = append(trends, reelapi.ViralTrend{
			Trend:       t.Topic,
			ViralScore:  toScale(t.TrendScore),
			GrowthRate:  t.AvgEngagement,
			VideoCount:  t.VideoCount,
			TopHashtags: []string{h.scorer.Hashtag(t.Topic), "#Shorts"},
		})
	}
	c.JSON(http.StatusOK, reelapi.ViralTrends{Trends: trends})
}

// trendAnalysis reports one point per matching video, oldest first. The
// fixture is static so the period is validated but not applied.
func (h *handlers) trendAnalysis(c *gin.Context) {
	trend := strings.TrimSpace(c.Param("trend"))
	period := c.DefaultQuery("period", defaultTrendPeriod)

	switch period {
	case "7d", "30d", "90d":
	default:
		abortWithError(c, http.StatusBadRequest, "Invalid period. Use: 7d, 30d, 90d")
		return
	}

	videos := filterVideos(trend, len(mockVideos()))
	points := make([]reelapi.TrendPoint, 0, len(videos))
	for _, v := range videos {
		published, err := time.Parse(time.RFC3339, v.PublishedAt)
		if err != nil {
			continue
		}
		point := reelapi.TrendPoint{Date: published.Format(time.DateOnly), AvgViews: v.Views}
		if len(v.Tags) > 0 {
			point.TopTag = v.Tags[0]
		}
		points = append(points, point)
	}
	slices.SortFunc(points, func(a, b reelapi.TrendPoint) int { return strings.Compare(a.Date, b.Date) })

	c.JSON(http.StatusOK, reelapi.TrendAnalysis{Trend: trend, Period: period, Points: points})
}
