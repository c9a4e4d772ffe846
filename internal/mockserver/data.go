package mockserver

import (
	"strings"

	"github.com/jonesrussell/reelranker/internal/reelapi"
)

// Defaults used by the stub when a request omits them.
const (
	defaultGenerateCount = 10
	defaultTrendingLimit = 20
	defaultRegion        = "IN"
	defaultTrendPeriod   = "7d"
	generationProvider   = "pattern"
)

var viralTitlePatterns = []string{
	"The Shocking Truth About %s",
	"How %s Changed Everything",
	"The Untold Story of %s",
	"Why %s is Going Viral",
	"The Secret Behind %s",
	"What Nobody Tells You About %s",
	"The Real Reason %s is Popular",
	"How to %s in 60 Seconds",
	"The Hidden Meaning of %s",
	"Why %s is Trending Right Now",
}

var hashtagCategories = [][]string{
	{"#Shorts", "#Viral", "#Trending", "#FYP"},
	{"#Like", "#Comment", "#Share", "#Follow"},
	{"#Video", "#Content", "#Creator", "#YouTube"},
	{"#Now", "#Today", "#Latest", "#New"},
}

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {},
	"to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "being": {}, "have": {}, "has": {}, "had": {}, "do": {}, "does": {},
	"did": {}, "will": {}, "would": {}, "could": {}, "should": {}, "may": {}, "might": {},
	"must": {}, "can": {},
}

func mockVideos() []reelapi.VideoSummary {
	return []reelapi.VideoSummary{
		{
			ID:             "abc123",
			Title:          "How the World Celebrates Indian Independence",
			ChannelTitle:   "History Shorts",
			Views:          9_000_000,
			Likes:          300_000,
			Comments:       12_400,
			EngagementRate: 0.035,
			Duration:       45,
			ThumbnailURL:   "https://i.ytimg.com/vi/abc123/hqdefault.jpg",
			Tags:           []string{"IndependenceDay", "India", "History"},
			Hashtags:       []string{"#IndependenceDay", "#India", "#Shorts"},
			PublishedAt:    "2025-08-10T10:00:00Z",
		},
		{
			ID:             "def456",
			Title:          "The Shocking Truth About AI Technology",
			ChannelTitle:   "Tech in 60",
			Views:          7_500_000,
			Likes:          250_000,
			Comments:       9_800,
			EngagementRate: 0.032,
			Duration:       58,
			ThumbnailURL:   "https://i.ytimg.com/vi/def456/hqdefault.jpg",
			Tags:           []string{"AI", "Technology", "Future"},
			Hashtags:       []string{"#AI", "#Technology", "#Shorts"},
			PublishedAt:    "2025-08-09T15:30:00Z",
		},
		{
			ID:             "ghi789",
			Title:          "Why Everyone is Talking About This",
			ChannelTitle:   "Daily Buzz",
			Views:          6_000_000,
			Likes:          200_000,
			Comments:       7_100,
			EngagementRate: 0.028,
			Duration:       30,
			ThumbnailURL:   "https://i.ytimg.com/vi/ghi789/hqdefault.jpg",
			Tags:           []string{"Trending", "Viral", "News"},
			Hashtags:       []string{"#Trending", "#Viral", "#Shorts"},
			PublishedAt:    "2025-08-08T12:00:00Z",
		},
	}
}

func mockTrendingTopics() []reelapi.TrendingTopic {
	return []reelapi.TrendingTopic{
		{
			Topic:          "history of indian independence",
			AvgEngagement:  0.045,
			TotalViews:     42_000_000,
			VideoCount:     150,
			TrendScore:     0.95,
			TrendDirection: "up",
		},
		{
			Topic:          "cricket world cup 2024",
			AvgEngagement:  0.038,
			TotalViews:     61_500_000,
			VideoCount:     200,
			TrendScore:     0.88,
			TrendDirection: "up",
		},
		{
			Topic:          "ai technology trends",
			AvgEngagement:  0.035,
			TotalViews:     28_300_000,
			VideoCount:     120,
			TrendScore:     0.82,
			TrendDirection: "stable",
		},
	}
}

func mockTopicAnalysis(topic string) reelapi.TopicAnalysis {
	return reelapi.TopicAnalysis{
		Topic: topic,
		TopTags: []reelapi.ScoredTag{
			{Tag: "IndependenceDay", Score: 0.92},
			{Tag: "Freedom", Score: 0.87},
			{Tag: "History", Score: 0.85},
			{Tag: "India", Score: 0.82},
			{Tag: "Celebration", Score: 0.78},
		},
		TopHashtags: []reelapi.ScoredHashtag{
			{Hashtag: "#IndependenceDay", Score: 0.95},
			{Hashtag: "#JaiHind", Score: 0.89},
			{Hashtag: "#India", Score: 0.87},
			{Hashtag: "#Freedom", Score: 0.84},
			{Hashtag: "#Shorts", Score: 0.82},
		},
		ViralPatterns: []string{
			"How the World Celebrates X",
			"The Shocking Truth About X",
			"Why X is Trending Right Now",
			"The Untold Story of X",
			"X in 60 Seconds",
		},
		TrendingKeywords: []string{"independence", "freedom", "celebration", "history", "patriotism"},
	}
}

// extractKeywords returns the distinct non-stop words of text longer than
// two characters, in order of first appearance.
func extractKeywords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' || r > 127)
	})

	seen := make(map[string]struct{}, len(fields))
	keywords := make([]string, 0, len(fields))
	for _, word := range fields {
		if len(word) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}
	return keywords
}

func matchesVideo(v reelapi.VideoSummary, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(v.Title), term) {
		return true
	}
	for _, tag := range v.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}
