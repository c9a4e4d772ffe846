package mockserver

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"unicode"

	"github.com/cloudflare/ahocorasick"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jonesrussell/reelranker/internal/reelapi"
)

const (
	baseScore        = 0.5
	maxScore         = 1.0
	scoreScale       = 10.0
	maxSuggestions   = 5
	minTitleLength   = 10
	maxTitleLength   = 100
	optimalLengthMin = 30
	optimalLengthMax = 50
	goodLengthMin    = 20
	goodLengthMax    = 60
)

var (
	emotionalWords = []string{"shocking", "secret", "truth", "hidden", "untold", "amazing", "incredible", "viral", "trending"}
	questionWords  = []string{"how", "why", "what", "when", "where", "who"}
)

// keywordSet matches a fixed word list against text in one pass.
// The matcher keeps per-match state, so calls are serialized.
type keywordSet struct {
	words   []string
	mu      sync.Mutex
	matcher *ahocorasick.Matcher
}

func newKeywordSet(words []string) *keywordSet {
	return &keywordSet{words: words, matcher: ahocorasick.NewStringMatcher(words)}
}

// hits returns the distinct words found in text.
func (k *keywordSet) hits(text string) []string {
	k.mu.Lock()
	indexes := k.matcher.Match([]byte(text))
	k.mu.Unlock()

	found := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		if idx < len(k.words) {
			found = append(found, k.words[idx])
		}
	}
	return found
}

// TitleScorer is the stub's stand-in for the service's scoring model.
type TitleScorer struct {
	emotional *keywordSet
	question  *keywordSet
}

// NewTitleScorer builds the keyword matchers.
func NewTitleScorer() *TitleScorer {
	return &TitleScorer{
		emotional: newKeywordSet(emotionalWords),
		question:  newKeywordSet(questionWords),
	}
}

// normalize strips accents and lowercases text before matching.
func (s *TitleScorer) normalize(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return strings.ToLower(folded)
}

// raw scores a title on the 0-1 scale.
func (s *TitleScorer) raw(title, topic string) (float64, []string) {
	text := s.normalize(title)
	score := baseScore
	var reasons []string

	length := len([]rune(title))
	switch {
	case length >= optimalLengthMin && length <= optimalLengthMax:
		score += 0.2
		reasons = append(reasons, "Optimal title length (30-50 characters)")
	case length >= goodLengthMin && length <= goodLengthMax:
		score += 0.1
		reasons = append(reasons, "Good title length")
	case length < minTitleLength:
		reasons = append(reasons, "Title too short")
	case length > maxTitleLength:
		reasons = append(reasons, "Title too long")
	}

	if hooks := s.emotional.hits(text); len(hooks) > 0 {
		score += 0.1 * float64(len(hooks))
		reasons = append(reasons, fmt.Sprintf("Emotional hooks: %s", strings.Join(hooks, ", ")))
	} else {
		reasons = append(reasons, "No emotional hooks detected")
	}

	if qs := s.question.hits(text); len(qs) > 0 {
		score += 0.05 * float64(len(qs))
		reasons = append(reasons, "Creates curiosity with question words")
	}

	if topic = strings.TrimSpace(topic); topic != "" && strings.Contains(text, s.normalize(topic)) {
		score += 0.1
		reasons = append(reasons, "Topic directly mentioned in title")
	}

	if strings.IndexFunc(title, unicode.IsDigit) >= 0 {
		score += 0.05
		reasons = append(reasons, "Contains numbers (increases credibility)")
	}

	return math.Min(score, maxScore), reasons
}

func (s *TitleScorer) suggestions(title string, score float64) []string {
	var out []string
	text := s.normalize(title)

	if score < 0.7 {
		out = append(out,
			"Add urgency with words like 'Now', 'Today', or 'Latest'",
			"Use power words that evoke strong emotions")
	}
	if length := len([]rune(title)); length < minTitleLength {
		out = append(out, fmt.Sprintf("Title is too short. Aim for at least %d characters", minTitleLength))
	} else if length > maxTitleLength {
		out = append(out, fmt.Sprintf("Title is too long. Keep it under %d characters", maxTitleLength))
	}
	if len(s.emotional.hits(text)) == 0 {
		out = append(out, "Add emotional words to make the title more compelling")
	}
	if len(s.question.hits(text)) == 0 {
		out = append(out, "Consider using question words to create curiosity")
	}

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// Score rates a request on the 0-10 scale the API reports.
func (s *TitleScorer) Score(req reelapi.ScoreRequest) reelapi.ScoreResult {
	topic := ""
	if req.Topic != nil {
		topic = *req.Topic
	}

	raw, reasons := s.raw(req.Title, topic)
	return reelapi.ScoreResult{
		Title:       req.Title,
		ViralScore:  toScale(raw),
		Reasons:     reasons,
		Suggestions: s.suggestions(req.Title, raw),
	}
}

// Hashtag turns a phrase into a single CamelCase hashtag.
func (s *TitleScorer) Hashtag(phrase string) string {
	titled := cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(phrase)))
	return "#" + strings.Join(strings.Fields(titled), "")
}

func toScale(raw float64) float64 {
	return math.Round(raw*scoreScale*100) / 100
}
