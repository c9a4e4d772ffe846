// Package render prints API results as terminal tables.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/jonesrussell/reelranker/internal/ranking"
	"github.com/jonesrussell/reelranker/internal/reelapi"
	"github.com/jonesrussell/reelranker/internal/session"
)

const (
	titleColumnWidth  = 60
	reasonColumnWidth = 70
	listPreviewItems  = 5
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

// JSON writes v indented, for --output json.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func score(v float64) string {
	return fmt.Sprintf("%.1f (%s)", v, ranking.ScoreTier(v))
}

func engagement(rate float64) string {
	return fmt.Sprintf("%s (%s)", ranking.Percent(rate), ranking.EngagementTier(rate))
}

func preview(items []string) string {
	if len(items) > listPreviewItems {
		return strings.Join(items[:listPreviewItems], " ") + fmt.Sprintf(" +%d", len(items)-listPreviewItems)
	}
	return strings.Join(items, " ")
}

// Videos prints a ranked video list.
func Videos(w io.Writer, heading string, videos []reelapi.VideoSummary) {
	if len(videos) == 0 {
		fmt.Fprintln(w, "No videos found")
		return
	}

	t := newTable(w)
	t.SetTitle("%s", heading)
	t.AppendHeader(table.Row{"#", "ID", "Title", "Channel", "Views", "Likes", "Comments", "Engagement"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: titleColumnWidth},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	for i, v := range videos {
		t.AppendRow(table.Row{
			i + 1,
			v.ID,
			v.Title,
			v.ChannelTitle,
			ranking.Format(v.Views),
			ranking.Format(v.Likes),
			ranking.Format(v.Comments),
			engagement(v.EngagementRate),
		})
	}
	t.AppendFooter(table.Row{"", "", "Total", len(videos)})
	t.Render()
}

// Video prints one video's details.
func Video(w io.Writer, v *reelapi.VideoSummary) {
	t := newTable(w)
	t.SetTitle("%s", v.Title)
	t.AppendRows([]table.Row{
		{"ID", v.ID},
		{"Channel", v.ChannelTitle},
		{"Views", ranking.Format(v.Views)},
		{"Likes", ranking.Format(v.Likes)},
		{"Comments", ranking.Format(v.Comments)},
		{"Engagement", engagement(v.EngagementRate)},
		{"Duration", fmt.Sprintf("%ds", v.Duration)},
		{"Published", v.PublishedAt},
		{"Tags", strings.Join(v.Tags, ", ")},
		{"Hashtags", strings.Join(v.Hashtags, " ")},
	})
	if v.ViralScore > 0 {
		t.AppendRow(table.Row{"Viral score", score(v.ViralScore)})
	}
	t.Render()
}

// Generated prints generated titles and hashtags.
func Generated(w io.Writer, resp *reelapi.GenerateResponse) {
	t := newTable(w)
	t.SetTitle("Titles for %s", resp.Topic)
	t.AppendHeader(table.Row{"#", "Title", "Viral score"})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: titleColumnWidth}})
	for i, title := range resp.Titles {
		t.AppendRow(table.Row{i + 1, title.Title, score(title.ViralScore)})
	}
	if resp.Provider != "" {
		t.AppendFooter(table.Row{"", "Provider: " + resp.Provider})
	}
	t.Render()

	if len(resp.Hashtags) > 0 {
		fmt.Fprintln(w, strings.Join(resp.Hashtags, " "))
	}
}

// Hashtags prints a hashtag list.
func Hashtags(w io.Writer, resp *reelapi.HashtagsResponse) {
	t := newTable(w)
	t.SetTitle("Hashtags for %s", resp.Topic)
	t.AppendHeader(table.Row{"#", "Hashtag"})
	for i, tag := range resp.Hashtags {
		t.AppendRow(table.Row{i + 1, tag})
	}
	t.Render()
}

// Score prints a single title's score with its reasons and suggestions.
func Score(w io.Writer, result *reelapi.ScoreResult) {
	t := newTable(w)
	t.SetTitle("%s", result.Title)
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: reasonColumnWidth}})
	t.AppendRow(table.Row{"Viral score", score(result.ViralScore)})
	for _, reason := range result.Reasons {
		t.AppendRow(table.Row{"Reason", reason})
	}
	for _, suggestion := range result.Suggestions {
		t.AppendRow(table.Row{"Suggestion", suggestion})
	}
	t.Render()
}

// Batch prints batch scores in submission order.
func Batch(w io.Writer, outcome *ranking.BatchOutcome) {
	if len(outcome.Results) == 0 && len(outcome.Missing) == 0 {
		fmt.Fprintln(w, "No titles to score")
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Title", "Viral score", "Top reason"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: titleColumnWidth},
		{Number: 4, WidthMax: reasonColumnWidth},
	})
	for i, result := range outcome.Results {
		reason := ""
		if len(result.Reasons) > 0 {
			reason = result.Reasons[0]
		}
		t.AppendRow(table.Row{i + 1, outcome.Titles[i], score(result.ViralScore), reason})
	}
	t.AppendFooter(table.Row{"", "Total", outcome.Total})
	t.Render()

	for _, title := range outcome.Missing {
		fmt.Fprintf(w, "No score returned for %q\n", title)
	}
}

// TopicAnalysis prints what performs well for a topic.
func TopicAnalysis(w io.Writer, a *reelapi.TopicAnalysis) {
	t := newTable(w)
	t.SetTitle("Topic: %s", a.Topic)
	t.AppendHeader(table.Row{"Tag", "Score", "Hashtag", "Score"})
	rows := max(len(a.TopTags), len(a.TopHashtags))
	for i := range rows {
		row := table.Row{"", "", "", ""}
		if i < len(a.TopTags) {
			row[0], row[1] = a.TopTags[i].Tag, fmt.Sprintf("%.2f", a.TopTags[i].Score)
		}
		if i < len(a.TopHashtags) {
			row[2], row[3] = a.TopHashtags[i].Hashtag, fmt.Sprintf("%.2f", a.TopHashtags[i].Score)
		}
		t.AppendRow(row)
	}
	t.Render()

	if len(a.ViralPatterns) > 0 {
		fmt.Fprintln(w, "Patterns:")
		for _, p := range a.ViralPatterns {
			fmt.Fprintf(w, "  - %s\n", p)
		}
	}
	if len(a.TrendingKeywords) > 0 {
		fmt.Fprintf(w, "Keywords: %s\n", strings.Join(a.TrendingKeywords, ", "))
	}
}

// TrendingTopics prints the trending topics list.
func TrendingTopics(w io.Writer, topics []reelapi.TrendingTopic) {
	t := newTable(w)
	t.SetTitle("Trending topics")
	t.AppendHeader(table.Row{"#", "Topic", "Videos", "Total views", "Avg engagement", "Trend"})
	for i, topic := range topics {
		t.AppendRow(table.Row{
			i + 1,
			topic.Topic,
			topic.VideoCount,
			ranking.Format(topic.TotalViews),
			engagement(topic.AvgEngagement),
			topic.TrendDirection,
		})
	}
	t.Render()
}

// ViralTrends prints the viral trends list.
func ViralTrends(w io.Writer, trends []reelapi.ViralTrend) {
	t := newTable(w)
	t.SetTitle("Viral trends")
	t.AppendHeader(table.Row{"#", "Trend", "Viral score", "Growth", "Videos", "Hashtags"})
	for i, trend := range trends {
		t.AppendRow(table.Row{
			i + 1,
			trend.Trend,
			score(trend.ViralScore),
			ranking.Percent(trend.GrowthRate),
			trend.VideoCount,
			preview(trend.TopHashtags),
		})
	}
	t.Render()
}

// TrendAnalysis prints a trend's history.
func TrendAnalysis(w io.Writer, a *reelapi.TrendAnalysis) {
	t := newTable(w)
	t.SetTitle("%s (%s)", a.Trend, a.Period)
	t.AppendHeader(table.Row{"Date", "Avg views", "Top tag"})
	for _, p := range a.Points {
		t.AppendRow(table.Row{p.Date, ranking.Format(p.AvgViews), p.TopTag})
	}
	t.Render()
}

// Health prints a health check report.
func Health(w io.Writer, report reelapi.HealthReport) {
	t := newTable(w)
	t.AppendRow(table.Row{"Status", report.Status})
	if report.Data != nil {
		t.AppendRow(table.Row{"Version", report.Data.Version})
		t.AppendRow(table.Row{"Environment", report.Data.Environment})
	}
	if report.Error != "" {
		t.AppendRow(table.Row{"Error", report.Error})
	}
	t.Render()
}

// Status prints the service's self-reported status.
func Status(w io.Writer, s *reelapi.ServiceStatus) {
	t := newTable(w)
	t.AppendRows([]table.Row{
		{"Status", s.Status},
		{"Version", s.Version},
		{"Environment", s.Environment},
	})
	if s.Uptime != "" {
		t.AppendRow(table.Row{"Uptime", s.Uptime})
	}
	for _, name := range slices.Sorted(maps.Keys(s.Components)) {
		t.AppendRow(table.Row{"Component " + name, s.Components[name]})
	}
	t.Render()
}

// Session prints what is known about the stored credential.
func Session(w io.Writer, info *session.TokenInfo, now time.Time) {
	t := newTable(w)
	t.AppendRow(table.Row{"Subject", info.Subject})
	if !info.IssuedAt.IsZero() {
		t.AppendRow(table.Row{"Issued", info.IssuedAt.Format(time.RFC3339)})
	}
	switch {
	case info.ExpiresAt.IsZero():
		t.AppendRow(table.Row{"Expires", "never"})
	case info.Expired(now):
		t.AppendRow(table.Row{"Expires", info.ExpiresAt.Format(time.RFC3339) + " (expired)"})
	default:
		t.AppendRow(table.Row{"Expires", info.ExpiresAt.Format(time.RFC3339)})
	}
	t.Render()
}
