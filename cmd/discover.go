package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/reelranker/internal/ranking"
	"github.com/jonesrussell/reelranker/internal/reelapi"
	"github.com/jonesrussell/reelranker/internal/render"
)

func sortFlagUsage() string {
	keys := make([]string, 0, len(ranking.SortKeys()))
	for _, k := range ranking.SortKeys() {
		keys = append(keys, string(k))
	}
	return "rank by: " + strings.Join(keys, ", ")
}

// rankedVideos is the JSON shape of a ranked listing.
type rankedVideos struct {
	Label  string                 `json:"label"`
	SortBy ranking.SortKey        `json:"sort_by"`
	Videos []reelapi.VideoSummary `json:"videos"`
}

func (a *app) printRanked(label, sortBy string, videos []reelapi.VideoSummary) error {
	key, err := ranking.ParseSortKey(sortBy)
	if err != nil {
		return err
	}
	ranked, err := ranking.Rank(videos, key)
	if err != nil {
		return err
	}

	out := rankedVideos{Label: label, SortBy: key, Videos: ranked}
	return a.print(out, func(w io.Writer) {
		render.Videos(w, fmt.Sprintf("%s by %s", label, key), ranked)
	})
}

func (a *app) shortsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shorts",
		Short: "Discover short-form videos",
	}
	cmd.AddCommand(a.shortsTrendingCommand(), a.shortsSearchCommand(), a.shortsVideoCommand())
	return cmd
}

func (a *app) shortsTrendingCommand() *cobra.Command {
	var (
		params reelapi.TrendingParams
		sortBy string
	)

	cmd := &cobra.Command{
		Use:   "trending",
		Short: "List trending shorts, ranked locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := ranking.ParseSortKey(sortBy); err != nil {
				return err
			}
			return a.withDeps(cmd, func(ctx context.Context, d *deps) error {
				feed, err := d.api.Shorts.Trending(ctx, params)
				if err != nil {
					return err
				}
				return a.printRanked("Trending: "+feed.Topic, sortBy, feed.Videos)
			})
		},
	}
	cmd.Flags().StringVar(&params.Topic, "topic", "", "restrict to a topic")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "maximum videos (0 uses the service default)")
	cmd.Flags().StringVar(&params.Region, "region", "", "region code, e.g. IN")
	cmd.Flags().StringVar(&sortBy, "sort", string(ranking.SortByViews), sortFlagUsage())
	return cmd
}

func (a *app) shortsSearchCommand() *cobra.Command {
	var (
		limit  int
		sortBy string
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search shorts, ranked locally",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ranking.ParseSortKey(sortBy); err != nil {
				return err
			}
			query := strings.Join(args, " ")
			return a.withDeps(cmd, func(ctx context.Context, d *deps) error {
				results, err := d.api.Shorts.Search(ctx, query, limit)
				if err != nil {
					return err
				}
				return a.printRanked("Search: "+results.Query, sortBy, results.Videos)
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum videos (0 uses the service default)")
	cmd.Flags().StringVar(&sortBy, "sort", string(ranking.SortByViews), sortFlagUsage())
	return cmd
}

func (a *app) shortsVideoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "video <id>",
		Short: "Show one video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDeps(cmd, func(ctx context.Context, d *deps) error {
				video, err := d.api.Shorts.Video(ctx, args[0])
				if err != nil {
					return err
				}
				return a.print(video, func(w io.Writer) { render.Video(w, video) })
			})
		},
	}
}

func (a *app) topicsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "Explore trending topics",
	}

	trending := &cobra.Command{
		Use:   "trending",
		Short: "List trending topics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDeps(cmd, func(ctx context.Context, d *deps) error {
				topics, err := d.api.Topics.Trending(ctx)
				if err != nil {
					return err
				}
				return a.print(topics, func(w io.Writer) { render.TrendingTopics(w, topics.TrendingTopics) })
			})
		},
	}

	show := &cobra.Command{
		Use:   "show <topic>",
		Short: "Show the analysis of one topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := strings.Join(args, " ")
			return a.withDeps(cmd, func(ctx context.Context, d *deps) error {
				analysis, err := d.api.Topics.Analysis(ctx, topic)
				if err != nil {
					return err
				}
				return a.print(analysis, func(w io.Writer) { render.TopicAnalysis(w, analysis) })
			})
		},
	}

	cmd.AddCommand(trending, show)
	return cmd
}

func (a *app) trendsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Explore viral trends",
	}

	viral := &cobra.Command{
		Use:   "viral",
		Short: "List trends currently going viral",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDeps(cmd, func(ctx context.Context, d *deps) error {
				trends, err := d.api.Trends.Viral(ctx)
				if err != nil {
					return err
				}
				return a.print(trends, func(w io.Writer) { render.ViralTrends(w, trends.Trends) })
			})
		},
	}

	show := &cobra.Command{
		Use:   "show <trend>",
		Short: "Show the history of one trend",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			trend := strings.Join(args, " ")
			return a.withDeps(cmd, func(ctx context.Context, d *deps) error {
				analysis, err := d.api.Trends.Analysis(ctx, trend)
				if err != nil {
					return err
				}
				return a.print(analysis, func(w io.Writer) { render.TrendAnalysis(w, analysis) })
			})
		},
	}

	cmd.AddCommand(viral, show)
	return cmd
}
