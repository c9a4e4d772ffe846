package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/reelranker/internal/ranking"
	"github.com/jonesrussell/reelranker/internal/reelapi"
	"github.com/jonesrussell/reelranker/internal/render"
)

func (a *app) generateCommand() *cobra.Command {
	var req reelapi.GenerateRequest

	cmd := &cobra.Command{
		Use:   "generate <topic>",
		Short: "Generate viral titles and hashtags for a topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Topic = strings.Join(args, " ")
			return a.withDeps(cmd, func(ctx context.Context, d *deps) error {
				resp, err := d.api.Content.Generate(ctx, req)
				if err != nil {
					return err
				}
				return a.print(resp, func(w io.Writer) { render.Generated(w, resp) })
			})
		},
	}
	cmd.Flags().IntVarP(&req.Count, "count", "n", 0,
		fmt.Sprintf("number of titles, 1-%d (0 uses the service default)", reelapi.MaxGenerateCount))
	cmd.Flags().StringVar(&req.Style, "style", "", "title style (service default: viral)")
	return cmd
}

func (a *app) analyzeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <topic>",
		Short: "Analyze what performs well for a topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topic := strings.Join(args, " ")
			return a.withDeps(cmd, func(ctx context.Context, d *deps) error {
				analysis, err := d.api.Content.AnalyzeTopic(ctx, topic)
				if err != nil {
					return err
				}
				return a.print(analysis, func(w io.Writer) { render.TopicAnalysis(w, analysis) })
			})
		},
	}
}

func (a *app) hashtagsCommand() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "hashtags <topic>",
		Short: "Generate hashtags for a topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := reelapi.GenerateRequest{Topic: strings.Join(args, " "), Count: count}
			return a.withDeps(cmd, func(ctx context.Context, d *deps) error {
				resp, err := d.api.Content.GenerateHashtags(ctx, req)
				if err != nil {
					return err
				}
				return a.print(resp, func(w io.Writer) { render.Hashtags(w, resp) })
			})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of hashtags (0 uses the service default)")
	return cmd
}

func (a *app) scoreCommand() *cobra.Command {
	var (
		tags     []string
		hashtags []string
		topic    string
	)

	cmd := &cobra.Command{
		Use:   "score <title>",
		Short: "Predict the viral score of a title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := reelapi.ScoreRequest{Title: strings.Join(args, " "), Tags: tags, Hashtags: hashtags}
			if topic != "" {
				req.Topic = &topic
			}
			return a.withDeps(cmd, func(ctx context.Context, d *deps) error {
				result, err := d.api.Scoring.ScoreTitle(ctx, req)
				if err != nil {
					return err
				}
				return a.print(result, func(w io.Writer) { render.Score(w, result) })
			})
		},
	}
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "comma-separated tags")
	cmd.Flags().StringSliceVar(&hashtags, "hashtags", nil, "comma-separated hashtags")
	cmd.Flags().StringVar(&topic, "topic", "", "topic the title targets")
	return cmd
}

func (a *app) scoreBatchCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "score-batch [titles...]",
		Short: "Score many titles in one call, one title per line",
		Long: `Score many titles in one call. Titles come from --file (use - for stdin)
or from the arguments. Blank lines are ignored and results are shown in input order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, err := readTitles(cmd.InOrStdin(), file, args)
			if err != nil {
				return err
			}
			return a.withDeps(cmd, func(ctx context.Context, d *deps) error {
				outcome, err := ranking.ScoreBatch(ctx, d.api.Scoring, lines)
				if err != nil {
					return err
				}
				return a.print(outcome, func(w io.Writer) { render.Batch(w, outcome) })
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "file with one title per line, - for stdin")
	return cmd
}

func readTitles(stdin io.Reader, file string, args []string) ([]string, error) {
	switch file {
	case "":
		return args, nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return ranking.SplitLines(string(data)), nil
	default:
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read titles: %w", err)
		}
		return ranking.SplitLines(string(data)), nil
	}
}
