// Package cmd implements the reelranker command-line interface.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/reelranker/internal/render"
	"github.com/jonesrussell/reelranker/internal/transport"
)

// Output formats.
const (
	outputTable = "table"
	outputJSON  = "json"
)

var errUnhealthy = errors.New("service unhealthy")

// app carries the global flags and output streams shared by every command.
type app struct {
	cfgFile string
	debug   bool
	output  string

	out    io.Writer
	errOut io.Writer
}

// print writes v as JSON when requested, otherwise calls table.
func (a *app) print(v any, table func(w io.Writer)) error {
	if a.output == outputJSON {
		return render.JSON(a.out, v)
	}
	table(a.out)
	return nil
}

// NewRootCommand builds the command tree writing to out and errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "reelranker",
		Short:         "Discover, score and rank short-form video content",
		Long:          `reelranker talks to the ReelRanker API to generate titles, score them, and rank trending shorts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch a.output {
			case outputTable, outputJSON:
				return nil
			default:
				return fmt.Errorf("unknown output format %q (use table or json)", a.output)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "config.yml",
		"config file (CONFIG_PATH overrides; a missing file means defaults)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", outputTable, "output format: table or json")

	root.AddCommand(
		a.generateCommand(),
		a.analyzeCommand(),
		a.hashtagsCommand(),
		a.scoreCommand(),
		a.scoreBatchCommand(),
		a.shortsCommand(),
		a.topicsCommand(),
		a.trendsCommand(),
		a.healthCommand(),
		a.statusCommand(),
		a.loginCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.watchCommand(),
		a.mockServerCommand(),
	)
	return root
}

// Execute runs the CLI until it finishes or the process is signalled.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describeError(err))
	}
	return err
}

// describeError turns transport failures into one line a user can act on.
func describeError(err error) string {
	var serverErr *transport.ServerError
	switch {
	case transport.IsRateLimited(err) && errors.As(err, &serverErr) && serverErr.RateLimit != nil &&
		serverErr.RateLimit.RetryAfter > 0:
		secs := int(math.Ceil(serverErr.RateLimit.RetryAfter.Seconds()))
		return fmt.Sprintf("rate limited by the API, retry in %ds", secs)
	case transport.IsRateLimited(err):
		return "rate limited by the API, try again later"
	case transport.IsUnauthorized(err):
		return "not authorized, run 'reelranker login' and try again"
	}

	switch transport.KindOf(err) {
	case transport.KindNetwork:
		return "cannot reach the API: " + err.Error()
	case transport.KindClientSetup:
		return "invalid request: " + err.Error()
	default:
		return err.Error()
	}
}
