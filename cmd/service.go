package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/reelranker/internal/render"
)

func (a *app) healthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the API is reachable and healthy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDeps(cmd, func(ctx context.Context, d *deps) error {
				report := d.api.Health.Check(ctx)
				if err := a.print(report, func(w io.Writer) { render.Health(w, report) }); err != nil {
					return err
				}
				if !report.Healthy() {
					return errUnhealthy
				}
				return nil
			})
		},
	}
}

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the API's self-reported status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDeps(cmd, func(ctx context.Context, d *deps) error {
				status, err := d.api.Health.Status(ctx)
				if err != nil {
					return err
				}
				return a.print(status, func(w io.Writer) { render.Status(w, status) })
			})
		},
	}
}
