package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/reelranker/internal/logger"
	"github.com/jonesrussell/reelranker/internal/render"
	"github.com/jonesrussell/reelranker/internal/session"
)

func (a *app) loginCommand() *cobra.Command {
	var (
		token      string
		mintSecret string
		subject    string
		ttl        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the credential sent with every API call",
		Long: `Store a bearer token for later commands. Use --token for a token issued by the
service, or --mint-secret to sign a development token accepted by 'reelranker mock-server'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDeps(cmd, func(ctx context.Context, d *deps) error {
				if mintSecret != "" {
					var expiresAt time.Time
					var err error
					token, expiresAt, err = session.MintDevToken(mintSecret, subject, ttl)
					if err != nil {
						return err
					}
					d.log.Info("Minted development token",
						logger.String("subject", subject),
						logger.String("expires_at", expiresAt.Format(time.RFC3339)),
					)
				}
				if err := d.session.Set(ctx, token); err != nil {
					return fmt.Errorf("save session: %w", err)
				}
				fmt.Fprintln(a.out, "Logged in")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "bearer token to store")
	cmd.Flags().StringVar(&mintSecret, "mint-secret", "", "sign a development token with this HS256 secret")
	cmd.Flags().StringVar(&subject, "subject", "dev", "subject of a minted token")
	cmd.Flags().DurationVar(&ttl, "ttl", session.DefaultDevTokenTTL, "lifetime of a minted token")
	cmd.MarkFlagsOneRequired("token", "mint-secret")
	cmd.MarkFlagsMutuallyExclusive("token", "mint-secret")
	return cmd
}

func (a *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDeps(cmd, func(ctx context.Context, d *deps) error {
				if err := d.session.Clear(ctx); err != nil {
					return fmt.Errorf("clear session: %w", err)
				}
				fmt.Fprintln(a.out, "Logged out")
				return nil
			})
		},
	}
}

// whoami is the JSON shape of the whoami command.
type whoami struct {
	LoggedIn  bool       `json:"logged_in"`
	Subject   string     `json:"subject,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
}

func (a *app) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored credential's subject and expiry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDeps(cmd, func(_ context.Context, d *deps) error {
				token, ok := d.session.Token()
				if !ok {
					return a.print(whoami{}, func(w io.Writer) { fmt.Fprintln(w, "Not logged in") })
				}

				info, err := session.Inspect(token)
				if errors.Is(err, session.ErrNotJWT) {
					return a.print(whoami{LoggedIn: true}, func(w io.Writer) {
						fmt.Fprintln(w, "Logged in with an opaque token")
					})
				}
				if err != nil {
					return err
				}

				now := time.Now()
				out := whoami{LoggedIn: true, Subject: info.Subject, Expired: info.Expired(now)}
				if !info.ExpiresAt.IsZero() {
					out.ExpiresAt = &info.ExpiresAt
				}
				return a.print(out, func(w io.Writer) { render.Session(w, info, now) })
			})
		},
	}
}
