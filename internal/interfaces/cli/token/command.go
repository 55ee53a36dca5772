package token

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"bizdesk/internal/domain/user"
	"bizdesk/internal/infrastructure/auth"
	"bizdesk/internal/infrastructure/database"
	"bizdesk/internal/infrastructure/repository"
	"bizdesk/internal/interfaces/cli/bootstrap"
)

func NewCommand(opts *bootstrap.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Identity token commands",
	}
	cmd.AddCommand(newIssueCommand(opts))
	return cmd
}

func newIssueCommand(opts *bootstrap.Options) *cobra.Command {
	var (
		ref string
		ttl time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign an access token for an existing user",
		Example: `  bizdesk token issue --user 7
  bizdesk token issue --user admin@bizdesk.local --ttl 24h`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap.Load(opts)
			if err != nil {
				return err
			}
			gdb, err := rt.OpenDatabase()
			if err != nil {
				return err
			}
			defer database.Close()

			u, err := findUser(cmd.Context(), repository.NewUserRepository(gdb, rt.Log), ref)
			if err != nil {
				return err
			}
			if !u.IsActive() {
				return fmt.Errorf("user %d is inactive", u.ID())
			}

			jwtSvc := auth.NewJWTService(rt.Config.Auth.JWT.Secret, rt.Config.Auth.JWT.AccessExpMinutes)
			if ttl <= 0 {
				ttl = time.Duration(jwtSvc.AccessExpMinutes()) * time.Minute
			}
			issued, err := jwtSvc.GenerateWithTTL(u.ID(), u.Role(), ttl)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}

			rt.Log.Infow("access token issued", "user_id", u.ID(), "role", u.Role(), "expires_at", issued.ExpiresAt)
			fmt.Fprintln(cmd.OutOrStdout(), issued.AccessToken)
			return nil
		},
	}

	cmd.Flags().StringVarP(&ref, "user", "u", "", "User id or email")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime; defaults to auth.jwt.access_exp_minutes")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// findUser resolves ref as a numeric id first, then as an email.
func findUser(ctx context.Context, users user.Repository, ref string) (*user.User, error) {
	ref = strings.TrimSpace(ref)

	var (
		u   *user.User
		err error
	)
	if id, perr := strconv.ParseUint(ref, 10, 32); perr == nil {
		u, err = users.GetByID(ctx, uint(id))
	} else {
		u, err = users.GetByEmail(ctx, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user %q: %w", ref, err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %q not found", ref)
	}
	return u, nil
}
