package cli

import (
	"time"

	"github.com/dmitrijs2005/conops/internal/client/client"
	"github.com/spf13/cobra"
)

func (a *App) loginCommand() *cobra.Command {
	var (
		convention string
		username   string
		noSync     bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the registration server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if convention == "" {
				last, err := a.settings.LastConvention(ctx)
				if err != nil {
					return err
				}
				if convention, err = GetSimpleText(a.in, "Convention", last, a.out); err != nil {
					return err
				}
			}
			if username == "" {
				last, err := a.settings.LastUsername(ctx)
				if err != nil {
					return err
				}
				if username, err = GetSimpleText(a.in, "Username", last, a.out); err != nil {
					return err
				}
			}
			password, err := GetPassword(a.out)
			if err != nil {
				return err
			}

			s, err := a.auth.Login(ctx, convention, username, password)
			if err != nil {
				return err
			}
			a.printf("Logged in as %s for %s\n", s.Username, s.Convention)
			if noSync {
				return nil
			}
			return a.runSync(cmd, true)
		},
	}
	cmd.Flags().StringVarP(&convention, "convention", "C", "", "convention short name")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().BoolVar(&noSync, "no-sync", false, "skip the full sync after signing in")
	return cmd
}

func (a *App) logoutCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the session and clear cached data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.auth.Logout(ctx); err != nil {
				return err
			}
			if all {
				if err := a.store.ClearAll(ctx); err != nil {
					return client.StoreError(err)
				}
			}
			a.println("Logged out")
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "also reset settings and last-used names")
	return cmd
}

func (a *App) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session, server and cache state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := a.auth.Session(ctx)
			if err != nil {
				return err
			}
			ep, err := a.settings.Endpoint(ctx)
			if err != nil {
				return err
			}
			last, err := a.store.LastSyncTime(ctx)
			if err != nil {
				return client.StoreError(err)
			}
			count, err := a.store.ConventionCount(ctx)
			if err != nil {
				return client.StoreError(err)
			}

			a.printf("Server:      %s\n", client.BuildURL(ep, nil))
			switch {
			case !s.LoggedIn:
				a.println("Session:     logged out")
			case s.Expired:
				a.printf("Session:     %s@%s (expired %s)\n", s.Username, s.Convention, formatTime(s.ExpiresAt))
			case s.ExpiresAt != nil:
				a.printf("Session:     %s@%s (until %s)\n", s.Username, s.Convention, formatTime(s.ExpiresAt))
			default:
				a.printf("Session:     %s@%s\n", s.Username, s.Convention)
			}
			a.printf("Last sync:   %s\n", formatTime(last))
			a.printf("Conventions: %d cached\n", count)
			return nil
		},
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
