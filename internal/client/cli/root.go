package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/conops/internal/buildinfo"
	"github.com/dmitrijs2005/conops/internal/client/client"
	"github.com/dmitrijs2005/conops/internal/client/config"
	"github.com/spf13/cobra"
)

// Execute runs the command line in args and returns the first error.
func Execute(ctx context.Context, args []string, opts ...Option) error {
	a := newApp(opts...)
	defer a.Close()

	root := newRootCommand(a)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCommand(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "conops",
		Short:         "Convention registration desk client",
		Long:          "conops keeps a local copy of conventions and attendees in sync with the registration server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[annotationNoApp] == "true" {
				return nil
			}
			return a.init(cmd)
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		a.loginCommand(),
		a.logoutCommand(),
		a.statusCommand(),
		a.syncCommand(),
		a.watchCommand(),
		a.conventionsCommand(),
		a.attendeesCommand(),
		a.printersCommand(),
		a.settingsCommand(),
		a.versionCommand(),
	)
	return root
}

const annotationNoApp = "conops/no-app"

func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoApp: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			buildinfo.PrintBuildData(a.out)
		},
	}
}

// Describe turns an error from Execute into a message for the terminal.
func Describe(err error) string {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return fmt.Sprintf("%v\nrun `conops login` to sign in", err)
	case errors.Is(err, client.ErrUnavailable):
		return fmt.Sprintf("%v\ncheck the server address with `conops settings show`", err)
	}
	return err.Error()
}
