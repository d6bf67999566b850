package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/dmitrijs2005/conops/internal/client/client"
	"github.com/dmitrijs2005/conops/internal/client/settings"
	"github.com/spf13/cobra"
)

func (a *App) settingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change persisted settings",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print every setting",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				values, err := a.settings.All(cmd.Context())
				if err != nil {
					return err
				}
				names := make([]string, 0, len(values))
				for n := range values {
					names = append(names, n)
				}
				sort.Strings(names)

				w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				for _, n := range names {
					marker := ""
					if def, _ := settings.Default(n); def != values[n] {
						marker = "*"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\n", n, values[n], marker)
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:       "set <name> <value>",
			Short:     "Change a setting",
			Args:      cobra.ExactArgs(2),
			ValidArgs: settings.Names(),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.settings.Set(cmd.Context(), args[0], args[1]); err != nil {
					return err
				}
				v, err := a.settings.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				a.printf("%s = %s\n", args[0], v)
				return nil
			},
		},
		a.settingsResetCommand(),
	)
	return cmd
}

func (a *App) settingsResetCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:       "reset [name]",
		Short:     "Restore one or all settings to their defaults",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: settings.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case all && len(args) == 0:
				if err := a.settings.ResetAll(cmd.Context()); err != nil {
					return err
				}
				a.println("All settings restored to defaults")
				return nil
			case all || len(args) == 0:
				return client.Unprocessable("give either a setting name or --all")
			}
			if err := a.settings.Reset(cmd.Context(), args[0]); err != nil {
				return err
			}
			def, _ := settings.Default(args[0])
			a.printf("%s = %s\n", args[0], def)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "reset every setting")
	return cmd
}
