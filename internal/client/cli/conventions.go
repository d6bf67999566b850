package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dmitrijs2005/conops/internal/client/models"
	"github.com/spf13/cobra"
)

func (a *App) conventionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conventions",
		Aliases: []string{"cons"},
		Short:   "Show conventions",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List cached conventions",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				list, err := a.conventions.List(cmd.Context())
				if err != nil {
					return err
				}
				a.printConventions(list)
				return nil
			},
		},
		&cobra.Command{
			Use:   "active",
			Short: "Ask the server which conventions are open",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				list, err := a.conventions.Active(cmd.Context())
				if err != nil {
					return err
				}
				a.printConventions(list)
				return nil
			},
		},
	)
	return cmd
}

func (a *App) printConventions(list []models.Convention) {
	if len(list) == 0 {
		a.println("No conventions")
		return
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSHORT NAME\tNAME\tACTIVE\tSTARTS\tENDS")
	for _, c := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.ShortName, c.LongName, yesNo(c.Active), formatDate(c.EventStart), formatDate(c.EventEnd))
	}
	_ = w.Flush()
}
