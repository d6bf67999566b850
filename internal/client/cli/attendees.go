package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/conops/internal/client/client"
	"github.com/dmitrijs2005/conops/internal/client/models"
	"github.com/spf13/cobra"
)

func (a *App) attendeesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "attendees",
		Aliases: []string{"att"},
		Short:   "Work with a convention's attendees",
	}

	var search string
	list := &cobra.Command{
		Use:   "list <convention>",
		Short: "List cached attendees",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := a.attendees.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printAttendees(filterAttendees(all, search))
			return nil
		},
	}
	list.Flags().StringVarP(&search, "search", "s", "", "only show attendees whose name, badge name or badge number contains this")

	checkin := &cobra.Command{
		Use:   "checkin <convention> <attendee-id>",
		Short: "Check an attendee in",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			if err := a.auth.EnsureSession(cmd.Context()); err != nil {
				return err
			}
			att, err := a.attendees.CheckIn(cmd.Context(), args[0], id)
			if err != nil {
				return err
			}
			a.printf("Checked in %s (badge %s)\n", fullName(*att), att.BadgeNumber)
			if att.CurrentBalance > 0 {
				a.printf("Balance due: %.2f\n", att.CurrentBalance)
			}
			return nil
		},
	}

	var printer string
	printBadge := &cobra.Command{
		Use:   "print <convention> <attendee-id>",
		Short: "Send an attendee's badge to a printer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			if err := a.auth.EnsureSession(cmd.Context()); err != nil {
				return err
			}
			if err := a.attendees.PrintBadge(cmd.Context(), args[0], id, printer); err != nil {
				return err
			}
			a.println("Badge sent to printer")
			return nil
		},
	}
	printBadge.Flags().StringVarP(&printer, "printer", "p", "", "printer name (server default when empty)")

	show := &cobra.Command{
		Use:   "show <convention> <attendee-id>",
		Short: "Show one attendee with transactions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			att, err := a.attendees.Get(cmd.Context(), args[0], id)
			if err != nil {
				return err
			}
			a.printAttendee(*att)
			return nil
		},
	}

	find := &cobra.Command{
		Use:   "find <convention> <badge-number>",
		Short: "Show a cached attendee by badge number",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			att, err := a.attendees.FindByBadge(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			a.printf("ID: %d\n", att.ID)
			a.printAttendee(*att)
			return nil
		},
	}

	cmd.AddCommand(list, show, find, checkin, printBadge)
	return cmd
}

func (a *App) printersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "printers <convention>",
		Short: "List the badge printers of a convention",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.auth.EnsureSession(cmd.Context()); err != nil {
				return err
			}
			names, err := a.attendees.Printers(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(names) == 0 {
				a.println("No printers")
			}
			for _, n := range names {
				a.println(n)
			}
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, client.Unprocessable("invalid attendee id %q", s)
	}
	return id, nil
}

func filterAttendees(list []models.Attendee, search string) []models.Attendee {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return list
	}
	out := list[:0:0]
	for _, at := range list {
		hay := strings.ToLower(strings.Join([]string{at.FirstName, at.LastName, at.BadgeName, at.BadgeNumber}, " "))
		if strings.Contains(hay, search) {
			out = append(out, at)
		}
	}
	return out
}

func (a *App) printAttendees(list []models.Attendee) {
	if len(list) == 0 {
		a.println("No attendees")
		return
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tBADGE\tNAME\tTYPE\tCHECKED IN\tBALANCE")
	for _, at := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%.2f\n",
			at.ID, at.BadgeNumber, fullName(at), at.Type, formatTime(at.CheckInDate), at.CurrentBalance)
	}
	_ = w.Flush()
}

func (a *App) printAttendee(at models.Attendee) {
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", fullName(at))
	if at.BadgeName != "" {
		fmt.Fprintf(w, "Badge name:\t%s\n", at.BadgeName)
	}
	fmt.Fprintf(w, "Badge:\t%s\n", at.BadgeNumber)
	fmt.Fprintf(w, "Type:\t%s\n", at.Type)
	fmt.Fprintf(w, "Active:\t%s\n", yesNo(at.Active))
	fmt.Fprintf(w, "Minor:\t%s\n", yesNo(at.Minor))
	fmt.Fprintf(w, "Birthday:\t%s\n", formatDate(at.Birthday))
	fmt.Fprintf(w, "Email:\t%s\n", at.EmailAddress)
	fmt.Fprintf(w, "Registered:\t%s\n", formatTime(at.RegistrationDate))
	fmt.Fprintf(w, "Checked in:\t%s\n", formatTime(at.CheckInDate))
	fmt.Fprintf(w, "Balance:\t%.2f\n", at.CurrentBalance)
	_ = w.Flush()

	if len(at.Transactions) == 0 {
		return
	}
	a.println()
	w = tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tAMOUNT\tDESCRIPTION")
	for _, t := range at.Transactions {
		fmt.Fprintf(w, "%s\t%.2f\t%s\n", t.Timestamp.Local().Format(time.DateTime), t.Amount, t.Description)
	}
	_ = w.Flush()
}

func fullName(at models.Attendee) string {
	return strings.TrimSpace(at.FirstName + " " + at.LastName)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.DateOnly)
}
