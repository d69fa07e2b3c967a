package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/turtacn/DealRadar/pkg/client"
)

func newDatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dates",
		Short: "Key-date views",
	}
	cmd.AddCommand(newDatesUpcomingCmd())
	cmd.AddCommand(newDatesOpportunityCmd())
	return cmd
}

func newDatesUpcomingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upcoming",
		Short: "Show the upcoming key-dates dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, err := apiClient().UpcomingDates(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(view.Deadlines) > 0 {
				fmt.Fprintln(out, "DEADLINES")
				printDates(out, view.Deadlines)
			}
			if len(view.Events) > 0 {
				fmt.Fprintln(out, "EVENTS")
				printDates(out, view.Events)
			}
			if len(view.Deadlines) == 0 && len(view.Events) == 0 {
				fmt.Fprintln(out, "no upcoming key dates")
			}
			return nil
		},
	}
}

func newDatesOpportunityCmd() *cobra.Command {
	var showAll bool
	cmd := &cobra.Command{
		Use:   "opportunity <id>",
		Short: "Show key dates relevant to one opportunity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dates, err := apiClient().DatesForOpportunity(cmd.Context(), args[0], showAll)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printDates(out, dates.Dates)
			if dates.HasMore {
				fmt.Fprintf(out, "... %d more (use --all)\n", dates.TotalCount-len(dates.Dates))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showAll, "all", false, "show every relevant date, not just the top five")
	return cmd
}

func printDates(out io.Writer, dates []client.ResolvedDate) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tDATE\tDAYS\tURGENCY")
	for _, d := range dates {
		days := fmt.Sprintf("%d", d.DaysUntil)
		if d.IsActiveRange {
			days = "now"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			d.Name, d.Type, d.Occurrence.Format("2006-01-02"), days, strings.ToUpper(d.Urgency))
	}
	_ = w.Flush()
}
