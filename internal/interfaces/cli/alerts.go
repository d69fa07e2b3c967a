package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAlertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Communication alerts",
	}
	cmd.AddCommand(newAlertsShowCmd())
	cmd.AddCommand(newAlertsDismissCmd())
	return cmd
}

func newAlertsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <opportunity-id>",
		Short: "Show active alerts for one opportunity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alerts, err := apiClient().AlertsForOpportunity(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(alerts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no active alerts")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RULE\tSTAKEHOLDER\tPRIORITY\tLEVEL\tMESSAGE")
			for _, a := range alerts {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", a.RuleID, a.StakeholderName, a.Priority, a.EngagementLevel, a.Message)
			}
			return w.Flush()
		},
	}
}

func newAlertsDismissCmd() *cobra.Command {
	var by string
	cmd := &cobra.Command{
		Use:   "dismiss <opportunity-id> <rule-id>",
		Short: "Dismiss one alert for one opportunity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apiClient().DismissAlert(cmd.Context(), args[0], args[1], by); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "dismissed")
			return nil
		},
	}
	cmd.Flags().StringVar(&by, "by", "", "who is dismissing the alert")
	return cmd
}
