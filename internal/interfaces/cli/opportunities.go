package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/turtacn/DealRadar/pkg/client"
)

func newOpportunitiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "opportunities",
		Aliases: []string{"opps"},
		Short:   "Pipeline opportunities",
	}
	cmd.AddCommand(newOpportunitiesListCmd())
	cmd.AddCommand(newOpportunitiesStageCmd())
	return cmd
}

func newOpportunitiesListCmd() *cobra.Command {
	var filter client.ListFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List opportunities",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opps, err := apiClient().ListOpportunities(cmd.Context(), filter)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tORGANIZATION\tTYPE\tSTAGE\tVALUE")
			for _, o := range opps {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					o.ID, o.Name, o.Organization, o.ProjectType, o.Stage, o.EstimatedValue)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&filter.Stage, "stage", "", "filter by pipeline stage")
	cmd.Flags().StringVar(&filter.ProjectType, "project-type", "", "filter by project type code")
	cmd.Flags().StringVar(&filter.Search, "search", "", "search name and organization")
	return cmd
}

func newOpportunitiesStageCmd() *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "stage <id> <stage>",
		Short: "Move an opportunity to a new pipeline stage",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := apiClient().ChangeStage(cmd.Context(), args[0], args[1], note)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", tr.OpportunityID, tr.FromStage, tr.ToStage)
			return nil
		},
	}
	cmd.Flags().StringVar(&note, "note", "", "note recorded on the transition")
	return cmd
}
