package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"bikeshare-dashboard/models"
	"bikeshare-dashboard/services"
)

func reportCommand(a *app) *cobra.Command {
	var (
		sel  selectionFlags
		view string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print totals, a single day and one view to the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dv, err := a.loadView(cmd.Context())
			if err != nil {
				return err
			}

			s, err := sel.selection(dv)
			if err != nil {
				return err
			}
			if view != "" {
				kind, ok := models.ParseViewKind(view)
				if !ok {
					return fmt.Errorf("unknown view %q (want one of %s)", view, viewNames())
				}
				s.View = kind
			}

			services.NewReportPrinter(cmd.OutOrStdout()).Print(dv.Render(s))
			return nil
		},
	}

	sel.bind(cmd, true)
	cmd.Flags().StringVar(&view, "view", string(models.ViewTrend), "View to print: "+viewNames()+" (empty for none)")
	return cmd
}
