package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chiragbiradar/StackIt-odoo/cmd/stackit/output"
	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
)

func newRepairCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "repair",
		Short: "Rewrite drifted aggregates from the fact tables",
		Long: `Recompute every aggregate inside one transaction and rewrite the ones that
disagree. A question with more than one accepted answer keeps the oldest.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(gf)
			if err != nil {
				return err
			}
			defer a.Close()

			fixed, err := a.verifier().Repair(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if gf.jsonOut {
				if fixed == nil {
					fixed = []domain.Mismatch{}
				}
				return json.NewEncoder(w).Encode(map[string]any{"repaired": fixed})
			}
			if len(fixed) == 0 {
				output.Success(w, "nothing to repair")
				return nil
			}
			output.Section(w, fmt.Sprintf("repaired %d aggregates", len(fixed)))
			output.Mismatches(w, fixed)
			return nil
		},
	}
}
