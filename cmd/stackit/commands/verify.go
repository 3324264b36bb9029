package commands

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chiragbiradar/StackIt-odoo/cmd/stackit/output"
	"github.com/chiragbiradar/StackIt-odoo/internal/domain"
)

// ErrInconsistent is returned by verify when any aggregate drifted, so the
// process exits non-zero.
var ErrInconsistent = errors.New("aggregates are inconsistent")

type verifyReport struct {
	Consistent bool              `json:"consistent"`
	Mismatches []domain.Mismatch `json:"mismatches"`
}

func newVerifyCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Recompute every aggregate and report drift",
		Long: `Recompute every derived counter from the fact tables and compare it to
the stored value. Exits with status 1 when any mismatch is found.

Examples:
  stackit verify
  stackit verify --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(gf)
			if err != nil {
				return err
			}
			defer a.Close()

			found, err := a.verifier().Verify(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if gf.jsonOut {
				if found == nil {
					found = []domain.Mismatch{}
				}
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				if err := enc.Encode(verifyReport{Consistent: len(found) == 0, Mismatches: found}); err != nil {
					return err
				}
			} else if len(found) == 0 {
				output.Success(w, "all aggregates consistent")
			} else {
				output.Section(w, fmt.Sprintf("%d mismatched aggregates", len(found)))
				output.Mismatches(w, found)
				output.Muted(w, "run `stackit repair` to rewrite them from the fact tables")
			}
			if len(found) > 0 {
				return ErrInconsistent
			}
			return nil
		},
	}
}
