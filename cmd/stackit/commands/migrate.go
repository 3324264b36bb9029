package commands

import (
	"github.com/spf13/cobra"

	"github.com/chiragbiradar/StackIt-odoo/cmd/stackit/output"
	"github.com/chiragbiradar/StackIt-odoo/internal/repo"
)

func newMigrateCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema",
		Long: `Create or update every StackIt table, index and foreign key on the
configured database. Safe to run repeatedly.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(gf)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := repo.AutoMigrate(a.db.WithContext(cmd.Context())); err != nil {
				return err
			}
			if !gf.jsonOut {
				output.Success(cmd.OutOrStdout(), "schema up to date (%s)", a.cfg.DB.Driver)
			}
			return nil
		},
	}
}
