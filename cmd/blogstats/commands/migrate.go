package commands

import (
	"context"

	"github.com/spf13/cobra"

	"blogstats/cmd/app"
	"blogstats/cmd/blogstats/output"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the blog tables if they do not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, cfg.QueryTimeout, func(ctx context.Context, c *app.Components) error {
			if err := c.DB.ApplySchema(ctx); err != nil {
				return err
			}
			output.Success("Schema applied to %s", cfg.DB.DbNAME)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
