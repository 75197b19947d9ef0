package cmd

import (
	"fmt"

	"inkwell/internal/store/primary"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var migrateSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the PostgreSQL schema",
}

func primaryDSN(cmd *cobra.Command) (string, error) {
	cfg, err := GetConfigFromContext(cmd.Context())
	if err != nil {
		return "", err
	}
	if err := cfg.RequirePrimaryDatabase(); err != nil {
		return "", err
	}
	return cfg.Database.Primary.DSN, nil
}

var migrateUpCmd = &cobra.Command{
	Use:         "up",
	Short:       "Apply all pending migrations",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipAppAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, err := primaryDSN(cmd)
		if err != nil {
			return err
		}
		if err := primary.MigrateUp(dsn); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("Schema is up to date."))
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:         "down",
	Short:       "Roll back migrations",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipAppAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, err := primaryDSN(cmd)
		if err != nil {
			return err
		}
		if err := primary.MigrateDown(dsn, migrateSteps); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %d migration(s).\n", max(migrateSteps, 1))
		return nil
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the applied schema version",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipAppAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, err := primaryDSN(cmd)
		if err != nil {
			return err
		}
		version, dirty, err := primary.MigrationVersion(dsn)
		if err != nil {
			return err
		}
		if version == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No migrations applied.")
			return nil
		}
		state := "clean"
		if dirty {
			state = color.RedString("dirty")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d (%s)\n", version, state)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)

	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "Number of migrations to roll back")
}
