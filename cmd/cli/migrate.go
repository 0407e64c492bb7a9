package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kosarica/price-comparator/config"
	"github.com/kosarica/price-comparator/internal/database"
)

var migratePrint bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Apply the embedded schema to the database named by DATABASE_URL or
database.url. The schema is idempotent and safe to apply repeatedly.`,
	Example: `  pricecomp migrate
  pricecomp migrate --print > schema.sql`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().BoolVar(&migratePrint, "print", false, "Print the schema instead of applying it")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if migratePrint {
		fmt.Fprint(cmd.OutOrStdout(), database.Schema())
		return nil
	}

	dbURL := config.GetDatabaseURL()
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL not set")
	}
	if err := database.Migrate(cmd.Context(), dbURL); err != nil {
		return err
	}
	logger.Info().Msg("Database schema applied")
	return nil
}
