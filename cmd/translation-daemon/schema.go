package main

import (
	"github.com/spf13/cobra"

	"github.com/biocycle/translation-pipeline/internal/config"
	"github.com/biocycle/translation-pipeline/internal/store"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manipulate the schema of the pipeline's own tables",
}

var schemaMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the translation-memory and job tables to the latest supported version",
	RunE: func(command *cobra.Command, args []string) error {
		command.SilenceUsage = true

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		dsn, _ := command.Flags().GetString(databaseFlag)
		if dsn == "" {
			dsn = cfg.DatabaseURL
		}
		sqlStore, err := store.New(dsn, logger)
		if err != nil {
			return err
		}
		defer sqlStore.Close()

		return sqlStore.Migrate()
	},
}

func init() {
	schemaCmd.AddCommand(schemaMigrateCmd)
}
