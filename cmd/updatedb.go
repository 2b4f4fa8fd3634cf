// Copyright 2026 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

package cmd

import (
	"context"

	"github.com/hexya-erp/quickboard/src/models"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var updateDBCmd = &cobra.Command{
	Use:   "updatedb",
	Short: "Update the database schema",
	Long: `Create or update the tables of the models registry and of the dashboard items.
With --models-file, the models described in the given YAML file are imported into the registry.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		UpdateDB(ctx)
	},
}

// UpdateDB updates the database schema and imports the models file if any.
func UpdateDB(ctx context.Context) {
	setupLogger()
	db := connectToDB(ctx)
	defer db.Close()
	if err := models.SyncDatabase(ctx, db); err != nil {
		log.Panic("Unable to synchronize database", "error", err)
	}
	if file := viper.GetString("UpdateDB.ModelsFile"); file != "" {
		reg, err := models.LoadRegistryFile(file)
		if err != nil {
			log.Panic("Unable to load models file", "file", file, "error", err)
		}
		entities, err := reg.Entities(ctx)
		if err != nil {
			log.Panic("Unable to read models", "error", err)
		}
		if err := models.NewDBRegistry(db).ImportEntities(ctx, entities); err != nil {
			log.Panic("Unable to import models", "file", file, "error", err)
		}
		log.Info("Models imported", "file", file, "count", len(entities))
	}
	log.Info("Database updated successfully")
}

func init() {
	updateDBCmd.Flags().String("models-file", "", "YAML file of models to import into the database registry")
	viper.BindPFlag("UpdateDB.ModelsFile", updateDBCmd.Flags().Lookup("models-file"))
	QuickboardCmd.AddCommand(updateDBCmd)
}
