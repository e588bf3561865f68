package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/velatra/photofolio/config"
	"github.com/velatra/photofolio/database"
)

// migrateCmd runs schema migration and exits
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migration and exit",
	Run: func(cmd *cobra.Command, args []string) {
		config.InitConfig()
		cfg := config.Get()

		factory, err := database.NewFactory(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer func() {
			if err := factory.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}()

		if err := factory.AutoMigrate(); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migration completed successfully")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
