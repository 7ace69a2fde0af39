package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	proposalPostgres "github.com/frahmantamala/training-management/internal/proposal/postgres"
	trainingsync "github.com/frahmantamala/training-management/internal/sync"
	syncPostgres "github.com/frahmantamala/training-management/internal/sync/postgres"
	"github.com/frahmantamala/training-management/pkg/logger"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Backfill derived records from implemented proposals",
	Long:  `Walk all implemented proposals and rebuild any missing draft TNA and realization records.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		logger.Init(os.Getenv("APP_ENV"), cfg.Observability.Logging.Level)
		appLogger := logger.LoggerWrapper()

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		syncRepo := syncPostgres.NewSyncRepository(gormDB)
		synchronizer := trainingsync.NewSynchronizer(syncRepo, syncRepo, syncRepo, appLogger)
		source := proposalPostgres.NewProposalRepository(gormDB)

		processed, created, err := synchronizer.Backfill(context.Background(), source)
		if err != nil {
			log.Fatalf("backfill failed after %d proposals: %v", processed, err)
		}
		fmt.Printf("Backfill complete: %d proposals processed, %d drafts created\n", processed, created)
	},
}
