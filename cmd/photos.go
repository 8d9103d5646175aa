package cmd

import (
	"context"
	"fmt"
	"time"

	karyawanDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/karyawan"
	"github.com/frahmantamala/karyawan-management/internal/core/events"
	"github.com/frahmantamala/karyawan-management/internal/storage"
	"github.com/frahmantamala/karyawan-management/pkg/logger"
	"github.com/spf13/cobra"
)

var photosCmd = &cobra.Command{
	Use:   "photos",
	Short: "Photo storage maintenance",
}

var prunePhotosCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete photo files no karyawan references",
	Long: `Scan the photo directory and discard files left behind by interrupted uploads.
Files younger than --min-age are skipped so uploads still in flight on a
running server are left alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return prunePhotos(cmd.Context())
	},
}

var (
	pruneDryRun bool
	pruneMinAge time.Duration
)

func prunePhotos(ctx context.Context) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	log := logger.LoggerWrapper()

	db, rdb, err := openDatabase(cfg.Database, log)
	if err != nil {
		return err
	}
	defer rdb.Close()

	var referenced []string
	if err := db.WithContext(ctx).Model(&karyawanDatamodel.Karyawan{}).
		Where("foto_path IS NOT NULL").
		Pluck("foto_path", &referenced).Error; err != nil {
		return fmt.Errorf("list referenced photos: %w", err)
	}

	store := storage.NewPhotoStore(cfg.Storage.PhotoDir, cfg.Storage.MaxPhotoSize, log)
	orphans, err := store.Orphans(referenced, time.Now().Add(-pruneMinAge))
	if err != nil {
		return err
	}
	if pruneDryRun {
		for _, path := range orphans {
			fmt.Println(path)
		}
		return nil
	}

	bus := events.NewEventBus(log)
	store.Subscribe(bus)

	failed := 0
	for _, path := range orphans {
		if err := bus.PublishSync(ctx, events.NewPhotoDiscardedEvent(0, path, events.ReasonWriteAbandoned)); err != nil {
			failed++
		}
	}

	log.Info("photo prune finished", "discarded", len(orphans)-failed, "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d orphaned photos could not be deleted", failed, len(orphans))
	}
	return nil
}

func init() {
	prunePhotosCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "only print the files that would be deleted")
	prunePhotosCmd.Flags().DurationVar(&pruneMinAge, "min-age", time.Hour, "skip files modified more recently than this")
	photosCmd.AddCommand(prunePhotosCmd)
}
