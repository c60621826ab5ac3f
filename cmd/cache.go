package main

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gatherhall/address-engine/internal/cachestore"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Provider cache maintenance",
	Long:  "Maintenance for the persistent provider response cache (sqlite or postgres drivers).",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired cache entries",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("cache"); err != nil {
			return err
		}

		store, err := openPurgeStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close() //nolint:errcheck

		purged, err := purgeStore(ctx, store)
		if err != nil {
			return err
		}

		fmt.Printf("Purged %d expired cache entries\n", purged)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}

// expiringStore is the slice of the cache backends the purge command needs.
type expiringStore interface {
	Migrate(ctx context.Context) error
	PurgeExpired(ctx context.Context) (int, error)
	Close() error
}

func openPurgeStore(ctx context.Context) (expiringStore, error) {
	switch cfg.Cache.Driver {
	case "sqlite":
		return cachestore.NewSQLite(cfg.Cache.Path)
	case "postgres":
		return cachestore.NewPostgres(ctx, cfg.Cache.DatabaseURL, &cfg.Cache.Pool)
	default:
		return nil, eris.Errorf("cache purge needs a persistent driver, have %q", cfg.Cache.Driver)
	}
}

func purgeStore(ctx context.Context, store expiringStore) (int, error) {
	if err := store.Migrate(ctx); err != nil {
		return 0, err
	}

	purged, err := store.PurgeExpired(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "purge cache")
	}

	zap.L().Info("cache purge complete", zap.Int("purged", purged))
	return purged, nil
}
