package main

import (
	"fmt"

	"github.com/spf13/cobra"

	articleseed "github.com/tair/storefront/internal/article/seed"
	productseed "github.com/tair/storefront/internal/product/seed"
	userrepo "github.com/tair/storefront/internal/user/repository"
	userseed "github.com/tair/storefront/internal/user/seed"
	"github.com/tair/storefront/pkg/config"
	"github.com/tair/storefront/pkg/logger"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the catalog, blog and admin account, then exit",
	Long:  `Write the built-in catalog and blog records and the reserved admin account to the configured storage. Seeding is idempotent: records removed by an admin are re-added, user-created records are left alone.`,
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	ctx := cmd.Context()

	adapter, cleanup, err := buildAdapter(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := productseed.EnsureSeedData(ctx, adapter); err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	if err := articleseed.EnsureSeedData(ctx, adapter); err != nil {
		return fmt.Errorf("failed to seed articles: %w", err)
	}

	users := userrepo.NewCollectionUserRepository(adapter)
	if err := userseed.EnsureAdmin(ctx, users, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	logger.Info(ctx).Str("backend", cfg.Storage.Primary).Msg("Seed data written")
	return nil
}
