// Package main provides a CLI tool for seeding the database with demo data.
package main

import (
	"context"
	"fmt"
	"os"

	"opstock/internal/config"
	"opstock/internal/core/types"
	"opstock/internal/domain/catalogs/location"
	"opstock/internal/domain/catalogs/material"
	"opstock/internal/domain/catalogs/supplier"
	"opstock/internal/domain/documents/inward"
	"opstock/internal/infrastructure/migration"
	"opstock/internal/infrastructure/storage/postgres"
	"opstock/internal/infrastructure/storage/postgres/catalog_repo"
	"opstock/internal/infrastructure/storage/postgres/document_repo"
	"opstock/internal/infrastructure/storage/postgres/register_repo"
	"opstock/pkg/logger"
	"opstock/pkg/numerator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if cfg.Migrations.Enabled {
		migrator, err := migration.New(cfg.Database.DSN(), cfg.Migrations.Path, log)
		if err != nil {
			log.Fatalw("failed to create migrator", "error", err)
		}
		if err := migrator.Up(); err != nil {
			log.Fatalw("failed to run migrations", "error", err)
		}
		_ = migrator.Close()
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.Database.DSN()))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	num := numerator.New(pool)

	materialRepo := catalog_repo.NewMaterialRepo(txManager)
	supplierRepo := catalog_repo.NewSupplierRepo(txManager)
	locationRepo := catalog_repo.NewLocationRepo(txManager)

	materials := material.NewService(materialRepo, txManager, num)
	suppliers := supplier.NewService(supplierRepo, txManager, num)
	locations := location.NewService(locationRepo, txManager, num)

	inwardService := inward.NewService(inward.Deps{
		Repo:      document_repo.NewInwardRepo(txManager),
		Materials: materialRepo,
		Suppliers: supplierRepo,
		Locations: locationRepo,
		Stocks:    register_repo.NewResStockRepo(txManager),
		Movements: register_repo.NewLedgerRepo(txManager),
		TxManager: txManager,
		Numerator: num,
	})

	// --- Catalogs ---

	cement := material.NewMaterial("", "Portland Cement", "kg")
	cement.Category = "Binders"
	cement.MinLevel = types.NewQuantityFromFloat64(500)
	if err := materials.Create(ctx, cement); err != nil {
		log.Fatalw("failed to seed material", "name", cement.Name, "error", err)
	}

	sand := material.NewMaterial("", "River Sand", "kg")
	sand.Category = "Aggregates"
	sand.MinLevel = types.NewQuantityFromFloat64(1000)
	if err := materials.Create(ctx, sand); err != nil {
		log.Fatalw("failed to seed material", "name", sand.Name, "error", err)
	}

	acme := supplier.NewSupplier("", "Acme Building Supplies")
	acme.ContactPerson = "R. Stone"
	acme.Phone = "+1-555-0101"
	acme.Email = "sales@acme-supplies.example"
	if err := suppliers.Create(ctx, acme); err != nil {
		log.Fatalw("failed to seed supplier", "name", acme.Name, "error", err)
	}

	mainWarehouse := location.NewLocation("", "Main Warehouse", location.TypeWarehouse)
	mainWarehouse.Address = "1 Industrial Rd"
	if err := locations.Create(ctx, mainWarehouse); err != nil {
		log.Fatalw("failed to seed location", "name", mainWarehouse.Name, "error", err)
	}

	siteYard := location.NewLocation("", "Site A Yard", location.TypeYard)
	if err := locations.Create(ctx, siteYard); err != nil {
		log.Fatalw("failed to seed location", "name", siteYard.Name, "error", err)
	}

	log.Infow("catalogs seeded",
		"materials", 2,
		"suppliers", 1,
		"locations", 2,
	)

	// --- Opening stock via fast-tracked inward requests ---

	openings := []struct {
		mat      *material.Material
		qty      float64
		price    string
		location *location.Location
	}{
		{cement, 2000, "0.12", mainWarehouse},
		{sand, 5000, "0.03", siteYard},
	}

	for _, o := range openings {
		req := inward.NewRequest(
			o.mat.ID, o.location.ID, &acme.ID,
			types.NewQuantityFromFloat64(o.qty),
			types.MustMoney(o.price),
		)
		req.Comment = "opening stock"
		req.RequestedBy = "seed"

		posted, err := inwardService.FastTrack(ctx, req, "seed")
		if err != nil {
			log.Fatalw("failed to post opening stock", "material", o.mat.Name, "error", err)
		}
		log.Infow("opening stock posted",
			"request", posted.Number,
			"material", o.mat.Name,
			"quantity", posted.Quantity.String(),
		)
	}

	log.Info("seed completed")
}
