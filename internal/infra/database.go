package infra

import (
	"fmt"

	"github.com/YousofDev/Invoice-Tracker/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the SQL objects GORM cannot express
// (reference sequences, partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations applies the schema. Also used by integration tests against
// throwaway containers.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return fmt.Errorf("create pgcrypto extension: %w", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Client{},
		&model.Item{},
		&model.Invoice{},
		&model.InvoiceLine{},
		&model.Payment{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot handle:
// the document reference sequences and the partial index used by the
// send-retry cron. Safe to re-run on an already-patched DB.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		`CREATE SEQUENCE IF NOT EXISTS clients_reference_seq START 1`,
		`CREATE SEQUENCE IF NOT EXISTS invoices_reference_seq START 1`,
		`CREATE SEQUENCE IF NOT EXISTS payments_reference_seq START 1`,
		// partial index for the send-retry cron query
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_invoices_pending_send') THEN
		    CREATE INDEX idx_invoices_pending_send
		        ON invoices (next_send_at)
		        WHERE is_sent = false AND next_send_at IS NOT NULL;
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
