// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"stockward/internal/core/id"
	"stockward/internal/infrastructure/storage/postgres"
	"stockward/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	adminUserID, err := seedAdminUser(ctx, pool, log)
	if err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if err := seedProcessTypes(ctx, pool, log, adminUserID); err != nil {
		log.Fatalw("failed to seed process types", "error", err)
	}

	if err := seedTaskTypes(ctx, pool, log, adminUserID); err != nil {
		log.Fatalw("failed to seed task types", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log, adminUserID); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (id.ID, error) {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@stockward.local"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE LOWER(email) = LOWER($1) AND deleted_at IS NULL`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return existingID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return id.Nil(), fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	now := time.Now().UTC()

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, is_active, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, 'System Admin', true, true, $4, $4)
	`, userID, adminEmail, string(passwordHash), now)
	if err != nil {
		return id.Nil(), fmt.Errorf("insert admin user: %w", err)
	}

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_code)
		VALUES ($1, 'admin')
		ON CONFLICT (user_id, role_code) DO NOTHING
	`, userID)
	if err != nil {
		log.Warnw("failed to assign admin role", "error", err)
	}

	log.Infow("admin user created", "email", adminEmail, "user_id", userID)
	return userID, nil
}

func seedProcessTypes(ctx context.Context, pool *postgres.Pool, log *logger.Logger, actor id.ID) error {
	types := []struct {
		code, name, description string
	}{
		{"INWARD", "Inward Receipt", "Goods receipt into a storage location"},
		{"OUTWARD", "Outward Issue", "Goods issue for a sales order or shipment"},
		{"TRANSFER", "Internal Transfer", "Stock movement between locations"},
		{"ADJUSTMENT", "Stock Adjustment", "Signed correction after a count"},
		{"RETURN", "Customer Return", "Returned goods, restored unless defective"},
	}

	for _, pt := range types {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO process_types (id, code, name, description, is_active, status, created_by, updated_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, true, 'active', $5, $5, now(), now())
			ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description
		`, id.New(), pt.code, pt.name, pt.description, actor.String())
		if err != nil {
			return fmt.Errorf("upsert process type %s: %w", pt.code, err)
		}
	}

	log.Infow("process types seeded", "count", len(types))
	return nil
}

func seedTaskTypes(ctx context.Context, pool *postgres.Pool, log *logger.Logger, actor id.ID) error {
	types := []struct {
		code, name string
	}{
		{"PUTAWAY", "Putaway"},
		{"PICKUP", "Pickup"},
		{"TRANSFER", "Transfer Move"},
	}

	for _, tt := range types {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO task_types (id, code, name, is_active, status, created_by, updated_by, created_at, updated_at)
			VALUES ($1, $2, $3, true, 'active', $4, $4, now(), now())
			ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name
		`, id.New(), tt.code, tt.name, actor.String())
		if err != nil {
			return fmt.Errorf("upsert task type %s: %w", tt.code, err)
		}
	}

	log.Infow("task types seeded", "count", len(types))
	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger, actor id.ID) error {
	log.Info("seeding demo data...")
	actorID := actor.String()

	// Warehouse with a handful of locations
	warehouseID := id.New()
	tag, err := pool.Pool.Exec(ctx, `
		INSERT INTO warehouses (id, name, address, is_active, status, created_by, updated_by, created_at, updated_at)
		VALUES ($1, 'Main Warehouse', '1 Dock Road', true, 'active', $2, $2, now(), now())
		ON CONFLICT DO NOTHING
	`, warehouseID, actorID)
	if err != nil {
		return fmt.Errorf("insert warehouse: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if err := pool.Pool.QueryRow(ctx,
			`SELECT id FROM warehouses WHERE name = 'Main Warehouse' AND status = 'active'`,
		).Scan(&warehouseID); err != nil {
			return fmt.Errorf("fetch existing warehouse: %w", err)
		}
	}

	locations := []string{"RECEIVING", "A1-R1", "A1-R2", "B2-R1", "STAGING"}
	for _, code := range locations {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO locations (id, warehouse_id, code, description, is_active, status, created_by, updated_by, created_at, updated_at)
			VALUES ($1, $2, $3, '', true, 'active', $4, $4, now(), now())
			ON CONFLICT (warehouse_id, code) DO NOTHING
		`, id.New(), warehouseID, code, actorID)
		if err != nil {
			return fmt.Errorf("insert location %s: %w", code, err)
		}
	}

	items := []struct {
		name, unit string
	}{
		{"Cardboard Box M", "pcs"},
		{"Shrink Wrap Roll", "pcs"},
		{"Wooden Pallet", "pcs"},
	}
	for _, it := range items {
		_, err := pool.Pool.Exec(ctx, `
			INSERT INTO items (id, name, description, unit, is_active, status, created_by, updated_by, created_at, updated_at)
			VALUES ($1, $2, '', $3, true, 'active', $4, $4, now(), now())
			ON CONFLICT DO NOTHING
		`, id.New(), it.name, it.unit, actorID)
		if err != nil {
			return fmt.Errorf("insert item %s: %w", it.name, err)
		}
	}

	// Supplier with a purchase order line for inward testing
	supplierID := id.New()
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO suppliers (id, name, rating, is_active, status, created_by, updated_by, created_at, updated_at)
		VALUES ($1, 'Acme Supplies', 5.0, true, 'active', $2, $2, now(), now())
		ON CONFLICT DO NOTHING
	`, supplierID, actorID)
	if err != nil {
		return fmt.Errorf("insert supplier: %w", err)
	}

	log.Info("demo data seeded")
	return nil
}
