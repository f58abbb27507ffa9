package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"campus-directory/internal/config"
	"campus-directory/internal/models"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
)

// New connects to Postgres and returns a Bun DB handle.
func New(dsn string, cfg *config.Config) (*bun.DB, error) {
	connector := pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(30*time.Second),
		pgdriver.WithDialTimeout(10*time.Second),
		pgdriver.WithReadTimeout(30*time.Second),
		pgdriver.WithWriteTimeout(15*time.Second),
	)

	sqldb := sql.OpenDB(connector)
	db := bun.NewDB(sqldb, pgdialect.New())

	// Configure connection pool
	sqldb.SetMaxOpenConns(20)
	sqldb.SetMaxIdleConns(5)
	sqldb.SetConnMaxLifetime(5 * time.Minute)
	sqldb.SetConnMaxIdleTime(10 * time.Minute)

	// Optional query logging
	if cfg.BunDebug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.ExecContext(ctx, `SET statement_timeout = '30s';`); err != nil {
		return nil, fmt.Errorf("failed to set database configuration: %w", err)
	}

	return db, nil
}

// Tables lists the persisted models in creation order.
func Tables() []any {
	return []any{
		(*models.User)(nil),
		(*models.RefreshToken)(nil),
		(*models.Review)(nil),
		(*models.Event)(nil),
		(*models.BusinessRegistration)(nil),
	}
}

// Migrate creates missing tables and indexes. Existing tables are left as is.
func Migrate(ctx context.Context, db *bun.DB) error {
	for _, model := range Tables() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}

	indexes := []*bun.CreateIndexQuery{
		db.NewCreateIndex().Model((*models.Review)(nil)).Index("reviews_business_created_idx").
			Column("business_id", "created_at").IfNotExists(),
		db.NewCreateIndex().Model((*models.Event)(nil)).Index("events_starts_at_idx").
			Column("starts_at").IfNotExists(),
		db.NewCreateIndex().Model((*models.RefreshToken)(nil)).Index("refresh_tokens_jti_idx").
			Column("jti").IfNotExists(),
		db.NewCreateIndex().Model((*models.BusinessRegistration)(nil)).Index("business_registrations_owner_idx").
			Column("owner_id").IfNotExists(),
	}
	for _, idx := range indexes {
		if _, err := idx.Exec(ctx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// SeedEvents inserts seed when the events table is empty and reports how
// many rows were written.
func SeedEvents(ctx context.Context, db *bun.DB, seed []models.Event) (int, error) {
	exists, err := db.NewSelect().Model((*models.Event)(nil)).Exists(ctx)
	if err != nil {
		return 0, fmt.Errorf("check events: %w", err)
	}
	if exists || len(seed) == 0 {
		return 0, nil
	}

	if _, err := db.NewInsert().Model(&seed).Exec(ctx); err != nil {
		return 0, fmt.Errorf("seed events: %w", err)
	}
	return len(seed), nil
}
