package migrations

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaPlaceholder заменяется на экранированное имя схемы (пространства имен хранилища).
const schemaPlaceholder = "{{schema}}"

type Migration struct {
	ID    string
	UpSQL string
}

var allMigrations = []Migration{
	{
		ID: "20240301120000_create_sources_table",
		UpSQL: `
		CREATE TABLE {{schema}}.sources(
		seq BIGSERIAL NOT NULL,
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		url TEXT UNIQUE NOT NULL,
		color_one TEXT NOT NULL DEFAULT '',
		color_two TEXT NOT NULL DEFAULT ''
		);`,
	},
	{
		ID:    "20240301120100_index_sources_seq",
		UpSQL: `CREATE INDEX sources_seq_idx ON {{schema}}.sources (seq);`,
	},
}

// Apply создает схему namespace и применяет недостающие миграции в одной транзакции.
// Примененные миграции учитываются в таблице schema_migrations той же схемы.
func Apply(ctx context.Context, log *slog.Logger, pool *pgxpool.Pool, namespace string) error {
	log = log.With(slog.String("component", "migrations"), slog.String("namespace", namespace))
	log.Info("Starting database migrations check...")
	schema := pgx.Identifier{namespace}.Sanitize()
	if _, err := pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+schema); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", namespace, err)
	}
	_, err := pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS `+schema+`.schema_migrations (
	id TEXT PRIMARY KEY
	);
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	rows, err := pool.Query(ctx, "SELECT id FROM "+schema+".schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}
	applied, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("failed to scan migration id: %w", err)
	}
	appliedMigrations := make(map[string]bool, len(applied))
	for _, id := range applied {
		appliedMigrations[id] = true
	}

	pending := make([]Migration, 0, len(allMigrations))
	for _, m := range allMigrations {
		if !appliedMigrations[m.ID] {
			pending = append(pending, m)
		}
	}
	if len(pending) == 0 {
		log.Info("Database is up to date, no new migrations found.")
		return nil
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].ID < pending[j].ID
	})

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)
	for _, m := range pending {
		log.Info("Applying migration", slog.String("id", m.ID))
		if _, err := tx.Exec(ctx, render(m.UpSQL, schema)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO "+schema+".schema_migrations (id) VALUES ($1)", m.ID); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migrations transaction: %w", err)
	}
	log.Info("Database migrations applied successfully", slog.Int("count", len(pending)))
	return nil
}

func render(sql, schema string) string {
	return strings.ReplaceAll(sql, schemaPlaceholder, schema)
}
