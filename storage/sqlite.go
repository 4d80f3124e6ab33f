package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finscreen/internal/domain"

	_ "modernc.org/sqlite"
)

// SQLiteSourceDB - реестр источников в файле SQLite для локального запуска
// и небольших инсталляций. Пространство имен не используется.
type SQLiteSourceDB struct {
	db  *sql.DB
	log *slog.Logger
}

func NewSQLiteSourceDB(ctx context.Context, path string, log *slog.Logger) (*SQLiteSourceDB, error) {
	log = log.With(slog.String("component", "storage"), slog.String("driver", "sqlite"))
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w: %w", domain.ErrStoreUnavailable, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite database: %w: %w", domain.ErrStoreUnavailable, err)
	}
	store := &SQLiteSourceDB{db: db, log: log}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	log.Info("Initializing SQLite source registry", slog.String("path", path))
	return store, nil
}

func (s *SQLiteSourceDB) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS sources (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		url TEXT NOT NULL UNIQUE,
		color_one TEXT NOT NULL DEFAULT '',
		color_two TEXT NOT NULL DEFAULT ''
	)`)
	return err
}

func (s *SQLiteSourceDB) Close() {
	if err := s.db.Close(); err != nil {
		s.log.Error("Failed to close sqlite database", slog.Any("error", err))
	}
}

func (s *SQLiteSourceDB) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return queryFailed(ctx, s.log, "storage.sqlite.Ping", "ping", err)
	}
	return nil
}

func (s *SQLiteSourceDB) GetAll(ctx context.Context) ([]domain.Source, error) {
	const op = "storage.sqlite.GetAll"
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, url, color_one, color_two FROM sources ORDER BY rowid`)
	if err != nil {
		return nil, queryFailed(ctx, s.log, op, "execute query", err)
	}
	defer rows.Close()
	sources := []domain.Source{}
	for rows.Next() {
		var src domain.Source
		if err := rows.Scan(&src.ID, &src.Name, &src.URL, &src.ColorOne, &src.ColorTwo); err != nil {
			return nil, queryFailed(ctx, s.log, op, "scan row", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, queryFailed(ctx, s.log, op, "iterate rows", err)
	}
	return sources, nil
}

func (s *SQLiteSourceDB) GetByID(ctx context.Context, id string) (domain.Source, error) {
	const op = "storage.sqlite.GetByID"
	var src domain.Source
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, url, color_one, color_two FROM sources WHERE id = ?`,
		id,
	).Scan(&src.ID, &src.Name, &src.URL, &src.ColorOne, &src.ColorTwo)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Source{}, fmt.Errorf("%s: %w: %s", op, domain.ErrNotFound, id)
	}
	if err != nil {
		return domain.Source{}, queryFailed(ctx, s.log, op, "execute query", err)
	}
	return src, nil
}

func (s *SQLiteSourceDB) SeedSources(ctx context.Context, sources []domain.Source) (int, error) {
	const op = "storage.sqlite.SeedSources"
	if len(sources) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: failed to begin transaction: %w: %w", op, domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback()
	inserted := 0
	for _, src := range sources {
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO sources (id, name, url, color_one, color_two) VALUES (?, ?, ?, ?, ?)`,
			src.ID, src.Name, src.URL, src.ColorOne, src.ColorTwo,
		)
		if err != nil {
			return 0, fmt.Errorf("%s: failed to insert source %s: %w", op, src.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("%s: failed to get rows affected: %w", op, err)
		}
		inserted += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	return inserted, nil
}
