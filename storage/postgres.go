package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finscreen/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresSourceDB struct {
	pool  *pgxpool.Pool
	log   *slog.Logger
	table string
}

// NewPostgresSourceDB создает реестр поверх пула соединений.
// namespace - схема, в которой лежит таблица sources.
func NewPostgresSourceDB(pool *pgxpool.Pool, namespace string, log *slog.Logger) *PostgresSourceDB {
	log = log.With(slog.String("component", "storage"), slog.String("driver", "postgres"))
	log.Info("Initializing Postgres source registry", slog.String("namespace", namespace))
	return &PostgresSourceDB{
		pool:  pool,
		log:   log,
		table: pgx.Identifier{namespace, "sources"}.Sanitize(),
	}
}

func (db *PostgresSourceDB) Close() {
	db.log.Info("Closing database connection pool")
	db.pool.Close()
}

func (db *PostgresSourceDB) Ping(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return queryFailed(ctx, db.log, "storage.postgres.Ping", "ping", err)
	}
	return nil
}

func (db *PostgresSourceDB) GetAll(ctx context.Context) ([]domain.Source, error) {
	const op = "storage.postgres.GetAll"
	query := `
	SELECT id, name, url, color_one, color_two
	FROM ` + db.table + `
	ORDER BY seq;
	`
	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, queryFailed(ctx, db.log, op, "execute query", err)
	}
	sources, err := pgx.CollectRows(rows, scanSource)
	if err != nil {
		return nil, queryFailed(ctx, db.log, op, "scan row", err)
	}
	db.log.Debug("Retrieved sources", slog.String("op", op), slog.Int("count", len(sources)))
	return sources, nil
}

func (db *PostgresSourceDB) GetByID(ctx context.Context, id string) (domain.Source, error) {
	const op = "storage.postgres.GetByID"
	log := db.log.With(slog.String("source_id", id))
	query := `
	SELECT id, name, url, color_one, color_two
	FROM ` + db.table + `
	WHERE id = $1;
	`
	rows, err := db.pool.Query(ctx, query, id)
	if err != nil {
		return domain.Source{}, queryFailed(ctx, log, op, "execute query", err)
	}
	source, err := pgx.CollectExactlyOneRow(rows, scanSource)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Source{}, fmt.Errorf("%s: %w: %s", op, domain.ErrNotFound, id)
	}
	if err != nil {
		return domain.Source{}, queryFailed(ctx, log, op, "scan row", err)
	}
	return source, nil
}

// SeedSources добавляет источники, которых еще нет (по id или url),
// и возвращает количество вставленных строк.
func (db *PostgresSourceDB) SeedSources(ctx context.Context, sources []domain.Source) (inserted int, err error) {
	const op = "storage.postgres.SeedSources"
	if len(sources) == 0 {
		return 0, nil
	}
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		db.log.Error("Failed to begin transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to begin transaction: %w: %w", op, domain.ErrStoreUnavailable, err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(context.Background()); rollbackErr != nil {
				db.log.Error("Failed to rollback transaction", slog.Any("error", rollbackErr))
			}
		}
	}()
	batch := &pgx.Batch{}
	query := `
	INSERT INTO ` + db.table + ` (id, name, url, color_one, color_two)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT DO NOTHING;
	`
	for _, s := range sources {
		batch.Queue(query, s.ID, s.Name, s.URL, s.ColorOne, s.ColorTwo)
	}
	results := tx.SendBatch(ctx, batch)
	for range sources {
		tag, execErr := results.Exec()
		if execErr != nil {
			results.Close()
			err = fmt.Errorf("%s: failed to execute batch: %w", op, execErr)
			return 0, err
		}
		inserted += int(tag.RowsAffected())
	}
	if err = results.Close(); err != nil {
		return 0, fmt.Errorf("%s: failed to close batch: %w", op, err)
	}
	if err = tx.Commit(ctx); err != nil {
		db.log.Error("Failed to commit transaction", slog.Any("error", err))
		return 0, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	return inserted, nil
}

func scanSource(row pgx.CollectableRow) (domain.Source, error) {
	var s domain.Source
	err := row.Scan(&s.ID, &s.Name, &s.URL, &s.ColorOne, &s.ColorTwo)
	return s, err
}
