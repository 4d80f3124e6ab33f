package storage

import (
	"context"
	"fmt"
	"log/slog"

	"finscreen/internal/config"
	"finscreen/internal/domain"
	"finscreen/internal/migrations"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Open подключается к хранилищу, выбранному в конфигурации, проверяет
// соединение и готовит схему. Любая ошибка оборачивает domain.ErrStoreUnavailable:
// без хранилища процесс не должен начинать обслуживать запросы.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return NewSQLiteSourceDB(ctx, cfg.DSN(), log)
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w: %w", domain.ErrStoreUnavailable, err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("database ping failed: %w: %w", domain.ErrStoreUnavailable, err)
		}
		if err := migrations.Apply(ctx, log, pool, cfg.Namespace); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations failed: %w: %w", domain.ErrStoreUnavailable, err)
		}
		return NewPostgresSourceDB(pool, cfg.Namespace, log), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}

// SeedID возвращает стабильный идентификатор источника по его URL,
// чтобы повторное заполнение при рестарте не создавало дубликатов.
func SeedID(url string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(url)).String()
}

// SourcesFromSeeds превращает записи конфигурации в источники,
// назначая недостающие идентификаторы через SeedID.
func SourcesFromSeeds(seeds []config.SourceSeed) []domain.Source {
	sources := make([]domain.Source, 0, len(seeds))
	for _, s := range seeds {
		id := s.ID
		if id == "" {
			id = SeedID(s.URL)
		}
		sources = append(sources, domain.Source{
			ID:       id,
			Name:     s.Name,
			URL:      s.URL,
			ColorOne: s.ColorOne,
			ColorTwo: s.ColorTwo,
		})
	}
	return sources
}
