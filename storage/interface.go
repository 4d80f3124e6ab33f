package storage

import (
	"context"

	"finscreen/internal/domain"
)

// SourceRegistry - чтение настроенных источников. Ошибки подключения и запросов
// оборачивают domain.ErrStoreUnavailable, отсутствие источника - domain.ErrNotFound.
type SourceRegistry interface {
	GetAll(ctx context.Context) ([]domain.Source, error)
	GetByID(ctx context.Context, id string) (domain.Source, error)
}

// Store объединяет реестр источников с управлением соединением и начальным
// заполнением. Создается один раз при старте процесса и закрывается при остановке.
type Store interface {
	SourceRegistry
	SeedSources(ctx context.Context, sources []domain.Source) (int, error)
	Ping(ctx context.Context) error
	Close()
}
