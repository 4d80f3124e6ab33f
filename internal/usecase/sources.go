package usecase

import (
	"context"
	"log/slog"

	"finscreen/internal/domain"
)

// SourcesUseCase отдает список настроенных источников без обращения к лентам.
type SourcesUseCase struct {
	registry SourceRegistry
	log      *slog.Logger
}

func NewSourcesUseCase(registry SourceRegistry, log *slog.Logger) *SourcesUseCase {
	return &SourcesUseCase{
		registry: registry,
		log:      log.With(slog.String("component", "sources")),
	}
}

// GetSources возвращает все источники в порядке хранилища. Пустой реестр дает пустой
// срез, а не nil.
func (uc *SourcesUseCase) GetSources(ctx context.Context) ([]domain.Source, error) {
	sources, err := uc.registry.GetAll(ctx)
	if err != nil {
		if ctx.Err() == nil {
			uc.log.Error("Failed to list sources", slog.Any("error", err))
		}
		return nil, err
	}
	if sources == nil {
		sources = []domain.Source{}
	}
	uc.log.Debug("Sources listed", slog.Int("count", len(sources)))
	return sources, nil
}
