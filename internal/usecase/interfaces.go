package usecase

import (
	"context"

	"finscreen/internal/adapter/parser"
	"finscreen/internal/domain"
)

// FeedFetcher определяет интерфейс для загрузки содержимого ленты по URL.
// Ошибки загрузки совпадают с domain.ErrNetwork.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FeedParser определяет интерфейс для разбора сырого содержимого ленты в дерево документа.
// Некорректный XML дает ошибку, совпадающую с domain.ErrMalformedFeed.
type FeedParser interface {
	Parse(ctx context.Context, raw []byte) (*parser.Document, error)
}

// SourceRegistry определяет интерфейс чтения настроенных источников.
type SourceRegistry interface {
	GetAll(ctx context.Context) ([]domain.Source, error)
	GetByID(ctx context.Context, id string) (domain.Source, error)
}
