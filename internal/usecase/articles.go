package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"finscreen/internal/domain"
	"finscreen/internal/projector"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
)

// ArticlesOptions задает поведение конвейера статей.
type ArticlesOptions struct {
	// FanOutLimit ограничивает число одновременно загружаемых лент при сборе по всем источникам.
	FanOutLimit int
	// SurfaceFeedErrors включает возврат сетевых ошибок и ошибок разбора
	// для одиночного источника и произвольной ленты. При сборе по всем
	// источникам такие ошибки всегда изолируются.
	SurfaceFeedErrors bool
}

// SourceResult - итог обработки одного источника при сборе по нескольким источникам.
// Err заполнен, если лента источника не загрузилась или не разобралась;
// Articles в этом случае пуст.
type SourceResult struct {
	Source   domain.Source
	Articles []domain.Article
	Err      error
}

// ArticlesUseCase реализует конвейер загрузка -> разбор -> проекция для
// зарегистрированных источников и произвольных лент.
type ArticlesUseCase struct {
	registry SourceRegistry
	fetcher  FeedFetcher
	parser   FeedParser
	opts     ArticlesOptions
	log      *slog.Logger
}

func NewArticlesUseCase(
	registry SourceRegistry,
	fetcher FeedFetcher,
	parser FeedParser,
	opts ArticlesOptions,
	log *slog.Logger,
) *ArticlesUseCase {
	if opts.FanOutLimit <= 0 {
		opts.FanOutLimit = 1
	}
	return &ArticlesUseCase{
		registry: registry,
		fetcher:  fetcher,
		parser:   parser,
		opts:     opts,
		log:      log.With(slog.String("component", "articles")),
	}
}

// GetSourceArticles загружает ленту источника id и возвращает ее статьи
// с полем author. Ошибки реестра возвращаются как есть.
func (uc *ArticlesUseCase) GetSourceArticles(ctx context.Context, id string) ([]domain.Article, error) {
	const op = "usecase.articles.GetSourceArticles"
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: source id is required", domain.ErrInvalidRequest)
	}
	source, err := uc.registry.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log := uc.log.With(
		slog.String("op", op),
		slog.String("source_id", source.ID),
		slog.String("url", source.URL),
	)
	articles, err := uc.run(ctx, log, source.URL, projector.VariantSource)
	return uc.isolate(ctx, log, articles, err, uc.opts.SurfaceFeedErrors)
}

// GetFeedArticles загружает произвольную ленту и возвращает ее статьи с полем image.
// Адрес проверяется до любого сетевого запроса: он должен быть абсолютным http(s) URL.
func (uc *ArticlesUseCase) GetFeedArticles(ctx context.Context, feedURL string) ([]domain.Article, error) {
	const op = "usecase.articles.GetFeedArticles"
	target, err := validateFeedURL(feedURL)
	if err != nil {
		return nil, err
	}
	log := uc.log.With(slog.String("op", op), slog.String("feed_url", target))
	articles, err := uc.run(ctx, log, target, projector.VariantFeedURL)
	return uc.isolate(ctx, log, articles, err, uc.opts.SurfaceFeedErrors)
}

// Collect обрабатывает источники параллельно, не более FanOutLimit одновременно.
// Результаты идут в порядке sources независимо от порядка завершения.
// Сбой одного источника не отменяет остальные; отмена ctx отменяет все.
func (uc *ArticlesUseCase) Collect(ctx context.Context, sources []domain.Source) []SourceResult {
	const op = "usecase.articles.Collect"
	start := time.Now()
	results := make([]SourceResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.opts.FanOutLimit)
	for i, source := range sources {
		g.Go(func() error {
			log := uc.log.With(
				slog.String("op", op),
				slog.String("source_id", source.ID),
				slog.String("url", source.URL),
			)
			articles, err := uc.run(gctx, log, source.URL, projector.VariantSource)
			articles, _ = uc.isolate(gctx, log, articles, err, false)
			results[i] = SourceResult{Source: source, Articles: articles, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	uc.log.Info("Sources collected",
		slog.String("op", op),
		slog.Int("total", len(sources)),
		slog.Int("failed", failed),
		slog.Duration("duration", time.Since(start)),
	)
	return results
}

// GetAllArticles возвращает статьи всех источников одним списком:
// сначала статьи первого источника, затем второго и так далее.
func (uc *ArticlesUseCase) GetAllArticles(ctx context.Context) ([]domain.Article, error) {
	const op = "usecase.articles.GetAllArticles"
	sources, err := uc.registry.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	results := uc.Collect(ctx, sources)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	articles := []domain.Article{}
	for _, r := range results {
		articles = append(articles, r.Articles...)
	}
	return articles, nil
}

// run выполняет загрузку, разбор и проекцию одной ленты.
func (uc *ArticlesUseCase) run(ctx context.Context, log *slog.Logger, feedURL string, variant projector.Variant) ([]domain.Article, error) {
	start := time.Now()
	raw, err := uc.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		log.Warn("Feed fetch failed", slog.String("stage", "fetch"), slog.Any("error", err))
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	log.Debug("Feed fetched", slog.String("stage", "fetch"), slog.Int("bytes", len(raw)))

	doc, err := uc.parser.Parse(ctx, raw)
	if err != nil {
		log.Warn("Feed parsing failed", slog.String("stage", "parse"), slog.Any("error", err))
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	articles := projector.Project(doc, variant)
	if len(articles) == 0 && doc.Type != gofeed.FeedTypeRSS {
		log.Warn("Document has no RSS items",
			slog.String("stage", "project"),
			slog.String("feed_type", doc.TypeName()),
			slog.String("root", doc.Root.Name.Local),
		)
	}
	log.Debug("Feed projected",
		slog.String("stage", "project"),
		slog.String("variant", variant.String()),
		slog.Int("articles", len(articles)),
		slog.Duration("duration", time.Since(start)),
	)
	return articles, nil
}

// isolate превращает ошибку ленты в пустой список статей, если surface выключен.
// Остальные ошибки возвращаются вызывающему, как и любая ошибка после отмены ctx.
func (uc *ArticlesUseCase) isolate(ctx context.Context, log *slog.Logger, articles []domain.Article, err error, surface bool) ([]domain.Article, error) {
	if err == nil {
		return articles, nil
	}
	if !isFeedError(err) || surface || ctx.Err() != nil {
		return nil, err
	}
	log.Info("Feed failure isolated, returning no articles", slog.Any("error", err))
	return []domain.Article{}, nil
}

func isFeedError(err error) bool {
	return errors.Is(err, domain.ErrNetwork) || errors.Is(err, domain.ErrMalformedFeed)
}

func validateFeedURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: feedUrl is required", domain.ErrInvalidRequest)
	}
	u, err := url.Parse(trimmed)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("%w: feedUrl must be an absolute URL", domain.ErrInvalidRequest)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: feedUrl scheme must be http or https", domain.ErrInvalidRequest)
	}
	return trimmed, nil
}
