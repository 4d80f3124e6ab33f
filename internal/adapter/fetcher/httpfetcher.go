package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"finscreen/internal/domain"
)

// Options задает параметры HTTP-загрузки лент.
type Options struct {
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string
}

// HTTPFetcher загружает содержимое RSS-лент одним GET-запросом без повторов.
// Любая неудача (сеть, таймаут, код ответа вне 2xx) возвращается
// как *domain.NetworkError.
type HTTPFetcher struct {
	client    *http.Client
	maxBytes  int64
	userAgent string
	log       *slog.Logger
}

func NewHTTPFetcher(opts Options, log *slog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: opts.Timeout},
		maxBytes:  opts.MaxBytes,
		userAgent: opts.UserAgent,
		log:       log.With(slog.String("component", "fetcher")),
	}
}

// Fetch загружает ленту по URL и возвращает тело ответа целиком.
// Проверка URL - ответственность вызывающего. Отмена контекста прерывает запрос.
// Тело длиннее MaxBytes считается ошибкой, а не обрезается.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	log := f.log.With(slog.String("url", url))
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Error("Failed to create HTTP request", slog.Any("error", err))
		return nil, &domain.NetworkError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		log.Warn("HTTP request failed", slog.Any("error", err))
		return nil, &domain.NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("Unexpected status code", slog.Int("status_code", resp.StatusCode))
		return nil, &domain.NetworkError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
		}
	}

	reader := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		log.Warn("Failed to read response body", slog.Any("error", err))
		return nil, &domain.NetworkError{URL: url, Err: fmt.Errorf("failed to read body: %w", err)}
	}
	if f.maxBytes > 0 && int64(len(body)) > f.maxBytes {
		log.Warn("Response body too large", slog.Int64("max_bytes", f.maxBytes))
		return nil, &domain.NetworkError{URL: url, Err: fmt.Errorf("response body exceeds %d bytes", f.maxBytes)}
	}

	log.Debug("Fetched URL",
		slog.Int("bytes", len(body)),
		slog.Duration("duration", time.Since(start)),
	)
	return body, nil
}
