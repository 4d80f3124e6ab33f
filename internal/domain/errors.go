package domain

import (
	"errors"
	"fmt"
)

// Ошибки конвейера. Ошибки клиента (ErrInvalidRequest, ErrNotFound) всегда
// возвращаются вызывающему, ErrStoreUnavailable фатальна на границе,
// ErrNetwork и ErrMalformedFeed изолируются в пределах одного источника.
var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrNotFound         = errors.New("source not found")
	ErrStoreUnavailable = errors.New("source store unavailable")
	ErrNetwork          = errors.New("network error")
	ErrMalformedFeed    = errors.New("malformed feed")
)

// NetworkError описывает неудачную загрузку ленты: сетевой сбой, таймаут
// или ответ с кодом вне диапазона 2xx. StatusCode равен 0, если ответа не было.
type NetworkError struct {
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status code: %d %s", e.URL, e.StatusCode, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// MalformedFeedError означает, что загруженный документ не является корректным XML.
// Format - формат, на который документ похож по первым байтам ("rss", "atom",
// "json"), или "unknown"; помогает отличить сломанную RSS-ленту от JSON Feed
// или HTML-страницы на месте ленты.
type MalformedFeedError struct {
	Line   int
	Format string
	Err    error
}

func (e *MalformedFeedError) Error() string {
	kind := "feed"
	if e.Format != "" && e.Format != "unknown" {
		kind = e.Format + " feed"
	}
	if e.Line > 0 {
		return fmt.Sprintf("malformed %s at line %d: %v", kind, e.Line, e.Err)
	}
	return fmt.Sprintf("malformed %s: %v", kind, e.Err)
}

func (e *MalformedFeedError) Unwrap() error { return e.Err }

func (e *MalformedFeedError) Is(target error) bool { return target == ErrMalformedFeed }
