// Package cachepolicy задает заголовок Cache-Control для каждого эндпоинта.
//
// max-age=0 заставляет браузер перепроверять ответ каждый раз, s-maxage
// разрешает общему кешу (CDN) отдавать его повторно. Список источников
// кешируется на 30 дней и сбрасывается только новым деплоем.
package cachepolicy

import "net/http"

// EndpointKind - вид эндпоинта, от которого зависит срок жизни ответа.
type EndpointKind int

const (
	AllSources EndpointKind = iota
	SingleSource
	FeedURL
	Aggregate
)

const (
	headerName = "Cache-Control"

	// NoStore ставится на ответы с ошибкой.
	NoStore = "no-store"

	sourcesDirective  = "max-age=0, s-maxage=2592000"
	articlesDirective = "max-age=0, s-maxage=900"
)

func (k EndpointKind) String() string {
	switch k {
	case AllSources:
		return "all-sources"
	case SingleSource:
		return "single-source"
	case FeedURL:
		return "feed-url"
	case Aggregate:
		return "aggregate"
	default:
		return "unknown"
	}
}

// HeadersFor возвращает директиву Cache-Control для вида эндпоинта.
// Неизвестный вид получает NoStore.
func HeadersFor(kind EndpointKind) string {
	switch kind {
	case AllSources:
		return sourcesDirective
	case SingleSource, FeedURL, Aggregate:
		return articlesDirective
	default:
		return NoStore
	}
}

// Apply выставляет Cache-Control для успешного ответа.
func Apply(h http.Header, kind EndpointKind) {
	h.Set(headerName, HeadersFor(kind))
}

// ApplyNoStore запрещает кеширование ответа.
func ApplyNoStore(h http.Header) {
	h.Set(headerName, NoStore)
}
