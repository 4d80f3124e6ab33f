package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"finscreen/internal/cachepolicy"
	"finscreen/internal/domain"

	"github.com/gorilla/mux"
)

// maxRequestBody ограничивает тело POST /articles.
const maxRequestBody = 1 << 20

// statusClientClosedRequest - ответ на запрос, брошенный клиентом до завершения
// (код 499 в соглашении nginx). Клиент его уже не прочитает, он нужен для логов.
const statusClientClosedRequest = 499

type sourcesGetter interface {
	GetSources(ctx context.Context) ([]domain.Source, error)
}

type articlesGetter interface {
	GetSourceArticles(ctx context.Context, id string) ([]domain.Article, error)
	GetFeedArticles(ctx context.Context, feedURL string) ([]domain.Article, error)
	GetAllArticles(ctx context.Context) ([]domain.Article, error)
}

// availability - признак доступности хранилища, общий для обработчиков и middleware.
type availability interface {
	Available() bool
	MarkDown() bool
}

type Handler struct {
	log      *slog.Logger
	sources  sourcesGetter
	articles articlesGetter
	gate     availability
}

func NewHandler(log *slog.Logger, sources sourcesGetter, articles articlesGetter, gate availability) *Handler {
	return &Handler{
		log:      log,
		sources:  sources,
		articles: articles,
		gate:     gate,
	}
}

type feedRequest struct {
	FeedURL string `json:"feedUrl"`
}

// getSources - хендлер для эндпоинта GET /sources
func (h *Handler) getSources(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/getSources"
	sources, err := h.sources.GetSources(r.Context())
	if err != nil {
		h.respondWithDomainError(w, r, op, err)
		return
	}
	cachepolicy.Apply(w.Header(), cachepolicy.AllSources)
	respondWithJSON(w, http.StatusOK, sources)
}

// getSourceArticles - хендлер для эндпоинта GET /sources/{id}
func (h *Handler) getSourceArticles(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/getSourceArticles"
	articles, err := h.articles.GetSourceArticles(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondWithDomainError(w, r, op, err)
		return
	}
	cachepolicy.Apply(w.Header(), cachepolicy.SingleSource)
	respondWithJSON(w, http.StatusOK, articles)
}

// postArticles - хендлер для эндпоинта POST /articles с телом {"feedUrl": "..."}
func (h *Handler) postArticles(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/postArticles"
	var req feedRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
			h.logger(r, op).Warn("invalid request body", slog.Any("error", err))
			cachepolicy.ApplyNoStore(w.Header())
			respondWithError(w, http.StatusBadRequest, "request body must be a JSON object with feedUrl")
			return
		}
	}
	articles, err := h.articles.GetFeedArticles(r.Context(), req.FeedURL)
	if err != nil {
		h.respondWithDomainError(w, r, op, err)
		return
	}
	cachepolicy.Apply(w.Header(), cachepolicy.FeedURL)
	respondWithJSON(w, http.StatusOK, articles)
}

// getAllArticles - хендлер для эндпоинта GET /articles
func (h *Handler) getAllArticles(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/getAllArticles"
	articles, err := h.articles.GetAllArticles(r.Context())
	if err != nil {
		h.respondWithDomainError(w, r, op, err)
		return
	}
	cachepolicy.Apply(w.Header(), cachepolicy.Aggregate)
	respondWithJSON(w, http.StatusOK, articles)
}

// healthCheck - хендлер для проверки состояния сервиса
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	cachepolicy.ApplyNoStore(w.Header())
	if !h.gate.Available() {
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondWithDomainError переводит ошибку конвейера в HTTP-статус.
// Недоступность хранилища сразу закрывает API до следующей успешной проверки.
// Отмена запроса клиентом на состояние хранилища не влияет.
func (h *Handler) respondWithDomainError(w http.ResponseWriter, r *http.Request, op string, err error) {
	log := h.logger(r, op)
	cachepolicy.ApplyNoStore(w.Header())
	switch {
	case r.Context().Err() != nil || errors.Is(err, context.Canceled):
		log.Debug("request abandoned by client", slog.Any("error", err))
		respondWithError(w, statusClientClosedRequest, "request cancelled")
	case errors.Is(err, domain.ErrInvalidRequest):
		log.Warn("invalid request", slog.Any("error", err))
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		log.Warn("source not found", slog.Any("error", err))
		respondWithError(w, http.StatusNotFound, domain.ErrNotFound.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		if h.gate.MarkDown() {
			log.Error("source store marked unavailable", slog.Any("error", err))
		}
		respondWithError(w, http.StatusServiceUnavailable, domain.ErrStoreUnavailable.Error())
	case errors.Is(err, domain.ErrNetwork):
		log.Warn("upstream feed fetch failed", slog.Any("error", err))
		respondWithError(w, http.StatusBadGateway, "upstream feed could not be fetched")
	case errors.Is(err, domain.ErrMalformedFeed):
		log.Warn("upstream feed is malformed", slog.Any("error", err))
		respondWithError(w, http.StatusBadGateway, "upstream feed is not well-formed XML")
	default:
		log.Error("request failed", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("component", "http"),
		slog.String("op", op),
		slog.String("request_id", getRequestID(r.Context())),
	)
}

// Вспомогательные функции для ответов
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
