package http

import (
	"log/slog"
	"net/http"

	"finscreen/internal/cachepolicy"

	"github.com/gorilla/mux"
)

const healthPath = "/health"

// NewServer создает роутер со всеми эндпоинтами и цепочкой middleware:
// CORS, идентификатор запроса, логирование, проверка доступности хранилища.
// Пути /api/... повторяют адреса, под которыми API публиковалось ранее.
func NewServer(log *slog.Logger, h *Handler) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc(healthPath, h.healthCheck).Methods(http.MethodGet)

	for _, path := range []string{"/sources", "/api/sources"} {
		r.HandleFunc(path, h.getSources).Methods(http.MethodGet)
	}
	for _, path := range []string{"/sources/{id}", "/api/articles/{id}", "/sources/", "/api/articles/"} {
		r.HandleFunc(path, h.getSourceArticles).Methods(http.MethodGet)
	}
	for _, path := range []string{"/articles", "/api/articles"} {
		r.HandleFunc(path, h.postArticles).Methods(http.MethodPost)
	}
	r.HandleFunc("/articles", h.getAllArticles).Methods(http.MethodGet)

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cachepolicy.ApplyNoStore(w.Header())
		respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cachepolicy.ApplyNoStore(w.Header())
		respondWithError(w, http.StatusNotFound, "Not Found")
	})

	var handler http.Handler = r
	handler = availabilityMiddleware(h.gate)(handler)
	handler = loggingMiddleware(log)(handler)
	handler = requestIDMiddleware()(handler)
	handler = corsMiddleware()(handler)
	return handler
}
