package storage

import (
	"context"
	"fmt"
	"log/slog"

	"finscreen/internal/domain"
)

// queryFailed классифицирует ошибку запроса. Если вызывающий отменил ctx или
// истек его срок, возвращается ошибка контекста без domain.ErrStoreUnavailable:
// брошенный запрос ничего не говорит о состоянии хранилища.
func queryFailed(ctx context.Context, log *slog.Logger, op, action string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		log.Debug("Query abandoned by caller", slog.String("op", op), slog.Any("error", ctxErr))
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	log.Error("Database query failed", slog.String("op", op), slog.String("action", action), slog.Any("error", err))
	return fmt.Errorf("%s: failed to %s: %w: %w", op, action, domain.ErrStoreUnavailable, err)
}
