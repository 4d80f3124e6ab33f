package worker

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// Pinger определяет интерфейс проверки доступности хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Gate хранит признак доступности хранилища. Нулевое значение означает,
// что хранилище доступно. Безопасен для одновременного использования.
type Gate struct {
	down atomic.Bool
}

// Available сообщает, можно ли сейчас обслуживать запросы к API.
func (g *Gate) Available() bool { return !g.down.Load() }

// MarkDown помечает хранилище недоступным. Возвращает true, если состояние изменилось.
func (g *Gate) MarkDown() bool { return !g.down.Swap(true) }

// MarkUp помечает хранилище доступным. Возвращает true, если состояние изменилось.
func (g *Gate) MarkUp() bool { return g.down.Swap(false) }

// Worker периодически проверяет хранилище и переключает Gate.
// Пока хранилище недоступно, API отвечает 503; после восстановления
// обслуживание возобновляется без перезапуска процесса.
type Worker struct {
	pinger   Pinger
	gate     *Gate
	interval time.Duration
	log      *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// New создает воркер проверки хранилища с заданным интервалом.
func New(pinger Pinger, gate *Gate, interval time.Duration, log *slog.Logger) *Worker {
	return &Worker{
		pinger:   pinger,
		gate:     gate,
		interval: interval,
		log:      log.With(slog.String("component", "worker")),
	}
}

// Start запускает воркер в отдельной горутине.
func (w *Worker) Start() {
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.done = make(chan struct{})
	go w.run()
}

// Stop останавливает воркер и дожидается завершения текущей проверки.
func (w *Worker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
}

// Interval возвращает интервал между проверками.
func (w *Worker) Interval() time.Duration { return w.interval }

func (w *Worker) run() {
	defer close(w.done)
	w.log.Info("Store health worker started", slog.String("interval", w.interval.String()))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.check()
	for {
		select {
		case <-ticker.C:
			w.check()
		case <-w.ctx.Done():
			w.log.Info("Worker stopping")
			return
		}
	}
}

// check выполняет одну проверку. Время проверки ограничено интервалом,
// чтобы зависшее соединение не накапливало проверки.
func (w *Worker) check() {
	ctx, cancel := context.WithTimeout(w.ctx, w.interval)
	defer cancel()
	start := time.Now()
	err := w.pinger.Ping(ctx)
	if w.ctx.Err() != nil {
		return
	}
	if err != nil {
		if w.gate.MarkDown() {
			w.log.Error("Source store became unavailable", slog.Any("error", err))
		} else {
			w.log.Debug("Source store still unavailable", slog.Any("error", err))
		}
		return
	}
	if w.gate.MarkUp() {
		w.log.Info("Source store is available again", slog.Duration("ping", time.Since(start)))
	}
}
