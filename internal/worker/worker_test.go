package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"finscreen/internal/logger"

	"github.com/stretchr/testify/assert"
)

type fakePinger struct {
	fail  atomic.Bool
	calls atomic.Int32
}

func (p *fakePinger) Ping(ctx context.Context) error {
	p.calls.Add(1)
	if p.fail.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func TestGate_Transitions(t *testing.T) {
	var gate Gate
	assert.True(t, gate.Available())

	assert.True(t, gate.MarkDown())
	assert.False(t, gate.MarkDown())
	assert.False(t, gate.Available())

	assert.True(t, gate.MarkUp())
	assert.False(t, gate.MarkUp())
	assert.True(t, gate.Available())
}

func TestWorker_FlipsGate(t *testing.T) {
	pinger := &fakePinger{}
	pinger.fail.Store(true)
	gate := &Gate{}
	w := New(pinger, gate, 10*time.Millisecond, logger.Discard())

	w.Start()
	defer w.Stop()

	assert.Eventually(t, func() bool { return !gate.Available() }, time.Second, 5*time.Millisecond)

	pinger.fail.Store(false)
	assert.Eventually(t, gate.Available, time.Second, 5*time.Millisecond)
}

func TestWorker_ChecksImmediatelyAndStops(t *testing.T) {
	pinger := &fakePinger{}
	w := New(pinger, &Gate{}, time.Hour, logger.Discard())

	w.Start()
	assert.Eventually(t, func() bool { return pinger.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	w.Stop()

	assert.Equal(t, time.Hour, w.Interval())
	assert.Equal(t, int32(1), pinger.calls.Load())
}

func TestWorker_StopWithoutStart(t *testing.T) {
	w := New(&fakePinger{}, &Gate{}, time.Second, logger.Discard())
	assert.NotPanics(t, w.Stop)
}
