package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herald/pkg/errors"
)

type countingRunner struct {
	runs atomic.Int64
	err  error
}

func (r *countingRunner) Run(_ context.Context) error {
	r.runs.Add(1)
	return r.err
}

func TestDigestWorker_RecordsHealth(t *testing.T) {
	runner := &countingRunner{}
	w := NewDigestWorker(runner, time.Hour)

	require.NoError(t, w.Run(context.Background()))

	health := w.Health()
	assert.Equal(t, int64(1), health.RunCount)
	assert.Equal(t, int64(0), health.ErrorCount)
	assert.NoError(t, health.LastError)

	runner.err = errors.ErrDeliveryFailed
	require.Error(t, w.Run(context.Background()))

	health = w.Health()
	assert.Equal(t, int64(2), health.RunCount)
	assert.Equal(t, int64(1), health.ErrorCount)
	assert.ErrorIs(t, health.LastError, errors.ErrDeliveryFailed)
}

func TestScheduler_RunsWorkerImmediatelyOnStart(t *testing.T) {
	runner := &countingRunner{}
	w := NewDigestWorker(runner, time.Hour)

	s := NewScheduler()
	s.RegisterWorker(w)
	require.NoError(t, s.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return runner.runs.Load() == 1
	}, time.Second, 10*time.Millisecond, "first run must not wait for the interval")

	require.NoError(t, s.Stop())
}

func TestScheduler_TicksOnInterval(t *testing.T) {
	runner := &countingRunner{}
	w := NewDigestWorker(runner, 20*time.Millisecond)

	s := NewScheduler()
	s.RegisterWorker(w)
	require.NoError(t, s.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return runner.runs.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Stop())
}

func TestScheduler_StartTwiceFails(t *testing.T) {
	s := NewScheduler()
	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()))
	require.NoError(t, s.Stop())
}

func TestScheduler_StopWithoutStartFails(t *testing.T) {
	assert.Error(t, NewScheduler().Stop())
}

func TestScheduler_SkipsDisabledWorkers(t *testing.T) {
	runner := &countingRunner{}
	w := &DigestWorker{
		BaseWorker: NewBaseWorker("digest", 10*time.Millisecond, false),
		runner:     runner,
	}

	s := NewScheduler()
	s.RegisterWorker(w)
	require.NoError(t, s.Start(context.Background()))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(0), runner.runs.Load())

	require.NoError(t, s.Stop())
}

type panickyWorker struct {
	*BaseWorker
	calls atomic.Int64
}

func (w *panickyWorker) Run(_ context.Context) error {
	w.calls.Add(1)
	panic("digest blew up")
}

func TestScheduler_RecoversFromWorkerPanic(t *testing.T) {
	w := &panickyWorker{BaseWorker: NewBaseWorker("panicky", 15*time.Millisecond, true)}

	s := NewScheduler()
	s.RegisterWorker(w)
	require.NoError(t, s.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return w.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond, "worker must keep ticking after a panic")

	require.NoError(t, s.Stop())
}
