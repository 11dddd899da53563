package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/monitor-platform/internal/events"
	"github.com/OldStager01/monitor-platform/pkg/models"
)

type countingRunner struct {
	calls  atomic.Int32
	report SweepReport
	err    error
}

func (r *countingRunner) Sweep(context.Context) (SweepReport, error) {
	r.calls.Add(1)
	return r.report, r.err
}

func TestSweeper_RunsOnStartAndOnTick(t *testing.T) {
	runner := &countingRunner{}
	s := NewSweeper(SweeperConfig{Interval: 20 * time.Millisecond, Runner: runner})

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool { return runner.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	s.Stop()
	assert.False(t, s.IsRunning())

	stopped := runner.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, runner.calls.Load())
}

func TestSweeper_StartIsIdempotent(t *testing.T) {
	runner := &countingRunner{}
	s := NewSweeper(SweeperConfig{Interval: time.Hour, Runner: runner})

	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	assert.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	s.Stop()
	s.Stop()
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestSweeper_ConcurrentStartStop(t *testing.T) {
	runner := &countingRunner{}
	s := NewSweeper(SweeperConfig{Interval: time.Millisecond, Runner: runner})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = s.Start()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				s.Stop()
			}
		}()
	}
	wg.Wait()

	s.Stop()
	assert.False(t, s.IsRunning())

	stopped := runner.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, runner.calls.Load())
}

func TestSweeper_RestartAfterStop(t *testing.T) {
	runner := &countingRunner{}
	s := NewSweeper(SweeperConfig{Interval: time.Hour, Runner: runner})

	require.NoError(t, s.Start())
	assert.Eventually(t, func() bool { return runner.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()

	require.NoError(t, s.Start())
	assert.Eventually(t, func() bool { return runner.calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	s.Stop()
	assert.False(t, s.IsRunning())
}

func TestSweeper_RunOncePublishes(t *testing.T) {
	tests := []struct {
		name      string
		runner    *countingRunner
		eventType models.EventType
	}{
		{
			name:      "success",
			runner:    &countingRunner{report: SweepReport{Services: 3, Events: []models.AnomalyEvent{{ServiceID: 1}}}},
			eventType: models.EventTypeSweepCompleted,
		},
		{
			name:      "failure",
			runner:    &countingRunner{err: errors.New("catalog unavailable")},
			eventType: models.EventTypeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := events.NewEventBus(4)
			defer bus.Close()
			sub := bus.SubscribeAll()

			s := NewSweeper(SweeperConfig{
				Interval:  time.Minute,
				Runner:    tt.runner,
				Publisher: events.NewPublisher(bus),
			})

			_, _ = s.RunOnce(context.Background())

			select {
			case e := <-sub:
				assert.Equal(t, tt.eventType, e.Type)
			case <-time.After(time.Second):
				t.Fatal("expected an event")
			}
		})
	}
}

func TestNewSweeper_Defaults(t *testing.T) {
	s := NewSweeper(SweeperConfig{Runner: &countingRunner{}, Timeout: 5 * time.Minute})

	assert.Equal(t, DefaultSweepInterval, s.config.Interval)
	assert.Equal(t, DefaultSweepInterval, s.config.Timeout)
}
