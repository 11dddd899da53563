package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/monitor-platform/internal/cache"
	"github.com/OldStager01/monitor-platform/internal/events"
	"github.com/OldStager01/monitor-platform/pkg/models"
	"github.com/OldStager01/monitor-platform/pkg/validation"
)

func newTestHotspotService(t *testing.T, snapshots *fakeSnapshots) (*HotspotService, *events.EventBus) {
	t.Helper()
	bus := events.NewEventBus(8)
	t.Cleanup(bus.Close)

	svc := NewHotspotService(HotspotServiceConfig{
		Snapshots: snapshots,
		Cache:     cache.NewMemoryCache(16, 0),
		Publisher: events.NewPublisher(bus),
	})
	return svc, bus
}

func TestHotspotService_Analyze(t *testing.T) {
	snapshots := newFakeSnapshots()
	for tid := int64(1); tid <= 10; tid++ {
		snapshots.addThread(4, tid,
			models.StackFrame{ClassName: "Foo", MethodName: "bar"},
			models.StackFrame{ClassName: "Baz", MethodName: "qux"},
		)
	}
	svc, bus := newTestHotspotService(t, snapshots)
	sub := bus.Subscribe(models.EventTypeHotspotAnalyzed)

	analysis, err := svc.Analyze(context.Background(), 4)

	require.NoError(t, err)
	assert.Equal(t, 10, analysis.TotalThreads)
	require.Len(t, analysis.TopHotspots, 2)
	assert.Equal(t, 10, analysis.TopHotspots[0].OccurrenceCount)
	assert.Equal(t, 10, analysis.TopHotspots[1].OccurrenceCount)

	e := <-sub
	assert.Equal(t, "process:4", e.Subject)

	cached, ok, err := svc.Latest(context.Background(), 4)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, analysis.HealthScore, cached.HealthScore)
}

func TestHotspotService_UnknownProcess(t *testing.T) {
	svc, _ := newTestHotspotService(t, newFakeSnapshots())

	analysis, err := svc.Analyze(context.Background(), 99)

	require.NoError(t, err)
	assert.Equal(t, 0, analysis.TotalThreads)
	assert.Empty(t, analysis.TopHotspots)
	assert.Equal(t, 100, analysis.HealthScore)
}

func TestHotspotService_Errors(t *testing.T) {
	t.Run("thread store failure", func(t *testing.T) {
		snapshots := newFakeSnapshots()
		snapshots.threadErr = errors.New("db down")
		svc, _ := newTestHotspotService(t, snapshots)

		_, err := svc.Analyze(context.Background(), 1)

		assert.ErrorIs(t, err, snapshots.threadErr)
	})

	t.Run("malformed frame", func(t *testing.T) {
		snapshots := newFakeSnapshots()
		snapshots.addThread(1, 1, models.StackFrame{ClassName: "Foo"})
		svc, _ := newTestHotspotService(t, snapshots)

		_, err := svc.Analyze(context.Background(), 1)

		assert.ErrorIs(t, err, validation.ErrInvalidInput)
		_, ok, _ := svc.Latest(context.Background(), 1)
		assert.False(t, ok)
	})
}

func TestHotspotService_LatestMiss(t *testing.T) {
	svc, _ := newTestHotspotService(t, newFakeSnapshots())

	analysis, ok, err := svc.Latest(context.Background(), 5)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, analysis)
}
