package hotspot

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/monitor-platform/pkg/models"
	"github.com/OldStager01/monitor-platform/pkg/validation"
)

var analysisTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestAggregator() *Aggregator {
	return NewAggregator(AggregatorConfig{Now: func() time.Time { return analysisTime }})
}

func threadsOf(n int) []models.ThreadInfo {
	threads := make([]models.ThreadInfo, n)
	for i := range threads {
		threads[i] = models.ThreadInfo{
			ProcessID:  1,
			ThreadID:   int64(i + 1),
			ThreadName: fmt.Sprintf("worker-%d", i+1),
			State:      models.ThreadStateRunnable,
		}
	}
	return threads
}

func frame(className, methodName string) models.StackFrame {
	return models.StackFrame{ClassName: className, MethodName: methodName}
}

func staticFrames(stack ...models.StackFrame) FrameSource {
	return func(int64) ([]models.StackFrame, error) { return stack, nil }
}

func TestAggregator_EmptyThreads(t *testing.T) {
	a := newTestAggregator()
	called := false

	analysis, err := a.Analyze(42, nil, func(int64) ([]models.StackFrame, error) {
		called = true
		return nil, nil
	})

	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, int64(42), analysis.ProcessID)
	assert.Equal(t, analysisTime, analysis.AnalysisTime)
	assert.Equal(t, 0, analysis.TotalThreads)
	assert.NotNil(t, analysis.TopHotspots)
	assert.Empty(t, analysis.TopHotspots)
	assert.Equal(t, 100, analysis.HealthScore)
	assert.Equal(t, SummaryNoThreads, analysis.Summary)
}

func TestAggregator_ThreadsWithoutFrames(t *testing.T) {
	a := newTestAggregator()

	analysis, err := a.Analyze(1, threadsOf(3), staticFrames())

	require.NoError(t, err)
	assert.Equal(t, 3, analysis.TotalThreads)
	assert.Empty(t, analysis.TopHotspots)
	assert.Equal(t, 100, analysis.HealthScore)
	assert.Equal(t, SummaryNoHotspots, analysis.Summary)
}

func TestAggregator_CountsAcrossThreads(t *testing.T) {
	a := newTestAggregator()

	analysis, err := a.Analyze(1, threadsOf(10), staticFrames(frame("Foo", "bar"), frame("Baz", "qux")))

	require.NoError(t, err)
	require.Len(t, analysis.TopHotspots, 2)
	assert.Equal(t, 10, analysis.TotalThreads)

	assert.Equal(t, "Baz", analysis.TopHotspots[0].ClassName)
	assert.Equal(t, "qux", analysis.TopHotspots[0].MethodName)
	assert.Equal(t, "Foo", analysis.TopHotspots[1].ClassName)
	for _, h := range analysis.TopHotspots {
		assert.Equal(t, 10, h.OccurrenceCount)
		assert.Equal(t, models.IssueRoutine, h.IssueType)
		assert.Equal(t, 1, h.Severity)
	}

	assert.Equal(t, 96, analysis.HealthScore)
	assert.Equal(t, "2 hotspot methods detected. Health score: 96 (good)", analysis.Summary)
}

func TestAggregator_TopNAndOrdering(t *testing.T) {
	a := newTestAggregator()

	// 15 distinct methods; method i appears on i+1 threads
	stacks := make(map[int64][]models.StackFrame)
	threads := threadsOf(15)
	for m := 0; m < 15; m++ {
		for tid := int64(1); tid <= int64(m+1); tid++ {
			stacks[tid] = append(stacks[tid], frame("com.example.Worker", fmt.Sprintf("step%02d", m)))
		}
	}

	analysis, err := a.Analyze(1, threads, func(tid int64) ([]models.StackFrame, error) {
		return stacks[tid], nil
	})

	require.NoError(t, err)
	require.Len(t, analysis.TopHotspots, DefaultTopN)
	assert.Equal(t, "step14", analysis.TopHotspots[0].MethodName)
	assert.Equal(t, 15, analysis.TopHotspots[0].OccurrenceCount)
	for i := 1; i < len(analysis.TopHotspots); i++ {
		assert.GreaterOrEqual(t, analysis.TopHotspots[i-1].OccurrenceCount, analysis.TopHotspots[i].OccurrenceCount)
	}
}

func TestAggregator_TieBreak(t *testing.T) {
	a := newTestAggregator()
	stack := []models.StackFrame{
		frame("b.Second", "z"),
		frame("a.First", "y"),
		frame("b.Second", "a"),
		frame("a.First", "x"),
	}

	for i := 0; i < 5; i++ {
		analysis, err := a.Analyze(1, threadsOf(2), staticFrames(stack...))
		require.NoError(t, err)
		require.Len(t, analysis.TopHotspots, 4)

		var got []string
		for _, h := range analysis.TopHotspots {
			got = append(got, h.ClassName+"."+h.MethodName)
		}
		assert.Equal(t, []string{"a.First.x", "a.First.y", "b.Second.a", "b.Second.z"}, got)
	}
}

func TestAggregator_HealthScoreFloor(t *testing.T) {
	a := newTestAggregator()
	var stack []models.StackFrame
	for i := 0; i < 12; i++ {
		stack = append(stack, frame(fmt.Sprintf("java.util.HashMap$Node%d", i), "get"))
	}

	analysis, err := a.Analyze(1, threadsOf(5), staticFrames(stack...))

	require.NoError(t, err)
	assert.Len(t, analysis.TopHotspots, 10)
	assert.Equal(t, 0, analysis.HealthScore)
	assert.Equal(t, 10, analysis.HighPriorityCount())
	assert.Equal(t, "10 hotspot methods detected, 10 high priority. Health score: 0 (needs attention)", analysis.Summary)
}

func TestAggregator_MixedSummary(t *testing.T) {
	a := newTestAggregator()
	stack := []models.StackFrame{
		frame("java.lang.Object", "wait"),
		frame("java.util.concurrent.ThreadPoolExecutor", "runWorker"),
		frame("com.example.Foo", "bar"),
	}

	analysis, err := a.Analyze(1, threadsOf(10), staticFrames(stack...))

	require.NoError(t, err)
	// 100 - 15 (severity 4) - 10 (severity 3) - 2 (severity 1)
	assert.Equal(t, 73, analysis.HealthScore)
	assert.Equal(t, "3 hotspot methods detected, 1 high priority, 1 medium priority. Health score: 73 (fair)", analysis.Summary)
}

func TestAggregator_CustomTopN(t *testing.T) {
	a := NewAggregator(AggregatorConfig{TopN: 1})

	analysis, err := a.Analyze(1, threadsOf(2), staticFrames(frame("Foo", "bar"), frame("Baz", "qux")))

	require.NoError(t, err)
	require.Len(t, analysis.TopHotspots, 1)
	assert.Equal(t, "Baz", analysis.TopHotspots[0].ClassName)
}

func TestAggregator_Errors(t *testing.T) {
	storeErr := errors.New("connection reset")

	tests := []struct {
		name          string
		frames        FrameSource
		expectInvalid bool
	}{
		{
			name:          "empty class name",
			frames:        staticFrames(frame("Foo", "bar"), frame("", "qux")),
			expectInvalid: true,
		},
		{
			name:          "blank method name",
			frames:        staticFrames(frame("Foo", "  ")),
			expectInvalid: true,
		},
		{
			name:   "frame source failure",
			frames: func(int64) ([]models.StackFrame, error) { return nil, storeErr },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAggregator()

			analysis, err := a.Analyze(1, threadsOf(2), tt.frames)

			assert.Nil(t, analysis)
			require.Error(t, err)
			if tt.expectInvalid {
				var invalid *validation.InvalidInputError
				assert.True(t, errors.As(err, &invalid))
				return
			}
			assert.ErrorIs(t, err, storeErr)
			assert.False(t, errors.Is(err, validation.ErrInvalidInput))
		})
	}
}

func TestHealthBucket(t *testing.T) {
	tests := []struct {
		score    int
		expected string
	}{
		{100, "good"},
		{80, "good"},
		{79, "fair"},
		{60, "fair"},
		{59, "needs attention"},
		{0, "needs attention"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("score_%d", tt.score), func(t *testing.T) {
			assert.Equal(t, tt.expected, HealthBucket(tt.score))
		})
	}
}
