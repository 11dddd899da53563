package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/OldStager01/monitor-platform/pkg/models"
)

var sampleStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeMetricStore struct {
	mu      sync.Mutex
	samples map[int64][]models.MetricSample
	errs    map[int64]error
	calls   int
}

func newFakeMetricStore() *fakeMetricStore {
	return &fakeMetricStore{
		samples: make(map[int64][]models.MetricSample),
		errs:    make(map[int64]error),
	}
}

func (f *fakeMetricStore) put(serviceID int64, metricName string, values ...float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, v := range values {
		f.samples[serviceID] = append(f.samples[serviceID], models.MetricSample{
			ServiceID:  serviceID,
			MetricName: metricName,
			Timestamp:  sampleStart.Add(time.Duration(i) * time.Minute),
			Value:      v,
		})
	}
}

func (f *fakeMetricStore) QueryRecent(_ context.Context, serviceID int64, metricName string, limit int) ([]models.MetricSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if err := f.errs[serviceID]; err != nil {
		return nil, err
	}

	var out []models.MetricSample
	for _, s := range f.samples[serviceID] {
		if s.MetricName == metricName {
			out = append(out, s)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type fakeAnomalyStore struct {
	mu     sync.Mutex
	nextID int64
	events []models.AnomalyEvent
	err    error
}

func (f *fakeAnomalyStore) Append(_ context.Context, event *models.AnomalyEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	event.ID = f.nextID
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeAnomalyStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type fakeCatalog struct {
	ids []int64
	err error
}

func (f *fakeCatalog) ListServiceIDs(context.Context) ([]int64, error) {
	return f.ids, f.err
}

type fakeSnapshots struct {
	threads   map[int64][]models.ThreadInfo
	frames    map[string][]models.StackFrame
	threadErr error
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{
		threads: make(map[int64][]models.ThreadInfo),
		frames:  make(map[string][]models.StackFrame),
	}
}

func frameKey(processID, threadID int64) string {
	return fmt.Sprintf("%d/%d", processID, threadID)
}

func (f *fakeSnapshots) addThread(processID, threadID int64, stack ...models.StackFrame) {
	f.threads[processID] = append(f.threads[processID], models.ThreadInfo{
		ProcessID: processID,
		ThreadID:  threadID,
		State:     models.ThreadStateRunnable,
	})
	f.frames[frameKey(processID, threadID)] = stack
}

func (f *fakeSnapshots) LatestThreads(_ context.Context, processID int64) ([]models.ThreadInfo, error) {
	if f.threadErr != nil {
		return nil, f.threadErr
	}
	return f.threads[processID], nil
}

func (f *fakeSnapshots) FramesOf(_ context.Context, processID, threadID int64) ([]models.StackFrame, error) {
	return f.frames[frameKey(processID, threadID)], nil
}
