package monitor

import (
	"context"

	"github.com/OldStager01/monitor-platform/pkg/models"
)

// MetricStore returns the most recent samples of one metric, oldest first.
type MetricStore interface {
	QueryRecent(ctx context.Context, serviceID int64, metricName string, limit int) ([]models.MetricSample, error)
}

// AnomalyStore persists detected events. Append fills in the event ID.
type AnomalyStore interface {
	Append(ctx context.Context, event *models.AnomalyEvent) error
}

// ThreadSnapshotStore serves the latest captured threads of a process and the
// frames of each thread.
type ThreadSnapshotStore interface {
	LatestThreads(ctx context.Context, processID int64) ([]models.ThreadInfo, error)
	FramesOf(ctx context.Context, processID, threadID int64) ([]models.StackFrame, error)
}

type ServiceCatalog interface {
	ListServiceIDs(ctx context.Context) ([]int64, error)
}
