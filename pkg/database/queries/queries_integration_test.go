package queries

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/monitor-platform/pkg/database"
	"github.com/OldStager01/monitor-platform/pkg/models"
)

const testDSNEnv = "MONITOR_TEST_DATABASE_DSN"

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	dsn := os.Getenv(testDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set, skipping postgres integration test", testDSNEnv)
	}

	db, err := database.Open(dsn, database.Config{MaxConnections: 4})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrator(db).Run(context.Background()))
	return db
}

func createTestService(t *testing.T, repo *ServiceRepository) *models.Service {
	t.Helper()
	svc := &models.Service{
		Name: fmt.Sprintf("svc-%d", time.Now().UnixNano()),
		Env:  "test",
	}
	require.NoError(t, repo.Create(context.Background(), svc))
	return svc
}

func TestServiceRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewServiceRepository(db.DB)
	ctx := context.Background()

	svc := createTestService(t, repo)
	assert.NotZero(t, svc.ID)

	got, err := repo.GetByID(ctx, svc.ID)
	require.NoError(t, err)
	assert.Equal(t, svc.Name, got.Name)

	err = repo.Create(ctx, &models.Service{Name: svc.Name, Env: "test"})
	assert.ErrorIs(t, err, ErrServiceExists)

	_, err = repo.GetByID(ctx, -1)
	assert.ErrorIs(t, err, ErrServiceNotFound)

	ids, err := repo.ListServiceIDs(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, svc.ID)
}

func TestMetricsRepository_QueryRecentAscending(t *testing.T) {
	db := openTestDB(t)
	svc := createTestService(t, NewServiceRepository(db.DB))
	repo := NewMetricsRepository(db.DB)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	var samples []models.MetricSample
	for i := 0; i < 8; i++ {
		samples = append(samples, models.MetricSample{
			ServiceID:  svc.ID,
			MetricName: "responseTime",
			Timestamp:  base.Add(time.Duration(i) * time.Second),
			Value:      float64(i),
		})
	}
	require.NoError(t, repo.InsertBatch(ctx, samples))

	recent, err := repo.QueryRecent(ctx, svc.ID, "responseTime", 5)

	require.NoError(t, err)
	require.Len(t, recent, 5)
	for i, s := range recent {
		assert.Equal(t, float64(i+3), s.Value)
	}
}

func TestAnomalyRepository_AppendAndFindRecent(t *testing.T) {
	db := openTestDB(t)
	svc := createTestService(t, NewServiceRepository(db.DB))
	repo := NewAnomalyRepository(db.DB)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		event := &models.AnomalyEvent{
			ServiceID:  svc.ID,
			MetricName: "responseTime",
			StartTime:  base,
			EndTime:    base,
			Severity:   models.AnomalySeverityLow,
			Score:      2,
			Reason:     "test",
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, repo.Append(ctx, event))
		assert.NotZero(t, event.ID)
	}

	events, err := repo.FindRecent(ctx, &svc.ID, 2)

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].CreatedAt.Before(events[1].CreatedAt))
	assert.Equal(t, base.Add(2*time.Second), events[1].CreatedAt.UTC())
}

func TestThreadRepository_Snapshot(t *testing.T) {
	db := openTestDB(t)
	repo := NewThreadRepository(db.DB)
	ctx := context.Background()
	processID := time.Now().UnixNano() % 1_000_000_000

	now := time.Now().UTC().Truncate(time.Second)
	threads := []models.ThreadInfo{
		{ProcessID: processID, ThreadID: 2, ThreadName: "b", State: models.ThreadStateRunnable, Timestamp: now},
		{ProcessID: processID, ThreadID: 1, ThreadName: "a", State: models.ThreadStateWaiting, Timestamp: now},
	}
	frames := []models.StackFrame{
		{ProcessID: processID, ThreadID: 1, Depth: 0, ClassName: "Foo", MethodName: "bar", Timestamp: now},
		{ProcessID: processID, ThreadID: 1, Depth: 1, ClassName: "Baz", MethodName: "qux", Timestamp: now},
	}
	require.NoError(t, repo.ReplaceSnapshot(ctx, processID, threads, frames))

	latest, err := repo.LatestThreads(ctx, processID)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, int64(1), latest[0].ThreadID)

	got, err := repo.FramesOf(ctx, processID, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Depth)

	require.NoError(t, repo.ReplaceSnapshot(ctx, processID, threads[:1], nil))
	latest, err = repo.LatestThreads(ctx, processID)
	require.NoError(t, err)
	assert.Len(t, latest, 1)
}
