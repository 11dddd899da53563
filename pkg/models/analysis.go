package models

import "time"

// IssueType is the category a hotspot method is classified into.
type IssueType string

const (
	IssueConcurrencySafety     IssueType = "concurrency_safety"
	IssueConcurrentPerformance IssueType = "concurrent_performance"
	IssuePerfOptimization      IssueType = "perf_optimization"
	IssueLockWait              IssueType = "lock_wait"
	IssueThreadPool            IssueType = "thread_pool"
	IssueQueue                 IssueType = "queue"
	IssueLockContention        IssueType = "lock_contention"
	IssueIO                    IssueType = "io"
	IssueNetworkIO             IssueType = "network_io"
	IssueFileIO                IssueType = "file_io"
	IssueDbNetworkIO           IssueType = "db_network_io"
	IssueDbReadWrite           IssueType = "db_read_write"
	IssueDbCommunication       IssueType = "db_communication"
	IssueConnectionValidation  IssueType = "connection_validation"
	IssueConnectionPoolWait    IssueType = "connection_pool_wait"
	IssueConnectionAcquire     IssueType = "connection_acquire"
	IssueJdbcQuery             IssueType = "jdbc_query"
	IssueOrmQuery              IssueType = "orm_query"
	IssueDatabase              IssueType = "database"
	IssueSqlPerformance        IssueType = "sql_performance"
	IssueHttpRequest           IssueType = "http_request"
	IssueCollectionOp          IssueType = "collection_op"
	IssueFrequentCall          IssueType = "frequent_call"
	IssueRoutine               IssueType = "routine"
)

// HotspotMethod is a (class, method) pair seen repeatedly across a
// process's thread stacks, with its classification.
type HotspotMethod struct {
	ClassName       string    `json:"class_name"`
	MethodName      string    `json:"method_name"`
	OccurrenceCount int       `json:"occurrence_count"`
	IssueType       IssueType `json:"issue_type"`
	Severity        int       `json:"severity"`
	Suggestion      string    `json:"suggestion"`
}

// ThreadHotspotAnalysis is the health report for one process.
type ThreadHotspotAnalysis struct {
	ProcessID    int64           `json:"process_id"`
	AnalysisTime time.Time       `json:"analysis_time"`
	TotalThreads int             `json:"total_threads"`
	TopHotspots  []HotspotMethod `json:"top_hotspots"`
	Summary      string          `json:"summary"`
	HealthScore  int             `json:"health_score"`
}

func (a *ThreadHotspotAnalysis) HighPriorityCount() int {
	n := 0
	for _, h := range a.TopHotspots {
		if h.Severity >= 4 {
			n++
		}
	}
	return n
}
