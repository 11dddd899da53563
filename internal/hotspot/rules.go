package hotspot

import (
	"fmt"
	"strings"

	"github.com/OldStager01/monitor-platform/pkg/models"
)

// FrequentCallThreshold is the occurrence count above which an otherwise
// unremarkable method is reported as a frequent call.
const FrequentCallThreshold = 20

// Rule maps a (class, method, count) triple to an issue category.
type Rule struct {
	Name  string
	Match func(className, methodName string, count int) bool
	Issue func(className, methodName string) models.IssueType
}

func fixed(issue models.IssueType) func(string, string) models.IssueType {
	return func(string, string) models.IssueType { return issue }
}

func classHasAny(className string, parts ...string) bool {
	for _, p := range parts {
		if strings.Contains(className, p) {
			return true
		}
	}
	return false
}

func classRule(name string, issue models.IssueType, parts ...string) Rule {
	return Rule{
		Name:  name,
		Match: func(c, _ string, _ int) bool { return classHasAny(c, parts...) },
		Issue: fixed(issue),
	}
}

func classMethodRule(name string, issue models.IssueType, classPart, method string) Rule {
	return Rule{
		Name: name,
		Match: func(c, m string, _ int) bool {
			return strings.Contains(c, classPart) && m == method
		},
		Issue: fixed(issue),
	}
}

// DefaultRules is evaluated top to bottom and the first match wins. Some
// entries are shadowed by earlier, broader ones (ConcurrentHashMap hits the
// HashMap rule, PreparedStatement hits the Statement rule); the order is kept
// as is.
var DefaultRules = []Rule{
	classRule("concurrency-safety", models.IssueConcurrencySafety, "HashMap", "ArrayList", "HashSet"),
	{
		Name: "concurrent-performance",
		Match: func(c, m string, _ int) bool {
			return strings.Contains(c, "ConcurrentHashMap") && strings.Contains(m, "compute")
		},
		Issue: fixed(models.IssueConcurrentPerformance),
	},
	classMethodRule("thread-sleep", models.IssuePerfOptimization, "Thread", "sleep"),
	classMethodRule("object-wait", models.IssueLockWait, "Object", "wait"),
	classRule("thread-pool", models.IssueThreadPool, "ThreadPoolExecutor", "ForkJoinPool"),
	classRule("blocking-queue", models.IssueQueue, "LinkedBlockingQueue", "ArrayBlockingQueue"),
	classRule("lock-contention", models.IssueLockContention, "ReentrantLock", "synchronized"),
	classRule("aqs-wait", models.IssueLockWait, "AbstractQueuedSynchronizer"),
	classRule("stream-io", models.IssueIO, "InputStream", "OutputStream"),
	classRule("network-io", models.IssueNetworkIO, "Socket", "Connection"),
	classRule("file-io", models.IssueFileIO, "File"),
	{
		Name: "mysql-driver-io",
		Match: func(c, _ string, _ int) bool {
			return classHasAny(c, "com.mysql.cj.jdbc.MysqlIO", "com.mysql.jdbc.MysqlIO")
		},
		Issue: func(_, m string) models.IssueType {
			switch m {
			case "sendCommand":
				return models.IssueDbNetworkIO
			case "read", "write":
				return models.IssueDbReadWrite
			default:
				return models.IssueDbCommunication
			}
		},
	},
	classMethodRule("connection-validation", models.IssueConnectionValidation, "ConnectionImpl", "isValid"),
	classMethodRule("pool-wait", models.IssueConnectionPoolWait, "HikariPool", "getConnection"),
	classMethodRule("datasource-acquire", models.IssueConnectionAcquire, "HikariDataSource", "getConnection"),
	classMethodRule("jdbc-template-query", models.IssueJdbcQuery, "JdbcTemplate", "query"),
	classMethodRule("orm-query", models.IssueOrmQuery, "MyBatis", "query"),
	classRule("database", models.IssueDatabase, "jdbc", "mysql", "Statement"),
	{
		Name: "sql-performance",
		Match: func(c, m string, _ int) bool {
			return strings.Contains(c, "PreparedStatement") &&
				(strings.Contains(m, "execute") || strings.Contains(m, "query"))
		},
		Issue: fixed(models.IssueSqlPerformance),
	},
	classRule("http-request", models.IssueHttpRequest, "HttpServlet", "DispatcherServlet"),
	classRule("collection-op", models.IssueCollectionOp, "Map", "List", "Set"),
	{
		Name:  "frequent-call",
		Match: func(_, _ string, count int) bool { return count > FrequentCallThreshold },
		Issue: fixed(models.IssueFrequentCall),
	},
}

var baseSeverity = map[models.IssueType]int{
	models.IssueConcurrencySafety:    5,
	models.IssueLockWait:             4,
	models.IssueLockContention:       4,
	models.IssueConnectionPoolWait:   4,
	models.IssuePerfOptimization:     3,
	models.IssueThreadPool:           3,
	models.IssueDatabase:             3,
	models.IssueDbNetworkIO:          3,
	models.IssueDbReadWrite:          3,
	models.IssueIO:                   2,
	models.IssueNetworkIO:            2,
	models.IssueSqlPerformance:       2,
	models.IssueDbCommunication:      2,
	models.IssueConnectionAcquire:    2,
	models.IssueConnectionValidation: 2,
	models.IssueJdbcQuery:            2,
	models.IssueOrmQuery:             2,
}

// BaseSeverity returns the unadjusted severity of an issue category.
func BaseSeverity(issue models.IssueType) int {
	if s, ok := baseSeverity[issue]; ok {
		return s
	}
	return 1
}

var adviceText = map[models.IssueType]string{
	models.IssueConcurrencySafety:     "use ConcurrentHashMap or guard access with synchronization",
	models.IssueConcurrentPerformance: "avoid heavy compute-style concurrent operations, consider sharding or explicit locking",
	models.IssuePerfOptimization:      "frequent sleep calls hurt response time, consider event-driven or asynchronous handling",
	models.IssueLockWait:              "many threads are waiting, check lock hold times and deadlock risk",
	models.IssueThreadPool:            "thread pool configuration may be unsuitable, review pool parameters",
	models.IssueQueue:                 "queue operations are frequent, check queue capacity and consumer throughput",
	models.IssueLockContention:        "lock contention detected, consider read-write locks or finer-grained locking",
	models.IssueIO:                    "I/O is frequent, consider NIO or asynchronous I/O",
	models.IssueNetworkIO:             "network I/O blocks often, consider connection pooling or timeouts",
	models.IssueFileIO:                "file I/O is frequent, consider buffering or asynchronous writes",
	models.IssueDbNetworkIO:           "database network traffic is high, check latency, enable compression or batch operations",
	models.IssueDbReadWrite:           "database reads and writes are frequent, add indexes, tune queries or add caching",
	models.IssueDbCommunication:       "database round trips are expensive, check query efficiency and reduce round trips",
	models.IssueConnectionValidation:  "connections are validated often, prefer pool keepalive checks over isValid calls",
	models.IssueConnectionPoolWait:    "threads wait long for pooled connections, raise the pool size or speed up queries",
	models.IssueConnectionAcquire:     "connections are acquired frequently, review pool sizing and idle timeout",
	models.IssueJdbcQuery:             "JDBC queries are frequent, add indexes, tune SQL or use batching",
	models.IssueOrmQuery:              "ORM queries are frequent, enable second-level caching, tune mappings or use lazy loading",
	models.IssueDatabase:              "database operations are frequent, check SQL performance and pool configuration",
	models.IssueSqlPerformance:        "SQL executes frequently, add indexes, tune queries or add caching",
	models.IssueHttpRequest:           "HTTP request handling is slow, consider caching or asynchronous processing",
	models.IssueCollectionOp:          "collection operations are frequent, check algorithmic complexity",
}

// Advice returns the remediation hint for a classified hotspot.
func Advice(issue models.IssueType, className, methodName string, count int) string {
	switch issue {
	case models.IssueThreadPool:
		if methodName == "getTask" {
			return "thread pool work queue is long, add core threads or optimize tasks"
		}
	case models.IssueCollectionOp:
		if strings.Contains(methodName, "put") || strings.Contains(methodName, "add") {
			return "collection writes are frequent, pre-size the collection or use a concurrent one"
		}
	case models.IssueFrequentCall:
		return fmt.Sprintf("called very frequently (%d times), optimize the algorithm or add caching", count)
	}

	if text, ok := adviceText[issue]; ok {
		return text
	}
	return "routine call, no optimization needed"
}
