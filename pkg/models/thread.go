package models

import "time"

type ThreadState string

const (
	ThreadStateNew          ThreadState = "NEW"
	ThreadStateRunnable     ThreadState = "RUNNABLE"
	ThreadStateBlocked      ThreadState = "BLOCKED"
	ThreadStateWaiting      ThreadState = "WAITING"
	ThreadStateTimedWaiting ThreadState = "TIMED_WAITING"
	ThreadStateTerminated   ThreadState = "TERMINATED"
)

// ThreadInfo describes one thread of a monitored process at capture time.
type ThreadInfo struct {
	ID            int64       `json:"id" db:"id"`
	ProcessID     int64       `json:"process_id" db:"process_id"`
	ThreadID      int64       `json:"thread_id" db:"thread_id"`
	ThreadName    string      `json:"thread_name" db:"thread_name"`
	State         ThreadState `json:"state" db:"state"`
	Priority      int         `json:"priority" db:"priority"`
	Daemon        bool        `json:"daemon" db:"daemon"`
	CPUTimeMillis int64       `json:"cpu_time_ms" db:"cpu_time_ms"`
	BlockedMillis int64       `json:"blocked_time_ms" db:"blocked_time_ms"`
	WaitedMillis  int64       `json:"wait_time_ms" db:"wait_time_ms"`
	Timestamp     time.Time   `json:"timestamp" db:"timestamp"`
}

// StackFrame is one frame of a captured thread stack. Depth 0 is the
// innermost call.
type StackFrame struct {
	ID         int64     `json:"id" db:"id"`
	ProcessID  int64     `json:"process_id" db:"process_id"`
	ThreadID   int64     `json:"thread_id" db:"thread_id"`
	Depth      int       `json:"depth" db:"depth"`
	ClassName  string    `json:"class_name" db:"class_name"`
	MethodName string    `json:"method_name" db:"method_name"`
	FileName   string    `json:"file_name,omitempty" db:"file_name"`
	LineNumber int       `json:"line_number,omitempty" db:"line_number"`
	IsNative   bool      `json:"is_native" db:"is_native"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
}

// QualifiedName returns "class.method".
func (f StackFrame) QualifiedName() string {
	return f.ClassName + "." + f.MethodName
}
