package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/OldStager01/monitor-platform/pkg/models"
	"github.com/OldStager01/monitor-platform/pkg/validation"
	"github.com/gin-gonic/gin"
)

type SnapshotWriter interface {
	ReplaceSnapshot(ctx context.Context, processID int64, threads []models.ThreadInfo, frames []models.StackFrame) error
}

type HotspotAnalyzer interface {
	Analyze(ctx context.Context, processID int64) (*models.ThreadHotspotAnalysis, error)
	Latest(ctx context.Context, processID int64) (*models.ThreadHotspotAnalysis, bool, error)
}

type ThreadHandler struct {
	snapshots SnapshotWriter
	analyzer  HotspotAnalyzer
	now       func() time.Time
}

func NewThreadHandler(snapshots SnapshotWriter, analyzer HotspotAnalyzer) *ThreadHandler {
	return &ThreadHandler{snapshots: snapshots, analyzer: analyzer, now: time.Now}
}

type FrameInput struct {
	ClassName  string `json:"class_name" example:"java.util.HashMap"`
	MethodName string `json:"method_name" example:"put"`
	FileName   string `json:"file_name,omitempty" example:"HashMap.java"`
	LineNumber int    `json:"line_number,omitempty" example:"612"`
	IsNative   bool   `json:"is_native,omitempty"`
}

// ThreadInput carries one thread and its stack, innermost frame first.
type ThreadInput struct {
	ThreadID      int64        `json:"thread_id" binding:"required" example:"42"`
	ThreadName    string       `json:"thread_name" example:"http-nio-8080-exec-1"`
	State         string       `json:"state" example:"RUNNABLE"`
	Priority      int          `json:"priority" example:"5"`
	Daemon        bool         `json:"daemon"`
	CPUTimeMillis int64        `json:"cpu_time_ms"`
	BlockedMillis int64        `json:"blocked_time_ms"`
	WaitedMillis  int64        `json:"wait_time_ms"`
	Frames        []FrameInput `json:"frames"`
}

type SnapshotRequest struct {
	Timestamp time.Time     `json:"timestamp"`
	Threads   []ThreadInput `json:"threads" binding:"required,dive"`
}

// Snapshot godoc
// @Summary Ingest thread snapshot
// @Description Replaces the stored thread snapshot of a process
// @Tags Threads
// @Accept json
// @Produce json
// @Param id path int true "Process ID"
// @Param request body SnapshotRequest true "Threads with stacks"
// @Success 202 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/processes/{id}/threads/snapshot [post]
func (h *ThreadHandler) Snapshot(c *gin.Context) {
	processID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req SnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	threads, frames, err := toSnapshot(processID, req, h.now().UTC())
	if err != nil {
		respondError(c, err, "invalid snapshot")
		return
	}

	if err := h.snapshots.ReplaceSnapshot(c.Request.Context(), processID, threads, frames); err != nil {
		respondError(c, err, "failed to store snapshot")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"process_id": processID,
		"threads":    len(threads),
		"frames":     len(frames),
	})
}

// Analyze godoc
// @Summary Analyze thread hotspots
// @Tags Threads
// @Produce json
// @Param id path int true "Process ID"
// @Success 200 {object} models.ThreadHotspotAnalysis
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string "Malformed stored frames"
// @Router /api/processes/{id}/threads/analyze [post]
func (h *ThreadHandler) Analyze(c *gin.Context) {
	processID, ok := parseID(c, "id")
	if !ok {
		return
	}

	analysis, err := h.analyzer.Analyze(c.Request.Context(), processID)
	if err != nil {
		respondError(c, err, "hotspot analysis failed")
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// Latest godoc
// @Summary Latest hotspot analysis
// @Tags Threads
// @Produce json
// @Param id path int true "Process ID"
// @Success 200 {object} models.ThreadHotspotAnalysis
// @Failure 404 {object} map[string]string "No analysis cached"
// @Router /api/processes/{id}/threads/analysis [get]
func (h *ThreadHandler) Latest(c *gin.Context) {
	processID, ok := parseID(c, "id")
	if !ok {
		return
	}

	analysis, found, err := h.analyzer.Latest(c.Request.Context(), processID)
	if err != nil {
		respondError(c, err, "failed to fetch analysis")
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no analysis for process"})
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// Column widths of thread_infos and thread_stacks.
const (
	maxThreadNameLength  = 255
	maxThreadStateLength = 32
	maxFileNameLength    = 255
)

func toSnapshot(processID int64, req SnapshotRequest, now time.Time) ([]models.ThreadInfo, []models.StackFrame, error) {
	ts := req.Timestamp
	if ts.IsZero() {
		ts = now
	}

	threads := make([]models.ThreadInfo, 0, len(req.Threads))
	seen := make(map[int64]bool, len(req.Threads))
	var frames []models.StackFrame
	for i, t := range req.Threads {
		if err := validation.ValidateID("thread_id", t.ThreadID); err != nil {
			return nil, nil, fmt.Errorf("threads[%d]: %w", i, err)
		}
		if seen[t.ThreadID] {
			return nil, nil, validation.InvalidAt("threads", i, "duplicate thread_id")
		}
		seen[t.ThreadID] = true

		name := validation.SanitizeString(t.ThreadName)
		if err := validation.ValidateMaxLength("thread_name", -1, name, maxThreadNameLength); err != nil {
			return nil, nil, fmt.Errorf("threads[%d]: %w", i, err)
		}
		state := models.ThreadState(t.State)
		if state == "" {
			state = models.ThreadStateRunnable
		}
		if err := validation.ValidateMaxLength("state", -1, string(state), maxThreadStateLength); err != nil {
			return nil, nil, fmt.Errorf("threads[%d]: %w", i, err)
		}
		threads = append(threads, models.ThreadInfo{
			ProcessID:     processID,
			ThreadID:      t.ThreadID,
			ThreadName:    name,
			State:         state,
			Priority:      t.Priority,
			Daemon:        t.Daemon,
			CPUTimeMillis: t.CPUTimeMillis,
			BlockedMillis: t.BlockedMillis,
			WaitedMillis:  t.WaitedMillis,
			Timestamp:     ts,
		})

		for depth, f := range t.Frames {
			if err := validation.ValidateFrameSymbol("class_name", depth, f.ClassName); err != nil {
				return nil, nil, fmt.Errorf("threads[%d]: %w", i, err)
			}
			if err := validation.ValidateFrameSymbol("method_name", depth, f.MethodName); err != nil {
				return nil, nil, fmt.Errorf("threads[%d]: %w", i, err)
			}
			if err := validation.ValidateMaxLength("file_name", depth, f.FileName, maxFileNameLength); err != nil {
				return nil, nil, fmt.Errorf("threads[%d]: %w", i, err)
			}
			frames = append(frames, models.StackFrame{
				ProcessID:  processID,
				ThreadID:   t.ThreadID,
				Depth:      depth,
				ClassName:  f.ClassName,
				MethodName: f.MethodName,
				FileName:   f.FileName,
				LineNumber: f.LineNumber,
				IsNative:   f.IsNative,
				Timestamp:  ts,
			})
		}
	}
	return threads, frames, nil
}
