package queries

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/OldStager01/monitor-platform/pkg/models"
)

// ThreadRepository stores captured thread snapshots. A new snapshot replaces
// the previous one for the same process.
type ThreadRepository struct {
	db *sqlx.DB
}

func NewThreadRepository(db *sqlx.DB) *ThreadRepository {
	return &ThreadRepository{db: db}
}

// LatestThreads returns the newest record of every thread, ordered by thread ID.
func (r *ThreadRepository) LatestThreads(ctx context.Context, processID int64) ([]models.ThreadInfo, error) {
	threads := []models.ThreadInfo{}
	query := `
		SELECT DISTINCT ON (thread_id)
			id, process_id, thread_id, thread_name, state, priority, daemon,
			cpu_time_ms, blocked_time_ms, wait_time_ms, timestamp
		FROM thread_infos
		WHERE process_id = $1
		ORDER BY thread_id, timestamp DESC, id DESC`

	if err := r.db.SelectContext(ctx, &threads, query, processID); err != nil {
		return nil, err
	}
	return threads, nil
}

// FramesOf returns the frames of one thread, deepest first.
func (r *ThreadRepository) FramesOf(ctx context.Context, processID, threadID int64) ([]models.StackFrame, error) {
	frames := []models.StackFrame{}
	query := `
		SELECT id, process_id, thread_id, depth, class_name, method_name,
			file_name, line_number, is_native, timestamp
		FROM thread_stacks
		WHERE process_id = $1 AND thread_id = $2
		ORDER BY depth DESC, id`

	if err := r.db.SelectContext(ctx, &frames, query, processID, threadID); err != nil {
		return nil, err
	}
	return frames, nil
}

// ReplaceSnapshot swaps the stored snapshot of a process in one transaction.
func (r *ThreadRepository) ReplaceSnapshot(ctx context.Context, processID int64, threads []models.ThreadInfo, frames []models.StackFrame) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM thread_stacks WHERE process_id = $1`, processID); err != nil {
		return fmt.Errorf("failed to clear frames: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM thread_infos WHERE process_id = $1`, processID); err != nil {
		return fmt.Errorf("failed to clear threads: %w", err)
	}

	if len(threads) > 0 {
		query := `
			INSERT INTO thread_infos
				(process_id, thread_id, thread_name, state, priority, daemon,
				 cpu_time_ms, blocked_time_ms, wait_time_ms, timestamp)
			VALUES
				(:process_id, :thread_id, :thread_name, :state, :priority, :daemon,
				 :cpu_time_ms, :blocked_time_ms, :wait_time_ms, :timestamp)`
		if err := namedExecChunks(ctx, tx, query, threads); err != nil {
			return fmt.Errorf("failed to insert threads: %w", err)
		}
	}

	if len(frames) > 0 {
		query := `
			INSERT INTO thread_stacks
				(process_id, thread_id, depth, class_name, method_name,
				 file_name, line_number, is_native, timestamp)
			VALUES
				(:process_id, :thread_id, :depth, :class_name, :method_name,
				 :file_name, :line_number, :is_native, :timestamp)`
		if err := namedExecChunks(ctx, tx, query, frames); err != nil {
			return fmt.Errorf("failed to insert frames: %w", err)
		}
	}

	return tx.Commit()
}
