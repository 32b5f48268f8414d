// Package jobs implements the durable job queue and pipeline coordinator
// of spec §4.F: the managed-job lifecycle decorator, the managed-pipeline
// decorator layered on top of it, the guaranteed-job-run-record entrypoint
// for cron-like jobs, and the append-only annotation status manager.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrQueueEmpty is returned by Dequeue when no job arrives before timeout.
var ErrQueueEmpty = errors.New("queue: no job available")

// Queue is the durable job queue component F's workers pull from. A job
// run id is the only payload — the JobRun row itself carries job_function
// and job_params, so the queue never needs to serialize more than an id
// (spec §4.F "Scheduling model": "Parallel worker processes pull jobs from
// a Redis-backed queue").
type Queue interface {
	Enqueue(ctx context.Context, jobRunID int64) error
	Dequeue(ctx context.Context, timeout time.Duration) (int64, error)
}

// RedisQueue is a Redis list-backed Queue, following the teacher's use of
// go-redis/v9 for its cache layer generalized here to a reliable queue:
// Dequeue atomically moves a job from the pending list to a processing
// list via BLMOVE so a worker crash mid-job leaves the id recoverable
// rather than silently dropped.
type RedisQueue struct {
	client     *redis.Client
	pendingKey string
	workingKey string
}

// NewRedisQueue builds a RedisQueue over an already-connected client. name
// is namespaced into two list keys: "<name>" (pending) and
// "<name>:processing" (in-flight).
func NewRedisQueue(client *redis.Client, name string) *RedisQueue {
	return &RedisQueue{client: client, pendingKey: name, workingKey: name + ":processing"}
}

// Enqueue pushes jobRunID onto the pending list.
func (q *RedisQueue) Enqueue(ctx context.Context, jobRunID int64) error {
	if err := q.client.LPush(ctx, q.pendingKey, jobRunID).Err(); err != nil {
		return fmt.Errorf("enqueuing job run %d: %w", jobRunID, err)
	}
	return nil
}

// Dequeue blocks up to timeout for a job run id to arrive, moving it into
// the processing list. Callers that finish handling the id should call
// Ack to remove it from the processing list; an unacked id remains
// recoverable by a future requeue sweep.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (int64, error) {
	val, err := q.client.BLMove(ctx, q.pendingKey, q.workingKey, "right", "left", timeout).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrQueueEmpty
		}
		return 0, fmt.Errorf("dequeuing job run: %w", err)
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing dequeued job run id %q: %w", val, err)
	}
	return id, nil
}

// Ack removes jobRunID from the processing list once its job has reached
// a terminal or re-enqueued state.
func (q *RedisQueue) Ack(ctx context.Context, jobRunID int64) error {
	if err := q.client.LRem(ctx, q.workingKey, 1, jobRunID).Err(); err != nil {
		return fmt.Errorf("acking job run %d: %w", jobRunID, err)
	}
	return nil
}

// MappingQueue is the score-set-keyed queue component G's
// variant_mapper_manager reads from (spec §4.G "Push score_set_id to the
// mapping queue"), kept distinct from the job-run queue since its payload
// is a score set id rather than a job run id and it is drained by a
// concurrency-gated manager rather than a plain worker loop.
type MappingQueue struct {
	client *redis.Client
	key    string
}

func NewMappingQueue(client *redis.Client, name string) *MappingQueue {
	return &MappingQueue{client: client, key: name}
}

func (q *MappingQueue) Push(ctx context.Context, scoreSetID int64) error {
	if err := q.client.LPush(ctx, q.key, scoreSetID).Err(); err != nil {
		return fmt.Errorf("pushing score set %d to mapping queue: %w", scoreSetID, err)
	}
	return nil
}

// Pop removes and returns up to max score set ids currently queued,
// non-blocking. variant_mapper_manager calls this once per tick subject to
// its parallelism cap (spec §4.G).
func (q *MappingQueue) Pop(ctx context.Context, max int) ([]int64, error) {
	var ids []int64
	for len(ids) < max {
		val, err := q.client.RPop(ctx, q.key).Result()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return ids, fmt.Errorf("popping mapping queue: %w", err)
		}
		id, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return ids, fmt.Errorf("parsing mapping queue entry %q: %w", val, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
