package variantjobs

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mavedb/mavedb-core/internal/domain"
	"github.com/mavedb/mavedb-core/internal/jobs"
)

// VariantMapperManager implements spec §4.G's variant_mapper_manager: a
// concurrency gate reading the mapping queue and enqueuing per-score-set
// mapping jobs subject to a parallelism cap. A single worker default is
// spec-acceptable; Parallelism defaults to 1 when left at zero.
type VariantMapperManager struct {
	Queue       *jobs.MappingQueue
	JobsManager *jobs.Manager
	Parallelism int
	log         *logrus.Logger
}

func NewVariantMapperManager(queue *jobs.MappingQueue, jm *jobs.Manager, parallelism int, log *logrus.Logger) *VariantMapperManager {
	if parallelism <= 0 {
		parallelism = 1
	}
	return &VariantMapperManager{Queue: queue, JobsManager: jm, Parallelism: parallelism, log: log}
}

// Tick pops up to Parallelism score set ids off the mapping queue and
// creates+enqueues a map_variants_for_score_set JobRun for each, returning
// how many it dispatched.
func (m *VariantMapperManager) Tick(ctx context.Context) (int, error) {
	ids, err := m.Queue.Pop(ctx, m.Parallelism)
	if err != nil {
		return 0, fmt.Errorf("popping mapping queue: %w", err)
	}

	for _, scoreSetID := range ids {
		job := &domain.JobRun{
			JobType:     "variant_mapping",
			JobFunction: domain.JobMapVariantsForScoreSet,
			Status:      domain.JobPending,
			JobParams:   map[string]any{"score_set_id": scoreSetID},
			MaxRetries:  1,
		}
		if err := m.JobsManager.Store.CreateJobRun(ctx, job); err != nil {
			return len(ids), fmt.Errorf("creating mapping job run for score set %d: %w", scoreSetID, err)
		}
		if m.JobsManager.Queue != nil {
			if err := m.JobsManager.Queue.Enqueue(ctx, job.ID); err != nil {
				return len(ids), fmt.Errorf("enqueuing mapping job run %d: %w", job.ID, err)
			}
		}
		m.log.WithFields(logrus.Fields{"score_set_id": scoreSetID, "job_run_id": job.ID}).Info("dispatched variant mapping job")
	}
	return len(ids), nil
}
