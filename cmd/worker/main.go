package main

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mavedb/mavedb-core/internal/config"
	"github.com/mavedb/mavedb-core/internal/database"
	"github.com/mavedb/mavedb-core/internal/domain"
	"github.com/mavedb/mavedb-core/internal/jobs"
	"github.com/mavedb/mavedb-core/internal/jobs/enrichment"
	"github.com/mavedb/mavedb-core/internal/jobs/variantjobs"
	"github.com/mavedb/mavedb-core/internal/store"
)

// main runs the worker process spec §4.F/§5 describes: a parallel worker
// pulling JobRun ids off the Redis-backed queue, running each through the
// managed-job/managed-pipeline lifecycle, plus two lower-frequency ticks:
// variant_mapper_manager draining the mapping queue (called directly), and
// the cron-like external enrichment jobs, entered through RunGuaranteed
// since they are not dequeued JobRuns (spec §4.F "the only safe entrypoint
// for cron-like jobs").
func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	configManager, err := config.NewManager()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	if err := configManager.Validate(); err != nil {
		log.WithError(err).Fatal("configuration validation failed")
	}
	log.SetLevel(parseLevel(configManager.Config().Logging.Level))
	cfg := configManager.Config()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(ctx, cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.WithError(err).Fatal("invalid redis.url configuration")
	}
	redisOpts.PoolSize = cfg.Redis.PoolSize
	redisOpts.DialTimeout = cfg.Redis.DialTimeout
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	dataStore := store.New(db.Pool, log)
	queueName := cfg.Redis.QueueName
	if queueName == "" {
		queueName = "mavedb:jobs"
	}
	queue := jobs.NewRedisQueue(redisClient, queueName)
	mappingQueue := jobs.NewMappingQueue(redisClient, queueName+":mapping")

	jobsManager := jobs.NewManager(dataStore, queue, log)
	annotations := jobs.NewAnnotationManager(dataStore)

	deps := variantjobs.Deps{Store: dataStore, MappingQueue: mappingQueue}
	mapper := variantjobs.NewHTTPMapper(cfg.ExternalAPI.VRS)
	mapperManager := variantjobs.NewVariantMapperManager(mappingQueue, jobsManager, 4, log)

	clinGen := enrichment.NewClinGenClient(cfg.ExternalAPI.ClinGen)
	clinVarArchive := enrichment.NewClinVarArchiveClient(cfg.ExternalAPI.ClinVar)
	gnomad := enrichment.NewGnomADClient(cfg.ExternalAPI.GnomAD)

	w := &worker{
		store:          dataStore,
		queue:          queue,
		manager:        jobsManager,
		deps:           deps,
		mapper:         mapper,
		annotations:    annotations,
		clinGen:        clinGen,
		clinVarArchive: clinVarArchive,
		gnomad:         gnomad,
		log:            log,
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); w.runJobLoop(ctx) }()
	go func() { defer wg.Done(); w.runMappingTicker(ctx, mapperManager) }()
	go func() { defer wg.Done(); w.runEnrichmentTicker(ctx) }()

	log.Info("worker started")
	<-ctx.Done()
	log.Info("shutdown signal received, draining in-flight jobs")
	wg.Wait()
	log.Info("worker stopped")
}

type worker struct {
	store          *store.Store
	queue          *jobs.RedisQueue
	manager        *jobs.Manager
	deps           variantjobs.Deps
	mapper         variantjobs.Mapper
	annotations    *jobs.AnnotationManager
	clinGen        enrichment.ClinGenClient
	clinVarArchive enrichment.ClinVarArchiveClient
	gnomad         enrichment.GnomADClient
	log            *logrus.Logger
}

// runJobLoop is the main worker loop: block on the queue, dispatch by
// job_function, run through the appropriate managed lifecycle, and ack.
// A dequeue timeout lets the loop notice ctx cancellation between jobs
// (spec §5 "a timeout at the worker level aborts the job's awaited call").
func (w *worker) runJobLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		jobRunID, err := w.queue.Dequeue(ctx, 5*time.Second)
		if err != nil {
			if err != jobs.ErrQueueEmpty {
				w.log.WithError(err).Error("dequeue failed")
				time.Sleep(time.Second)
			}
			continue
		}
		w.runOne(ctx, jobRunID)
	}
}

func (w *worker) runOne(ctx context.Context, jobRunID int64) {
	defer func() {
		if err := w.queue.Ack(ctx, jobRunID); err != nil {
			w.log.WithError(err).WithField("job_run_id", jobRunID).Error("failed to ack job run")
		}
	}()

	job, err := w.store.GetJobRun(ctx, jobRunID)
	if err != nil {
		w.log.WithError(err).WithField("job_run_id", jobRunID).Error("failed to load job run")
		return
	}

	fn, err := w.dispatch(job)
	if err != nil {
		w.log.WithError(err).WithField("job_function", job.JobFunction).Error("no handler registered for job function")
		return
	}

	if job.PipelineID != nil {
		if _, err := w.manager.RunPipelineStep(ctx, jobRunID, *job.PipelineID, fn); err != nil {
			w.log.WithError(err).WithField("job_run_id", jobRunID).Error("pipeline step run failed")
		}
		return
	}
	if _, err := w.manager.RunManagedJob(ctx, jobRunID, fn); err != nil {
		w.log.WithError(err).WithField("job_run_id", jobRunID).Error("job run failed")
	}
}

// dispatch maps the closed job_function enum (spec §4.G/§4.H) to its
// implementation. Typed switch rather than reflection, per spec §9 "small
// closed enumerations ... typed dispatch."
func (w *worker) dispatch(job *domain.JobRun) (jobs.JobFunc, error) {
	switch job.JobFunction {
	case domain.JobCreateVariantsForScoreSet:
		return variantjobs.CreateVariantsForScoreSet(w.deps), nil
	case domain.JobMapVariantsForScoreSet:
		userID, _ := int64Param(job.JobParams, "user_id")
		return variantjobs.MapVariantsForScoreSet(w.deps, w.mapper, w.annotations, job.ID, userID), nil
	case domain.JobRefreshClinVarControls:
		return enrichment.RefreshClinVarControls(w.store, w.clinGen, w.clinVarArchive, w.annotations), nil
	case domain.JobLinkGnomADVariants:
		return enrichment.LinkGnomADVariants(w.store, w.gnomad, w.annotations), nil
	default:
		return nil, fmt.Errorf("unknown job function %q", job.JobFunction)
	}
}

// runMappingTicker drains the mapping queue on a fixed interval, dispatching
// map_variants_for_score_set JobRuns subject to mapperManager's parallelism
// cap (spec §4.G variant_mapper_manager).
func (w *worker) runMappingTicker(ctx context.Context, mapperManager *variantjobs.VariantMapperManager) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := mapperManager.Tick(ctx); err != nil {
				w.log.WithError(err).Error("variant mapper manager tick failed")
			}
		}
	}
}

// runEnrichmentTicker is the cron-like entrypoint for component H's jobs
// (spec §4.F "guaranteed job record ... the only safe entrypoint for
// cron-like jobs"). It runs link_gnomad_variants on a short daily cadence
// and refresh_clinvar_controls once a month against the prior month's
// archive, both through RunGuaranteed so each run owns its own JobRun.
func (w *worker) runEnrichmentTicker(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runEnrichmentOnce(ctx)
		}
	}
}

func (w *worker) runEnrichmentOnce(ctx context.Context) {
	if _, err := w.manager.RunGuaranteed(ctx, "enrichment", domain.JobLinkGnomADVariants, nil, 1, nil,
		enrichment.LinkGnomADVariants(w.store, w.gnomad, w.annotations)); err != nil {
		w.log.WithError(err).Error("link_gnomad_variants run failed")
	}

	now := time.Now().UTC()
	if now.Day() != 1 {
		return
	}
	year, month := now.Year(), int(now.Month())-1
	if month == 0 {
		year--
		month = 12
	}
	params := map[string]any{"year": year, "month": month}
	if _, err := w.manager.RunGuaranteed(ctx, "enrichment", domain.JobRefreshClinVarControls, params, 1, nil,
		enrichment.RefreshClinVarControls(w.store, w.clinGen, w.clinVarArchive, w.annotations)); err != nil {
		w.log.WithError(err).Error("refresh_clinvar_controls run failed")
	}
}

func int64Param(params map[string]any, key string) (int64, error) {
	v, ok := params[key]
	if !ok {
		return 0, fmt.Errorf("missing required param %q", key)
	}
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("param %q is not an integer: %w", key, err)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("param %q has unsupported type %T", key, v)
	}
}

func parseLevel(level string) logrus.Level {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return l
}
