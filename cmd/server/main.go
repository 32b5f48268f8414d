package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/mavedb/mavedb-core/internal/config"
	"github.com/mavedb/mavedb-core/internal/database"
	"github.com/mavedb/mavedb-core/internal/jobs"
	"github.com/mavedb/mavedb-core/internal/middleware"
	"github.com/mavedb/mavedb-core/internal/store"
)

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewConnection(ctx, *configManager.Database(), log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	dataStore := store.New(db.Pool, log)

	// The server never runs jobs itself (that's cmd/worker), so it has no
	// Queue to re-enqueue retries on — it only needs the Manager's
	// Broadcaster, to fan GetJobRun's progress out over the optional
	// websocket stream below.
	jobManager := jobs.NewManager(dataStore, nil, log)

	router := newRouter(dataStore, jobManager, log)

	cfg := configManager.Server()
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("starting http server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received, draining in-flight requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("server stopped")
}

// newRouter wires the seam spec §6 needs exposed: liveness/readiness plus
// the handful of routes that invoke core operations. Full request/response
// bodies are out of scope per spec.md's non-goals; this exists to show
// where the core's components attach to HTTP, not to reimplement the API.
func newRouter(db *store.Store, jm *jobs.Manager, log *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CorrelationID())
	r.Use(middleware.CaptureURN())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.AuditLogger())
	r.Use(middleware.RequestTimeout(30 * time.Second))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		scoreSets := v1.Group("/score-sets")
		scoreSets.GET("/:urn", func(c *gin.Context) { getScoreSet(c, db) })

		jobRuns := v1.Group("/job-runs")
		jobRuns.GET("/:id/progress/stream", func(c *gin.Context) { streamJobProgress(c, jm, log) })
	}

	return r
}

func getScoreSet(c *gin.Context, db *store.Store) {
	urn := c.Param("urn")
	scoreSet, err := db.GetScoreSetByURN(c.Request.Context(), urn)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, scoreSet)
}

var progressUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Score-set job progress carries no sensitive payload beyond counters
	// and a status message; this stream doesn't need the same origin
	// lockdown SecurityHeaders' CSP applies to page content.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamJobProgress upgrades to a websocket and relays every
// JobManager.UpdateProgress fan-out for the given job run until the client
// disconnects — an alternative to polling GetJobRun for callers that want to
// watch a long-running job (spec §4.F's optional progress-stream transport).
func streamJobProgress(c *gin.Context, jm *jobs.Manager, log *logrus.Logger) {
	jobRunID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job run id"})
		return
	}

	conn, err := progressUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("progress stream upgrade failed")
		return
	}
	defer conn.Close()

	events, cancel := jm.Broadcaster.Subscribe(jobRunID)
	defer cancel()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
	}
}

func parseLevel(level string) logrus.Level {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return l
}
