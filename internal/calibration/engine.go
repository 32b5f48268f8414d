package calibration

import (
	"github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/mavedb/mavedb-core/internal/domain"
)

// Engine is the score calibration engine: it validates calibrations and
// serves per-variant classification lookups, caching the parsed interval
// structure of range-based calibrations so repeated score lookups against
// the same score set don't re-sort its ranges every call.
//
// The logger-threaded-through-the-constructor shape follows
// ACMGAMPRuleEngine; the bounded LRU cache replaces that engine's lack of
// one (it recomputed everything per call) with hashicorp/golang-lru/v2.
type Engine struct {
	logger *logrus.Logger
	cache  *lru.Cache[int64, *parsedRanges]
}

// NewEngine creates an Engine with an LRU cache holding up to cacheSize
// parsed range sets, one entry per score set id.
func NewEngine(logger *logrus.Logger, cacheSize int) (*Engine, error) {
	cache, err := lru.New[int64, *parsedRanges](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Engine{logger: logger, cache: cache}, nil
}

// Validate checks a calibration's invariants (spec §3/§4.C).
func (e *Engine) Validate(c *domain.ScoreCalibration) []domain.RowError {
	return Validate(c)
}

// Classify looks up the FunctionalClassification a variant falls into for
// calibration c, using the class-based or range-based path as appropriate.
// For range-based calibrations, the parsed interval structure is served
// from cache when available, invalidated by the caller via Invalidate
// whenever the calibration's classifications change.
func (e *Engine) Classify(c *domain.ScoreCalibration, v *domain.Variant, variantClasses map[string][]string) (domain.FunctionalClassification, bool) {
	if c.IsClassBased() {
		return ClassifyVariant(c, v, variantClasses)
	}

	parsed, ok := e.cache.Get(c.ScoreSetID)
	if !ok {
		parsed = parseRanges(c)
		e.cache.Add(c.ScoreSetID, parsed)
		e.logger.WithFields(logrus.Fields{
			"score_set_id": c.ScoreSetID,
			"range_count":  len(parsed.classifications),
		}).Debug("parsed and cached calibration ranges")
	}

	score, ok := v.Data.Score()
	if !ok {
		return domain.FunctionalClassification{}, false
	}
	return parsed.find(score)
}

// Invalidate evicts the cached parsed ranges for a score set, to be called
// whenever its calibration's classifications are created/updated/deleted.
func (e *Engine) Invalidate(scoreSetID int64) {
	e.cache.Remove(scoreSetID)
}
