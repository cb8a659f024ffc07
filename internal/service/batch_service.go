package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"blogstats/internal/config"
	"blogstats/internal/metrics"
	"blogstats/internal/models"
	"blogstats/internal/repository"
)

// BatchResult summarizes one statistics write-back run.
type BatchResult struct {
	RunID     string        `json:"run_id"`
	Processed int           `json:"processed"`
	Updated   int           `json:"updated"`
	Failed    int           `json:"failed"`
	Failures  []PostFailure `json:"failures,omitempty"`
}

type PostFailure struct {
	PostID int64  `json:"post_id"`
	Err    error  `json:"-"`
	Reason string `json:"reason"`
}

type BatchService interface {
	// UpdatePostStatistics recomputes and stores the derived counters of every post. A post that
	// fails is recorded in the result and does not stop the run.
	UpdatePostStatistics(ctx context.Context) (*BatchResult, error)
}

type batchService struct {
	postRepo  repository.PostRepository
	statsRepo repository.StatsRepository
	validate  *validator.Validate
	batchSize int
}

func NewBatchService(postRepo repository.PostRepository, statsRepo repository.StatsRepository, cfg *config.Config) BatchService {
	return &batchService{
		postRepo:  postRepo,
		statsRepo: statsRepo,
		validate:  validator.New(),
		batchSize: cfg.Batch.Size,
	}
}

func (s *batchService) UpdatePostStatistics(ctx context.Context) (*BatchResult, error) {
	defer metrics.ObserveSince("update_post_statistics", time.Now())

	result := &BatchResult{RunID: uuid.NewString()}
	logger := log.WithField("run_id", result.RunID)
	logger.Info("post statistics update started")

	var afterID int64
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		posts, err := s.postRepo.Page(ctx, afterID, s.batchSize)
		if err != nil {
			return result, fmt.Errorf("failed to load posts after %d: %w", afterID, err)
		}
		if len(posts) == 0 {
			break
		}

		ids := make([]int64, 0, len(posts))
		for _, p := range posts {
			ids = append(ids, p.ID)
		}

		stats, err := s.statsRepo.PostStatistics(ctx, ids)
		if err != nil {
			return result, fmt.Errorf("failed to compute post statistics: %w", err)
		}

		for _, st := range stats {
			result.Processed++
			if err := s.updateOne(ctx, st); err != nil {
				if ctx.Err() != nil {
					return result, ctx.Err()
				}
				result.Failed++
				result.Failures = append(result.Failures, PostFailure{PostID: st.PostID, Err: err, Reason: err.Error()})
				metrics.PostStatisticsUpdates.WithLabelValues("failed").Inc()
				logger.WithError(err).WithField("post_id", st.PostID).Warn("post statistics update failed")
				continue
			}
			result.Updated++
			metrics.PostStatisticsUpdates.WithLabelValues("updated").Inc()
		}

		if len(posts) < s.batchSize {
			break
		}
		afterID = posts[len(posts)-1].ID
	}

	logger.WithFields(log.Fields{
		"processed": result.Processed,
		"updated":   result.Updated,
		"failed":    result.Failed,
	}).Info("post statistics update finished")

	return result, nil
}

func (s *batchService) updateOne(ctx context.Context, st models.PostStatistics) error {
	if err := s.validate.Struct(st); err != nil {
		return toValidationError(err)
	}
	return s.postRepo.UpdateStatistics(ctx, st)
}

func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &repository.ValidationError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("failed on '%s' rule", fe.Tag()),
			Err:     err,
		}
	}
	return &repository.ValidationError{Message: err.Error(), Err: err}
}
