package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/finsight/fraudlens/internal/dto"
	"github.com/finsight/fraudlens/internal/models"
	"github.com/finsight/fraudlens/internal/repository"
	appErrors "github.com/finsight/fraudlens/pkg/errors"
)

type reviewRepository interface {
	Create(ctx context.Context, record *models.ReviewRecord) error
	List(ctx context.Context, status *models.ReviewStatus) ([]models.ReviewRecord, error)
	FindByID(ctx context.Context, id string) (*models.ReviewRecord, error)
	Update(ctx context.Context, record *models.ReviewRecord) error
}

type reviewNotifier interface {
	Dispatch(review models.ReviewRecord) error
}

type reviewAuditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type reviewMetrics interface {
	ReviewCreated(reason string, priority int)
	ReviewDecided(status string)
}

// CreateReviewInput carries everything frozen into a new review record.
type CreateReviewInput struct {
	TransactionID string
	RiskScore     float64
	Reason        models.ReasonCode
	Transaction   models.Transaction
	Analysis      models.AnalysisResult
}

// ReviewService owns the review record lifecycle.
type ReviewService struct {
	repo      reviewRepository
	notifier  reviewNotifier
	audit     reviewAuditLogger
	metrics   reviewMetrics
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReviewService constructs a ReviewService. Notifier, audit and metrics
// are optional collaborators.
func NewReviewService(repo reviewRepository, notifier reviewNotifier, audit reviewAuditLogger, metrics reviewMetrics, validate *validator.Validate, logger *zap.Logger) *ReviewService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{
		repo:      repo,
		notifier:  notifier,
		audit:     audit,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Create stores a new pending review and dispatches a reviewer notification.
// Notification delivery is best-effort and never fails creation.
func (s *ReviewService) Create(ctx context.Context, input CreateReviewInput) (*models.ReviewRecord, error) {
	now := time.Now().UTC()
	record := &models.ReviewRecord{
		ID:                 "rev_" + uuid.NewString(),
		TransactionID:      input.TransactionID,
		Status:             models.ReviewStatusPending,
		RiskScore:          input.RiskScore,
		Reason:             input.Reason,
		Priority:           ComputePriority(input.RiskScore, input.Reason),
		TransactionDetails: input.Transaction,
		AnalysisResult:     input.Analysis,
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create review record")
	}

	if s.notifier != nil {
		if err := s.notifier.Dispatch(*record.Clone()); err != nil {
			s.logger.Warn("failed to dispatch reviewer notification",
				zap.String("review_id", record.ID), zap.Error(err))
		}
	}
	if s.metrics != nil {
		s.metrics.ReviewCreated(string(record.Reason), record.Priority)
	}

	s.logger.Info("transaction flagged for review",
		zap.String("review_id", record.ID),
		zap.String("transaction_id", record.TransactionID),
		zap.String("reason", string(record.Reason)),
		zap.Int("priority", record.Priority))

	return record, nil
}

// List returns reviews in insertion order, optionally filtered by status.
func (s *ReviewService) List(ctx context.Context, statusFilter string) ([]models.ReviewRecord, error) {
	var status *models.ReviewStatus
	if statusFilter != "" {
		candidate := models.ReviewStatus(statusFilter)
		if !candidate.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid status filter")
		}
		status = &candidate
	}

	records, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch reviews")
	}
	return records, nil
}

// Get fetches a single review by id.
func (s *ReviewService) Get(ctx context.Context, id string) (*models.ReviewRecord, error) {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Review not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch review")
	}
	return record, nil
}

// Decide applies a reviewer decision. Re-deciding an already-decided review
// overwrites the previous decision; the overwrite is logged and bumps the
// record version.
func (s *ReviewService) Decide(ctx context.Context, id string, req dto.DecisionRequest, actor *models.JWTClaims) (*models.ReviewRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}
	status := models.ReviewStatus(req.Status)
	if !status.Terminal() {
		return nil, appErrors.Clone(appErrors.ErrValidation, `invalid status. Must be "approved" or "rejected"`)
	}

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Review not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch review")
	}

	previous := record.Decision
	if previous != nil {
		s.logger.Warn("overwriting existing review decision",
			zap.String("review_id", record.ID),
			zap.String("previous_status", string(previous.Status)),
			zap.String("new_status", string(status)))
	}

	now := time.Now().UTC()
	record.Status = status
	record.Decision = &models.ReviewDecision{
		Status:     status,
		ReviewerID: req.ReviewerID,
		Comments:   req.Comments,
		ReviewedAt: now,
	}
	record.Version++
	record.UpdatedAt = now

	if err := s.repo.Update(ctx, record); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Review not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to process review decision")
	}

	s.emitDecisionAudit(ctx, actor, record, previous)
	if s.metrics != nil {
		s.metrics.ReviewDecided(string(status))
	}

	return record, nil
}

func (s *ReviewService) emitDecisionAudit(ctx context.Context, actor *models.JWTClaims, record *models.ReviewRecord, previous *models.ReviewDecision) {
	if s.audit == nil {
		return
	}
	var oldValues []byte
	if previous != nil {
		oldValues, _ = json.Marshal(previous)
	}
	newValues, _ := json.Marshal(record.Decision)

	var userID *string
	if actor != nil && actor.UserID != "" {
		userID = &actor.UserID
	}
	log := &models.AuditLog{
		UserID:     userID,
		Action:     models.AuditActionReviewDecision,
		Resource:   "review",
		ResourceID: &record.ID,
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  "system",
		UserAgent:  "review-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record decision audit log", zap.Error(err))
	}
}
