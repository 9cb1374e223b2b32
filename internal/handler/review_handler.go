package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finsight/fraudlens/internal/dto"
	"github.com/finsight/fraudlens/internal/models"
	appErrors "github.com/finsight/fraudlens/pkg/errors"
	"github.com/finsight/fraudlens/pkg/response"
)

type reviewManager interface {
	List(ctx context.Context, statusFilter string) ([]models.ReviewRecord, error)
	Get(ctx context.Context, id string) (*models.ReviewRecord, error)
	Decide(ctx context.Context, id string, req dto.DecisionRequest, actor *models.JWTClaims) (*models.ReviewRecord, error)
}

// ReviewHandler exposes the review queue endpoints.
type ReviewHandler struct {
	reviews reviewManager
}

// NewReviewHandler wires the handler with its service dependency.
func NewReviewHandler(reviews reviewManager) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// List godoc
// @Summary List review records
// @Description Returns reviews in creation order, optionally filtered by status.
// @Tags reviews
// @Produce json
// @Param status query string false "Filter by status" Enums(pending, approved, rejected)
// @Success 200 {object} response.Envelope{data=[]models.ReviewRecord}
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /reviews [get]
func (h *ReviewHandler) List(c *gin.Context) {
	var query dto.ReviewListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}

	records, err := h.reviews.List(c.Request.Context(), query.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, records, map[string]interface{}{
		"count": len(records),
	})
}

// Get godoc
// @Summary Fetch a single review record
// @Tags reviews
// @Produce json
// @Param id path string true "Review ID"
// @Success 200 {object} response.Envelope{data=models.ReviewRecord}
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /reviews/{id} [get]
func (h *ReviewHandler) Get(c *gin.Context) {
	record, err := h.reviews.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Decide godoc
// @Summary Submit a reviewer decision
// @Description Approves or rejects a pending review. Re-deciding overwrites
// @Description the previous decision.
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path string true "Review ID"
// @Param request body dto.DecisionRequest true "Decision"
// @Success 200 {object} response.Envelope{data=models.ReviewRecord}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /reviews/{id}/decision [post]
func (h *ReviewHandler) Decide(c *gin.Context) {
	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload"))
		return
	}

	record, err := h.reviews.Decide(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}
