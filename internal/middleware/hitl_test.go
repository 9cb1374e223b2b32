package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/fraudlens/internal/models"
	"github.com/finsight/fraudlens/internal/service"
)

var reviewClock = func() time.Time { return time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC) }

type reviewCreatorMock struct {
	created []service.CreateReviewInput
	err     error
}

func (m *reviewCreatorMock) Create(ctx context.Context, input service.CreateReviewInput) (*models.ReviewRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = append(m.created, input)
	return &models.ReviewRecord{
		ID:            "rev_test",
		TransactionID: input.TransactionID,
		Status:        models.ReviewStatusPending,
		RiskScore:     input.RiskScore,
		Reason:        input.Reason,
		Priority:      service.ComputePriority(input.RiskScore, input.Reason),
		Version:       1,
	}, nil
}

func newAnalyzeRouter(reviews *reviewCreatorMock, result gin.H, status int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	evaluator := service.NewTriggerEvaluator(service.DefaultTriggerThresholds())

	r := gin.New()
	r.POST("/analyze/transaction",
		HITL(reviews, evaluator, nil, nil, HITLConfig{Clock: reviewClock}),
		func(c *gin.Context) {
			c.JSON(status, result)
		})
	return r
}

func postTransaction(t *testing.T, r *gin.Engine, payload gin.H) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, "/analyze/transaction", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}

func TestHITLLowRiskPassesThrough(t *testing.T) {
	reviews := &reviewCreatorMock{}
	r := newAnalyzeRouter(reviews, gin.H{"riskScore": 25, "riskLevel": "Low"}, http.StatusOK)

	w := postTransaction(t, r, gin.H{
		"transactionId": "tx_1",
		"amount":        49.99,
		"merchant":      "Coffee Shop",
	})

	require.Equal(t, http.StatusOK, w.Code)
	payload := decodeBody(t, w)
	assert.Equal(t, false, payload["requiresHumanReview"])
	assert.Equal(t, "not_required", payload["reviewStatus"])
	assert.NotContains(t, payload, "reviewId")
	assert.Empty(t, reviews.created)
}

func TestHITLHighRiskCreatesReview(t *testing.T) {
	reviews := &reviewCreatorMock{}
	r := newAnalyzeRouter(reviews, gin.H{"riskScore": 85, "riskLevel": "High"}, http.StatusOK)

	w := postTransaction(t, r, gin.H{
		"transactionId": "tx_1",
		"amount":        250,
		"merchant":      "Test Merchant",
	})

	require.Equal(t, http.StatusOK, w.Code)
	payload := decodeBody(t, w)
	assert.Equal(t, true, payload["requiresHumanReview"])
	assert.Equal(t, "rev_test", payload["reviewId"])
	assert.Equal(t, "pending", payload["reviewStatus"])
	assert.Equal(t, "high_risk_score", payload["reviewReason"])
	assert.Equal(t, "High risk score (70-89)", payload["reviewReasonDescription"])

	// Decision fields are present as explicit nulls on a fresh review.
	for _, key := range []string{"reviewedBy", "reviewedAt", "reviewComments"} {
		value, ok := payload[key]
		require.True(t, ok, key)
		assert.Nil(t, value, key)
	}

	// The original analysis fields survive the merge.
	assert.Equal(t, 85.0, payload["riskScore"])
	assert.Equal(t, "High", payload["riskLevel"])

	require.Len(t, reviews.created, 1)
	assert.Equal(t, "tx_1", reviews.created[0].TransactionID)
	assert.Equal(t, models.ReasonHighRiskScore, reviews.created[0].Reason)
	assert.True(t, reviews.created[0].Transaction.Amount.Equal(decimal.NewFromInt(250)))
}

func TestHITLGeneratesTransactionIDWhenMissing(t *testing.T) {
	reviews := &reviewCreatorMock{}
	r := newAnalyzeRouter(reviews, gin.H{"riskScore": 85, "riskLevel": "High"}, http.StatusOK)

	w := postTransaction(t, r, gin.H{
		"amount":   250,
		"merchant": "Test Merchant",
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, reviews.created, 1)
	assert.NotEmpty(t, reviews.created[0].TransactionID)
	assert.True(t, strings.HasPrefix(reviews.created[0].TransactionID, "tx_"))
}

func TestHITLLargeAmountTriggersOnLowScore(t *testing.T) {
	reviews := &reviewCreatorMock{}
	r := newAnalyzeRouter(reviews, gin.H{"riskScore": 15, "riskLevel": "Low"}, http.StatusOK)

	w := postTransaction(t, r, gin.H{
		"transactionId": "tx_2",
		"amount":        12000,
		"merchant":      "Auction House",
	})

	payload := decodeBody(t, w)
	assert.Equal(t, true, payload["requiresHumanReview"])
	assert.Equal(t, "very_large_transaction", payload["reviewReason"])
}

func TestHITLStoreFailureDegradesGracefully(t *testing.T) {
	reviews := &reviewCreatorMock{err: errors.New("store offline")}
	r := newAnalyzeRouter(reviews, gin.H{"riskScore": 85, "riskLevel": "High"}, http.StatusOK)

	w := postTransaction(t, r, gin.H{
		"transactionId": "tx_1",
		"amount":        250,
		"merchant":      "Test Merchant",
	})

	// The analysis response still reaches the client.
	require.Equal(t, http.StatusOK, w.Code)
	payload := decodeBody(t, w)
	assert.Equal(t, true, payload["requiresHumanReview"])
	assert.Equal(t, "Failed to create review record", payload["reviewError"])
	assert.Equal(t, 85.0, payload["riskScore"])
	assert.NotContains(t, payload, "reviewId")
}

func TestHITLIgnoresErrorResponses(t *testing.T) {
	reviews := &reviewCreatorMock{}
	r := newAnalyzeRouter(reviews, gin.H{"error": "bad payload"}, http.StatusBadRequest)

	w := postTransaction(t, r, gin.H{"amount": 12000, "merchant": "Auction House"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	payload := decodeBody(t, w)
	assert.NotContains(t, payload, "requiresHumanReview")
	assert.Empty(t, reviews.created)
}

func TestHITLIgnoresResponsesWithoutRiskScore(t *testing.T) {
	reviews := &reviewCreatorMock{}
	r := newAnalyzeRouter(reviews, gin.H{"status": "ok"}, http.StatusOK)

	w := postTransaction(t, r, gin.H{"amount": 12000, "merchant": "Auction House"})

	require.Equal(t, http.StatusOK, w.Code)
	payload := decodeBody(t, w)
	assert.NotContains(t, payload, "requiresHumanReview")
	assert.Empty(t, reviews.created)
}

func TestHITLSkipsNonPostRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reviews := &reviewCreatorMock{}
	evaluator := service.NewTriggerEvaluator(service.DefaultTriggerThresholds())

	r := gin.New()
	r.GET("/analyze/status",
		HITL(reviews, evaluator, nil, nil, HITLConfig{Clock: reviewClock}),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"riskScore": 99})
		})

	req, _ := http.NewRequest(http.MethodGet, "/analyze/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	payload := decodeBody(t, w)
	assert.NotContains(t, payload, "requiresHumanReview")
	assert.Empty(t, reviews.created)
}
