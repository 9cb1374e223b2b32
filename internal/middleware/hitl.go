package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/finsight/fraudlens/internal/models"
	"github.com/finsight/fraudlens/internal/service"
)

type reviewCreator interface {
	Create(ctx context.Context, input service.CreateReviewInput) (*models.ReviewRecord, error)
}

type triggerEvaluator interface {
	ShouldRequireReview(tx models.Transaction, analysis models.AnalysisResult, now time.Time) bool
	ReviewReason(tx models.Transaction, analysis models.AnalysisResult, now time.Time) models.ReasonCode
}

type triggerMetrics interface {
	TriggerEvaluated(required bool)
}

// HITLConfig tunes the review interceptor.
type HITLConfig struct {
	// StoreTimeout bounds the review store call so a slow store cannot
	// stall the analysis response.
	StoreTimeout time.Duration
	// Clock supplies the evaluation time. Defaults to time.Now.
	Clock func() time.Time
}

type hitlBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *hitlBodyWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *hitlBodyWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

// HITL intercepts successful analysis responses and augments them with human
// review routing. Handlers stay unaware of the review subsystem: the
// middleware buffers the response, evaluates the escalation rules against the
// transaction and analysis, and merges review fields into the JSON body
// before it reaches the client.
func HITL(reviews reviewCreator, evaluator triggerEvaluator, metrics triggerMetrics, logger *zap.Logger, cfg HITLConfig) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = 2 * time.Second
	}

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(requestBody))
		}

		writer := &hitlBodyWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer
		c.Next()
		c.Writer = writer.ResponseWriter

		raw := writer.body.Bytes()
		flush := func(out []byte) {
			if _, err := c.Writer.Write(out); err != nil {
				logger.Warn("failed to write analysis response", zap.Error(err))
			}
		}

		status := c.Writer.Status()
		if status < 200 || status >= 300 || !isJSONResponse(c) {
			flush(raw)
			return
		}

		var payload map[string]interface{}
		if err := json.Unmarshal(raw, &payload); err != nil {
			flush(raw)
			return
		}
		if _, ok := payload["riskScore"]; !ok {
			flush(raw)
			return
		}

		var analysis models.AnalysisResult
		if err := json.Unmarshal(raw, &analysis); err != nil {
			flush(raw)
			return
		}

		var tx models.Transaction
		if len(requestBody) > 0 {
			// A malformed request body leaves the zero transaction; the
			// evaluator treats missing fields as non-triggering.
			_ = json.Unmarshal(requestBody, &tx)
		}

		now := cfg.Clock()
		required := evaluator.ShouldRequireReview(tx, analysis, now)
		if metrics != nil {
			metrics.TriggerEvaluated(required)
		}

		if !required {
			payload["requiresHumanReview"] = false
			payload["reviewStatus"] = "not_required"
			flush(mustMarshal(payload, raw))
			return
		}

		reason := evaluator.ReviewReason(tx, analysis, now)
		transactionID := tx.TransactionID
		if transactionID == "" {
			transactionID = analysis.TransactionID
		}
		// The review record must always link back to a transaction, so a
		// request without an id gets a generated one.
		if transactionID == "" {
			transactionID = "tx_" + uuid.NewString()
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.StoreTimeout)
		defer cancel()
		record, err := reviews.Create(ctx, service.CreateReviewInput{
			TransactionID: transactionID,
			RiskScore:     analysis.RiskScore,
			Reason:        reason,
			Transaction:   tx,
			Analysis:      analysis,
		})
		if err != nil {
			logger.Error("failed to create review record",
				zap.String("transaction_id", transactionID), zap.Error(err))
			payload["requiresHumanReview"] = true
			payload["reviewError"] = "Failed to create review record"
			flush(mustMarshal(payload, raw))
			return
		}

		payload["requiresHumanReview"] = true
		payload["reviewId"] = record.ID
		payload["reviewStatus"] = string(record.Status)
		payload["reviewReason"] = string(record.Reason)
		payload["reviewReasonDescription"] = service.ReasonDescription(record.Reason)
		payload["reviewedBy"] = nil
		payload["reviewedAt"] = nil
		payload["reviewComments"] = nil
		flush(mustMarshal(payload, raw))
	}
}

func isJSONResponse(c *gin.Context) bool {
	contentType := c.Writer.Header().Get("Content-Type")
	return strings.Contains(contentType, "application/json")
}

func mustMarshal(payload map[string]interface{}, fallback []byte) []byte {
	out, err := json.Marshal(payload)
	if err != nil {
		return fallback
	}
	return out
}
