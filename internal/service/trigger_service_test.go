package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/fraudlens/internal/models"
	"github.com/finsight/fraudlens/pkg/config"
)

var quietAfternoon = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

func floatPtr(v float64) *float64 { return &v }

func TestShouldRequireReviewHighRiskScore(t *testing.T) {
	e := NewTriggerEvaluator(DefaultTriggerThresholds())
	tx := models.Transaction{Amount: decimal.NewFromInt(100), Merchant: "Grocery Store"}

	assert.True(t, e.ShouldRequireReview(tx, models.AnalysisResult{RiskScore: 70}, quietAfternoon))
	assert.True(t, e.ShouldRequireReview(tx, models.AnalysisResult{RiskScore: 95}, quietAfternoon))
	assert.False(t, e.ShouldRequireReview(tx, models.AnalysisResult{RiskScore: 69.9}, quietAfternoon))
}

func TestShouldRequireReviewLargeAmount(t *testing.T) {
	e := NewTriggerEvaluator(DefaultTriggerThresholds())
	analysis := models.AnalysisResult{RiskScore: 10}

	large := models.Transaction{Amount: decimal.NewFromFloat(5000.01), Merchant: "Electronics"}
	assert.True(t, e.ShouldRequireReview(large, analysis, quietAfternoon))

	boundary := models.Transaction{Amount: decimal.NewFromInt(5000), Merchant: "Electronics"}
	assert.False(t, e.ShouldRequireReview(boundary, analysis, quietAfternoon))
}

func TestShouldRequireReviewLowConfidence(t *testing.T) {
	e := NewTriggerEvaluator(DefaultTriggerThresholds())
	tx := models.Transaction{Amount: decimal.NewFromInt(50), Merchant: "Coffee Shop"}

	assert.True(t, e.ShouldRequireReview(tx, models.AnalysisResult{RiskScore: 10, ConfidenceScore: floatPtr(0.6)}, quietAfternoon))
	assert.True(t, e.ShouldRequireReview(tx, models.AnalysisResult{RiskScore: 10, ConfidenceScore: floatPtr(0)}, quietAfternoon))
	assert.False(t, e.ShouldRequireReview(tx, models.AnalysisResult{RiskScore: 10, ConfidenceScore: floatPtr(0.7)}, quietAfternoon))
	assert.False(t, e.ShouldRequireReview(tx, models.AnalysisResult{RiskScore: 10}, quietAfternoon))
}

func TestShouldRequireReviewSuspiciousMerchant(t *testing.T) {
	e := NewTriggerEvaluator(DefaultTriggerThresholds())
	analysis := models.AnalysisResult{RiskScore: 10}

	tx := models.Transaction{Amount: decimal.NewFromInt(50), Merchant: "Lucky CASINO Palace"}
	assert.True(t, e.ShouldRequireReview(tx, analysis, quietAfternoon))

	tx = models.Transaction{Amount: decimal.NewFromInt(50), Merchant: "Book Store", Description: "offshore transfer"}
	assert.True(t, e.ShouldRequireReview(tx, analysis, quietAfternoon))

	tx = models.Transaction{Amount: decimal.NewFromInt(50), Merchant: "Book Store"}
	assert.False(t, e.ShouldRequireReview(tx, analysis, quietAfternoon))
}

func TestShouldRequireReviewUnusualTransaction(t *testing.T) {
	e := NewTriggerEvaluator(DefaultTriggerThresholds())
	analysis := models.AnalysisResult{RiskScore: 10}

	threeAM := time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC)
	tx := models.Transaction{Amount: decimal.NewFromInt(50), Merchant: "Diner", Timestamp: &threeAM}
	assert.True(t, e.ShouldRequireReview(tx, analysis, quietAfternoon))

	// Timestamp missing: the evaluation time decides the hour.
	tx = models.Transaction{Amount: decimal.NewFromInt(50), Merchant: "Diner"}
	assert.True(t, e.ShouldRequireReview(tx, analysis, threeAM))
	assert.False(t, e.ShouldRequireReview(tx, analysis, quietAfternoon))

	tx = models.Transaction{Amount: decimal.NewFromInt(50), Merchant: "Diner", Location: "Offshore Banking Zone"}
	assert.True(t, e.ShouldRequireReview(tx, analysis, quietAfternoon))
}

func TestShouldRequireReviewIsPure(t *testing.T) {
	e := NewTriggerEvaluator(DefaultTriggerThresholds())
	tx := models.Transaction{Amount: decimal.NewFromInt(6000), Merchant: "Jeweler"}
	analysis := models.AnalysisResult{RiskScore: 85, ConfidenceScore: floatPtr(0.9)}

	first := e.ShouldRequireReview(tx, analysis, quietAfternoon)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, e.ShouldRequireReview(tx, analysis, quietAfternoon))
		assert.Equal(t, e.ReviewReason(tx, analysis, quietAfternoon), e.ReviewReason(tx, analysis, quietAfternoon))
	}
}

func TestReviewReasonCascade(t *testing.T) {
	e := NewTriggerEvaluator(DefaultTriggerThresholds())
	small := models.Transaction{Amount: decimal.NewFromInt(50), Merchant: "Shop"}

	tests := []struct {
		name     string
		tx       models.Transaction
		analysis models.AnalysisResult
		want     models.ReasonCode
	}{
		{
			name:     "very high risk wins over everything",
			tx:       models.Transaction{Amount: decimal.NewFromInt(20000), Merchant: "Casino Royale"},
			analysis: models.AnalysisResult{RiskScore: 95, ConfidenceScore: floatPtr(0.2)},
			want:     models.ReasonVeryHighRiskScore,
		},
		{
			name:     "high risk before amount",
			tx:       models.Transaction{Amount: decimal.NewFromInt(20000), Merchant: "Shop"},
			analysis: models.AnalysisResult{RiskScore: 75},
			want:     models.ReasonHighRiskScore,
		},
		{
			name:     "very large amount",
			tx:       models.Transaction{Amount: decimal.NewFromFloat(10000.01), Merchant: "Shop"},
			analysis: models.AnalysisResult{RiskScore: 10},
			want:     models.ReasonVeryLargeTransaction,
		},
		{
			name:     "large amount",
			tx:       models.Transaction{Amount: decimal.NewFromInt(6000), Merchant: "Shop"},
			analysis: models.AnalysisResult{RiskScore: 10},
			want:     models.ReasonLargeTransaction,
		},
		{
			name:     "very low confidence",
			tx:       small,
			analysis: models.AnalysisResult{RiskScore: 10, ConfidenceScore: floatPtr(0.4)},
			want:     models.ReasonVeryLowConfidence,
		},
		{
			name:     "low confidence",
			tx:       small,
			analysis: models.AnalysisResult{RiskScore: 10, ConfidenceScore: floatPtr(0.65)},
			want:     models.ReasonLowConfidence,
		},
		{
			name:     "suspicious pattern",
			tx:       models.Transaction{Amount: decimal.NewFromInt(50), Merchant: "Gambling Den"},
			analysis: models.AnalysisResult{RiskScore: 10},
			want:     models.ReasonSuspiciousPattern,
		},
		{
			name:     "unusual location",
			tx:       models.Transaction{Amount: decimal.NewFromInt(50), Merchant: "Shop", Location: "Sanctioned Territory"},
			analysis: models.AnalysisResult{RiskScore: 10},
			want:     models.ReasonUnusualPattern,
		},
		{
			name:     "nothing matches falls back to manual review",
			tx:       small,
			analysis: models.AnalysisResult{RiskScore: 10},
			want:     models.ReasonManualReview,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.ReviewReason(tt.tx, tt.analysis, quietAfternoon))
		})
	}
}

func TestEscalationScenarioHighRiskCasino(t *testing.T) {
	e := NewTriggerEvaluator(DefaultTriggerThresholds())
	tx := models.Transaction{
		Amount:   decimal.NewFromInt(15000),
		Merchant: "Suspicious Casino",
		Location: "Offshore",
	}
	analysis := models.AnalysisResult{RiskScore: 92}

	require.True(t, e.ShouldRequireReview(tx, analysis, quietAfternoon))
	reason := e.ReviewReason(tx, analysis, quietAfternoon)
	assert.Equal(t, models.ReasonVeryHighRiskScore, reason)
	assert.Equal(t, 8, ComputePriority(analysis.RiskScore, reason))
}

func TestComputePriority(t *testing.T) {
	tests := []struct {
		name      string
		riskScore float64
		reason    models.ReasonCode
		want      int
	}{
		{"high risk score 85", 85, models.ReasonHighRiskScore, 8},
		{"moderate risk", 65, models.ReasonLargeTransaction, 6},
		{"low risk low confidence", 30, models.ReasonLowConfidence, 5},
		{"ai failure weight", 50, models.ReasonAIFailure, 7},
		{"emergency always max", 50, models.ReasonEmergency, 10},
		{"emergency with low score", 5, models.ReasonEmergency, 10},
		{"very high risk score", 95, models.ReasonVeryHighRiskScore, 8},
		{"weighted reason caps at ten", 95, models.ReasonAIFailure, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputePriority(tt.riskScore, tt.reason))
		})
	}
}

func TestThresholdsFromConfigFallsBackOnGarbage(t *testing.T) {
	thresholds := ThresholdsFromConfig(config.ReviewConfig{
		LargeAmount:     "not-a-number",
		VeryLargeAmount: "",
	})
	require.True(t, thresholds.LargeAmount.Equal(decimal.NewFromInt(5000)))
	require.True(t, thresholds.VeryLargeAmount.Equal(decimal.NewFromInt(10000)))
}

func TestReasonDescriptions(t *testing.T) {
	assert.Equal(t, "Very high risk score (90+)", ReasonDescription(models.ReasonVeryHighRiskScore))
	assert.Equal(t, "High risk score (70-89)", ReasonDescription(models.ReasonHighRiskScore))
	assert.Equal(t, "Review required", ReasonDescription(models.ReasonCode("bogus")))
}
