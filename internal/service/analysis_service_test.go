package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/fraudlens/internal/models"
)

type analyzerMock struct {
	name   string
	result *models.AnalysisResult
	err    error
	calls  int
}

func (m *analyzerMock) Name() string { return m.name }

func (m *analyzerMock) AnalyzeTransaction(ctx context.Context, tx models.Transaction) (*models.AnalysisResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	result := *m.result
	return &result, nil
}

func TestAnalysisServiceNormalisesUnitScale(t *testing.T) {
	primary := &analyzerMock{name: "mock", result: &models.AnalysisResult{RiskScore: 0.85}}
	svc := NewAnalysisService(primary, nil, time.Second, nil)

	result, err := svc.Analyze(context.Background(), models.Transaction{TransactionID: "tx_1"})
	require.NoError(t, err)
	assert.Equal(t, 85.0, result.RiskScore)
	assert.Equal(t, "High", result.RiskLevel)
	assert.True(t, result.IsHighRisk)
	assert.Equal(t, "tx_1", result.TransactionID)
}

func TestAnalysisServiceClampsOutOfRangeScores(t *testing.T) {
	tests := []struct {
		name  string
		score float64
		want  float64
	}{
		{"negative clamps to zero", -5, 0},
		{"above hundred clamps", 140, 100},
		{"zero stays zero", 0, 0},
		{"exactly one becomes hundred", 1, 100},
		{"already percent scale untouched", 42, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := &analyzerMock{name: "mock", result: &models.AnalysisResult{RiskScore: tt.score}}
			svc := NewAnalysisService(primary, nil, time.Second, nil)

			result, err := svc.Analyze(context.Background(), models.Transaction{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.RiskScore)
		})
	}
}

func TestAnalysisServiceFallsBackWhenPrimaryFails(t *testing.T) {
	primary := &analyzerMock{name: "remote", err: errors.New("provider timeout")}
	fallback := &analyzerMock{name: "offline", result: &models.AnalysisResult{RiskScore: 30}}
	svc := NewAnalysisService(primary, fallback, time.Second, nil)

	result, err := svc.Analyze(context.Background(), models.Transaction{})
	require.NoError(t, err)
	assert.Equal(t, 30.0, result.RiskScore)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestAnalysisServiceFailsWhenAllAnalyzersFail(t *testing.T) {
	primary := &analyzerMock{name: "remote", err: errors.New("provider timeout")}
	fallback := &analyzerMock{name: "offline", err: errors.New("also broken")}
	svc := NewAnalysisService(primary, fallback, time.Second, nil)

	_, err := svc.Analyze(context.Background(), models.Transaction{})
	require.Error(t, err)
}

func TestOfflineAnalyzerIsDeterministic(t *testing.T) {
	clock := func() time.Time { return time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC) }
	analyzer := NewOfflineAnalyzer(clock)
	tx := models.Transaction{
		TransactionID: "tx_9",
		Amount:        decimal.NewFromInt(7500),
		Merchant:      "Offshore Casino",
		Location:      "Unknown",
	}

	first, err := analyzer.AnalyzeTransaction(context.Background(), tx)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := analyzer.AnalyzeTransaction(context.Background(), tx)
		require.NoError(t, err)
		assert.Equal(t, first.RiskScore, again.RiskScore)
		assert.Equal(t, first.Factors, again.Factors)
	}

	// 10 base + 20 amount + 35 keyword + 25 location.
	assert.Equal(t, 90.0, first.RiskScore)
	assert.Equal(t, "High", first.RiskLevel)
	assert.True(t, first.IsHighRisk)
	assert.Equal(t, "offline", first.Provider)
	require.NotNil(t, first.ConfidenceScore)
}

func TestOfflineAnalyzerScoresLowRiskTransaction(t *testing.T) {
	clock := func() time.Time { return time.Date(2025, 6, 15, 14, 0, 0, 0, time.UTC) }
	analyzer := NewOfflineAnalyzer(clock)

	result, err := analyzer.AnalyzeTransaction(context.Background(), models.Transaction{
		Amount:   decimal.NewFromInt(25),
		Merchant: "Coffee Shop",
		Location: "Seattle, WA",
	})
	require.NoError(t, err)
	assert.Equal(t, 10.0, result.RiskScore)
	assert.Equal(t, "Low", result.RiskLevel)
	assert.False(t, result.IsHighRisk)
	assert.Empty(t, result.Factors)
}

func TestOfflineAnalyzerFlagsUnusualHours(t *testing.T) {
	clock := func() time.Time { return time.Date(2025, 6, 15, 3, 0, 0, 0, time.UTC) }
	analyzer := NewOfflineAnalyzer(clock)

	result, err := analyzer.AnalyzeTransaction(context.Background(), models.Transaction{
		Amount:   decimal.NewFromInt(25),
		Merchant: "Diner",
	})
	require.NoError(t, err)
	assert.Equal(t, 20.0, result.RiskScore)
}
