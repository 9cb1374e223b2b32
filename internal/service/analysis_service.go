package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/finsight/fraudlens/internal/models"
	appErrors "github.com/finsight/fraudlens/pkg/errors"
)

// Analyzer scores a transaction for fraud risk. Implementations are external
// collaborators; the service only consumes their results.
type Analyzer interface {
	Name() string
	AnalyzeTransaction(ctx context.Context, tx models.Transaction) (*models.AnalysisResult, error)
}

// AnalysisService orchestrates the analyzer boundary: primary provider with
// timeout, offline fallback, and risk score scale normalisation.
type AnalysisService struct {
	primary  Analyzer
	fallback Analyzer
	timeout  time.Duration
	logger   *zap.Logger
}

// NewAnalysisService constructs the service. Primary may be nil, in which
// case the fallback analyzer handles everything.
func NewAnalysisService(primary, fallback Analyzer, timeout time.Duration, logger *zap.Logger) *AnalysisService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{primary: primary, fallback: fallback, timeout: timeout, logger: logger}
}

// Analyze runs the primary analyzer and falls back to the offline analyzer on
// failure. Scores are normalised to the 0-100 scale before returning.
func (s *AnalysisService) Analyze(ctx context.Context, tx models.Transaction) (*models.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	analyzer := s.primary
	if analyzer == nil {
		analyzer = s.fallback
	}
	if analyzer == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "no analyzer configured")
	}

	result, err := analyzer.AnalyzeTransaction(ctx, tx)
	if err != nil && analyzer != s.fallback && s.fallback != nil {
		s.logger.Warn("primary analyzer failed, using offline fallback",
			zap.String("provider", analyzer.Name()), zap.Error(err))
		result, err = s.fallback.AnalyzeTransaction(ctx, tx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "transaction analysis failed")
	}

	normalizeAnalysis(result, tx)
	return result, nil
}

// normalizeAnalysis pins the result to the 0-100 risk scale and fills in the
// derived fields providers sometimes omit.
func normalizeAnalysis(result *models.AnalysisResult, tx models.Transaction) {
	if result.RiskScore > 0 && result.RiskScore <= 1 {
		result.RiskScore *= 100
	}
	if result.RiskScore < 0 {
		result.RiskScore = 0
	}
	if result.RiskScore > 100 {
		result.RiskScore = 100
	}
	if result.RiskLevel == "" {
		result.RiskLevel = riskLevel(result.RiskScore)
	}
	result.IsHighRisk = result.RiskScore >= 70
	if result.TransactionID == "" {
		result.TransactionID = tx.TransactionID
	}
}

func riskLevel(score float64) string {
	switch {
	case score >= 70:
		return "High"
	case score >= 40:
		return "Medium"
	default:
		return "Low"
	}
}

// OfflineAnalyzer is a deterministic rule-based scorer used when no external
// provider is configured or the provider fails mid-request.
type OfflineAnalyzer struct {
	now func() time.Time
}

// NewOfflineAnalyzer constructs the analyzer with an injectable clock.
func NewOfflineAnalyzer(now func() time.Time) *OfflineAnalyzer {
	if now == nil {
		now = time.Now
	}
	return &OfflineAnalyzer{now: now}
}

// Name identifies the provider in analysis results.
func (a *OfflineAnalyzer) Name() string { return "offline" }

var offlineSuspiciousKeywords = []string{"casino", "gambling", "offshore", "highrisk", "crypto"}

var offlineUnusualLocations = []string{"offshore", "high risk", "sanctioned", "unknown"}

// AnalyzeTransaction scores the transaction from fixed heuristics. Identical
// transactions always receive identical scores.
func (a *OfflineAnalyzer) AnalyzeTransaction(ctx context.Context, tx models.Transaction) (*models.AnalysisResult, error) {
	score := 10.0
	factors := []models.RiskFactor{}

	switch {
	case tx.Amount.GreaterThan(decimal.NewFromInt(10000)):
		score += 30
		factors = append(factors, models.RiskFactor{Name: "amount", Value: tx.Amount.String(), Impact: 30})
	case tx.Amount.GreaterThan(decimal.NewFromInt(5000)):
		score += 20
		factors = append(factors, models.RiskFactor{Name: "amount", Value: tx.Amount.String(), Impact: 20})
	case tx.Amount.GreaterThan(decimal.NewFromInt(1000)):
		score += 10
		factors = append(factors, models.RiskFactor{Name: "amount", Value: tx.Amount.String(), Impact: 10})
	}

	haystack := strings.ToLower(tx.Merchant + " " + tx.Description)
	for _, keyword := range offlineSuspiciousKeywords {
		if strings.Contains(haystack, keyword) {
			score += 35
			factors = append(factors, models.RiskFactor{Name: "merchant", Value: keyword, Impact: 35})
			break
		}
	}

	location := strings.ToLower(tx.Location)
	for _, term := range offlineUnusualLocations {
		if location != "" && strings.Contains(location, term) {
			score += 25
			factors = append(factors, models.RiskFactor{Name: "location", Value: tx.Location, Impact: 25})
			break
		}
	}

	ts := a.now()
	if tx.Timestamp != nil {
		ts = *tx.Timestamp
	}
	if hour := ts.Hour(); hour >= 1 && hour <= 5 {
		score += 10
		factors = append(factors, models.RiskFactor{Name: "time_of_day", Value: fmt.Sprintf("%02d:00", hour), Impact: 10})
	}

	if score > 100 {
		score = 100
	}

	confidence := 0.95
	level := riskLevel(score)
	result := &models.AnalysisResult{
		TransactionID:   tx.TransactionID,
		RiskScore:       score,
		RiskLevel:       level,
		IsHighRisk:      score >= 70,
		ConfidenceScore: &confidence,
		Explanation: fmt.Sprintf("Rule-based assessment: %s risk for %s transaction at %s.",
			strings.ToLower(level), tx.Amount.String(), tx.Merchant),
		Factors:  factors,
		Provider: a.Name(),
	}

	switch level {
	case "High":
		result.Recommendations = []string{"Hold transaction pending review", "Verify cardholder identity"}
	case "Medium":
		result.Recommendations = []string{"Monitor account for related activity"}
	default:
		result.Recommendations = []string{"No action required"}
	}

	return result, nil
}
