package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsight/fraudlens/internal/models"
	"github.com/finsight/fraudlens/pkg/config"
)

// TriggerThresholds holds the parsed escalation rule parameters.
type TriggerThresholds struct {
	HighRiskScore      float64
	VeryHighRiskScore  float64
	LargeAmount        decimal.Decimal
	VeryLargeAmount    decimal.Decimal
	LowConfidence      float64
	VeryLowConfidence  float64
	SuspiciousKeywords []string
	UnusualLocations   []string
	UnusualHourStart   int
	UnusualHourEnd     int
}

// DefaultTriggerThresholds returns the documented rule set.
func DefaultTriggerThresholds() TriggerThresholds {
	return TriggerThresholds{
		HighRiskScore:      70,
		VeryHighRiskScore:  90,
		LargeAmount:        decimal.NewFromInt(5000),
		VeryLargeAmount:    decimal.NewFromInt(10000),
		LowConfidence:      0.7,
		VeryLowConfidence:  0.5,
		SuspiciousKeywords: []string{"casino", "gambling", "offshore", "highrisk"},
		UnusualLocations:   []string{"offshore", "high risk", "sanctioned"},
		UnusualHourStart:   1,
		UnusualHourEnd:     5,
	}
}

// ThresholdsFromConfig builds thresholds from configuration, falling back to
// the defaults for anything absent or unparsable.
func ThresholdsFromConfig(cfg config.ReviewConfig) TriggerThresholds {
	t := DefaultTriggerThresholds()
	if cfg.HighRiskScore > 0 {
		t.HighRiskScore = cfg.HighRiskScore
	}
	if cfg.VeryHighRiskScore > 0 {
		t.VeryHighRiskScore = cfg.VeryHighRiskScore
	}
	if amount, err := decimal.NewFromString(cfg.LargeAmount); err == nil && amount.IsPositive() {
		t.LargeAmount = amount
	}
	if amount, err := decimal.NewFromString(cfg.VeryLargeAmount); err == nil && amount.IsPositive() {
		t.VeryLargeAmount = amount
	}
	if cfg.LowConfidence > 0 {
		t.LowConfidence = cfg.LowConfidence
	}
	if cfg.VeryLowConfidence > 0 {
		t.VeryLowConfidence = cfg.VeryLowConfidence
	}
	if len(cfg.SuspiciousKeywords) > 0 {
		t.SuspiciousKeywords = cfg.SuspiciousKeywords
	}
	if len(cfg.UnusualLocations) > 0 {
		t.UnusualLocations = cfg.UnusualLocations
	}
	if cfg.UnusualHourStart > 0 || cfg.UnusualHourEnd > 0 {
		t.UnusualHourStart = cfg.UnusualHourStart
		t.UnusualHourEnd = cfg.UnusualHourEnd
	}
	return t
}

// TriggerEvaluator decides whether a transaction/analysis pair requires human
// review. All methods are pure: the caller supplies the evaluation time so
// identical inputs always produce identical outcomes.
type TriggerEvaluator struct {
	thresholds TriggerThresholds
}

// NewTriggerEvaluator constructs an evaluator over the given thresholds.
func NewTriggerEvaluator(thresholds TriggerThresholds) *TriggerEvaluator {
	return &TriggerEvaluator{thresholds: thresholds}
}

// ShouldRequireReview reports whether any escalation predicate fires. The
// predicates are independent; missing or malformed fields simply do not
// trigger their predicate.
func (e *TriggerEvaluator) ShouldRequireReview(tx models.Transaction, analysis models.AnalysisResult, now time.Time) bool {
	if analysis.RiskScore >= e.thresholds.HighRiskScore {
		return true
	}
	if tx.Amount.GreaterThan(e.thresholds.LargeAmount) {
		return true
	}
	if analysis.ConfidenceScore != nil && *analysis.ConfidenceScore < e.thresholds.LowConfidence {
		return true
	}
	if e.hasSuspiciousPattern(tx) {
		return true
	}
	if e.isUnusualTransaction(tx, now) {
		return true
	}
	return false
}

// ReviewReason returns the first matching reason from the priority-ordered
// cascade, independent of which predicate fired the boolean decision.
func (e *TriggerEvaluator) ReviewReason(tx models.Transaction, analysis models.AnalysisResult, now time.Time) models.ReasonCode {
	switch {
	case analysis.RiskScore >= e.thresholds.VeryHighRiskScore:
		return models.ReasonVeryHighRiskScore
	case analysis.RiskScore >= e.thresholds.HighRiskScore:
		return models.ReasonHighRiskScore
	case tx.Amount.GreaterThan(e.thresholds.VeryLargeAmount):
		return models.ReasonVeryLargeTransaction
	case tx.Amount.GreaterThan(e.thresholds.LargeAmount):
		return models.ReasonLargeTransaction
	case analysis.ConfidenceScore != nil && *analysis.ConfidenceScore < e.thresholds.VeryLowConfidence:
		return models.ReasonVeryLowConfidence
	case analysis.ConfidenceScore != nil && *analysis.ConfidenceScore < e.thresholds.LowConfidence:
		return models.ReasonLowConfidence
	case e.hasSuspiciousPattern(tx):
		return models.ReasonSuspiciousPattern
	case e.isUnusualTransaction(tx, now):
		return models.ReasonUnusualPattern
	}
	// Unreachable when the boolean gate fired, kept as a defensive fallback.
	return models.ReasonManualReview
}

func (e *TriggerEvaluator) hasSuspiciousPattern(tx models.Transaction) bool {
	merchant := strings.ToLower(tx.Merchant)
	description := strings.ToLower(tx.Description)
	for _, keyword := range e.thresholds.SuspiciousKeywords {
		keyword = strings.ToLower(keyword)
		if strings.Contains(merchant, keyword) {
			return true
		}
		if description != "" && strings.Contains(description, keyword) {
			return true
		}
	}
	return false
}

func (e *TriggerEvaluator) isUnusualTransaction(tx models.Transaction, now time.Time) bool {
	ts := now
	if tx.Timestamp != nil {
		ts = *tx.Timestamp
	}
	hour := ts.Hour()
	if hour >= e.thresholds.UnusualHourStart && hour <= e.thresholds.UnusualHourEnd {
		return true
	}

	if tx.Location != "" {
		location := strings.ToLower(tx.Location)
		for _, term := range e.thresholds.UnusualLocations {
			if strings.Contains(location, strings.ToLower(term)) {
				return true
			}
		}
	}
	return false
}

// ComputePriority maps a risk score and reason to a 1-10 triage priority.
func ComputePriority(riskScore float64, reason models.ReasonCode) int {
	priority := 5

	if riskScore >= 80 {
		priority += 3
	} else if riskScore >= 60 {
		priority++
	}

	priority += ReasonWeight(reason)

	if reason == models.ReasonEmergency {
		priority = 10
	}

	if priority > 10 {
		priority = 10
	}
	if priority < 1 {
		priority = 1
	}
	return priority
}
