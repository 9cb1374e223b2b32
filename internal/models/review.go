package models

import "time"

// ReviewStatus tracks the lifecycle of a review record.
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s ReviewStatus) Valid() bool {
	switch s {
	case ReviewStatusPending, ReviewStatusApproved, ReviewStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether the status is an allowed decision outcome.
func (s ReviewStatus) Terminal() bool {
	return s == ReviewStatusApproved || s == ReviewStatusRejected
}

// ReasonCode tags why a transaction was escalated to human review.
type ReasonCode string

const (
	ReasonVeryHighRiskScore    ReasonCode = "very_high_risk_score"
	ReasonHighRiskScore        ReasonCode = "high_risk_score"
	ReasonVeryLargeTransaction ReasonCode = "very_large_transaction"
	ReasonLargeTransaction     ReasonCode = "large_transaction"
	ReasonVeryLowConfidence    ReasonCode = "very_low_confidence"
	ReasonLowConfidence        ReasonCode = "low_confidence"
	ReasonSuspiciousPattern    ReasonCode = "suspicious_pattern"
	ReasonUnusualPattern       ReasonCode = "unusual_pattern"
	ReasonManualReview         ReasonCode = "manual_review_required"

	// Priority-only codes. The trigger evaluator never emits these; they are
	// reserved for operator-created escalations.
	ReasonAIFailure ReasonCode = "ai_failure"
	ReasonEmergency ReasonCode = "emergency"
)

// ReviewDecision is the outcome submitted by a human reviewer.
type ReviewDecision struct {
	Status     ReviewStatus `json:"status"`
	ReviewerID string       `json:"reviewerId"`
	Comments   string       `json:"comments,omitempty"`
	ReviewedAt time.Time    `json:"reviewedAt"`
}

// ReviewRecord is the core entity owned by the review store. Everything but
// Status, Decision, Version and UpdatedAt is frozen at creation.
type ReviewRecord struct {
	ID                 string          `json:"id"`
	TransactionID      string          `json:"transactionId"`
	Status             ReviewStatus    `json:"status"`
	RiskScore          float64         `json:"riskScore"`
	Reason             ReasonCode      `json:"reason"`
	Priority           int             `json:"priority"`
	TransactionDetails Transaction     `json:"transactionDetails"`
	AnalysisResult     AnalysisResult  `json:"analysisResult"`
	Decision           *ReviewDecision `json:"decision,omitempty"`
	Version            int             `json:"version"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// Clone returns a deep copy so repository callers never alias stored state.
func (r *ReviewRecord) Clone() *ReviewRecord {
	if r == nil {
		return nil
	}
	clone := *r
	if r.Decision != nil {
		decision := *r.Decision
		clone.Decision = &decision
	}
	if r.AnalysisResult.ConfidenceScore != nil {
		confidence := *r.AnalysisResult.ConfidenceScore
		clone.AnalysisResult.ConfidenceScore = &confidence
	}
	if r.AnalysisResult.Factors != nil {
		clone.AnalysisResult.Factors = append([]RiskFactor(nil), r.AnalysisResult.Factors...)
	}
	if r.AnalysisResult.Recommendations != nil {
		clone.AnalysisResult.Recommendations = append([]string(nil), r.AnalysisResult.Recommendations...)
	}
	if r.TransactionDetails.Timestamp != nil {
		ts := *r.TransactionDetails.Timestamp
		clone.TransactionDetails.Timestamp = &ts
	}
	return &clone
}
