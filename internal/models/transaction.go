package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the payment under analysis, as submitted by the caller.
// The review subsystem treats it as an immutable snapshot and never owns it.
type Transaction struct {
	TransactionID string          `json:"transactionId,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Merchant      string          `json:"merchant"`
	Location      string          `json:"location,omitempty"`
	Description   string          `json:"description,omitempty"`
	Timestamp     *time.Time      `json:"timestamp,omitempty"`
}

// RiskFactor is one named contributor to a risk score.
type RiskFactor struct {
	Name   string  `json:"name"`
	Value  string  `json:"value"`
	Impact float64 `json:"impact"`
}

// AnalysisResult is the fraud assessment produced by an analyzer collaborator.
// RiskScore is always on the 0-100 scale once it crosses the analysis
// boundary; providers reporting 0-1 are normalised there.
type AnalysisResult struct {
	TransactionID   string       `json:"transactionId,omitempty"`
	RiskScore       float64      `json:"riskScore"`
	RiskLevel       string       `json:"riskLevel,omitempty"`
	IsHighRisk      bool         `json:"isHighRisk"`
	ConfidenceScore *float64     `json:"confidenceScore,omitempty"`
	Explanation     string       `json:"explanation,omitempty"`
	Factors         []RiskFactor `json:"factors,omitempty"`
	Recommendations []string     `json:"recommendations,omitempty"`
	Provider        string       `json:"provider,omitempty"`
}
