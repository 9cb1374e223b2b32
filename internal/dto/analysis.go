package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finsight/fraudlens/internal/models"
)

// AnalyzeTransactionRequest is the payload for the transaction analysis
// endpoint. Amount accepts both JSON numbers and strings.
type AnalyzeTransactionRequest struct {
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Merchant      string          `json:"merchant" validate:"required"`
	Location      string          `json:"location"`
	Description   string          `json:"description"`
	Timestamp     *time.Time      `json:"timestamp"`
}

// Transaction converts the request into the domain snapshot.
func (r AnalyzeTransactionRequest) Transaction() models.Transaction {
	return models.Transaction{
		TransactionID: r.TransactionID,
		Amount:        r.Amount,
		Merchant:      r.Merchant,
		Location:      r.Location,
		Description:   r.Description,
		Timestamp:     r.Timestamp,
	}
}
