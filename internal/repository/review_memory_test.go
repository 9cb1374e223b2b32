package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/fraudlens/internal/models"
)

func sampleRecord(id string) *models.ReviewRecord {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	return &models.ReviewRecord{
		ID:            id,
		TransactionID: "tx_" + id,
		Status:        models.ReviewStatusPending,
		RiskScore:     85,
		Reason:        models.ReasonHighRiskScore,
		Priority:      8,
		TransactionDetails: models.Transaction{
			TransactionID: "tx_" + id,
			Amount:        decimal.NewFromInt(6000),
			Merchant:      "Jeweler",
		},
		AnalysisResult: models.AnalysisResult{RiskScore: 85, RiskLevel: "High"},
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestMemoryRepositoryRoundTrip(t *testing.T) {
	repo := NewMemoryReviewRepository()
	ctx := context.Background()

	record := sampleRecord("rev_1")
	require.NoError(t, repo.Create(ctx, record))

	found, err := repo.FindByID(ctx, "rev_1")
	require.NoError(t, err)
	assert.Equal(t, record.ID, found.ID)
	assert.Equal(t, record.RiskScore, found.RiskScore)
	assert.True(t, record.TransactionDetails.Amount.Equal(found.TransactionDetails.Amount))
}

func TestMemoryRepositoryFindByIDNotFound(t *testing.T) {
	repo := NewMemoryReviewRepository()

	_, err := repo.FindByID(context.Background(), "rev_missing")
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestMemoryRepositoryReadsAreIdempotent(t *testing.T) {
	repo := NewMemoryReviewRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleRecord("rev_1")))

	first, err := repo.FindByID(ctx, "rev_1")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := repo.FindByID(ctx, "rev_1")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestMemoryRepositoryCallersCannotMutateStoredState(t *testing.T) {
	repo := NewMemoryReviewRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleRecord("rev_1")))

	found, err := repo.FindByID(ctx, "rev_1")
	require.NoError(t, err)
	found.Status = models.ReviewStatusApproved
	found.Decision = &models.ReviewDecision{Status: models.ReviewStatusApproved}

	fresh, err := repo.FindByID(ctx, "rev_1")
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusPending, fresh.Status)
	assert.Nil(t, fresh.Decision)
}

func TestMemoryRepositoryListPreservesInsertionOrder(t *testing.T) {
	repo := NewMemoryReviewRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, sampleRecord(fmt.Sprintf("rev_%d", i))))
	}

	records, err := repo.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, records, 5)
	for i, record := range records {
		assert.Equal(t, fmt.Sprintf("rev_%d", i), record.ID)
	}
}

func TestMemoryRepositoryListFiltersByStatus(t *testing.T) {
	repo := NewMemoryReviewRepository()
	ctx := context.Background()

	pending := sampleRecord("rev_1")
	require.NoError(t, repo.Create(ctx, pending))

	approved := sampleRecord("rev_2")
	approved.Status = models.ReviewStatusApproved
	require.NoError(t, repo.Create(ctx, approved))

	status := models.ReviewStatusApproved
	records, err := repo.List(ctx, &status)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "rev_2", records[0].ID)
}

func TestMemoryRepositoryUpdate(t *testing.T) {
	repo := NewMemoryReviewRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleRecord("rev_1")))

	updated := sampleRecord("rev_1")
	updated.Status = models.ReviewStatusRejected
	updated.Version = 2
	require.NoError(t, repo.Update(ctx, updated))

	found, err := repo.FindByID(ctx, "rev_1")
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusRejected, found.Status)
	assert.Equal(t, 2, found.Version)

	missing := sampleRecord("rev_missing")
	assert.ErrorIs(t, repo.Update(ctx, missing), ErrReviewNotFound)
}
