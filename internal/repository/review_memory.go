package repository

import (
	"context"
	"sync"

	"github.com/finsight/fraudlens/internal/models"
)

// MemoryReviewRepository keeps review records in process memory, preserving
// insertion order. It is the default backend for the demo and for tests.
type MemoryReviewRepository struct {
	mu      sync.RWMutex
	records map[string]*models.ReviewRecord
	order   []string
}

// NewMemoryReviewRepository constructs an empty in-memory store.
func NewMemoryReviewRepository() *MemoryReviewRepository {
	return &MemoryReviewRepository{records: make(map[string]*models.ReviewRecord)}
}

// Create stores a copy of the record.
func (r *MemoryReviewRepository) Create(ctx context.Context, record *models.ReviewRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[record.ID]; !exists {
		r.order = append(r.order, record.ID)
	}
	r.records[record.ID] = record.Clone()
	return nil
}

// List returns records in insertion order, optionally filtered by status.
func (r *MemoryReviewRepository) List(ctx context.Context, status *models.ReviewStatus) ([]models.ReviewRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]models.ReviewRecord, 0, len(r.order))
	for _, id := range r.order {
		record := r.records[id]
		if status != nil && record.Status != *status {
			continue
		}
		result = append(result, *record.Clone())
	}
	return result, nil
}

// FindByID returns a copy of the record or ErrReviewNotFound.
func (r *MemoryReviewRepository) FindByID(ctx context.Context, id string) (*models.ReviewRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	if !ok {
		return nil, ErrReviewNotFound
	}
	return record.Clone(), nil
}

// Update replaces an existing record atomically.
func (r *MemoryReviewRepository) Update(ctx context.Context, record *models.ReviewRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[record.ID]; !ok {
		return ErrReviewNotFound
	}
	r.records[record.ID] = record.Clone()
	return nil
}
