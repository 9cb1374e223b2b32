package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/finsight/fraudlens/internal/models"
)

// AuditLogRepository persists audit trail entries in postgres.
type AuditLogRepository struct {
	db *sqlx.DB
}

// NewAuditLogRepository constructs the repository.
func NewAuditLogRepository(db *sqlx.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// CreateAuditLog inserts a single audit record.
func (r *AuditLogRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, user_id, action, resource, resource_id, old_values, new_values, ip_address, user_agent, created_at)
VALUES (:id, :user_id, :action, :resource, :resource_id, :old_values, :new_values, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// MemoryAuditLog collects audit entries in memory for the non-postgres
// backends and for tests.
type MemoryAuditLog struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

// NewMemoryAuditLog constructs an empty in-memory audit sink.
func NewMemoryAuditLog() *MemoryAuditLog {
	return &MemoryAuditLog{}
}

// CreateAuditLog appends an entry.
func (m *MemoryAuditLog) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	m.logs = append(m.logs, *log)
	return nil
}

// Entries returns a snapshot of collected logs.
func (m *MemoryAuditLog) Entries() []models.AuditLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.AuditLog(nil), m.logs...)
}
