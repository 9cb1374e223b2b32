package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/finsight/fraudlens/internal/models"
)

// PostgresReviewRepository persists review records in the reviews table.
// Transaction and analysis snapshots are stored as JSONB for audit purposes.
type PostgresReviewRepository struct {
	db *sqlx.DB
}

// NewPostgresReviewRepository constructs the repository.
func NewPostgresReviewRepository(db *sqlx.DB) *PostgresReviewRepository {
	return &PostgresReviewRepository{db: db}
}

type reviewRow struct {
	ID                 string    `db:"id"`
	TransactionID      string    `db:"transaction_id"`
	Status             string    `db:"status"`
	RiskScore          float64   `db:"risk_score"`
	Reason             string    `db:"reason"`
	Priority           int       `db:"priority"`
	TransactionDetails []byte    `db:"transaction_details"`
	AnalysisResult     []byte    `db:"analysis_result"`
	Decision           []byte    `db:"decision"`
	Version            int       `db:"version"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func toRow(record *models.ReviewRecord) (*reviewRow, error) {
	txSnapshot, err := json.Marshal(record.TransactionDetails)
	if err != nil {
		return nil, fmt.Errorf("marshal transaction snapshot: %w", err)
	}
	analysisSnapshot, err := json.Marshal(record.AnalysisResult)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis snapshot: %w", err)
	}
	row := &reviewRow{
		ID:                 record.ID,
		TransactionID:      record.TransactionID,
		Status:             string(record.Status),
		RiskScore:          record.RiskScore,
		Reason:             string(record.Reason),
		Priority:           record.Priority,
		TransactionDetails: txSnapshot,
		AnalysisResult:     analysisSnapshot,
		Version:            record.Version,
		CreatedAt:          record.CreatedAt,
		UpdatedAt:          record.UpdatedAt,
	}
	if record.Decision != nil {
		decision, err := json.Marshal(record.Decision)
		if err != nil {
			return nil, fmt.Errorf("marshal decision: %w", err)
		}
		row.Decision = decision
	}
	return row, nil
}

func (row *reviewRow) toRecord() (*models.ReviewRecord, error) {
	record := &models.ReviewRecord{
		ID:            row.ID,
		TransactionID: row.TransactionID,
		Status:        models.ReviewStatus(row.Status),
		RiskScore:     row.RiskScore,
		Reason:        models.ReasonCode(row.Reason),
		Priority:      row.Priority,
		Version:       row.Version,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if len(row.TransactionDetails) > 0 {
		if err := json.Unmarshal(row.TransactionDetails, &record.TransactionDetails); err != nil {
			return nil, fmt.Errorf("unmarshal transaction snapshot: %w", err)
		}
	}
	if len(row.AnalysisResult) > 0 {
		if err := json.Unmarshal(row.AnalysisResult, &record.AnalysisResult); err != nil {
			return nil, fmt.Errorf("unmarshal analysis snapshot: %w", err)
		}
	}
	if len(row.Decision) > 0 {
		record.Decision = &models.ReviewDecision{}
		if err := json.Unmarshal(row.Decision, record.Decision); err != nil {
			return nil, fmt.Errorf("unmarshal decision: %w", err)
		}
	}
	return record, nil
}

// Create inserts a new review record.
func (r *PostgresReviewRepository) Create(ctx context.Context, record *models.ReviewRecord) error {
	row, err := toRow(record)
	if err != nil {
		return err
	}
	const query = `INSERT INTO reviews (id, transaction_id, status, risk_score, reason, priority,
transaction_details, analysis_result, decision, version, created_at, updated_at)
VALUES (:id, :transaction_id, :status, :risk_score, :reason, :priority,
:transaction_details, :analysis_result, :decision, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// List returns reviews in insertion order, optionally filtered by status.
func (r *PostgresReviewRepository) List(ctx context.Context, status *models.ReviewStatus) ([]models.ReviewRecord, error) {
	query := `SELECT id, transaction_id, status, risk_score, reason, priority,
transaction_details, analysis_result, decision, version, created_at, updated_at
FROM reviews`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at ASC, id ASC`

	var rows []reviewRow
	err := withReadRetry(ctx, func() error {
		rows = rows[:0]
		return r.db.SelectContext(ctx, &rows, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	records := make([]models.ReviewRecord, 0, len(rows))
	for i := range rows {
		record, err := rows[i].toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

// FindByID fetches a single review.
func (r *PostgresReviewRepository) FindByID(ctx context.Context, id string) (*models.ReviewRecord, error) {
	const query = `SELECT id, transaction_id, status, risk_score, reason, priority,
transaction_details, analysis_result, decision, version, created_at, updated_at
FROM reviews WHERE id = $1`
	var row reviewRow
	err := withReadRetry(ctx, func() error {
		if err := r.db.GetContext(ctx, &row, query, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrReviewNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return row.toRecord()
}

// Update rewrites the mutable fields of an existing review.
func (r *PostgresReviewRepository) Update(ctx context.Context, record *models.ReviewRecord) error {
	row, err := toRow(record)
	if err != nil {
		return err
	}
	const query = `UPDATE reviews SET status = :status, decision = :decision,
version = :version, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update review rows affected: %w", err)
	}
	if affected == 0 {
		return ErrReviewNotFound
	}
	return nil
}
