// internal/sink/postgres.go
package sink

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"loan-orchestrator/internal/models"
)

// PostgresAuditSink appends to an audit_log table. Rows are insert-only; the
// table is the durable replacement for the flat audit file.
type PostgresAuditSink struct {
	db *sql.DB
}

func NewPostgresAuditSink(db *sql.DB) *PostgresAuditSink {
	return &PostgresAuditSink{db: db}
}

func (s *PostgresAuditSink) Append(ctx context.Context, rec models.AuditRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (ts, customer_id, action, data) VALUES ($1, $2, $3, $4)`,
		rec.Timestamp.UTC(), rec.CustomerID, rec.Action, rec.Data,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

func (s *PostgresAuditSink) ReadRecent(ctx context.Context, limit int, action string) ([]models.AuditRecord, error) {
	query := `SELECT ts, customer_id, action, data FROM audit_log`
	args := []interface{}{}
	if action != "" {
		query += ` WHERE action = $1`
		args = append(args, action)
	}
	query += ` ORDER BY ts DESC`
	if limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	var out []models.AuditRecord
	for rows.Next() {
		var rec models.AuditRecord
		if err := rows.Scan(&rec.Timestamp, &rec.CustomerID, &rec.Action, &rec.Data); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// PostgresMetricsSink appends to a metrics_log table.
type PostgresMetricsSink struct {
	db *sql.DB
}

func NewPostgresMetricsSink(db *sql.DB) *PostgresMetricsSink {
	return &PostgresMetricsSink{db: db}
}

func (s *PostgresMetricsSink) Append(ctx context.Context, rec models.MetricsRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO metrics_log (ts, customer_id, decision, emi, dti, credit_score, loan_amount, tenure_months)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.Timestamp.UTC(), rec.CustomerID, string(rec.Decision),
		rec.EMI.StringFixed(2), rec.DTI, rec.CreditScore,
		rec.LoanAmount.String(), rec.TenureMonths,
	)
	if err != nil {
		return fmt.Errorf("insert metrics record: %w", err)
	}
	return nil
}

func (s *PostgresMetricsSink) ReadRecent(ctx context.Context, limit int) ([]models.MetricsRecord, error) {
	query := `SELECT ts, customer_id, decision, emi, dti, credit_score, loan_amount, tenure_months
		FROM metrics_log ORDER BY ts DESC`
	if limit > 0 {
		query += ` LIMIT ` + strconv.Itoa(limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query metrics records: %w", err)
	}
	defer rows.Close()

	var out []models.MetricsRecord
	for rows.Next() {
		var rec models.MetricsRecord
		var decision, emi, amount string
		if err := rows.Scan(&rec.Timestamp, &rec.CustomerID, &decision, &emi,
			&rec.DTI, &rec.CreditScore, &amount, &rec.TenureMonths); err != nil {
			return nil, err
		}
		rec.Decision = models.Decision(decision)
		if d, err := decimal.NewFromString(emi); err == nil {
			rec.EMI = d
		}
		if d, err := decimal.NewFromString(amount); err == nil {
			rec.LoanAmount = d
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
