// internal/sink/csv.go
package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"loan-orchestrator/internal/models"
)

const (
	auditHeader   = "ts,customer_id,action,data"
	metricsHeader = "ts,customer_id,decision,emi,dti,credit_score,loan_amount,tenure_months"
)

// CSVAuditSink appends rows to a flat audit_log.csv, the original storage.
// The data column is always double-quoted with embedded quotes doubled.
type CSVAuditSink struct {
	path string
	mu   sync.Mutex
}

func NewCSVAuditSink(path string) *CSVAuditSink {
	return &CSVAuditSink{path: path}
}

func (s *CSVAuditSink) Append(_ context.Context, rec models.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, statErr := os.Stat(s.path)
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	defer f.Close()

	if os.IsNotExist(statErr) {
		if _, err := f.WriteString(auditHeader + "\n"); err != nil {
			return err
		}
	}

	data := `"` + strings.ReplaceAll(rec.Data, `"`, `""`) + `"`
	line := strings.Join([]string{
		rec.Timestamp.UTC().Format(time.RFC3339),
		rec.CustomerID,
		rec.Action,
		data,
	}, ",")
	_, err = f.WriteString(line + "\n")
	return err
}

func (s *CSVAuditSink) ReadRecent(_ context.Context, limit int, action string) ([]models.AuditRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read audit file: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	out := make([]models.AuditRecord, 0, len(rows)-1)
	// newest first
	for i := len(rows) - 1; i >= 1; i-- {
		row := rows[i]
		if len(row) < 3 {
			continue
		}
		rec := models.AuditRecord{
			CustomerID: row[1],
			Action:     row[2],
		}
		if ts, err := time.Parse(time.RFC3339, row[0]); err == nil {
			rec.Timestamp = ts
		}
		if len(row) > 3 {
			rec.Data = row[3]
		}
		if action != "" && rec.Action != action {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// CSVMetricsSink appends dashboard rows to metrics.csv. Field values have
// commas stripped instead of being quoted, matching the original format.
type CSVMetricsSink struct {
	path string
	mu   sync.Mutex
}

func NewCSVMetricsSink(path string) *CSVMetricsSink {
	return &CSVMetricsSink{path: path}
}

func clean(s string) string {
	return strings.ReplaceAll(s, ",", "")
}

func (s *CSVMetricsSink) Append(_ context.Context, rec models.MetricsRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, statErr := os.Stat(s.path)
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open metrics file: %w", err)
	}
	defer f.Close()

	if os.IsNotExist(statErr) {
		if _, err := f.WriteString(metricsHeader + "\n"); err != nil {
			return err
		}
	}

	line := strings.Join([]string{
		clean(rec.Timestamp.UTC().Format(time.RFC3339)),
		clean(rec.CustomerID),
		clean(string(rec.Decision)),
		clean(rec.EMI.StringFixed(2)),
		clean(rec.DTI),
		strconv.Itoa(rec.CreditScore),
		clean(rec.LoanAmount.String()),
		strconv.Itoa(rec.TenureMonths),
	}, ",")
	_, err = f.WriteString(line + "\n")
	return err
}

func (s *CSVMetricsSink) ReadRecent(_ context.Context, limit int) ([]models.MetricsRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read metrics file: %w", err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	out := make([]models.MetricsRecord, 0, len(rows)-1)
	for i := len(rows) - 1; i >= 1; i-- {
		row := rows[i]
		if len(row) < 8 {
			continue
		}
		rec := models.MetricsRecord{
			CustomerID: row[1],
			Decision:   models.Decision(row[2]),
			DTI:        row[4],
		}
		if ts, err := time.Parse(time.RFC3339, row[0]); err == nil {
			rec.Timestamp = ts
		}
		if emi, err := decimal.NewFromString(row[3]); err == nil {
			rec.EMI = emi
		}
		if score, err := strconv.Atoi(row[5]); err == nil {
			rec.CreditScore = score
		}
		if amount, err := decimal.NewFromString(row[6]); err == nil {
			rec.LoanAmount = amount
		}
		if tenure, err := strconv.Atoi(row[7]); err == nil {
			rec.TenureMonths = tenure
		}
		out = append(out, rec)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
