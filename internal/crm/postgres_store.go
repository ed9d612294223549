// internal/crm/postgres_store.go
package crm

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"loan-orchestrator/internal/models"
)

// PostgresStore serves profiles from an applicants table with the same
// columns as the CSV layout. Numeric cells stay text so both backends behave
// identically through the credit helpers.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const profileColumns = `customer_id, name, phone, email,
	COALESCE(income_monthly, ''), COALESCE(credit_score, ''),
	COALESCE(pan, ''), COALESCE(aadhaar, ''), COALESCE(pre_approved_limit, '')`

func (s *PostgresStore) GetProfile(ctx context.Context, customerID string) (*models.CustomerProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM applicants WHERE customer_id = $1`, profileColumns)

	var p models.CustomerProfile
	err := s.db.QueryRowContext(ctx, query, customerID).Scan(
		&p.CustomerID, &p.Name, &p.Phone, &p.Email,
		&p.IncomeMonthly, &p.CreditScore,
		&p.PAN, &p.Aadhaar, &p.PreApprovedLimit,
	)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT customer_id FROM applicants ORDER BY customer_id`)
	if err != nil {
		return nil, fmt.Errorf("list applicants: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// updatableColumns guards against writing arbitrary columns from a request
// body into SQL.
var updatableColumns = map[string]bool{
	"name":               true,
	"phone":              true,
	"email":              true,
	"income_monthly":     true,
	"credit_score":       true,
	"pan":                true,
	"aadhaar":            true,
	"pre_approved_limit": true,
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, customerID string, fields map[string]string) error {
	sets := make([]string, 0, len(fields))
	args := make([]interface{}, 0, len(fields)+1)
	i := 1
	for k, v := range fields {
		if !updatableColumns[k] {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", k, i))
		args = append(args, v)
		i++
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, customerID)

	query := fmt.Sprintf(`UPDATE applicants SET %s WHERE customer_id = $%d`,
		strings.Join(sets, ", "), i)

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProfileNotFound
	}
	return nil
}
