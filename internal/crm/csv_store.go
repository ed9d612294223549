// internal/crm/csv_store.go
package crm

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"loan-orchestrator/internal/models"
)

// CSVStore reads applicants from a flat CSV file, the original deployment's
// customer "database". All cells are kept as strings; headers are matched by
// name so column order does not matter.
type CSVStore struct {
	path string
	mu   sync.Mutex // single-writer: UpdateProfile rewrites the whole file
}

func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) load() ([]string, []map[string]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("applicants CSV not found: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read applicants CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	return header, records, nil
}

func matches(rec map[string]string, customerID string) bool {
	return rec["crm_customer_id"] == customerID || rec["id"] == customerID
}

func toProfile(rec map[string]string) *models.CustomerProfile {
	id := rec["crm_customer_id"]
	if id == "" {
		id = rec["id"]
	}
	return &models.CustomerProfile{
		CustomerID:       id,
		Name:             rec["name"],
		Phone:            rec["phone"],
		Email:            rec["email"],
		IncomeMonthly:    rec["income_monthly"],
		CreditScore:      rec["credit_score"],
		PAN:              rec["pan"],
		Aadhaar:          rec["aadhaar"],
		PreApprovedLimit: rec["pre_approved_limit"],
	}
}

func (s *CSVStore) GetProfile(_ context.Context, customerID string) (*models.CustomerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, records, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if matches(rec, customerID) {
			return toProfile(rec), nil
		}
	}
	return nil, ErrProfileNotFound
}

func (s *CSVStore) ListIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	header, records, err := s.load()
	if err != nil {
		return nil, err
	}

	idCol := "id"
	found := false
	for _, col := range header {
		if col == "id" {
			found = true
			break
		}
	}
	if !found && len(header) > 0 {
		idCol = header[0]
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec[idCol])
	}
	return ids, nil
}

// UpdateProfile patches the matching row and rewrites the file. Identifier
// columns are never overwritten; unknown columns are appended to the header.
func (s *CSVStore) UpdateProfile(_ context.Context, customerID string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	header, records, err := s.load()
	if err != nil {
		return err
	}

	idx := -1
	for i, rec := range records {
		if matches(rec, customerID) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrProfileNotFound
	}

	known := make(map[string]bool, len(header))
	for _, col := range header {
		known[col] = true
	}

	for k, v := range fields {
		if k == "customer_id" || k == "crm_customer_id" || k == "id" {
			continue
		}
		if !known[k] {
			header = append(header, k)
			known[k] = true
		}
		records[idx][k] = v
	}

	return s.writeAll(header, records)
}

func (s *CSVStore) writeAll(header []string, records []map[string]string) error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("write applicants CSV: %w", err)
	}

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		f.Close()
		return err
	}
	for _, rec := range records {
		row := make([]string, len(header))
		for i, col := range header {
			row[i] = rec[col]
		}
		if err := writer.Write(row); err != nil {
			f.Close()
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
