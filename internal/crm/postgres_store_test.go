// internal/crm/postgres_store_test.go
package crm

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStoreGetProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"customer_id", "name", "phone", "email",
		"income_monthly", "credit_score", "pan", "aadhaar", "pre_approved_limit",
	}).AddRow("CUST001", "Asha Verma", "9876543210", "asha@example.com",
		"48000", "720", "ABCDE1234F", "123412341234", "500000")

	mock.ExpectQuery(`SELECT (.+) FROM applicants WHERE customer_id = \$1`).
		WithArgs("CUST001").
		WillReturnRows(rows)

	store := NewPostgresStore(db)
	p, err := store.GetProfile(context.Background(), "CUST001")
	require.NoError(t, err)
	assert.Equal(t, "Asha Verma", p.Name)
	assert.Equal(t, "720", p.CreditScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGetProfileNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT (.+) FROM applicants WHERE customer_id = \$1`).
		WithArgs("GHOST").
		WillReturnRows(sqlmock.NewRows([]string{"customer_id"}))

	store := NewPostgresStore(db)
	_, err = store.GetProfile(context.Background(), "GHOST")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestPostgresStoreListIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT customer_id FROM applicants ORDER BY customer_id`).
		WillReturnRows(sqlmock.NewRows([]string{"customer_id"}).
			AddRow("CUST001").AddRow("CUST002"))

	store := NewPostgresStore(db)
	ids, err := store.ListIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"CUST001", "CUST002"}, ids)
}

func TestPostgresStoreUpdateProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE applicants SET credit_score = \$1 WHERE customer_id = \$2`).
		WithArgs("680", "CUST001").
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewPostgresStore(db)
	err = store.UpdateProfile(context.Background(), "CUST001", map[string]string{
		"credit_score": "680",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreUpdateProfileNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE applicants SET name = \$1 WHERE customer_id = \$2`).
		WithArgs("X", "GHOST").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewPostgresStore(db)
	err = store.UpdateProfile(context.Background(), "GHOST", map[string]string{"name": "X"})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestPostgresStoreUpdateProfileIgnoresUnknownColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// No updatable columns means no SQL at all.
	store := NewPostgresStore(db)
	err = store.UpdateProfile(context.Background(), "CUST001", map[string]string{
		"drop_table": "x",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
