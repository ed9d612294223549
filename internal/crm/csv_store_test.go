// internal/crm/csv_store_test.go
package crm

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const applicantsFixture = `id,crm_customer_id,name,phone,email,income_monthly,credit_score,pan,aadhaar,pre_approved_limit
1,CUST001,Asha Verma,9876543210,asha@example.com,48000,720,ABCDE1234F,123412341234,500000
2,CUST002,Rohit Sharma,9812345670,rohit@example.com,15000,,FGHIJ5678K,234523452345,100000
`

func writeApplicants(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "applicants.csv")
	require.NoError(t, os.WriteFile(path, []byte(applicantsFixture), 0o644))
	return path
}

func TestCSVStoreGetProfile(t *testing.T) {
	store := NewCSVStore(writeApplicants(t))
	ctx := context.Background()

	p, err := store.GetProfile(ctx, "CUST001")
	require.NoError(t, err)
	assert.Equal(t, "Asha Verma", p.Name)
	assert.Equal(t, "48000", p.IncomeMonthly)
	assert.Equal(t, "720", p.CreditScore)

	// lookup by the numeric id column also resolves
	p, err = store.GetProfile(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "Rohit Sharma", p.Name)
	assert.Empty(t, p.CreditScore)
}

func TestCSVStoreGetProfileNotFound(t *testing.T) {
	store := NewCSVStore(writeApplicants(t))

	_, err := store.GetProfile(context.Background(), "GHOST")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestCSVStoreMissingFile(t *testing.T) {
	store := NewCSVStore(filepath.Join(t.TempDir(), "nope.csv"))

	_, err := store.GetProfile(context.Background(), "CUST001")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrProfileNotFound)
}

func TestCSVStoreListIDs(t *testing.T) {
	store := NewCSVStore(writeApplicants(t))

	ids, err := store.ListIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, ids)
}

func TestCSVStoreUpdateProfile(t *testing.T) {
	store := NewCSVStore(writeApplicants(t))
	ctx := context.Background()

	err := store.UpdateProfile(ctx, "CUST001", map[string]string{
		"credit_score": "680",
		"segment":      "gold", // unknown column gets appended
		"customer_id":  "HACK", // identifier keys are never written
	})
	require.NoError(t, err)

	p, err := store.GetProfile(ctx, "CUST001")
	require.NoError(t, err)
	assert.Equal(t, "680", p.CreditScore)
	assert.Equal(t, "CUST001", p.CustomerID)

	// the untouched row survives the rewrite
	p, err = store.GetProfile(ctx, "CUST002")
	require.NoError(t, err)
	assert.Equal(t, "Rohit Sharma", p.Name)
}

func TestCSVStoreUpdateProfileNotFound(t *testing.T) {
	store := NewCSVStore(writeApplicants(t))

	err := store.UpdateProfile(context.Background(), "GHOST", map[string]string{"name": "X"})
	assert.ErrorIs(t, err, ErrProfileNotFound)
}
