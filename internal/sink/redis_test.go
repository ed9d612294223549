// internal/sink/redis_test.go
package sink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-orchestrator/internal/models"
)

func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	srv := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: srv.Addr()})
}

func TestRedisAuditSinkRoundTrip(t *testing.T) {
	s := NewRedisAuditSink(redisClient(t))
	ctx := context.Background()

	first := models.AuditRecord{
		Timestamp:  time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
		CustomerID: "CUST001",
		Action:     "apply_approve",
		Data:       "credit:720;emi:13285.72;dti:0.305",
	}
	second := models.AuditRecord{
		Timestamp:  time.Date(2025, 3, 14, 9, 5, 0, 0, time.UTC),
		CustomerID: "CUST002",
		Action:     "orchestrate_kyc_fail",
		Data:       `{"status":"FAIL"}`,
	}
	require.NoError(t, s.Append(ctx, first))
	require.NoError(t, s.Append(ctx, second))

	rows, err := s.ReadRecent(ctx, 0, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "orchestrate_kyc_fail", rows[0].Action) // newest first
	assert.Equal(t, first.Data, rows[1].Data)
}

func TestRedisAuditSinkFilterAndLimit(t *testing.T) {
	s := NewRedisAuditSink(redisClient(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Append(ctx, models.AuditRecord{
			Timestamp: time.Now().UTC(), CustomerID: "CUST001", Action: "apply_approve",
		}))
	}
	require.NoError(t, s.Append(ctx, models.AuditRecord{
		Timestamp: time.Now().UTC(), CustomerID: "CUST001", Action: "apply_reject",
	}))

	rows, err := s.ReadRecent(ctx, 0, "apply_reject")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = s.ReadRecent(ctx, 2, "")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRedisAuditSinkSkipsCorruptEntries(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	s := NewRedisAuditSink(client)
	ctx := context.Background()

	_, err := srv.RPush("audit:log", "not json")
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, models.AuditRecord{
		Timestamp: time.Now().UTC(), CustomerID: "CUST001", Action: "apply_approve",
	}))

	rows, err := s.ReadRecent(ctx, 0, "")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRedisAuditSinkAppendFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	mock.Regexp().ExpectRPush("audit:log", `.*`).SetErr(errors.New("connection refused"))

	s := NewRedisAuditSink(client)
	err := s.Append(context.Background(), models.AuditRecord{
		Timestamp: time.Now().UTC(), CustomerID: "CUST001", Action: "apply_approve",
	})
	assert.Error(t, err)
}

func TestRedisMetricsSinkRoundTrip(t *testing.T) {
	s := NewRedisMetricsSink(redisClient(t))
	ctx := context.Background()

	rec := models.MetricsRecord{
		Timestamp:    time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
		CustomerID:   "CUST001",
		Decision:     models.DecisionApprove,
		EMI:          decimal.RequireFromString("13285.72"),
		DTI:          "0.305",
		CreditScore:  720,
		LoanAmount:   decimal.NewFromInt(400000),
		TenureMonths: 36,
	}
	require.NoError(t, s.Append(ctx, rec))

	rows, err := s.ReadRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].EMI.Equal(rec.EMI))
	assert.Equal(t, "0.305", rows[0].DTI)
	assert.Equal(t, 36, rows[0].TenureMonths)
}
