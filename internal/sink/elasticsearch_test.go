// internal/sink/elasticsearch_test.go
package sink

import (
	"context"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-orchestrator/internal/models"
)

const testAuditIndex = "loan-audit-test"

func realElasticsearchClient(t *testing.T) *elasticsearch.Client {
	t.Helper()

	cfg := elasticsearch.Config{
		Addresses: []string{"http://localhost:9200"},
	}

	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		t.Skipf("Skipping test: Failed to create Elasticsearch client: %v", err)
		return nil
	}

	res, err := esClient.Info()
	if err != nil {
		t.Skipf("Skipping test: Elasticsearch container not responding: %v", err)
		return nil
	}
	defer res.Body.Close()

	if res.IsError() {
		t.Skipf("Skipping test: Elasticsearch error: %s", res.String())
		return nil
	}

	return esClient
}

func resetAuditIndex(t *testing.T, esClient *elasticsearch.Client) {
	t.Helper()

	res, err := esClient.Indices.Delete(
		[]string{testAuditIndex},
		esClient.Indices.Delete.WithIgnoreUnavailable(true),
	)
	require.NoError(t, err)
	res.Body.Close()
}

func refreshAuditIndex(t *testing.T, esClient *elasticsearch.Client) {
	t.Helper()

	_, err := esClient.Indices.Refresh(esClient.Indices.Refresh.WithIndex(testAuditIndex))
	require.NoError(t, err)
}

func TestESAuditSinkRoundTrip_RealElasticsearch(t *testing.T) {
	esClient := realElasticsearchClient(t)
	if esClient == nil {
		return
	}
	resetAuditIndex(t, esClient)

	s := NewESAuditSink(esClient, testAuditIndex)
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
	refreshAuditIndex(t, esClient)

	rows, err := s.ReadRecent(ctx, 0, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "orchestrate_kyc_fail", rows[0].Action) // newest first
	assert.Equal(t, first.Data, rows[1].Data)
	assert.True(t, rows[1].Timestamp.Equal(first.Timestamp))
}

func TestESAuditSinkFilterAndLimit_RealElasticsearch(t *testing.T) {
	esClient := realElasticsearchClient(t)
	if esClient == nil {
		return
	}
	resetAuditIndex(t, esClient)

	s := NewESAuditSink(esClient, testAuditIndex)
	ctx := context.Background()

	base := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Append(ctx, models.AuditRecord{
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			CustomerID: "CUST001",
			Action:     "apply_approve",
		}))
	}
	require.NoError(t, s.Append(ctx, models.AuditRecord{
		Timestamp:  base.Add(10 * time.Minute),
		CustomerID: "CUST001",
		Action:     "apply_reject",
	}))
	refreshAuditIndex(t, esClient)

	rows, err := s.ReadRecent(ctx, 0, "apply_reject")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = s.ReadRecent(ctx, 2, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "apply_reject", rows[0].Action)
}

func TestESAuditSinkMissingIndex_RealElasticsearch(t *testing.T) {
	esClient := realElasticsearchClient(t)
	if esClient == nil {
		return
	}

	s := NewESAuditSink(esClient, "nonexistent-audit-index")
	rows, err := s.ReadRecent(context.Background(), 0, "")
	assert.Error(t, err)
	assert.Nil(t, rows)
}
