// internal/sink/elasticsearch.go
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"loan-orchestrator/internal/models"
)

// ESAuditSink indexes audit records into Elasticsearch so the trail can be
// searched in Kibana. Documents carry the same four fields as the CSV rows.
type ESAuditSink struct {
	client *elasticsearch.Client
	index  string
}

func NewESAuditSink(client *elasticsearch.Client, index string) *ESAuditSink {
	return &ESAuditSink{client: client, index: index}
}

type esAuditDoc struct {
	Timestamp  time.Time `json:"ts"`
	CustomerID string    `json:"customer_id"`
	Action     string    `json:"action"`
	Data       string    `json:"data"`
}

func (s *ESAuditSink) Append(ctx context.Context, rec models.AuditRecord) error {
	doc := esAuditDoc{
		Timestamp:  rec.Timestamp.UTC(),
		CustomerID: rec.CustomerID,
		Action:     rec.Action,
		Data:       rec.Data,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal audit document: %w", err)
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index audit document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index audit document: %s", res.Status())
	}
	return nil
}

func (s *ESAuditSink) ReadRecent(ctx context.Context, limit int, action string) ([]models.AuditRecord, error) {
	size := limit
	if size <= 0 {
		size = 10000
	}

	query := map[string]interface{}{
		"size": size,
		"sort": []map[string]interface{}{
			{"ts": map[string]string{"order": "desc"}},
		},
	}
	if action != "" {
		query["query"] = map[string]interface{}{
			"term": map[string]interface{}{
				"action.keyword": action,
			},
		}
	} else {
		query["query"] = map[string]interface{}{"match_all": map[string]interface{}{}}
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(strings.NewReader(string(body))),
	)
	if err != nil {
		return nil, fmt.Errorf("search audit index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search audit index: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source esAuditDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]models.AuditRecord, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		out = append(out, models.AuditRecord{
			Timestamp:  hit.Source.Timestamp,
			CustomerID: hit.Source.CustomerID,
			Action:     hit.Source.Action,
			Data:       hit.Source.Data,
		})
	}
	return out, nil
}
