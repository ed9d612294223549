// internal/sink/redis.go
package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"loan-orchestrator/internal/models"
)

const (
	auditListKey   = "audit:log"
	metricsListKey = "metrics:log"
)

// RedisAuditSink keeps the audit trail in a Redis list, one JSON record per
// element, pushed in arrival order.
type RedisAuditSink struct {
	client *redis.Client
}

func NewRedisAuditSink(client *redis.Client) *RedisAuditSink {
	return &RedisAuditSink{client: client}
}

func (s *RedisAuditSink) Append(ctx context.Context, rec models.AuditRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	if err := s.client.RPush(ctx, auditListKey, payload).Err(); err != nil {
		return fmt.Errorf("push audit record: %w", err)
	}
	return nil
}

func (s *RedisAuditSink) ReadRecent(ctx context.Context, limit int, action string) ([]models.AuditRecord, error) {
	raw, err := s.client.LRange(ctx, auditListKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read audit list: %w", err)
	}

	out := make([]models.AuditRecord, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var rec models.AuditRecord
		if err := json.Unmarshal([]byte(raw[i]), &rec); err != nil {
			continue
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

// RedisMetricsSink mirrors metrics rows into a Redis list.
type RedisMetricsSink struct {
	client *redis.Client
}

func NewRedisMetricsSink(client *redis.Client) *RedisMetricsSink {
	return &RedisMetricsSink{client: client}
}

func (s *RedisMetricsSink) Append(ctx context.Context, rec models.MetricsRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal metrics record: %w", err)
	}
	if err := s.client.RPush(ctx, metricsListKey, payload).Err(); err != nil {
		return fmt.Errorf("push metrics record: %w", err)
	}
	return nil
}

func (s *RedisMetricsSink) ReadRecent(ctx context.Context, limit int) ([]models.MetricsRecord, error) {
	raw, err := s.client.LRange(ctx, metricsListKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read metrics list: %w", err)
	}

	out := make([]models.MetricsRecord, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var rec models.MetricsRecord
		if err := json.Unmarshal([]byte(raw[i]), &rec); err != nil {
			continue
		}
		out = append(out, rec)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
