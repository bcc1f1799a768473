package appointments

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/barbershop-concierge/internal/extract"
)

var tracer = otel.Tracer("barbershop.internal.appointments")

// RedisRepository appends JSON-encoded records to a Redis list.
type RedisRepository struct {
	redis *redis.Client
	key   string
}

var _ Repository = (*RedisRepository)(nil)

// NewRedisRepository builds a repository on the given list key.
func NewRedisRepository(client *redis.Client, key string) *RedisRepository {
	if client == nil {
		panic("appointments: redis client cannot be nil")
	}
	if key == "" {
		key = "appointments"
	}
	return &RedisRepository{redis: client, key: key}
}

// Append pushes the record onto the tail of the list. RPUSH is atomic per call.
func (r *RedisRepository) Append(ctx context.Context, record extract.Fields) error {
	ctx, span := tracer.Start(ctx, "appointments.redis.append")
	defer span.End()

	data, err := json.Marshal(record)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("appointments: marshal record: %w", err)
	}
	if err := r.redis.RPush(ctx, r.key, data).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("appointments: redis append: %w", err)
	}
	return nil
}

// List reads the whole list in insertion order.
func (r *RedisRepository) List(ctx context.Context) ([]extract.Fields, error) {
	ctx, span := tracer.Start(ctx, "appointments.redis.list")
	defer span.End()

	raw, err := r.redis.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("appointments: redis list: %w", err)
	}
	span.SetAttributes(attribute.Int("barbershop.appointments.count", len(raw)))

	out := make([]extract.Fields, 0, len(raw))
	for _, item := range raw {
		var rec extract.Fields
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("appointments: decode record: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}
