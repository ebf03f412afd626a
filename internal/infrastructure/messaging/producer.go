package messaging

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"podbook/pkg/metrics"
)

var tracer = otel.Tracer("messaging")

const defaultMaxLen = 100000

// 内容类型
const (
	KindEpisodes = "rss"
	KindFiles    = "files"
)

// ContentRegisteredMessage 内容登记事件载荷
type ContentRegisteredMessage struct {
	ProjectID string   `json:"project_id"`
	OwnerID   string   `json:"owner_id,omitempty"`
	Kind      string   `json:"kind"`
	Count     int      `json:"count"`
	ItemIDs   []string `json:"item_ids"`
}

// Producer 流生产者，流长度按 MAXLEN ~ 近似裁剪
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer 创建生产者，maxLen 非正时取默认值
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = defaultMaxLen
	}
	return &Producer{client: client, maxLen: maxLen}
}

// Publish 追加一条流条目，返回条目 ID
func (p *Producer) Publish(ctx context.Context, stream Stream, env *Envelope) (string, error) {
	ctx, span := tracer.Start(ctx, "messaging.publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.destination", string(stream)),
			attribute.String("messaging.message_id", env.ID),
			attribute.String("messaging.event_type", env.Type),
		))
	defer span.End()

	entryID, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: env.fields(),
	}).Result()
	if err != nil {
		span.RecordError(err)
		metrics.RedisStreamPublished.WithLabelValues(string(stream), "error").Inc()
		return "", fmt.Errorf("failed to publish message: %w", err)
	}

	metrics.RedisStreamPublished.WithLabelValues(string(stream), "ok").Inc()
	span.SetAttributes(attribute.String("messaging.entry_id", entryID))
	return entryID, nil
}

// PublishContentRegistered 发布内容登记事件
func (p *Producer) PublishContentRegistered(ctx context.Context, event *ContentRegisteredMessage) (string, error) {
	eventType := TypeFilesRegistered
	if event.Kind == KindEpisodes {
		eventType = TypeEpisodesRegistered
	}

	env, err := NewEnvelope(ctx, eventType, event.ProjectID, event.OwnerID, event)
	if err != nil {
		return "", err
	}
	return p.Publish(ctx, StreamContentRegistered, env)
}
