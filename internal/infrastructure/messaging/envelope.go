// Package messaging 通过 Redis Stream 向成书流水线发布项目内容事件
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Stream 流名称
type Stream string

// StreamContentRegistered 项目内容登记完成，下游据此启动成书处理
const StreamContentRegistered Stream = "stream:content:registered"

// 事件类型
const (
	TypeEpisodesRegistered = "episodes_registered"
	TypeFilesRegistered    = "files_registered"
)

// 流字段名
const (
	fieldID         = "id"
	fieldType       = "type"
	fieldProjectID  = "project_id"
	fieldOwnerID    = "owner_id"
	fieldOccurredAt = "occurred_at"
	fieldPayload    = "payload"
	fieldTraceState = "traceparent"
)

// ErrMalformedEnvelope 流条目缺少必需字段
var ErrMalformedEnvelope = errors.New("messaging: malformed envelope")

// Envelope 流条目，以扁平字段写入，便于 XRANGE 直接查看
type Envelope struct {
	ID         string
	Type       string
	ProjectID  string
	OwnerID    string
	OccurredAt time.Time
	Payload    json.RawMessage
	// Carrier W3C 追踪上下文
	Carrier propagation.MapCarrier
}

// NewEnvelope 编码载荷并注入当前追踪上下文
func NewEnvelope(ctx context.Context, eventType, projectID, ownerID string, payload any) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("messaging: encode %s payload: %w", eventType, err)
	}
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	return &Envelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		ProjectID:  projectID,
		OwnerID:    ownerID,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
		Carrier:    carrier,
	}, nil
}

func (e *Envelope) fields() map[string]any {
	out := map[string]any{
		fieldID:         e.ID,
		fieldType:       e.Type,
		fieldProjectID:  e.ProjectID,
		fieldOccurredAt: e.OccurredAt.Format(time.RFC3339Nano),
		fieldPayload:    string(e.Payload),
	}
	if e.OwnerID != "" {
		out[fieldOwnerID] = e.OwnerID
	}
	if tp := e.Carrier.Get(fieldTraceState); tp != "" {
		out[fieldTraceState] = tp
	}
	return out
}

// DecodeEnvelope 从流条目字段还原，供消费方使用
func DecodeEnvelope(values map[string]any) (*Envelope, error) {
	str := func(key string) string {
		s, _ := values[key].(string)
		return s
	}

	e := &Envelope{
		ID:        str(fieldID),
		Type:      str(fieldType),
		ProjectID: str(fieldProjectID),
		OwnerID:   str(fieldOwnerID),
		Payload:   json.RawMessage(str(fieldPayload)),
		Carrier:   propagation.MapCarrier{},
	}
	if e.ID == "" || e.Type == "" || len(e.Payload) == 0 {
		return nil, ErrMalformedEnvelope
	}
	if ts := str(fieldOccurredAt); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("%w: occurred_at: %v", ErrMalformedEnvelope, err)
		}
		e.OccurredAt = t
	}
	if tp := str(fieldTraceState); tp != "" {
		e.Carrier.Set(fieldTraceState, tp)
	}
	return e, nil
}

// Decode 解析载荷
func (e *Envelope) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Context 从追踪上下文恢复父 span
func (e *Envelope) Context(ctx context.Context) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, e.Carrier)
}
