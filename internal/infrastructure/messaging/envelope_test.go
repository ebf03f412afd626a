package messaging

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestEnvelopeFieldsDecode(t *testing.T) {
	event := &ContentRegisteredMessage{
		ProjectID: "p-1",
		OwnerID:   "u-1",
		Kind:      KindEpisodes,
		Count:     2,
		ItemIDs:   []string{"e1", "e2"},
	}

	env, err := NewEnvelope(context.Background(), TypeEpisodesRegistered, event.ProjectID, event.OwnerID, event)
	require.NoError(t, err)
	require.NotEmpty(t, env.ID)

	fields := env.fields()
	assert.Equal(t, "p-1", fields["project_id"])
	assert.NotContains(t, fields, "traceparent")

	decoded, err := DecodeEnvelope(fields)
	require.NoError(t, err)
	assert.Equal(t, env.ID, decoded.ID)
	assert.Equal(t, TypeEpisodesRegistered, decoded.Type)
	assert.Equal(t, "u-1", decoded.OwnerID)
	assert.WithinDuration(t, env.OccurredAt, decoded.OccurredAt, time.Microsecond)

	var got ContentRegisteredMessage
	require.NoError(t, decoded.Decode(&got))
	assert.Equal(t, *event, got)
}

func TestEnvelopeCarriesTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	env, err := NewEnvelope(ctx, TypeFilesRegistered, "p-1", "", map[string]int{"count": 1})
	require.NoError(t, err)

	decoded, err := DecodeEnvelope(env.fields())
	require.NoError(t, err)

	restored := trace.SpanContextFromContext(decoded.Context(context.Background()))
	assert.Equal(t, traceID, restored.TraceID())
	assert.Equal(t, spanID, restored.SpanID())
}

func TestDecodeEnvelopeRejectsMissingFields(t *testing.T) {
	_, err := DecodeEnvelope(map[string]any{"type": TypeFilesRegistered})
	assert.ErrorIs(t, err, ErrMalformedEnvelope)

	_, err = DecodeEnvelope(map[string]any{
		"id":          "m-1",
		"type":        TypeFilesRegistered,
		"payload":     "{}",
		"occurred_at": "yesterday",
	})
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestPublishFailsWithoutRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	p := NewProducer(client, 0)
	assert.Equal(t, int64(defaultMaxLen), p.maxLen)

	_, err := p.PublishContentRegistered(context.Background(), &ContentRegisteredMessage{ProjectID: "p-1", Kind: KindFiles, Count: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish message")
}
