package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func headerMap(hs []kafka.Header) map[string]string {
	m := make(map[string]string, len(hs))
	for _, h := range hs {
		m[h.Key] = string(h.Value)
	}
	return m
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "ecommerce.review.created", Topic("review", "created"))
}

func TestNewEvent(t *testing.T) {
	e, err := NewEvent("review.created", "r-1", "review", "review-service", map[string]int{"rating": 4})
	require.NoError(t, err)

	assert.NotEmpty(t, e.EventID)
	assert.Equal(t, 1, e.Version)
	assert.False(t, e.Timestamp.IsZero())
	assert.JSONEq(t, `{"rating":4}`, string(e.Data))

	var payload struct{ Rating int }
	require.NoError(t, json.Unmarshal(e.Data, &payload))
	assert.Equal(t, 4, payload.Rating)
}

func TestNewEvent_UnmarshalablePayload(t *testing.T) {
	_, err := NewEvent("review.created", "r-1", "review", "review-service", make(chan int))
	require.Error(t, err)
}

func TestProducer_Publish(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	w := &fakeWriter{}
	p := NewProducerWithWriter(w, []string{"localhost:9092"}, quietLogger())

	e, err := NewEvent("review.created", "r-1", "review", "review-service", map[string]string{"id": "r-1"})
	require.NoError(t, err)
	e.WithCorrelationID("corr-1").WithMetadata("author_id", "u-1")

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
		SpanID:     trace.SpanID{1, 2, 3, 4, 5, 6, 7, 8},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	before := testutil.ToFloat64(publishTotal.WithLabelValues("ecommerce.review.created", "ok"))
	require.NoError(t, p.Publish(ctx, Topic("review", "created"), e))
	assert.Equal(t, before+1, testutil.ToFloat64(publishTotal.WithLabelValues("ecommerce.review.created", "ok")))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "ecommerce.review.created", msg.Topic)
	assert.Equal(t, "r-1", string(msg.Key))

	headers := headerMap(msg.Headers)
	assert.Equal(t, "review.created", headers["event_type"])
	assert.Equal(t, "review-service", headers["source"])
	assert.Equal(t, "corr-1", headers["correlation_id"])
	assert.Contains(t, headers["traceparent"], "0102030405060708090a0b0c0d0e0f10")

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, e.EventID, decoded.EventID)
	assert.Equal(t, "u-1", decoded.Metadata["author_id"])
}

func TestProducer_PublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := NewProducerWithWriter(w, nil, quietLogger())

	e, err := NewEvent("review.deleted", "r-1", "review", "review-service", struct{}{})
	require.NoError(t, err)

	before := testutil.ToFloat64(publishTotal.WithLabelValues("ecommerce.review.deleted", "error"))
	err = p.Publish(context.Background(), Topic("review", "deleted"), e)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
	assert.Equal(t, before+1, testutil.ToFloat64(publishTotal.WithLabelValues("ecommerce.review.deleted", "error")))
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, NewProducerWithWriter(w, nil, quietLogger()).Close())
	assert.True(t, w.closed)
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	assert.EqualError(t, PingBrokers(context.Background(), nil), "kafka: no brokers configured")
}

func TestHeaderCarrier(t *testing.T) {
	headers := []kafka.Header{{Key: "source", Value: []byte("a")}}
	c := HeaderCarrier{Headers: &headers}

	c.Set("source", "b")
	c.Set("traceparent", "00-abc")

	assert.Equal(t, "b", c.Get("source"))
	assert.Equal(t, "00-abc", c.Get("traceparent"))
	assert.Equal(t, "", c.Get("missing"))
	assert.ElementsMatch(t, []string{"source", "traceparent"}, c.Keys())
	assert.Len(t, headers, 2)
}
