// AngelaMos | 2026
// metrics.go

package asset

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asset_operations_total",
			Help: "Blob store operations by backend, operation and result.",
		},
		[]string{"backend", "op", "result"},
	)

	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "asset_operation_duration_seconds",
			Help:    "Blob store operation latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "op"},
	)
)

func init() {
	prometheus.MustRegister(operationsTotal, operationDuration)
}

type instrumentedStore struct {
	next    Store
	backend string
}

var tracer = otel.Tracer("classifieds/asset")

// Instrument wraps a Store so every call is counted, timed and traced.
func Instrument(next Store, backend string) Store {
	return &instrumentedStore{next: next, backend: backend}
}

func (s *instrumentedStore) start(
	ctx context.Context,
	op string,
	key Key,
) (context.Context, trace.Span, time.Time) {
	ctx, span := tracer.Start(ctx, "asset."+op, trace.WithAttributes(
		attribute.String("asset.backend", s.backend),
		attribute.String("asset.key", key.Path()),
	))
	return ctx, span, time.Now()
}

func (s *instrumentedStore) observe(
	span trace.Span,
	op string,
	start time.Time,
	err error,
) {
	defer span.End()

	result := "ok"
	if err != nil {
		result = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, op+" failed")
	}
	operationsTotal.WithLabelValues(s.backend, op, result).Inc()
	operationDuration.WithLabelValues(s.backend, op).
		Observe(time.Since(start).Seconds())
}

func (s *instrumentedStore) Put(
	ctx context.Context,
	key Key,
	data []byte,
	contentType string,
) (Ref, error) {
	ctx, span, start := s.start(ctx, "put", key)
	ref, err := s.next.Put(ctx, key, data, contentType)
	s.observe(span, "put", start, err)
	return ref, err
}

func (s *instrumentedStore) Open(ctx context.Context, key Key) (*Object, error) {
	ctx, span, start := s.start(ctx, "open", key)
	obj, err := s.next.Open(ctx, key)
	s.observe(span, "open", start, err)
	return obj, err
}

func (s *instrumentedStore) Delete(ctx context.Context, key Key) error {
	ctx, span, start := s.start(ctx, "delete", key)
	err := s.next.Delete(ctx, key)
	s.observe(span, "delete", start, err)
	return err
}

func (s *instrumentedStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}
