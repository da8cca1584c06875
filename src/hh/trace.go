package hh

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// tracer mirrors the teacher's src/redis/fixed_cache_impl.go, which opens a
// named tracer at package scope and starts one span per DoLimit call. Here
// the equivalent "hot path under trace" is the top-down descent in Query.
var tracer = otel.Tracer("hh.Engine")

// QueryTraced is Query instrumented with an OpenTelemetry span reporting
// the level count, the total ingested weight and the final heavy-hitter
// count (per-level candidate counts are not recorded), grounded on fixedRateLimitCacheImpl.DoLimit's
// tracer.Start(ctx, "Redis Pipeline Execution", ...) pattern.
func (e *Engine) QueryTraced(ctx context.Context) []uint32 {
	_, span := tracer.Start(ctx, "HH Query Descent",
		trace.WithAttributes(
			attribute.Int("levels", int(e.L)),
			attribute.Int64("total_weight", e.n),
		),
	)
	defer span.End()

	result := e.Query()
	span.SetAttributes(attribute.Int("heavy_hitter_count", len(result)))
	return result
}
