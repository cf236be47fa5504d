package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/bpmngen/pkg/domain"
)

// LoggingHooks logs every lifecycle event at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnGenerateStart: func(ctx context.Context, e *domain.GenerateEvent) {
			logger.DebugContext(ctx, "generate_start", "token", e.Token, "name", e.Name)
		},
		OnGenerateEnd: func(ctx context.Context, e *domain.GenerateEvent) {
			logger.DebugContext(ctx, "generate_end",
				"token", e.Token,
				"outcome", e.Outcome,
				"duration", e.Duration,
				"error", e.Err,
			)
		},
		OnResultDiscarded: func(ctx context.Context, e *domain.GenerateEvent) {
			logger.DebugContext(ctx, "result_discarded", "token", e.Token)
		},
		OnRender: func(ctx context.Context, e *domain.RenderEvent) {
			logger.DebugContext(ctx, "render",
				"realm", e.RealmID,
				"status", e.Status,
				"warnings", e.Warnings,
				"error", e.Err,
			)
		},
	}
}

// Combine fans every event out to all hook sets, in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		out.OnGenerateStart = chainGenerate(out.OnGenerateStart, h.OnGenerateStart)
		out.OnGenerateEnd = chainGenerate(out.OnGenerateEnd, h.OnGenerateEnd)
		out.OnResultDiscarded = chainGenerate(out.OnResultDiscarded, h.OnResultDiscarded)
		out.OnRender = chainRender(out.OnRender, h.OnRender)
	}
	return out
}

func chainGenerate(a, b func(context.Context, *domain.GenerateEvent)) func(context.Context, *domain.GenerateEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.GenerateEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainRender(a, b func(context.Context, *domain.RenderEvent)) func(context.Context, *domain.RenderEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.RenderEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
