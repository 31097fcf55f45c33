package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/aidbuddy/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that write one structured record per
// event. User text never reaches these records.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurn: func(ctx context.Context, e *domain.TurnEvent) {
			logger.InfoContext(ctx, "turn",
				"session_id", e.SessionID,
				"intent", e.Intent,
				"from", e.From.String(),
				"to", e.To.String(),
				"changed", e.Diff != nil,
				"duration", e.Duration,
			)
		},
		OnEstimate: func(ctx context.Context, e *domain.EstimateEvent) {
			logger.InfoContext(ctx, "estimate",
				"session_id", e.SessionID,
				"award_year", e.AwardYear,
				"enrollment", e.Enrollment,
				"sai_band", e.SAIBand,
				"likelihood", e.Likelihood,
				"min", e.Min,
				"max", e.Max,
			)
		},
		OnSensitive: func(ctx context.Context, e *domain.EventBase) {
			logger.WarnContext(ctx, "sensitive input intercepted", "session_id", e.SessionID)
		},
		OnReset: func(ctx context.Context, e *domain.EventBase) {
			logger.InfoContext(ctx, "session reset", "session_id", e.SessionID)
		},
	}
}
