package events

import (
	"context"
	"log/slog"

	"github.com/taskhub/taskhub/internal/observability"
)

// Observed wraps a Publisher so that failures are logged and counted but never returned.
// Request paths publish through it so a broken broker does not fail a write.
type Observed struct {
	Next    Publisher
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Publish implements Publisher and always returns nil.
func (o Observed) Publish(ctx context.Context, n Notice) error {
	if o.Next == nil {
		return nil
	}
	err := o.Next.Publish(ctx, n)
	o.Metrics.ObserveNotice(n.Type, err)
	if err != nil && o.Logger != nil {
		o.Logger.Warn("notice publish failed",
			slog.String("type", n.Type),
			slog.Int64("project_id", n.ProjectID),
			slog.Any("error", err),
		)
	}
	return nil
}
