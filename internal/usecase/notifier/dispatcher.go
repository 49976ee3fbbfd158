package notifier

import (
	"context"
	"time"

	"loan-backoffice/internal/domain/notification"
	"loan-backoffice/internal/infrastructure/metrics"

	"go.uber.org/zap"
)

const sendTimeout = 10 * time.Second

// Dispatcher sends notifications after a state change has committed.
// Delivery failures are logged and counted, never returned.
type Dispatcher struct {
	sender notification.Sender
	logger *zap.Logger
}

func New(sender notification.Sender, logger ...*zap.Logger) *Dispatcher {
	l := zap.L().Named("notifier")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notifier")
	}
	return &Dispatcher{sender: sender, logger: l}
}

func (d *Dispatcher) Notify(ctx context.Context, m notification.Message) {
	if d == nil || d.sender == nil {
		return
	}
	if m.To == "" {
		d.logger.Warn("notification skipped, no recipient", zap.String("kind", string(m.Kind)))
		return
	}
	// detach from the request so a cancelled client does not drop the email
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, m); err != nil {
		metrics.NotificationsFailed.WithLabelValues(string(m.Kind)).Inc()
		d.logger.Error("notification dispatch failed",
			zap.String("kind", string(m.Kind)),
			zap.String("to", m.To),
			zap.Error(err),
		)
		return
	}
	d.logger.Debug("notification sent", zap.String("kind", string(m.Kind)), zap.String("to", m.To))
}
