package notify

import (
	"context"

	"loan-backoffice/internal/domain/notification"

	"go.uber.org/zap"
)

// LogSender only logs; used when no delivery backend is configured.
type LogSender struct{ logger *zap.Logger }

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger.Named("notify.log")}
}

func (l *LogSender) Send(_ context.Context, m notification.Message) error {
	subject, _, err := Render(m)
	if err != nil {
		return err
	}
	l.logger.Info("notification",
		zap.String("kind", string(m.Kind)),
		zap.String("to", m.To),
		zap.String("subject", subject),
	)
	return nil
}
