// Package usecase holds what every lifecycle workflow shares: storage access,
// the authorization predicate, notification dispatch, a clock and a logger.
package usecase

import (
	"context"
	"time"

	"loan-backoffice/internal/domain/authz"
	"loan-backoffice/internal/domain/notification"
	"loan-backoffice/internal/domain/uow"
	"loan-backoffice/internal/usecase/notifier"

	"go.uber.org/zap"
)

type Deps struct {
	// Repos serve reads outside a transaction.
	Repos    uow.Repos
	UoW      uow.UnitOfWork
	Authz    authz.Authorizer
	Notifier *notifier.Dispatcher
	Logger   *zap.Logger
	Now      func() time.Time
}

func (d Deps) Clock() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

func (d Deps) Named(name string) *zap.Logger {
	if d.Logger != nil {
		return d.Logger.Named(name)
	}
	return zap.L().Named(name)
}

// NotifyUser resolves the user's address and dispatches; lookup failures are logged only.
func (d Deps) NotifyUser(ctx context.Context, userID string, kind notification.Kind, data map[string]string) {
	if d.Notifier == nil || d.Repos.Users == nil {
		return
	}
	u, err := d.Repos.Users.GetByUserID(ctx, userID)
	if err != nil {
		d.Named("notify").Warn("notification recipient lookup failed",
			zap.String("user_id", userID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return
	}
	if data == nil {
		data = map[string]string{}
	}
	data["full_name"] = u.FullName
	d.Notifier.Notify(ctx, notification.Message{To: u.Email, Kind: kind, Data: data})
}
