// Package dbtest builds an in-memory SQLite store with the production schema
// and the usecase dependencies wired on top of it.
package dbtest

import (
	"context"
	"sync"
	"testing"
	"time"

	"loan-backoffice/internal/adapter/repository/mysql"
	"loan-backoffice/internal/domain/authz"
	"loan-backoffice/internal/domain/user"
	"loan-backoffice/internal/infrastructure/db"
	"loan-backoffice/internal/testutil/blobmock"
	"loan-backoffice/internal/testutil/notifymock"
	"loan-backoffice/internal/usecase"
	"loan-backoffice/internal/usecase/notifier"
	"loan-backoffice/pkg/id"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated in-memory database. A single connection keeps the
// memory database alive and serializes concurrent transactions.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), db.Config(logger.Silent))
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, mysql.AutoMigrate(gdb))
	return gdb
}

// Clock hands out strictly increasing timestamps, one second apart.
type Clock struct {
	mu  sync.Mutex
	cur time.Time
}

func NewClock() *Clock {
	return &Clock{cur: time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

type Env struct {
	DB     *gorm.DB
	UoW    *mysql.GormUoW
	Deps   usecase.Deps
	Sender *notifymock.Sender
	Blobs  *blobmock.Store
	Clock  *Clock
}

func NewEnv(t testing.TB) *Env {
	t.Helper()
	gdb := Open(t)
	u := mysql.NewGormUoW(gdb)
	sender := &notifymock.Sender{}
	clock := NewClock()
	return &Env{
		DB:     gdb,
		UoW:    u,
		Sender: sender,
		Blobs:  blobmock.New(),
		Clock:  clock,
		Deps: usecase.Deps{
			Repos:    u.Repos(),
			UoW:      u,
			Authz:    authz.DefaultPolicy(),
			Notifier: notifier.New(sender, zap.NewNop()),
			Logger:   zap.NewNop(),
			Now:      clock.Now,
		},
	}
}

// SeedUser inserts a live profile and returns the principal acting as it.
func (e *Env) SeedUser(t testing.TB, role authz.Role) (*user.User, authz.Principal) {
	t.Helper()
	uid := id.NewID32()
	acc := &user.User{
		UserID:   uid,
		Email:    uid + "@example.test",
		FullName: "User " + uid[:6],
		Role:     role,
	}
	require.NoError(t, e.Deps.Repos.Users.Create(context.Background(), acc))
	return acc, authz.Principal{UserID: uid, Role: role}
}
