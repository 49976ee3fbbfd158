package mysql

import (
	"loan-backoffice/internal/domain/application"
	"loan-backoffice/internal/domain/document"
	"loan-backoffice/internal/domain/restoration"
	"loan-backoffice/internal/domain/user"

	"gorm.io/gorm"
)

// Models lists every table owned by this service, parents first.
func Models() []any {
	return []any{
		&user.User{},
		&application.LoanApplication{},
		&application.StatusHistory{},
		&document.Document{},
		&restoration.Request{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
