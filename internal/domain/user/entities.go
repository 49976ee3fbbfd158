package user

import (
	"net/http"
	"time"

	"loan-backoffice/internal/apperror"
	"loan-backoffice/internal/domain/authz"
)

var (
	ErrNotFound = apperror.New(
		apperror.CodeNotFound,
		"user not found",
		http.StatusNotFound,
	)
	ErrAlreadyDeleted = apperror.New(
		apperror.CodeInvalidState,
		"user account is already deleted",
		http.StatusUnprocessableEntity,
	)
	ErrNotDeleted = apperror.New(
		apperror.CodeInvalidState,
		"user account is not deleted",
		http.StatusUnprocessableEntity,
	)
	ErrEmailTaken = apperror.New(
		apperror.CodeConflict,
		"email is already registered",
		http.StatusConflict,
	)
)

// Only the profile facets the lifecycle engine needs; credentials live with the auth gateway.
type User struct {
	ID        uint64     `gorm:"primaryKey;column:id" json:"-"`
	UserID    string     `gorm:"column:user_id;size:32;not null;uniqueIndex:ux_users_user_id" json:"user_id"`
	Email     string     `gorm:"column:email;size:255;not null;uniqueIndex:ux_users_email" json:"email"`
	FullName  string     `gorm:"column:full_name;size:255" json:"full_name"`
	Role      authz.Role `gorm:"column:role;size:32;not null" json:"role"`
	IsDeleted bool       `gorm:"column:is_deleted;not null;default:false;index" json:"is_deleted"`
	DeletedAt *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }
