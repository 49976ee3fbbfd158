package mysql

import (
	"errors"

	"gorm.io/gorm"
)

// notFoundAs maps gorm's missing-row error to a domain error.
func notFoundAs(err, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
