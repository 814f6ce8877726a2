package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/mymotiv/internal/apperrors"
)

// Translate maps gorm errors onto application error kinds. Errors that
// already carry a kind pass through unchanged.
func Translate(err error, resource string) error {
	var appErr *apperrors.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr), errors.Is(err, apperrors.ErrInternal):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.NotFound(resource)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Conflict(resource + " already exists")
	default:
		return apperrors.Internal(resource, err)
	}
}
