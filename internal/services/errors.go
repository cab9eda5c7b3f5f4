package services

import (
	"errors"
	"fmt"

	"socialapp/internal/apperr"
	"socialapp/internal/repositories"
)

// fromRepo converts repository sentinels into user-facing errors. Errors that
// already carry a kind pass through untouched.
func fromRepo(err error, subject string) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return &apperr.Error{Kind: apperr.KindNotFound, Message: subject + " not found", Err: err}
	case errors.Is(err, repositories.ErrDuplicate):
		return &apperr.Error{Kind: apperr.KindConflict, Message: subject + " already exists", Err: err}
	default:
		return fmt.Errorf("%s: %w", subject, err)
	}
}
