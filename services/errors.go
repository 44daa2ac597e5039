package services

import (
	"errors"
	"fmt"
	"strings"

	"storefront/store"

	"github.com/go-playground/validator/v10"
)

// Every error returned by the services wraps exactly one of these kinds.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrStore      = errors.New("store failure")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// storeError translates an adapter error. notFound is used when the store
// reports a missing document.
func storeError(err error, notFound string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return notFoundError("%s", notFound)
	case errors.Is(err, store.ErrDuplicateKey):
		return fmt.Errorf("%w: product code must be unique", ErrConflict)
	}
	return fmt.Errorf("%w: %w", ErrStore, err)
}

// mapValidationError turns validator output into a single ErrValidation.
func mapValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return validationError("%v", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "gte":
			msgs = append(msgs, fe.Field()+" must be greater than or equal to "+fe.Param())
		case "min":
			msgs = append(msgs, fe.Field()+" must not be empty")
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return validationError("%s", strings.Join(msgs, ", "))
}
