package service

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"publishingCore/internal/errs"
	"publishingCore/internal/repository"
)

// fail translates repository errors into error kinds. Errors that already
// carry a kind pass through. Anything else is an infrastructure failure and
// gets logged here, once.
func fail(log zerolog.Logger, op string, err error) error {
	var kindErr *errs.Error
	if errors.As(err, &kindErr) {
		return err
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return errs.Wrap(op, errs.NotFound, err)
	case errors.Is(err, repository.ErrConflict):
		return errs.Wrap(op, errs.Conflict, err)
	}

	log.Error().Err(err).Str("op", op).Msg("operation failed")
	return errs.Wrap(op, errs.Infrastructure, err)
}

func invalid(op string, err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fe := validationErrors[0]
		return &errs.Error{
			Op:      op,
			Kind:    errs.ValidationFailed,
			Message: "field " + fe.Field() + " failed on " + fe.Tag(),
			Err:     err,
		}
	}
	return errs.Wrap(op, errs.ValidationFailed, err)
}
