package web

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/goserg/doublesrating/internal/domain"
	"github.com/goserg/doublesrating/internal/service"
	"github.com/sirupsen/logrus"
)

type errorData struct {
	Status int      `json:"status"`
	Errors []string `json:"errors"`
}

type multierr interface {
	Unwrap() []error
}

func unwrap(err error) []error {
	var merr multierr
	if errors.As(err, &merr) {
		var errs []error
		for _, err := range merr.Unwrap() {
			errs = append(errs, unwrap(err)...)
		}
		return errs
	}
	return []error{err}
}

func newErrorData(status int, err error) errorData {
	d := errorData{Status: status}
	for _, err := range unwrap(err) {
		d.Errors = append(d.Errors, err.Error())
	}
	return d
}

// invalidRequest marks errors found while decoding or validating a request.
type invalidRequest struct {
	err error
}

func (e invalidRequest) Error() string { return e.err.Error() }
func (e invalidRequest) Unwrap() error { return e.err }

func badRequest(err error) error {
	return invalidRequest{err: err}
}

func statusOf(err error) int {
	var ferr *fiber.Error
	var ierr invalidRequest
	switch {
	case errors.As(err, &ferr):
		return ferr.Code
	case errors.As(err, &ierr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrPlayerNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, domain.ErrRoundNotFound),
		errors.Is(err, domain.ErrMatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateName),
		errors.Is(err, domain.ErrSessionArchived),
		errors.Is(err, domain.ErrMatchNotPending),
		errors.Is(err, domain.ErrMatchNotDone),
		errors.Is(err, service.ErrActiveSessions):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidPlayer),
		errors.Is(err, service.ErrInvalidRoster),
		errors.Is(err, service.ErrNotCustom),
		errors.Is(err, service.ErrUnassigned),
		errors.Is(err, domain.ErrInvalidScore),
		errors.Is(err, domain.ErrInvalidSettings),
		errors.Is(err, domain.ErrBadRoster):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func errorHandler(log *logrus.Entry) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		status := statusOf(err)
		if status >= http.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"method": ctx.Method(),
				"path":   ctx.Path(),
			}).Error("request failed")
			return ctx.Status(status).JSON(errorData{
				Status: status,
				Errors: []string{http.StatusText(status)},
			})
		}
		return ctx.Status(status).JSON(newErrorData(status, err))
	}
}
