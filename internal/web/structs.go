package web

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type validator interface {
	Validate() error
}

// parseBody decodes a JSON body into req and validates it.
func parseBody(ctx *fiber.Ctx, req validator) error {
	if err := ctx.BodyParser(req); err != nil {
		return badRequest(fmt.Errorf("malformed body: %w", err))
	}
	if err := req.Validate(); err != nil {
		return badRequest(err)
	}
	return nil
}

type matchParams struct {
	sessionID string
	round     int
	matchID   string
}

func parseMatchParams(ctx *fiber.Ctx) (matchParams, error) {
	var err error
	p := matchParams{
		sessionID: ctx.Params("id"),
		matchID:   ctx.Params("mid"),
	}
	round, perr := ctx.ParamsInt("n")
	if perr != nil || round < 1 {
		err = errors.Join(err, errors.New("round number must be a positive integer"))
	}
	p.round = round
	if p.sessionID == "" {
		err = errors.Join(err, errors.New("session id must not be empty"))
	}
	if p.matchID == "" {
		err = errors.Join(err, errors.New("match id must not be empty"))
	}
	if err != nil {
		return matchParams{}, badRequest(err)
	}
	return p, nil
}
