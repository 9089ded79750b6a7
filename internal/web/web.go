package web

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/goserg/doublesrating/internal/config"
	"github.com/goserg/doublesrating/internal/domain"
	"github.com/goserg/doublesrating/internal/service"
	"github.com/goserg/doublesrating/internal/web/webpath"
	"github.com/sirupsen/logrus"
)

type Server struct {
	service *service.Service
	app     *fiber.App
	cfg     config.Server
	log     *logrus.Entry
}

func New(l *logrus.Logger, svc *service.Service, cfg config.Server) *Server {
	server := Server{
		service: svc,
		cfg:     cfg,
		log: l.WithFields(map[string]interface{}{
			"from": "web",
		}),
	}

	// Route params and bodies outlive the request in storage and caches.
	app := fiber.New(fiber.Config{
		Immutable:             true,
		ErrorHandler:          errorHandler(server.log),
		DisableStartupMessage: !cfg.Debug,
	})
	app.Use(recover.New())
	app.Use(server.logRequest)

	app.Get(webpath.Api, server.handleIndex)
	app.Get(webpath.ApiPlayers, server.handleListPlayers)
	app.Post(webpath.ApiPlayers, server.handleCreatePlayer)
	app.Get(webpath.ApiPlayer, server.handleGetPlayer)
	app.Put(webpath.ApiPlayerHidden, server.handleSetHidden)
	app.Get(webpath.ApiRatings, server.handleRatings)
	app.Get(webpath.ApiGlicko2, server.handleGlicko2)
	app.Get(webpath.ApiSessions, server.handleListSessions)
	app.Post(webpath.ApiSessions, server.handleStartSession)
	app.Get(webpath.ApiSession, server.handleGetSession)
	app.Post(webpath.ApiArchive, server.handleArchive)
	app.Post(webpath.ApiRounds, server.handleGenerateRound)
	app.Post(webpath.ApiMatchScore, server.handleSubmitScore)
	app.Post(webpath.ApiMatchReopen, server.handleReopen)
	app.Put(webpath.ApiMatchTeams, server.handleAssignTeams)
	app.Post(webpath.ApiRecalculate, server.handleRecalculate)
	app.Get(webpath.ApiSettings, server.handleGetSettings)
	app.Put(webpath.ApiSettings, server.handleUpdateSettings)
	server.app = app
	return &server
}

func (s *Server) Serve() error {
	s.log.WithField("port", s.cfg.Port).Info("listening")
	return s.app.Listen(s.cfg.Host + ":" + strconv.Itoa(s.cfg.Port))
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) logRequest(ctx *fiber.Ctx) error {
	err := ctx.Next()
	s.log.WithFields(logrus.Fields{
		"method": ctx.Method(),
		"path":   ctx.Path(),
	}).Debug("request")
	return err
}

func (s *Server) handleIndex(ctx *fiber.Ctx) error {
	return ctx.JSON(webpath.Path())
}

func (s *Server) handleListPlayers(ctx *fiber.Ctx) error {
	if name := ctx.Query("name"); name != "" {
		p, err := s.service.GetByName(ctx.UserContext(), name)
		if err != nil {
			return err
		}
		return ctx.JSON([]playerDTO{newPlayerDTO(p)})
	}
	players, err := s.service.ListPlayers(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(newPlayerDTOs(players))
}

func (s *Server) handleCreatePlayer(ctx *fiber.Ctx) error {
	var req createPlayer
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	p, err := s.service.CreatePlayer(ctx.UserContext(), req.Name, domain.Gender(req.Gender), req.BasePoints)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(newPlayerDTO(p))
}

func (s *Server) handleGetPlayer(ctx *fiber.Ctx) error {
	p, err := s.service.GetPlayer(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(newPlayerDTO(p))
}

func (s *Server) handleSetHidden(ctx *fiber.Ctx) error {
	var req setHidden
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	p, err := s.service.SetHidden(ctx.UserContext(), ctx.Params("id"), *req.Hidden)
	if err != nil {
		return err
	}
	return ctx.JSON(newPlayerDTO(p))
}

func (s *Server) handleRatings(ctx *fiber.Ctx) error {
	players, err := s.service.Ratings(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(newPlayerDTOs(players))
}

func (s *Server) handleGlicko2(ctx *fiber.Ctx) error {
	ratings, err := s.service.Glicko2Ratings(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(newGlickoDTOs(ratings))
}

func (s *Server) handleListSessions(ctx *fiber.Ctx) error {
	sessions, err := s.service.ListSessions(ctx.UserContext())
	if err != nil {
		return err
	}
	out := make([]sessionDTO, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, newSessionDTO(session))
	}
	return ctx.JSON(out)
}

func (s *Server) handleStartSession(ctx *fiber.Ctx) error {
	var req startSession
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	session, err := s.service.StartSession(ctx.UserContext(), req.date(), req.Participants)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(newSessionDTO(session))
}

func (s *Server) handleGetSession(ctx *fiber.Ctx) error {
	session, err := s.service.GetSession(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(newSessionDTO(session))
}

func (s *Server) handleArchive(ctx *fiber.Ctx) error {
	session, err := s.service.ArchiveSession(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(newSessionDTO(session))
}

func (s *Server) handleGenerateRound(ctx *fiber.Ctx) error {
	var req generateRound
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	round, err := s.service.GenerateRound(ctx.UserContext(), ctx.Params("id"), domain.Mode(req.Mode))
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(newRoundDTO(round))
}

func (s *Server) handleSubmitScore(ctx *fiber.Ctx) error {
	p, err := parseMatchParams(ctx)
	if err != nil {
		return err
	}
	var req submitScore
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	m, err := s.service.SubmitScore(ctx.UserContext(), p.sessionID, p.round, p.matchID, *req.Score1, *req.Score2)
	if err != nil {
		return err
	}
	return ctx.JSON(newMatchDTO(m))
}

func (s *Server) handleReopen(ctx *fiber.Ctx) error {
	p, err := parseMatchParams(ctx)
	if err != nil {
		return err
	}
	m, err := s.service.ReopenMatch(ctx.UserContext(), p.sessionID, p.round, p.matchID)
	if err != nil {
		return err
	}
	return ctx.JSON(newMatchDTO(m))
}

func (s *Server) handleAssignTeams(ctx *fiber.Ctx) error {
	p, err := parseMatchParams(ctx)
	if err != nil {
		return err
	}
	var req assignTeams
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	m, err := s.service.AssignCustomMatch(ctx.UserContext(), p.sessionID, p.round, p.matchID, req.TeamA, req.TeamB)
	if err != nil {
		return err
	}
	return ctx.JSON(newMatchDTO(m))
}

func (s *Server) handleRecalculate(ctx *fiber.Ctx) error {
	res, err := s.service.Recalculate(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(newRecalcDTO(res))
}

func (s *Server) handleGetSettings(ctx *fiber.Ctx) error {
	settings, err := s.service.Settings(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(newSettingsDTO(settings))
}

func (s *Server) handleUpdateSettings(ctx *fiber.Ctx) error {
	var req settingsDTO
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	settings, err := s.service.UpdateSettings(ctx.UserContext(), req.toDomain())
	if err != nil {
		return err
	}
	return ctx.JSON(newSettingsDTO(settings))
}
