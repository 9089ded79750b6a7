package storage

import (
	"context"
	"errors"

	"github.com/goserg/doublesrating/internal/domain"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type PlayerStorage interface {
	ListPlayers(ctx context.Context) ([]domain.Player, error)
	GetPlayer(ctx context.Context, id string) (domain.Player, error)
	AddPlayer(ctx context.Context, player domain.Player) error
	UpdatePlayers(ctx context.Context, players []domain.Player) error
}

type SessionStorage interface {
	ListSessions(ctx context.Context) ([]domain.Session, error)
	GetSession(ctx context.Context, id string) (domain.Session, error)
	CreateSession(ctx context.Context, session domain.Session) error
	SetSessionStatus(ctx context.Context, id string, status domain.SessionStatus) error
	SaveRound(ctx context.Context, sessionID string, round domain.Round) error
	// UpdateMatch stores a changed match and the players it touched in one
	// transaction.
	UpdateMatch(ctx context.Context, sessionID string, roundNumber int, match domain.Match, players []domain.Player) error
}

type SettingsStorage interface {
	// GetSettings reports false when nothing was saved yet.
	GetSettings(ctx context.Context) (domain.RankingSettings, bool, error)
	SaveSettings(ctx context.Context, settings domain.RankingSettings) error
}

type Storage interface {
	PlayerStorage
	SessionStorage
	SettingsStorage

	// ApplyRecalculation replaces player rating state and the stored deltas
	// of the given sessions atomically.
	ApplyRecalculation(ctx context.Context, players []domain.Player, sessions []domain.Session) error
}
