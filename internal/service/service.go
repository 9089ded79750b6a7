package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/goserg/doublesrating/internal/cache/mem"
	"github.com/goserg/doublesrating/internal/domain"
	"github.com/goserg/doublesrating/internal/random"
	"github.com/goserg/doublesrating/internal/rotation"
	"github.com/goserg/doublesrating/internal/storage"
	"github.com/sirupsen/logrus"
)

var (
	ErrPlayerNotFound  = errors.New("player not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidPlayer   = errors.New("invalid player")
	ErrDuplicateName   = errors.New("player name is already taken")
	ErrInvalidRoster   = errors.New("invalid session roster")
	ErrNotCustom       = errors.New("match was not created in custom mode")
	ErrUnassigned      = errors.New("match has unassigned players")
	ErrActiveSessions  = errors.New("active sessions hold completed matches; archive them first")
)

// Service applies user actions to the stored dataset. Every mutating call
// holds one lock, so ratings are always computed from a consistent snapshot.
type Service struct {
	mu        sync.Mutex
	storage   storage.Storage
	cache     *mem.Cache
	rnd       random.Source
	generator *rotation.Generator
	defaults  domain.RankingSettings
	now       func() time.Time
	newID     func() string
	log       *logrus.Entry
}

type Option func(*Service)

func WithRandom(rnd random.Source) Option {
	return func(s *Service) {
		s.rnd = rnd
	}
}

func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		s.now = fn
	}
}

func WithIDs(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

// New builds a service. defaults are used until ranking settings are saved.
func New(l *logrus.Logger, st storage.Storage, defaults domain.RankingSettings, opts ...Option) *Service {
	s := &Service{
		storage:  st,
		cache:    mem.New(),
		defaults: defaults,
		now:      time.Now,
		newID:    uuid.NewString,
		log: l.WithFields(map[string]interface{}{
			"from": "service",
		}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = random.NewTimeSeeded()
	}
	s.generator = rotation.New(s.rnd, rotation.WithIDs(s.newID), rotation.WithClock(s.now))
	return s
}

func (s *Service) Settings(ctx context.Context) (domain.RankingSettings, error) {
	settings, found, err := s.storage.GetSettings(ctx)
	if err != nil {
		return domain.RankingSettings{}, err
	}
	if !found {
		return s.defaults, nil
	}
	return settings, nil
}

// UpdateSettings stores a new snapshot. Recorded deltas are left as they are
// until Recalculate runs.
func (s *Service) UpdateSettings(ctx context.Context, settings domain.RankingSettings) (domain.RankingSettings, error) {
	if err := settings.Validate(); err != nil {
		return domain.RankingSettings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.SaveSettings(ctx, settings); err != nil {
		return domain.RankingSettings{}, err
	}
	s.log.WithField("mode", settings.Mode).Info("ranking settings updated")
	return settings, nil
}

func playerErr(id string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	return err
}

func sessionErr(id string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return err
}
