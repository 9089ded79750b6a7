package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goserg/doublesrating/internal/domain"
	"github.com/goserg/doublesrating/internal/storage"
)

func (s *Service) CreatePlayer(ctx context.Context, name string, gender domain.Gender, basePoints float64) (domain.Player, error) {
	name = strings.Join(strings.Fields(name), " ")
	var err error
	if name == "" {
		err = errors.Join(err, fmt.Errorf("%w: name is empty", ErrInvalidPlayer))
	}
	if gender != domain.Male && gender != domain.Female {
		err = errors.Join(err, fmt.Errorf("%w: unknown gender %q", ErrInvalidPlayer, gender))
	}
	if basePoints < 0 {
		err = errors.Join(err, fmt.Errorf("%w: base points are negative", ErrInvalidPlayer))
	}
	if err != nil {
		return domain.Player{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refreshCache(ctx); err != nil {
		return domain.Player{}, err
	}
	if _, ok := s.cache.GetPlayerByName(name); ok {
		return domain.Player{}, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}

	player := domain.Player{
		ID:           s.newID(),
		Name:         name,
		Gender:       gender,
		BasePoints:   basePoints,
		RegisteredAt: s.now().UTC(),
	}
	err = s.storage.AddPlayer(ctx, player)
	if errors.Is(err, storage.ErrDuplicate) {
		return domain.Player{}, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	if err != nil {
		return domain.Player{}, err
	}
	s.cache.Invalidate()
	s.log.WithField("player", player.Name).Info("player created")
	return player, nil
}

func (s *Service) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	return s.storage.ListPlayers(ctx)
}

func (s *Service) GetPlayer(ctx context.Context, id string) (domain.Player, error) {
	if err := s.refreshCache(ctx); err != nil {
		return domain.Player{}, err
	}
	p, ok := s.cache.GetPlayer(id)
	if !ok {
		return domain.Player{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	return p, nil
}

// GetByName looks a player up by name, ignoring case and extra whitespace.
func (s *Service) GetByName(ctx context.Context, name string) (domain.Player, error) {
	if err := s.refreshCache(ctx); err != nil {
		return domain.Player{}, err
	}
	p, ok := s.cache.GetPlayerByName(name)
	if !ok {
		return domain.Player{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, name)
	}
	return p, nil
}

// SetHidden hides a player from rankings. Hidden players keep their history
// and can still be scheduled.
func (s *Service) SetHidden(ctx context.Context, id string, hidden bool) (domain.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.storage.GetPlayer(ctx, id)
	if err != nil {
		return domain.Player{}, playerErr(id, err)
	}
	p.Hidden = hidden
	if err := s.storage.UpdatePlayers(ctx, []domain.Player{p}); err != nil {
		return domain.Player{}, playerErr(id, err)
	}
	s.cache.Invalidate()
	return p, nil
}

// Ratings returns visible players best first with RatingRank set.
func (s *Service) Ratings(ctx context.Context) ([]domain.Player, error) {
	if err := s.refreshCache(ctx); err != nil {
		return nil, err
	}
	return s.cache.GetRatings(), nil
}

func (s *Service) refreshCache(ctx context.Context) error {
	if s.cache.Valid() {
		return nil
	}
	players, err := s.storage.ListPlayers(ctx)
	if err != nil {
		return err
	}
	s.cache.Update(players)
	return nil
}

// resolve loads the given players from storage keeping the order of ids.
func (s *Service) resolve(ctx context.Context, ids []string) ([]domain.Player, error) {
	players := make([]domain.Player, 0, len(ids))
	for _, id := range ids {
		p, err := s.storage.GetPlayer(ctx, id)
		if err != nil {
			return nil, playerErr(id, err)
		}
		players = append(players, p)
	}
	return players, nil
}
