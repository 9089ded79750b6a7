// Package memory is a non-persistent storage used for demos and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/goserg/doublesrating/internal/domain"
	"github.com/goserg/doublesrating/internal/storage"
)

type Storage struct {
	mu          sync.RWMutex
	players     map[string]domain.Player
	playerOrder []string
	sessions    map[string]domain.Session
	settings    *domain.RankingSettings
}

var _ storage.Storage = (*Storage)(nil)

func New() *Storage {
	return &Storage{
		players:  make(map[string]domain.Player),
		sessions: make(map[string]domain.Session),
	}
}

func (s *Storage) ListPlayers(_ context.Context) ([]domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	players := make([]domain.Player, 0, len(s.playerOrder))
	for _, id := range s.playerOrder {
		players = append(players, s.players[id])
	}
	return players, nil
}

func (s *Storage) GetPlayer(_ context.Context, id string) (domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return domain.Player{}, fmt.Errorf("player %s: %w", id, storage.ErrNotFound)
	}
	return p, nil
}

func (s *Storage) AddPlayer(_ context.Context, player domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.players[player.ID]; ok {
		return fmt.Errorf("player %s: %w", player.ID, storage.ErrDuplicate)
	}
	for _, p := range s.players {
		if p.Name == player.Name {
			return fmt.Errorf("player %s: %w", player.Name, storage.ErrDuplicate)
		}
	}
	s.players[player.ID] = player
	s.playerOrder = append(s.playerOrder, player.ID)
	return nil
}

func (s *Storage) UpdatePlayers(_ context.Context, players []domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatePlayers(players)
}

func (s *Storage) updatePlayers(players []domain.Player) error {
	for _, p := range players {
		if _, ok := s.players[p.ID]; !ok {
			return fmt.Errorf("player %s: %w", p.ID, storage.ErrNotFound)
		}
	}
	for _, p := range players {
		s.players[p.ID] = p
	}
	return nil
}

func (s *Storage) ListSessions(_ context.Context) ([]domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]domain.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, cloneSession(session))
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].Date.Equal(sessions[j].Date) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].Date.Before(sessions[j].Date)
	})
	return sessions, nil
}

func (s *Storage) GetSession(_ context.Context, id string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, fmt.Errorf("session %s: %w", id, storage.ErrNotFound)
	}
	return cloneSession(session), nil
}

func (s *Storage) CreateSession(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; ok {
		return fmt.Errorf("session %s: %w", session.ID, storage.ErrDuplicate)
	}
	s.sessions[session.ID] = cloneSession(session)
	return nil
}

func (s *Storage) SetSessionStatus(_ context.Context, id string, status domain.SessionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return fmt.Errorf("session %s: %w", id, storage.ErrNotFound)
	}
	session.Status = status
	s.sessions[session.ID] = session
	return nil
}

func (s *Storage) SaveRound(_ context.Context, sessionID string, round domain.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session %s: %w", sessionID, storage.ErrNotFound)
	}
	for _, r := range session.Rounds {
		if r.Number == round.Number {
			return fmt.Errorf("round %d of session %s: %w", round.Number, sessionID, storage.ErrDuplicate)
		}
	}
	session.Rounds = append(cloneRounds(session.Rounds), cloneRound(round))
	s.sessions[session.ID] = session
	return nil
}

func (s *Storage) UpdateMatch(_ context.Context, sessionID string, roundNumber int, match domain.Match, players []domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session %s: %w", sessionID, storage.ErrNotFound)
	}
	round, err := session.Round(roundNumber)
	if err != nil {
		return fmt.Errorf("%v: %w", err, storage.ErrNotFound)
	}
	round, err = round.WithMatch(cloneMatch(match))
	if err != nil {
		return fmt.Errorf("%v: %w", err, storage.ErrNotFound)
	}
	for _, p := range players {
		if _, ok := s.players[p.ID]; !ok {
			return fmt.Errorf("player %s: %w", p.ID, storage.ErrNotFound)
		}
	}
	session, err = session.WithUpdatedRound(round)
	if err != nil {
		return err
	}
	s.sessions[session.ID] = session
	return s.updatePlayers(players)
}

func (s *Storage) GetSettings(_ context.Context) (domain.RankingSettings, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings == nil {
		return domain.RankingSettings{}, false, nil
	}
	return *s.settings, true, nil
}

func (s *Storage) SaveSettings(_ context.Context, settings domain.RankingSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = &settings
	return nil
}

func (s *Storage) ApplyRecalculation(_ context.Context, players []domain.Player, sessions []domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, session := range sessions {
		if _, ok := s.sessions[session.ID]; !ok {
			return fmt.Errorf("session %s: %w", session.ID, storage.ErrNotFound)
		}
	}
	if err := s.updatePlayers(players); err != nil {
		return err
	}
	for _, session := range sessions {
		s.sessions[session.ID] = cloneSession(session)
	}
	return nil
}

func cloneSession(s domain.Session) domain.Session {
	s.Participants = append([]string(nil), s.Participants...)
	s.Rounds = cloneRounds(s.Rounds)
	return s
}

func cloneRounds(rounds []domain.Round) []domain.Round {
	if rounds == nil {
		return nil
	}
	out := make([]domain.Round, len(rounds))
	for i := range rounds {
		out[i] = cloneRound(rounds[i])
	}
	return out
}

func cloneRound(r domain.Round) domain.Round {
	r.Resting = append([]string(nil), r.Resting...)
	if r.Matches != nil {
		matches := make([]domain.Match, len(r.Matches))
		for i := range r.Matches {
			matches[i] = cloneMatch(r.Matches[i])
		}
		r.Matches = matches
	}
	return r
}

func cloneMatch(m domain.Match) domain.Match {
	if m.TeamA.Score != nil {
		v := *m.TeamA.Score
		m.TeamA.Score = &v
	}
	if m.TeamB.Score != nil {
		v := *m.TeamB.Score
		m.TeamB.Score = &v
	}
	if m.IndividualDeltas != nil {
		deltas := make(map[string]float64, len(m.IndividualDeltas))
		for id, d := range m.IndividualDeltas {
			deltas[id] = d
		}
		m.IndividualDeltas = deltas
	}
	return m
}
