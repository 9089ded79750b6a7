package service

import (
	"context"
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/goserg/doublesrating/internal/domain"
	"github.com/sirupsen/logrus"
)

// StartSession opens an ACTIVE session for the given roster. A zero date
// means now.
func (s *Service) StartSession(ctx context.Context, date time.Time, participantIDs []string) (domain.Session, error) {
	if len(participantIDs) == 0 {
		return domain.Session{}, fmt.Errorf("%w: no participants", ErrInvalidRoster)
	}
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, id := range participantIDs {
		if id == "" {
			return domain.Session{}, fmt.Errorf("%w: empty player id", ErrInvalidRoster)
		}
		if !seen.Add(id) {
			return domain.Session{}, fmt.Errorf("%w: %s listed twice", ErrInvalidRoster, id)
		}
	}
	if date.IsZero() {
		date = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.resolve(ctx, participantIDs); err != nil {
		return domain.Session{}, err
	}
	session := domain.NewSession(s.newID(), date.UTC(), participantIDs)
	if err := s.storage.CreateSession(ctx, session); err != nil {
		return domain.Session{}, err
	}
	s.log.WithFields(logrus.Fields{
		"session":      session.ID,
		"participants": len(participantIDs),
	}).Info("session started")
	return session, nil
}

func (s *Service) GetSession(ctx context.Context, id string) (domain.Session, error) {
	session, err := s.storage.GetSession(ctx, id)
	if err != nil {
		return domain.Session{}, sessionErr(id, err)
	}
	return session, nil
}

// ListSessions returns all sessions oldest first.
func (s *Service) ListSessions(ctx context.Context) ([]domain.Session, error) {
	return s.storage.ListSessions(ctx)
}

// ArchiveSession closes a session for round generation and scoring.
// Archiving an archived session is a no-op.
func (s *Service) ArchiveSession(ctx context.Context, id string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.archive(ctx, id)
}

func (s *Service) archive(ctx context.Context, id string) (domain.Session, error) {
	session, err := s.storage.GetSession(ctx, id)
	if err != nil {
		return domain.Session{}, sessionErr(id, err)
	}
	if session.Archived() {
		return session, nil
	}
	session = session.Archive()
	if err := s.storage.SetSessionStatus(ctx, id, session.Status); err != nil {
		return domain.Session{}, sessionErr(id, err)
	}
	s.log.WithField("session", id).Info("session archived")
	return session, nil
}

// ArchiveStale archives every ACTIVE session dated more than maxAge ago and
// returns how many were archived.
func (s *Service) ArchiveStale(ctx context.Context, maxAge time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.storage.ListSessions(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := s.now().Add(-maxAge)
	archived := 0
	for _, session := range sessions {
		if session.Archived() || !session.Date.Before(cutoff) {
			continue
		}
		if _, err := s.archive(ctx, session.ID); err != nil {
			return archived, err
		}
		archived++
	}
	return archived, nil
}

// GenerateRound appends the next round to an ACTIVE session.
func (s *Service) GenerateRound(ctx context.Context, sessionID string, mode domain.Mode) (domain.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return domain.Round{}, sessionErr(sessionID, err)
	}
	if session.Archived() {
		return domain.Round{}, domain.ErrSessionArchived
	}
	participants, err := s.resolve(ctx, session.Participants)
	if err != nil {
		return domain.Round{}, err
	}

	round := s.generator.GenerateRound(participants, mode, len(session.Rounds)+1, session.Rounds)
	if err := round.Validate(session.Participants); err != nil {
		return domain.Round{}, fmt.Errorf("generated round %d: %w", round.Number, err)
	}
	if _, err := session.WithRound(round); err != nil {
		return domain.Round{}, err
	}
	if err := s.storage.SaveRound(ctx, sessionID, round); err != nil {
		return domain.Round{}, err
	}
	s.log.WithFields(logrus.Fields{
		"session": sessionID,
		"round":   round.Number,
		"mode":    mode,
		"matches": len(round.Matches),
		"resting": len(round.Resting),
	}).Info("round generated")
	return round, nil
}
