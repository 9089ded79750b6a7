package service

import (
	"context"
	"fmt"

	"github.com/goserg/doublesrating/internal/domain"
	"github.com/goserg/doublesrating/internal/glicko"
	"github.com/goserg/doublesrating/internal/recalc"
	"github.com/sirupsen/logrus"
)

// Recalculate rebuilds every player's match points, wins and losses from the
// archived history under the current settings and rewrites the stored deltas.
// Nothing is written if the replay fails or an active session holds completed
// matches.
func (s *Service) Recalculate(ctx context.Context) (recalc.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	players, err := s.storage.ListPlayers(ctx)
	if err != nil {
		return recalc.Result{}, err
	}
	sessions, err := s.storage.ListSessions(ctx)
	if err != nil {
		return recalc.Result{}, err
	}
	for _, session := range sessions {
		if !session.Archived() && hasCompleted(session) {
			return recalc.Result{}, fmt.Errorf("session %s: %w", session.ID, ErrActiveSessions)
		}
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return recalc.Result{}, err
	}

	res, err := recalc.RecalculateAll(players, sessions, &settings)
	if err != nil {
		return recalc.Result{}, err
	}
	if err := s.storage.ApplyRecalculation(ctx, res.Players, res.Sessions); err != nil {
		return recalc.Result{}, err
	}
	s.cache.Invalidate()

	for _, skipped := range res.Skipped {
		s.log.WithError(skipped.Err).WithFields(logrus.Fields{
			"session": skipped.SessionID,
			"round":   skipped.Round,
			"match":   skipped.MatchID,
		}).Warn("match skipped during recalculation")
	}
	s.log.WithFields(logrus.Fields{
		"mode":     settings.Mode,
		"sessions": len(res.Sessions),
		"replayed": res.Replayed,
		"skipped":  len(res.Skipped),
	}).Info("ratings recalculated")
	return res, nil
}

func hasCompleted(session domain.Session) bool {
	for _, r := range session.Rounds {
		for _, m := range r.Matches {
			if m.Completed() {
				return true
			}
		}
	}
	return false
}

// Glicko2Ratings computes the Glicko-2 ranking over archived sessions for
// visible players. It is informational and never stored.
func (s *Service) Glicko2Ratings(ctx context.Context) ([]glicko.Rating, error) {
	players, err := s.storage.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := s.storage.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	hidden := make(map[string]bool, len(players))
	for _, p := range players {
		hidden[p.ID] = p.Hidden
	}
	all := glicko.Compute(players, sessions)
	ratings := make([]glicko.Rating, 0, len(all))
	for _, r := range all {
		if hidden[r.PlayerID] {
			continue
		}
		r.Rank = len(ratings) + 1
		ratings = append(ratings, r)
	}
	return ratings, nil
}
