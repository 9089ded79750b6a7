package service

import (
	"context"
	"fmt"

	"github.com/goserg/doublesrating/internal/domain"
	"github.com/goserg/doublesrating/internal/elo"
	"github.com/sirupsen/logrus"
)

// matchRef locates a match inside an ACTIVE session.
type matchRef struct {
	session domain.Session
	round   domain.Round
	match   domain.Match
}

func (s *Service) findMatch(ctx context.Context, sessionID string, roundNumber int, matchID string) (matchRef, error) {
	session, err := s.storage.GetSession(ctx, sessionID)
	if err != nil {
		return matchRef{}, sessionErr(sessionID, err)
	}
	if session.Archived() {
		return matchRef{}, domain.ErrSessionArchived
	}
	round, err := session.Round(roundNumber)
	if err != nil {
		return matchRef{}, err
	}
	match, ok := round.Match(matchID)
	if !ok {
		return matchRef{}, fmt.Errorf("%w: %s", domain.ErrMatchNotFound, matchID)
	}
	return matchRef{session: session, round: round, match: match}, nil
}

// SubmitScore completes a pending match and applies the rating deltas to its
// four players in one storage transaction.
func (s *Service) SubmitScore(ctx context.Context, sessionID string, roundNumber int, matchID string, score1, score2 int) (domain.Match, error) {
	if err := domain.ValidateScores(&score1, &score2); err != nil {
		return domain.Match{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ref, err := s.findMatch(ctx, sessionID, roundNumber, matchID)
	if err != nil {
		return domain.Match{}, err
	}
	if ref.match.Completed() {
		return domain.Match{}, domain.ErrMatchNotPending
	}
	if !ref.match.TeamA.Assigned() || !ref.match.TeamB.Assigned() {
		return domain.Match{}, ErrUnassigned
	}
	ids := ref.match.PlayerIDs()
	four, err := s.resolve(ctx, ids[:])
	if err != nil {
		return domain.Match{}, err
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return domain.Match{}, err
	}

	res := elo.CalculateNewRatings(four[0], four[1], four[2], four[3], score1, score2, &settings)
	match := ref.match.WithResult(score1, score2, res.DeltasByID(), res.AggregateDelta)
	if err := s.storage.UpdateMatch(ctx, sessionID, roundNumber, match, res.Players[:]); err != nil {
		return domain.Match{}, err
	}
	s.cache.Invalidate()
	s.log.WithFields(logrus.Fields{
		"session": sessionID,
		"round":   roundNumber,
		"match":   matchID,
		"score":   fmt.Sprintf("%d:%d", score1, score2),
		"k":       res.EffectiveK,
	}).Info("score submitted")
	return match, nil
}

// ReopenMatch returns a completed match to PENDING. The stored deltas are
// subtracted from the players and their win or loss is taken back, so a new
// score can be submitted without double counting.
func (s *Service) ReopenMatch(ctx context.Context, sessionID string, roundNumber int, matchID string) (domain.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, err := s.findMatch(ctx, sessionID, roundNumber, matchID)
	if err != nil {
		return domain.Match{}, err
	}
	if !ref.match.Completed() {
		return domain.Match{}, domain.ErrMatchNotDone
	}
	ids := ref.match.PlayerIDs()
	players, err := s.resolve(ctx, ids[:])
	if err != nil {
		return domain.Match{}, err
	}

	s1, s2, _ := ref.match.Scores()
	for i := range players {
		players[i].MatchPoints -= ref.match.IndividualDeltas[players[i].ID]
		onA := i < 2
		switch {
		case s1 == s2:
		case (s1 > s2) == onA:
			players[i].Wins--
		default:
			players[i].Losses--
		}
	}

	match := ref.match.Reopened()
	if err := s.storage.UpdateMatch(ctx, sessionID, roundNumber, match, players); err != nil {
		return domain.Match{}, err
	}
	s.cache.Invalidate()
	s.log.WithFields(logrus.Fields{
		"session": sessionID,
		"round":   roundNumber,
		"match":   matchID,
	}).Info("match reopened")
	return match, nil
}

// AssignCustomMatch fills the player slots of a pending CUSTOM match.
func (s *Service) AssignCustomMatch(ctx context.Context, sessionID string, roundNumber int, matchID string, teamA, teamB [2]string) (domain.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref, err := s.findMatch(ctx, sessionID, roundNumber, matchID)
	if err != nil {
		return domain.Match{}, err
	}
	if ref.match.Mode != domain.ModeCustom {
		return domain.Match{}, ErrNotCustom
	}
	if ref.match.Completed() {
		return domain.Match{}, domain.ErrMatchNotPending
	}
	match := ref.match.WithTeams(domain.NewTeam(teamA[0], teamA[1]), domain.NewTeam(teamB[0], teamB[1]))
	if !match.TeamA.Assigned() || !match.TeamB.Assigned() {
		return domain.Match{}, ErrUnassigned
	}
	round, err := ref.round.WithMatch(match)
	if err != nil {
		return domain.Match{}, err
	}
	if err := round.Validate(ref.session.Participants); err != nil {
		return domain.Match{}, err
	}
	if err := s.storage.UpdateMatch(ctx, sessionID, roundNumber, match, nil); err != nil {
		return domain.Match{}, err
	}
	s.log.WithFields(logrus.Fields{
		"session": sessionID,
		"round":   roundNumber,
		"match":   matchID,
	}).Info("custom match assigned")
	return match, nil
}
