package recalc

import (
	"errors"
	"fmt"
	"sort"

	"github.com/goserg/doublesrating/internal/domain"
	"github.com/goserg/doublesrating/internal/elo"
)

var (
	ErrUnknownPlayer   = errors.New("match references an unknown player")
	ErrMissingScore    = errors.New("completed match has no score")
	ErrDuplicatePlayer = errors.New("duplicate player id")
)

// Skipped is a completed match that could not be replayed.
type Skipped struct {
	SessionID string
	Round     int
	MatchID   string
	Err       error
}

func (s Skipped) Error() string {
	return fmt.Sprintf("session %s round %d match %s: %v", s.SessionID, s.Round, s.MatchID, s.Err)
}

func (s Skipped) Unwrap() error {
	return s.Err
}

type Result struct {
	// Players in input order with MatchPoints, Wins and Losses rebuilt.
	Players []domain.Player
	// Sessions are the replayed archived sessions, oldest first, with every
	// completed match carrying freshly computed deltas.
	Sessions []domain.Session
	Skipped  []Skipped
	Replayed int
}

// RecalculateAll rebuilds ratings from zero by folding every completed match
// of every archived session, oldest session first, through the rating
// engine. Inputs are not modified. Sessions that are not archived are ignored.
func RecalculateAll(players []domain.Player, sessions []domain.Session, settings *domain.RankingSettings) (Result, error) {
	state := make(map[string]domain.Player, len(players))
	for _, p := range players {
		if _, ok := state[p.ID]; ok {
			return Result{}, fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.ID)
		}
		p.MatchPoints = 0
		p.Wins = 0
		p.Losses = 0
		state[p.ID] = p
	}

	archived := make([]domain.Session, 0, len(sessions))
	for _, s := range sessions {
		if s.Archived() {
			archived = append(archived, s)
		}
	}
	sort.SliceStable(archived, func(i, j int) bool {
		return archived[i].Date.Before(archived[j].Date)
	})

	var res Result
	for si := range archived {
		session := archived[si]
		rounds := make([]domain.Round, len(session.Rounds))
		for ri, round := range session.Rounds {
			matches := make([]domain.Match, len(round.Matches))
			for mi, m := range round.Matches {
				matches[mi] = m
				if !m.Completed() {
					continue
				}
				replayed, err := replay(state, m, settings)
				if err != nil {
					res.Skipped = append(res.Skipped, Skipped{
						SessionID: session.ID,
						Round:     round.Number,
						MatchID:   m.ID,
						Err:       err,
					})
					matches[mi] = unrated(m)
					continue
				}
				matches[mi] = replayed
				res.Replayed++
			}
			round.Matches = matches
			rounds[ri] = round
		}
		session.Rounds = rounds
		archived[si] = session
	}

	res.Sessions = archived
	res.Players = make([]domain.Player, 0, len(players))
	for _, p := range players {
		res.Players = append(res.Players, state[p.ID])
	}
	return res, nil
}

// unrated keeps the result of a match that could not be replayed and zeroes
// its deltas.
func unrated(m domain.Match) domain.Match {
	deltas := make(map[string]float64, 4)
	for _, id := range m.PlayerIDs() {
		if id != "" {
			deltas[id] = 0
		}
	}
	m.IndividualDeltas = deltas
	m.AggregateDelta = 0
	return m
}

func replay(state map[string]domain.Player, m domain.Match, settings *domain.RankingSettings) (domain.Match, error) {
	s1, s2, ok := m.Scores()
	if !ok {
		return domain.Match{}, ErrMissingScore
	}
	ids := m.PlayerIDs()
	var four [4]domain.Player
	for i, id := range ids {
		p, ok := state[id]
		if !ok {
			return domain.Match{}, fmt.Errorf("%w: %q", ErrUnknownPlayer, id)
		}
		four[i] = p
	}
	res := elo.CalculateNewRatings(four[0], four[1], four[2], four[3], s1, s2, settings)
	for _, p := range res.Players {
		state[p.ID] = p
	}
	return m.WithResult(s1, s2, res.DeltasByID(), res.AggregateDelta), nil
}
