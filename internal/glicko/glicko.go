// Package glicko keeps a Glicko-2 shadow ranking next to the Elo ratings.
// Each archived session is one rating period; every 2v2 match counts as a
// game between each player and each of the two opponents.
package glicko

import (
	"sort"

	"github.com/goserg/doublesrating/internal/domain"
	glicko2 "github.com/zelenin/go-glicko2"
)

const (
	initialDeviation  = 350
	initialVolatility = 0.06
	defaultRating     = 1500
)

type Rating struct {
	PlayerID   string
	Name       string
	Rating     float64
	Deviation  float64
	Volatility float64
	Interval   Interval
	Rank       int
}

type Interval struct {
	Min float64
	Max float64
}

// Compute replays archived sessions oldest first and returns players sorted by
// Glicko-2 rating, best first. Matches with unknown players are ignored.
func Compute(players []domain.Player, sessions []domain.Session) []Rating {
	state := make(map[string]*glicko2.Player, len(players))
	for _, p := range players {
		r := p.BasePoints
		if r == 0 {
			r = defaultRating
		}
		state[p.ID] = glicko2.NewPlayer(glicko2.NewRating(r, initialDeviation, initialVolatility))
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

	for _, s := range archived {
		period := glicko2.NewRatingPeriod()
		games := 0
		for _, r := range s.Rounds {
			for _, m := range r.Matches {
				games += addMatch(period, state, m)
			}
		}
		if games > 0 {
			period.Calculate()
		}
	}

	ratings := make([]Rating, 0, len(players))
	for _, p := range players {
		g := state[p.ID].Rating()
		ratings = append(ratings, Rating{
			PlayerID:   p.ID,
			Name:       p.Name,
			Rating:     g.R(),
			Deviation:  g.Rd(),
			Volatility: g.Sigma(),
			Interval: Interval{
				Min: g.R() - 2*g.Rd(),
				Max: g.R() + 2*g.Rd(),
			},
		})
	}
	sort.SliceStable(ratings, func(i, j int) bool {
		return ratings[i].Rating > ratings[j].Rating
	})
	for i := range ratings {
		ratings[i].Rank = i + 1
	}
	return ratings
}

func addMatch(period *glicko2.RatingPeriod, state map[string]*glicko2.Player, m domain.Match) int {
	if !m.Completed() {
		return 0
	}
	s1, s2, ok := m.Scores()
	if !ok {
		return 0
	}
	ids := m.PlayerIDs()
	var four [4]*glicko2.Player
	for i, id := range ids {
		p, ok := state[id]
		if !ok {
			return 0
		}
		four[i] = p
	}
	result := glicko2.MATCH_RESULT_DRAW
	switch {
	case s1 > s2:
		result = glicko2.MATCH_RESULT_WIN
	case s1 < s2:
		result = glicko2.MATCH_RESULT_LOSS
	}
	games := 0
	for _, a := range four[:2] {
		for _, b := range four[2:] {
			period.AddMatch(a, b, result)
			games++
		}
	}
	return games
}
