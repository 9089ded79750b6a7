package elo

import (
	"math"

	"github.com/goserg/doublesrating/internal/domain"
)

// Result of a single doubles match.
type Result struct {
	// Players are p1..p4 with MatchPoints, Wins and Losses updated.
	Players [4]domain.Player
	// Deltas are the unrounded rating changes in the same order as Players.
	Deltas [4]float64
	// AggregateDelta is a rounded magnitude for display only.
	AggregateDelta int
	EffectiveK     float64
}

// DeltasByID maps player IDs to their rating change.
func (r Result) DeltasByID() map[string]float64 {
	m := make(map[string]float64, len(r.Players))
	for i, p := range r.Players {
		m[p.ID] = r.Deltas[i]
	}
	return m
}

// CalculateNewRatings rates a 2v2 match: p1 and p2 scored score1 against p3
// and p4. Each player is measured on their own pre-match rating against the
// opposing team's average. A nil settings uses the defaults.
func CalculateNewRatings(p1, p2, p3, p4 domain.Player, score1, score2 int, settings *domain.RankingSettings) Result {
	s := domain.DefaultRankingSettings()
	if settings != nil {
		s = *settings
	}
	k := EffectiveK(score1-score2, s)
	sa, sb := outcome(score1, score2)

	avgA := (p1.Rating() + p2.Rating()) / 2
	avgB := (p3.Rating() + p4.Rating()) / 2

	res := Result{
		Players:    [4]domain.Player{p1, p2, p3, p4},
		EffectiveK: k,
	}
	res.Deltas[0] = Delta(p1.Rating(), avgB, k, sa)
	res.Deltas[1] = Delta(p2.Rating(), avgB, k, sa)
	res.Deltas[2] = Delta(p3.Rating(), avgA, k, sb)
	res.Deltas[3] = Delta(p4.Rating(), avgA, k, sb)

	for i := range res.Players {
		res.Players[i].MatchPoints += res.Deltas[i]
		won := (i < 2 && sa == Win) || (i >= 2 && sb == Win)
		lost := (i < 2 && sa == Lose) || (i >= 2 && sb == Lose)
		if won {
			res.Players[i].Wins++
		}
		if lost {
			res.Players[i].Losses++
		}
	}

	shown := res.Deltas[0]
	if sb == Win {
		shown = res.Deltas[2]
	}
	res.AggregateDelta = int(math.Round(math.Abs(shown)))
	return res
}
