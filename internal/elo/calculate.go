package elo

import (
	"math"

	"github.com/goserg/doublesrating/internal/domain"
)

type Points float64

const (
	Win  Points = 1
	Draw Points = 0.5
	Lose Points = 0
)

// Expected returns the logistic expectation of a player rated r against an
// opposition rated opp.
func Expected(r, opp float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (opp-r)/400.0))
}

// Delta is K * (S - E).
func Delta(r, opp, k float64, s Points) float64 {
	return k * (float64(s) - Expected(r, opp))
}

// EffectiveK scales the configured K-factor by the victory margin.
// CLASSIC is a step at MarginThreshold, PROPORTIONAL a ramp capped at SaturationMargin.
func EffectiveK(margin int, settings domain.RankingSettings) float64 {
	if margin < 0 {
		margin = -margin
	}
	switch settings.Mode {
	case domain.RankingProportional:
		p := settings.Proportional
		ratio := math.Min(float64(margin)/float64(p.SaturationMargin), 1)
		return p.KBase * (1 + ratio*(p.BonusFactor-1))
	default:
		c := settings.Classic
		if margin >= c.MarginThreshold {
			return c.KBase * c.BonusFactor
		}
		return c.KBase
	}
}

func outcome(score1, score2 int) (Points, Points) {
	switch {
	case score1 > score2:
		return Win, Lose
	case score1 < score2:
		return Lose, Win
	default:
		return Draw, Draw
	}
}
