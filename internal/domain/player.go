package domain

import "time"

type Gender string

const (
	Male   Gender = "M"
	Female Gender = "F"
)

type Player struct {
	ID           string
	Name         string
	Gender       Gender
	BasePoints   float64
	MatchPoints  float64
	Wins         int
	Losses       int
	Hidden       bool
	RegisteredAt time.Time

	// RatingRank is filled in by ranking listings only.
	RatingRank int
}

// Rating is the effective skill score used for balancing and expected scores.
func (p Player) Rating() float64 {
	return p.BasePoints + p.MatchPoints
}

func (p Player) GamesPlayed() int {
	return p.Wins + p.Losses
}
