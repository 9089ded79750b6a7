package rotation

import (
	"math"

	"github.com/goserg/doublesrating/internal/domain"
	"github.com/goserg/doublesrating/internal/random"
)

type teamPair struct {
	a, b domain.Player
}

// balancedPairs builds matches from players sorted by rating, descending.
// Every team joins one player from the top half with one from the bottom
// half. Players that could not be placed are returned as leftovers.
func balancedPairs(sorted []domain.Player, h History, rnd random.Source) ([]teamPair, []domain.Player) {
	half := len(sorted) / 2
	top := append([]domain.Player(nil), sorted[:half]...)
	bottom := append([]domain.Player(nil), sorted[half:]...)

	var teams []teamPair
	for len(top) >= 2 && len(bottom) >= 2 {
		i := rnd.Intn(len(top))
		p1 := top[i]
		top = removeAt(top, i)

		view := random.Shuffled(rnd, bottom)
		partner := view[0]
		for _, c := range view {
			if h.Partnerships(p1.ID, c.ID) == 0 {
				partner = c
				break
			}
		}
		bottom = removeID(bottom, partner.ID)
		anchor := p1.Rating() + partner.Rating()

		bestTop, bestBottom := -1, -1
		bestPlayed := true
		bestDiff := math.Inf(1)
		for ti, t := range top {
			for bi, b := range bottom {
				played := h.Partnerships(t.ID, b.ID) > 0
				diff := math.Abs(t.Rating() + b.Rating() - anchor)
				better := bestTop < 0 ||
					(bestPlayed && !played) ||
					(played == bestPlayed && diff < bestDiff)
				if better {
					bestTop, bestBottom = ti, bi
					bestPlayed, bestDiff = played, diff
				}
			}
		}
		t, b := top[bestTop], bottom[bestBottom]
		top = removeAt(top, bestTop)
		bottom = removeAt(bottom, bestBottom)

		teams = append(teams, teamPair{a: p1, b: partner}, teamPair{a: t, b: b})
	}

	leftovers := append(top, bottom...)
	return teams, leftovers
}

func removeAt(players []domain.Player, i int) []domain.Player {
	out := make([]domain.Player, 0, len(players)-1)
	out = append(out, players[:i]...)
	return append(out, players[i+1:]...)
}

func removeID(players []domain.Player, id string) []domain.Player {
	for i := range players {
		if players[i].ID == id {
			return removeAt(players, i)
		}
	}
	return players
}
