package rotation

import "github.com/goserg/doublesrating/internal/domain"

type pair struct {
	a, b string
}

func newPair(a, b string) pair {
	if b < a {
		a, b = b, a
	}
	return pair{a: a, b: b}
}

// History is the per-call digest of a session's prior rounds. It is built in
// one pass so pairing and rest selection never rescan the rounds.
type History struct {
	rounds       int
	partnerships map[pair]int
	rested       map[string]int
	lastRested   map[string]int
}

func NewHistory(prior []domain.Round) History {
	h := History{
		rounds:       len(prior),
		partnerships: make(map[pair]int),
		rested:       make(map[string]int),
		lastRested:   make(map[string]int),
	}
	for i, r := range prior {
		for _, id := range r.Resting {
			h.rested[id]++
			h.lastRested[id] = i
		}
		for _, m := range r.Matches {
			for _, t := range []domain.Team{m.TeamA, m.TeamB} {
				if t.Assigned() {
					h.partnerships[newPair(t.Players[0], t.Players[1])]++
				}
			}
		}
	}
	return h
}

// Partnerships is how many prior rounds had a and b on the same team.
func (h History) Partnerships(a, b string) int {
	return h.partnerships[newPair(a, b)]
}

func (h History) TimesRested(id string) int {
	return h.rested[id]
}

// RoundsSinceLastRest is 0 when id rested in the latest prior round. Players
// who never rested count as one more than the number of prior rounds.
func (h History) RoundsSinceLastRest(id string) int {
	last, ok := h.lastRested[id]
	if !ok {
		return h.rounds + 1
	}
	return h.rounds - 1 - last
}
