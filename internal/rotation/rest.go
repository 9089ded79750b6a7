package rotation

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/goserg/doublesrating/internal/domain"
	"github.com/goserg/doublesrating/internal/random"
)

const (
	restWeight         = 1000
	consecutivePenalty = 10000
)

// RestCount is how many of n participants sit out: the remainder of grouping
// by four, or everyone when no match can be formed.
func RestCount(n int) int {
	if n < 4 {
		return n
	}
	return n % 4
}

// RestPriority ranks a candidate for resting; lower rests first.
func RestPriority(h History, id string) int {
	since := h.RoundsSinceLastRest(id)
	p := h.TimesRested(id)*restWeight - since
	if since == 0 {
		p += consecutivePenalty
	}
	return p
}

// SelectResting picks who sits out this round. It returns the resting IDs
// in selection order and the remaining players in their input order.
func SelectResting(players []domain.Player, h History, rnd random.Source) ([]string, []domain.Player) {
	count := RestCount(len(players))
	if count == 0 {
		active := make([]domain.Player, len(players))
		copy(active, players)
		return nil, active
	}

	candidates := random.Shuffled(rnd, players)
	priority := make(map[string]int, len(candidates))
	for _, p := range candidates {
		priority[p.ID] = RestPriority(h, p.ID)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return priority[candidates[i].ID] < priority[candidates[j].ID]
	})

	resting := make([]string, 0, count)
	restSet := mapset.NewThreadUnsafeSet[string]()
	for _, p := range candidates[:count] {
		resting = append(resting, p.ID)
		restSet.Add(p.ID)
	}
	active := make([]domain.Player, 0, len(players)-count)
	for _, p := range players {
		if !restSet.Contains(p.ID) {
			active = append(active, p)
		}
	}
	return resting, active
}
