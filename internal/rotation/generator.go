package rotation

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/goserg/doublesrating/internal/domain"
	"github.com/goserg/doublesrating/internal/random"
)

type Generator struct {
	rnd   random.Source
	newID func() string
	now   func() time.Time
}

type Option func(*Generator)

// WithIDs sets the function that names generated matches.
func WithIDs(fn func() string) Option {
	return func(g *Generator) {
		g.newID = fn
	}
}

func WithClock(fn func() time.Time) Option {
	return func(g *Generator) {
		g.now = fn
	}
}

func New(rnd random.Source, opts ...Option) *Generator {
	g := &Generator{
		rnd:   rnd,
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateRound builds round number roundNumber for the given roster from the
// session's prior rounds. It never fails: a roster too small for a match
// yields a round where everyone rests.
func (g *Generator) GenerateRound(participants []domain.Player, mode domain.Mode, roundNumber int, prior []domain.Round) domain.Round {
	h := NewHistory(prior)
	resting, active := SelectResting(participants, h, g.rnd)

	var teams []teamPair
	var leftovers []domain.Player
	switch mode {
	case domain.ModeCustom:
		return domain.Round{
			Number:  roundNumber,
			Matches: g.placeholders(len(active)/4, mode),
			Resting: resting,
			Mode:    mode,
		}
	case domain.ModeSameLevel:
		teams, leftovers = sameLevel(sortByRating(active), h)
	case domain.ModeBalancedPairs:
		teams, leftovers = balancedPairs(sortByRating(active), h, g.rnd)
	case domain.ModeSplitBalanced:
		teams, leftovers = splitBalanced(sortByRating(active), h, g.rnd)
	default:
		teams, leftovers = randomTeams(active, g.rnd)
	}

	for _, p := range leftovers {
		resting = append(resting, p.ID)
	}
	return domain.Round{
		Number:  roundNumber,
		Matches: g.matches(teams, mode),
		Resting: resting,
		Mode:    mode,
	}
}

func (g *Generator) matches(teams []teamPair, mode domain.Mode) []domain.Match {
	created := g.now()
	matches := make([]domain.Match, 0, len(teams)/2)
	for i := 0; i+1 < len(teams); i += 2 {
		matches = append(matches, domain.Match{
			ID:        g.newID(),
			TeamA:     domain.NewTeam(teams[i].a.ID, teams[i].b.ID),
			TeamB:     domain.NewTeam(teams[i+1].a.ID, teams[i+1].b.ID),
			Status:    domain.MatchPending,
			Mode:      mode,
			CreatedAt: created,
		})
	}
	return matches
}

func (g *Generator) placeholders(n int, mode domain.Mode) []domain.Match {
	created := g.now()
	matches := make([]domain.Match, 0, n)
	for i := 0; i < n; i++ {
		matches = append(matches, domain.Match{
			ID:        g.newID(),
			Status:    domain.MatchPending,
			Mode:      mode,
			CreatedAt: created,
		})
	}
	return matches
}

func sortByRating(players []domain.Player) []domain.Player {
	sorted := make([]domain.Player, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rating() > sorted[j].Rating()
	})
	return sorted
}

// splits of a block of four into two teams, by index
var splits = [3][4]int{
	{0, 1, 2, 3},
	{0, 2, 1, 3},
	{0, 3, 1, 2},
}

// sameLevel groups neighbours in the ranking and picks, per group, the split
// with the fewest repeated partnerships.
func sameLevel(sorted []domain.Player, h History) ([]teamPair, []domain.Player) {
	var teams []teamPair
	n := len(sorted) / 4 * 4
	for i := 0; i < n; i += 4 {
		block := sorted[i : i+4]
		best, bestCost := 0, math.MaxInt
		for si, s := range splits {
			cost := h.Partnerships(block[s[0]].ID, block[s[1]].ID) +
				h.Partnerships(block[s[2]].ID, block[s[3]].ID)
			if cost < bestCost {
				best, bestCost = si, cost
			}
		}
		s := splits[best]
		teams = append(teams,
			teamPair{a: block[s[0]], b: block[s[1]]},
			teamPair{a: block[s[2]], b: block[s[3]]},
		)
	}
	return teams, sorted[n:]
}

// splitBalanced keeps the stronger and weaker cohorts apart and balances
// inside each of them.
func splitBalanced(sorted []domain.Player, h History, rnd random.Source) ([]teamPair, []domain.Player) {
	split := SplitPoint(len(sorted))
	upper, upperLeft := balancedPairs(sorted[:split], h, rnd)
	lower, lowerLeft := balancedPairs(sorted[split:], h, rnd)
	return append(upper, lower...), append(upperLeft, lowerLeft...)
}

// SplitPoint is the multiple of four nearest to n/2.
func SplitPoint(n int) int {
	split := int(math.Round(float64(n)/8)) * 4
	if split > n {
		split = n / 4 * 4
	}
	return split
}

func randomTeams(players []domain.Player, rnd random.Source) ([]teamPair, []domain.Player) {
	shuffled := random.Shuffled(rnd, players)
	var teams []teamPair
	n := len(shuffled) / 4 * 4
	for i := 0; i < n; i += 4 {
		teams = append(teams,
			teamPair{a: shuffled[i], b: shuffled[i+1]},
			teamPair{a: shuffled[i+2], b: shuffled[i+3]},
		)
	}
	return teams, shuffled[n:]
}
