package rotation

import (
	"fmt"
	"strconv"
	"testing"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/goserg/doublesrating/internal/domain"
	"github.com/goserg/doublesrating/internal/random"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allModes = []domain.Mode{
	domain.ModeCustom,
	domain.ModeSameLevel,
	domain.ModeBalancedPairs,
	domain.ModeSplitBalanced,
	domain.ModeRandom,
}

func roster(n int) []domain.Player {
	players := make([]domain.Player, n)
	for i := range players {
		players[i] = domain.Player{
			ID:         "p" + strconv.Itoa(i),
			Name:       "Player " + strconv.Itoa(i),
			BasePoints: float64(1500 - 10*i),
		}
	}
	return players
}

func ids(players []domain.Player) []string {
	out := make([]string, len(players))
	for i := range players {
		out[i] = players[i].ID
	}
	return out
}

func newTestGenerator(seed int64) *Generator {
	n := 0
	return New(random.New(seed),
		WithIDs(func() string {
			n++
			return "m" + strconv.Itoa(n)
		}),
		WithClock(func() time.Time {
			return time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
		}),
	)
}

func TestGenerateRoundCoversRoster(t *testing.T) {
	for _, mode := range allModes {
		for n := 0; n <= 21; n++ {
			mode, n := mode, n
			t.Run(fmt.Sprintf("%s/%d", mode, n), func(t *testing.T) {
				g := newTestGenerator(int64(n))
				players := roster(n)
				var prior []domain.Round
				for round := 1; round <= 6; round++ {
					r := g.GenerateRound(players, mode, round, prior)
					assert.Equal(t, round, r.Number)
					assert.Equal(t, mode, r.Mode)
					assert.Equal(t, n, len(r.Matches)*4+len(r.Resting))
					assert.Len(t, r.Resting, RestCount(n))
					require.NoError(t, r.Validate(ids(players)))
					for _, m := range r.Matches {
						assert.Equal(t, domain.MatchPending, m.Status)
						assert.Equal(t, mode, m.Mode)
						assert.NotEmpty(t, m.ID)
						if mode == domain.ModeCustom {
							assert.False(t, m.TeamA.Assigned())
							assert.False(t, m.TeamB.Assigned())
						} else {
							assert.True(t, m.TeamA.Assigned())
							assert.True(t, m.TeamB.Assigned())
						}
					}
					prior = append(prior, r)
				}
			})
		}
	}
}

func TestGenerateRoundTooFewPlayers(t *testing.T) {
	g := newTestGenerator(1)
	players := roster(3)
	r := g.GenerateRound(players, domain.ModeBalancedPairs, 1, nil)
	assert.Empty(t, r.Matches)
	assert.ElementsMatch(t, ids(players), r.Resting)
}

func TestNoConsecutiveRests(t *testing.T) {
	for n := 5; n <= 15; n++ {
		n := n
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			g := newTestGenerator(int64(n) * 7)
			players := roster(n)
			var prior []domain.Round
			var last mapset.Set[string]
			for round := 1; round <= 30; round++ {
				r := g.GenerateRound(players, domain.ModeRandom, round, prior)
				now := mapset.NewThreadUnsafeSet[string](r.Resting...)
				if last != nil {
					assert.True(t, now.Intersect(last).Cardinality() == 0, "round %d rests %v after %v", round, r.Resting, last.ToSlice())
				}
				last = now
				prior = append(prior, r)
			}
		})
	}
}

func TestSingleRestRotatesEvenly(t *testing.T) {
	for _, n := range []int{5, 9, 13} {
		g := newTestGenerator(42)
		players := roster(n)
		var prior []domain.Round
		counts := make(map[string]int)
		for round := 1; round <= 3*n+2; round++ {
			r := g.GenerateRound(players, domain.ModeBalancedPairs, round, prior)
			require.Len(t, r.Resting, 1)
			counts[r.Resting[0]]++
			prior = append(prior, r)

			lo, hi := round, 0
			for _, p := range players {
				lo = min(lo, counts[p.ID])
				hi = max(hi, counts[p.ID])
			}
			assert.LessOrEqual(t, hi-lo, 1, "n=%d round=%d", n, round)
		}
	}
}

func TestBalancedPairsFirstRound(t *testing.T) {
	players := roster(8)
	top := mapset.NewThreadUnsafeSet[string](ids(players[:4])...)
	for seed := int64(0); seed < 20; seed++ {
		g := newTestGenerator(seed)
		r := g.GenerateRound(players, domain.ModeBalancedPairs, 1, nil)
		require.Len(t, r.Matches, 2)
		require.Empty(t, r.Resting)
		for _, m := range r.Matches {
			for _, team := range []domain.Team{m.TeamA, m.TeamB} {
				inTop := 0
				for _, id := range team.Players {
					if top.Contains(id) {
						inTop++
					}
				}
				assert.Equal(t, 1, inTop, "team %v", team.Players)
			}
		}
	}
}

func TestBalancedPairsAvoidsRepeatPartners(t *testing.T) {
	players := []domain.Player{
		{ID: "a", BasePoints: 1400},
		{ID: "b", BasePoints: 1300},
		{ID: "c", BasePoints: 1200},
		{ID: "d", BasePoints: 1100},
	}
	prior := []domain.Round{{
		Number: 1,
		Matches: []domain.Match{{
			TeamA: domain.NewTeam("a", "c"),
			TeamB: domain.NewTeam("b", "d"),
		}},
	}}
	for seed := int64(0); seed < 10; seed++ {
		r := newTestGenerator(seed).GenerateRound(players, domain.ModeBalancedPairs, 2, prior)
		require.Len(t, r.Matches, 1)
		got := []mapset.Set[string]{
			mapset.NewThreadUnsafeSet[string](r.Matches[0].TeamA.Players[:]...),
			mapset.NewThreadUnsafeSet[string](r.Matches[0].TeamB.Players[:]...),
		}
		ad := mapset.NewThreadUnsafeSet[string]("a", "d")
		bc := mapset.NewThreadUnsafeSet[string]("b", "c")
		assert.True(t, (got[0].Equal(ad) && got[1].Equal(bc)) || (got[0].Equal(bc) && got[1].Equal(ad)))
	}
}

func TestBalancedPairsClosestOpponents(t *testing.T) {
	players := []domain.Player{
		{ID: "t1", BasePoints: 2000},
		{ID: "t2", BasePoints: 1990},
		{ID: "t3", BasePoints: 1500},
		{ID: "b1", BasePoints: 1200},
		{ID: "b2", BasePoints: 1010},
		{ID: "b3", BasePoints: 1000},
	}
	h := NewHistory(nil)
	teams, leftovers := balancedPairs(players, h, random.New(3))
	require.Len(t, teams, 2)
	require.Len(t, leftovers, 2)
	anchor := teams[0].a.Rating() + teams[0].b.Rating()
	opp := teams[1].a.Rating() + teams[1].b.Rating()
	for _, top := range []domain.Player{players[0], players[1], players[2]} {
		for _, bottom := range []domain.Player{players[3], players[4], players[5]} {
			if top.ID == teams[0].a.ID || bottom.ID == teams[0].b.ID {
				continue
			}
			alt := top.Rating() + bottom.Rating()
			assert.LessOrEqual(t, abs(opp-anchor), abs(alt-anchor))
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestSameLevel(t *testing.T) {
	players := roster(8)
	r := newTestGenerator(1).GenerateRound(players, domain.ModeSameLevel, 1, nil)
	require.Len(t, r.Matches, 2)

	first := r.Matches[0]
	assert.Equal(t, [2]string{"p0", "p1"}, first.TeamA.Players)
	assert.Equal(t, [2]string{"p2", "p3"}, first.TeamB.Players)

	// p0 and p1 already partnered: the next split is used
	prior := []domain.Round{r}
	r2 := newTestGenerator(1).GenerateRound(players, domain.ModeSameLevel, 2, prior)
	assert.Equal(t, [2]string{"p0", "p2"}, r2.Matches[0].TeamA.Players)
	assert.Equal(t, [2]string{"p1", "p3"}, r2.Matches[0].TeamB.Players)

	prior = append(prior, r2)
	r3 := newTestGenerator(1).GenerateRound(players, domain.ModeSameLevel, 3, prior)
	assert.Equal(t, [2]string{"p0", "p3"}, r3.Matches[0].TeamA.Players)
	assert.Equal(t, [2]string{"p1", "p2"}, r3.Matches[0].TeamB.Players)
}

func TestSplitBalancedKeepsCohortsApart(t *testing.T) {
	players := roster(8)
	upper := mapset.NewThreadUnsafeSet[string](ids(players[:4])...)
	for seed := int64(0); seed < 10; seed++ {
		r := newTestGenerator(seed).GenerateRound(players, domain.ModeSplitBalanced, 1, nil)
		require.Len(t, r.Matches, 2)
		for _, m := range r.Matches {
			inUpper := 0
			for _, id := range m.PlayerIDs() {
				if upper.Contains(id) {
					inUpper++
				}
			}
			assert.True(t, inUpper == 0 || inUpper == 4, "match %v mixes cohorts", m.PlayerIDs())
		}
	}
}

func TestSplitPoint(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{0, 0},
		{4, 4},
		{8, 4},
		{12, 8},
		{16, 8},
		{20, 12},
		{24, 12},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitPoint(tt.n), "n=%d", tt.n)
	}
}

func TestGenerateRoundDeterministic(t *testing.T) {
	players := roster(11)
	a := newTestGenerator(99).GenerateRound(players, domain.ModeBalancedPairs, 1, nil)
	b := newTestGenerator(99).GenerateRound(players, domain.ModeBalancedPairs, 1, nil)
	assert.Equal(t, a, b)
}
