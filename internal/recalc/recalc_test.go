package recalc

import (
	"testing"
	"time"

	"github.com/goserg/doublesrating/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completed(id string, a, b, c, d string, s1, s2 int) domain.Match {
	m := domain.Match{
		ID:     id,
		TeamA:  domain.NewTeam(a, b),
		TeamB:  domain.NewTeam(c, d),
		Status: domain.MatchPending,
	}
	// stale deltas from an older settings snapshot
	return m.WithResult(s1, s2, map[string]float64{a: 99, b: 99, c: -99, d: -99}, 99)
}

func session(id string, day int, status domain.SessionStatus, matches ...domain.Match) domain.Session {
	return domain.Session{
		ID:           id,
		Date:         time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Participants: []string{"a", "b", "c", "d"},
		Rounds:       []domain.Round{{Number: 1, Matches: matches}},
		Status:       status,
	}
}

func players() []domain.Player {
	return []domain.Player{
		{ID: "a", BasePoints: 1000, MatchPoints: 55, Wins: 3},
		{ID: "b", BasePoints: 1000, MatchPoints: -5, Losses: 2},
		{ID: "c", BasePoints: 1000},
		{ID: "d", BasePoints: 1000, Hidden: true},
	}
}

func TestRecalculateAllSingleMatch(t *testing.T) {
	sessions := []domain.Session{
		session("s1", 1, domain.SessionArchived, completed("m1", "a", "b", "c", "d", 21, 15)),
	}
	res, err := RecalculateAll(players(), sessions, nil)
	require.NoError(t, err)
	require.Len(t, res.Players, 4)
	assert.Equal(t, 1, res.Replayed)
	assert.Empty(t, res.Skipped)

	want := map[string]float64{"a": 6, "b": 6, "c": -6, "d": -6}
	for _, p := range res.Players {
		assert.InDelta(t, want[p.ID], p.MatchPoints, 1e-9, p.ID)
		assert.Equal(t, 1000.0, p.BasePoints)
	}
	assert.Equal(t, 1, res.Players[0].Wins)
	assert.Equal(t, 0, res.Players[1].Losses)
	assert.True(t, res.Players[3].Hidden)

	m := res.Sessions[0].Rounds[0].Matches[0]
	assert.Equal(t, want, m.IndividualDeltas)
	assert.Equal(t, 6, m.AggregateDelta)

	// inputs untouched
	assert.Equal(t, 99.0, sessions[0].Rounds[0].Matches[0].IndividualDeltas["a"])
}

func TestRecalculateAllChronological(t *testing.T) {
	first := session("early", 1, domain.SessionArchived, completed("m1", "a", "b", "c", "d", 21, 10))
	second := session("late", 2, domain.SessionArchived, completed("m2", "a", "c", "b", "d", 21, 19))

	inOrder, err := RecalculateAll(players(), []domain.Session{first, second}, nil)
	require.NoError(t, err)
	reversed, err := RecalculateAll(players(), []domain.Session{second, first}, nil)
	require.NoError(t, err)

	assert.Equal(t, inOrder.Players, reversed.Players)
	require.Len(t, reversed.Sessions, 2)
	assert.Equal(t, "early", reversed.Sessions[0].ID)
}

func TestRecalculateAllIdempotent(t *testing.T) {
	sessions := []domain.Session{
		session("s1", 1, domain.SessionArchived,
			completed("m1", "a", "b", "c", "d", 21, 15),
			completed("m2", "a", "c", "b", "d", 12, 21),
		),
		session("s2", 3, domain.SessionArchived,
			completed("m3", "a", "d", "b", "c", 21, 21),
		),
	}
	once, err := RecalculateAll(players(), sessions, nil)
	require.NoError(t, err)
	twice, err := RecalculateAll(once.Players, once.Sessions, nil)
	require.NoError(t, err)

	assert.Equal(t, once.Players, twice.Players)
	assert.Equal(t, once.Sessions, twice.Sessions)
}

func TestRecalculateAllSkipsActiveAndPending(t *testing.T) {
	pending := domain.Match{ID: "p", TeamA: domain.NewTeam("a", "b"), TeamB: domain.NewTeam("c", "d"), Status: domain.MatchPending}
	sessions := []domain.Session{
		session("live", 1, domain.SessionActive, completed("m1", "a", "b", "c", "d", 21, 15)),
		session("old", 2, domain.SessionArchived, pending),
	}
	res, err := RecalculateAll(players(), sessions, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Replayed)
	for _, p := range res.Players {
		assert.Zero(t, p.MatchPoints)
		assert.Zero(t, p.Wins)
		assert.Zero(t, p.Losses)
	}
	require.Len(t, res.Sessions, 1)
	assert.Equal(t, "old", res.Sessions[0].ID)
}

func TestRecalculateAllUnknownPlayer(t *testing.T) {
	sessions := []domain.Session{
		session("s1", 1, domain.SessionArchived,
			completed("bad", "a", "b", "c", "ghost", 21, 15),
			completed("good", "a", "b", "c", "d", 21, 15),
		),
	}
	res, err := RecalculateAll(players(), sessions, nil)
	require.NoError(t, err)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "bad", res.Skipped[0].MatchID)
	assert.ErrorIs(t, res.Skipped[0], ErrUnknownPlayer)
	assert.Equal(t, 1, res.Replayed)
	assert.InDelta(t, 6, res.Players[0].MatchPoints, 1e-9)

	bad := res.Sessions[0].Rounds[0].Matches[0]
	assert.True(t, bad.Completed())
	assert.Zero(t, bad.AggregateDelta)
	assert.Equal(t, map[string]float64{"a": 0, "b": 0, "c": 0, "ghost": 0}, bad.IndividualDeltas)
	assert.NotZero(t, sessions[0].Rounds[0].Matches[0].AggregateDelta)
}

func TestRecalculateAllDuplicatePlayers(t *testing.T) {
	ps := append(players(), domain.Player{ID: "a"})
	_, err := RecalculateAll(ps, nil, nil)
	assert.ErrorIs(t, err, ErrDuplicatePlayer)
}

func TestRecalculateAllUsesSettings(t *testing.T) {
	settings := domain.DefaultRankingSettings()
	settings.Classic.KBase = 20
	sessions := []domain.Session{
		session("s1", 1, domain.SessionArchived, completed("m1", "a", "b", "c", "d", 21, 15)),
	}
	res, err := RecalculateAll(players(), sessions, &settings)
	require.NoError(t, err)
	assert.InDelta(t, 10, res.Players[0].MatchPoints, 1e-9)
}
