package game

import (
	"sync"
	"testing"
	"time"

	"boardroom/internal/catalog"
	"boardroom/internal/sim"

	"github.com/stretchr/testify/require"
)

// recorder captures listener events for assertions.
type recorder struct {
	mu        sync.Mutex
	states    []Snapshot
	ticks     []int
	roundEnds []RoundResults
	gameEnds  []FinalResults
}

func (r *recorder) StateChanged(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) TimerTick(_, remaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, remaining)
}

func (r *recorder) RoundEnded(res RoundResults) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roundEnds = append(r.roundEnds, res)
}

func (r *recorder) GameEnded(f FinalResults) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gameEnds = append(r.gameEnds, f)
}

func newTestGame(t *testing.T, teamCount int, listener Listener) *Game {
	t.Helper()
	cat, errs := catalog.Load()
	require.Empty(t, errs)
	return New(Config{
		TeamCount:     teamCount,
		RoundDuration: 3 * time.Second,
		Seed:          7,
		Listener:      listener,
		Clock:         NewFakeClock(time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)),
	}, cat, nil)
}

func TestJoinClaimReconnectAndFull(t *testing.T) {
	g := newTestGame(t, 2, nil)

	id1, err := g.Join("Alpha", "conn-1")
	require.NoError(t, err)
	require.Equal(t, 1, id1)

	// Same name from another connection while still connected.
	_, err = g.Join("alpha", "conn-x")
	require.ErrorIs(t, err, ErrNameTaken)

	// Disconnect keeps the slot claimed; rejoin by name reattaches.
	g.Disconnect("conn-1")
	id, err := g.Join("ALPHA", "conn-2")
	require.NoError(t, err)
	require.Equal(t, id1, id)

	_, err = g.Join("Beta", "conn-3")
	require.NoError(t, err)
	_, err = g.Join("Gamma", "conn-4")
	require.ErrorIs(t, err, ErrGameFull)

	_, err = g.Join("   ", "conn-5")
	require.ErrorIs(t, err, ErrNameRequired)
}

func TestSubmitReservesCashAndUnsubmitRefunds(t *testing.T) {
	g := newTestGame(t, 2, nil)
	_, err := g.Join("Alpha", "c1")
	require.NoError(t, err)
	require.NoError(t, g.Start())

	require.NoError(t, g.Submit("c1", []string{"grow_new_market"}))
	snap := g.Snapshot()
	require.InDelta(t, sim.StartingCash-500, snap.Teams[0].CashBalance, 1e-9)
	require.True(t, snap.Teams[0].HasSubmitted)

	// Double submit is rejected with no state change.
	require.ErrorIs(t, g.Submit("c1", []string{"opt_procurement"}), ErrAlreadySubmitted)

	require.NoError(t, g.Unsubmit("c1"))
	snap = g.Snapshot()
	require.InDelta(t, sim.StartingCash, snap.Teams[0].CashBalance, 1e-9)
	require.False(t, snap.Teams[0].HasSubmitted)
	// The selection survives as a draft.
	require.Equal(t, []string{"grow_new_market"}, snap.Teams[0].CurrentRoundDecisions)

	require.ErrorIs(t, g.Unsubmit("c1"), ErrNotSubmitted)

	// Resubmitting the same set lands in exactly the same place.
	require.NoError(t, g.Submit("c1", []string{"grow_new_market"}))
	snap = g.Snapshot()
	require.InDelta(t, sim.StartingCash-500, snap.Teams[0].CashBalance, 1e-9)
	require.True(t, snap.Teams[0].HasSubmitted)
}

func TestSubmitValidation(t *testing.T) {
	g := newTestGame(t, 2, nil)
	_, err := g.Join("Alpha", "c1")
	require.NoError(t, err)

	// Lobby: no submissions yet.
	require.ErrorIs(t, g.Submit("c1", []string{"grow_new_market"}), ErrWrongStatus)

	require.NoError(t, g.Start())

	require.ErrorIs(t, g.Submit("nope", nil), ErrTeamNotFound)
	require.ErrorIs(t, g.Submit("c1", []string{"made_up"}), ErrUnknownDecision)
	// grow_acquisition opens in round 2.
	require.ErrorIs(t, g.Submit("c1", []string{"grow_acquisition"}), ErrDecisionUnavailable)
	require.ErrorIs(t, g.Submit("c1", []string{"opt_procurement", "opt_procurement"}), ErrDuplicateDecision)
	// 700 + 500 + 350 = 1550 > 1200.
	require.ErrorIs(t, g.Submit("c1", []string{"grow_moonshot", "grow_new_market", "grow_product_line"}), ErrInsufficientFunds)

	// Rejections left the balance untouched.
	require.InDelta(t, sim.StartingCash, g.Snapshot().Teams[0].CashBalance, 1e-9)
}

func TestTickCountsDownAndSettles(t *testing.T) {
	rec := &recorder{}
	g := newTestGame(t, 2, rec)
	_, err := g.Join("Alpha", "c1")
	require.NoError(t, err)
	require.NoError(t, g.Start())
	require.NoError(t, g.Submit("c1", []string{"opt_procurement"}))

	g.Tick()
	g.Tick()
	require.Equal(t, StatusActive, g.Snapshot().Status)
	g.Tick()
	require.Equal(t, StatusResults, g.Snapshot().Status)
	require.Len(t, rec.roundEnds, 1)
	require.Equal(t, []int{2, 1, 0}, rec.ticks)

	// Stray ticks after settlement are no-ops.
	g.Tick()
	g.Tick()
	require.Equal(t, StatusResults, g.Snapshot().Status)
	require.Len(t, rec.roundEnds, 1)
}

func TestPauseFreezesTimer(t *testing.T) {
	g := newTestGame(t, 2, nil)
	_, err := g.Join("Alpha", "c1")
	require.NoError(t, err)
	require.NoError(t, g.Start())

	require.NoError(t, g.Pause())
	before := g.Snapshot().RoundTimeRemaining
	g.Tick()
	g.Tick()
	require.Equal(t, before, g.Snapshot().RoundTimeRemaining)

	require.ErrorIs(t, g.Pause(), ErrWrongStatus)
	require.NoError(t, g.Resume())
	g.Tick()
	require.Equal(t, before-1, g.Snapshot().RoundTimeRemaining)
}

func TestSettlementCoversNonSubmitters(t *testing.T) {
	g := newTestGame(t, 3, nil)
	_, err := g.Join("Alpha", "c1")
	require.NoError(t, err)
	_, err = g.Join("Beta", "c2")
	require.NoError(t, err)
	require.NoError(t, g.Start())

	require.NoError(t, g.Submit("c1", []string{"grow_new_market"}))
	// Beta never submits.
	require.NoError(t, g.EndRound())

	results, ok := g.LastRoundResults()
	require.True(t, ok)
	require.Len(t, results.Leaderboard, 2)

	histories := g.RoundHistories()
	require.Len(t, histories[1], 1)
	require.Len(t, histories[2], 1)
	require.Empty(t, histories[2][0].DecisionIDs)
	require.Zero(t, histories[2][0].CashSpent)
	// Unclaimed slot 3 settles nothing.
	require.Empty(t, histories[3])

	// Settlement is total: both claimed teams carry fresh metrics.
	snap := g.Snapshot()
	for _, team := range snap.Teams[:2] {
		require.True(t, team.HasSubmitted)
		require.NotEqual(t, 1000.0, team.Metrics.Revenue)
	}
}

func TestExpiryAutoSubmitsAffordableDraft(t *testing.T) {
	g := newTestGame(t, 2, nil)
	_, err := g.Join("Alpha", "c1")
	require.NoError(t, err)
	require.NoError(t, g.Start())

	require.NoError(t, g.Submit("c1", []string{"grow_new_market"}))
	require.NoError(t, g.Unsubmit("c1"))

	require.NoError(t, g.EndRound())
	histories := g.RoundHistories()
	require.Equal(t, []string{"grow_new_market"}, histories[1][0].DecisionIDs)
	require.InDelta(t, 500, histories[1][0].CashSpent, 1e-9)
}

func TestLeaderboardTieBreakIsDeterministic(t *testing.T) {
	g := newTestGame(t, 3, nil)
	for _, j := range []struct{ name, conn string }{
		{"Alpha", "c1"}, {"Beta", "c2"}, {"Gamma", "c3"},
	} {
		_, err := g.Join(j.name, j.conn)
		require.NoError(t, err)
	}
	require.NoError(t, g.Start())
	// Nobody submits: identical TSR and price for all three.
	require.NoError(t, g.EndRound())

	results, ok := g.LastRoundResults()
	require.True(t, ok)
	require.Len(t, results.Leaderboard, 3)
	for i, e := range results.Leaderboard {
		require.Equal(t, i+1, e.Rank)
		require.Equal(t, i+1, e.TeamID)
	}
}

func TestNextRoundReplenishesCash(t *testing.T) {
	g := newTestGame(t, 2, nil)
	_, err := g.Join("Alpha", "c1")
	require.NoError(t, err)
	require.NoError(t, g.Start())
	require.NoError(t, g.Submit("c1", []string{"grow_new_market"}))
	require.NoError(t, g.EndRound())
	require.NoError(t, g.NextRound())

	snap := g.Snapshot()
	require.Equal(t, StatusActive, snap.Status)
	require.Equal(t, 2, snap.CurrentRound)
	require.Equal(t, 2027, snap.Year)
	require.Equal(t, sim.ScenarioRecession, snap.Scenario.Type)

	// base 600 + 500 spend * [0.9, 1.1].
	cash := snap.Teams[0].CashBalance
	require.GreaterOrEqual(t, cash, 1050.0)
	require.LessOrEqual(t, cash, 1150.0)
	require.Empty(t, snap.Teams[0].CurrentRoundDecisions)
	require.False(t, snap.Teams[0].HasSubmitted)
}

func TestFullGameFlow(t *testing.T) {
	rec := &recorder{}
	g := newTestGame(t, 2, rec)
	_, err := g.Join("Alpha", "c1")
	require.NoError(t, err)
	_, err = g.Join("Beta", "c2")
	require.NoError(t, err)
	require.NoError(t, g.Start())

	picks := map[int][]string{
		1: {"grow_new_market"},
		2: {"opt_procurement"},
		3: {"sus_brand"},
		4: {"grow_sales_force"},
		5: {"opt_procurement"},
	}
	for round := 1; round <= TotalRounds; round++ {
		require.Equal(t, round, g.Snapshot().CurrentRound)
		require.NoError(t, g.Submit("c1", picks[round]))
		require.NoError(t, g.EndRound())
		require.NoError(t, g.NextRound())
	}

	snap := g.Snapshot()
	require.Equal(t, StatusFinished, snap.Status)

	final, ok := g.FinalResults()
	require.True(t, ok)
	require.Len(t, final.Leaderboard, 2)
	require.Equal(t, 2035, final.ProjectedToYear)
	require.Len(t, final.Leaderboard[0].ProjectedPrices, ProjectionYears)
	require.Len(t, final.Histories[1], TotalRounds)
	require.Len(t, rec.gameEnds, 1)
	require.Len(t, rec.roundEnds, TotalRounds)

	// The board is frozen.
	require.ErrorIs(t, g.NextRound(), ErrWrongStatus)
	require.ErrorIs(t, g.Start(), ErrWrongStatus)
	require.ErrorIs(t, g.Submit("c1", nil), ErrWrongStatus)
	_, err = g.Join("Delta", "c9")
	require.ErrorIs(t, err, ErrWrongStatus)

	// But a disconnected team can still come back to see results.
	g.Disconnect("c1")
	id, err := g.Join("Alpha", "c1b")
	require.NoError(t, err)
	require.Equal(t, 1, id)
}

func TestResetReturnsToEmptyLobby(t *testing.T) {
	g := newTestGame(t, 2, nil)
	_, err := g.Join("Alpha", "c1")
	require.NoError(t, err)
	require.NoError(t, g.Start())
	require.NoError(t, g.EndRound())
	require.NoError(t, g.Reset())

	snap := g.Snapshot()
	require.Equal(t, StatusLobby, snap.Status)
	require.Equal(t, 1, snap.CurrentRound)
	require.Equal(t, 2, snap.TeamCount)
	for _, team := range snap.Teams {
		require.False(t, team.IsClaimed)
		require.InDelta(t, sim.StartingCash, team.CashBalance, 1e-9)
	}
	_, ok := g.LastRoundResults()
	require.False(t, ok)
	require.Empty(t, g.RoundHistories())
}

func TestConfigureGuards(t *testing.T) {
	g := newTestGame(t, 2, nil)
	require.ErrorIs(t, g.ConfigureTeamCount(0), ErrInvalidTeamCount)
	require.ErrorIs(t, g.ConfigureTeamCount(13), ErrInvalidTeamCount)
	require.ErrorIs(t, g.ConfigureRoundDuration(0), ErrInvalidDuration)

	_, err := g.Join("Alpha", "c1")
	require.NoError(t, err)
	require.NoError(t, g.ConfigureTeamCount(4))
	snap := g.Snapshot()
	require.Equal(t, 4, snap.TeamCount)
	// Existing claims survive a resize.
	require.True(t, snap.Teams[0].IsClaimed)

	require.NoError(t, g.ConfigureRoundDuration(10*time.Second))
	require.NoError(t, g.Start())
	require.Equal(t, 10, g.Snapshot().RoundTimeRemaining)

	require.ErrorIs(t, g.ConfigureTeamCount(6), ErrWrongStatus)
	require.ErrorIs(t, g.ConfigureRoundDuration(time.Minute), ErrWrongStatus)
}

func TestTriggerEventAnnotatesScenario(t *testing.T) {
	g := newTestGame(t, 2, nil)
	require.ErrorIs(t, g.TriggerEvent("typhoon"), ErrWrongStatus)

	_, err := g.Join("Alpha", "c1")
	require.NoError(t, err)
	require.NoError(t, g.Start())
	require.NoError(t, g.TriggerEvent("  supplier strike  "))

	snap := g.Snapshot()
	require.True(t, snap.Scenario.EventTriggered)
	require.Equal(t, "supplier strike", snap.Scenario.EventDescription)
}

func TestStartRequiresAClaimedTeam(t *testing.T) {
	g := newTestGame(t, 2, nil)
	require.ErrorIs(t, g.Start(), ErrWrongStatus)
}

func TestNearbyWindow(t *testing.T) {
	r := RoundResults{Leaderboard: []LeaderboardEntry{
		{Rank: 1, TeamID: 4}, {Rank: 2, TeamID: 2}, {Rank: 3, TeamID: 5},
		{Rank: 4, TeamID: 1}, {Rank: 5, TeamID: 3},
	}}
	window := r.Nearby(5, 1)
	require.Len(t, window, 3)
	require.Equal(t, 2, window[0].TeamID)
	require.Equal(t, 1, window[2].TeamID)

	require.Nil(t, r.Nearby(99, 1))
	require.Len(t, r.Nearby(4, 2), 3)
}
