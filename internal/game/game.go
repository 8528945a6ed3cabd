package game

import (
	"fmt"
	"log/slog"
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"boardroom/internal/catalog"
	"boardroom/internal/sim"
)

// Post-round cash replenishment: a flat operating top-up plus a bounded
// random multiplier on the round's decision spend, clamped to a fixed
// range. The bounds are load-bearing, the coefficients are tuning.
const (
	replenishBase   = 600.0
	replenishJitter = 0.1
	replenishMin    = 400.0
	replenishMax    = 2500.0
)

type Config struct {
	TeamCount     int
	RoundDuration time.Duration
	// Seed fixes the game's rand source (risky-event selection, cash
	// replenishment jitter). Zero means time-based.
	Seed     int64
	Listener Listener
	Clock    Clock
}

// Game is the single authoritative aggregate for one session. Every
// mutation goes through its methods under one lock; reads hand out
// copies. Round-level transitions (settlement, advance, reset)
// are exclusive relative to team submissions by construction.
type Game struct {
	mu       sync.Mutex
	log      *slog.Logger
	catalog  *catalog.Catalog
	rng      *mathrand.Rand
	clock    Clock
	listener Listener

	status        Status
	currentRound  int
	roundDuration time.Duration
	timeRemaining int
	teams         []*TeamState
	scenario      sim.Scenario
	resolver      *sim.Resolver
	lastResults   *RoundResults
	finalResults  *FinalResults
	histories     map[int][]TeamRoundSnapshot
	createdAt     time.Time
	startedAt     time.Time
}

func New(cfg Config, cat *catalog.Catalog, logger *slog.Logger) *Game {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TeamCount <= 0 {
		cfg.TeamCount = 6
	}
	if cfg.RoundDuration <= 0 {
		cfg.RoundDuration = 5 * time.Minute
	}
	if cfg.Listener == nil {
		cfg.Listener = NopListener{}
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	g := &Game{
		log:           logger,
		catalog:       cat,
		rng:           mathrand.New(mathrand.NewSource(seed)),
		clock:         cfg.Clock,
		listener:      cfg.Listener,
		roundDuration: cfg.RoundDuration,
	}
	g.resetLocked(cfg.TeamCount)
	return g
}

// resetLocked re-provisions the whole session: fresh unclaimed slots,
// fresh risky-event draw, empty histories. Caller holds the lock (or is
// the constructor).
func (g *Game) resetLocked(teamCount int) {
	teams := make([]*TeamState, teamCount)
	base := sim.Baseline()
	for i := range teams {
		teams[i] = &TeamState{
			TeamID:            i + 1,
			CashBalance:       sim.StartingCash,
			Metrics:           base,
			StockPrice:        base.SharePrice,
			InitialStockPrice: base.SharePrice,
		}
	}
	g.teams = teams
	g.status = StatusLobby
	g.currentRound = 1
	g.timeRemaining = 0
	g.scenario = sim.ScenarioForRound(1)
	g.resolver = sim.NewResolver(g.rng, g.catalog.Risky())
	g.lastResults = nil
	g.finalResults = nil
	g.histories = make(map[int][]TeamRoundSnapshot)
	g.createdAt = g.clock.Now()
	g.startedAt = time.Time{}
}

// Join claims a free slot for the named team, or reattaches a connection
// to an already-claimed slot with the same name (case-insensitive).
func (g *Game) Join(teamName, connectionID string) (int, error) {
	teamName = strings.TrimSpace(teamName)
	if teamName == "" {
		return 0, ErrNameRequired
	}

	g.mu.Lock()
	// Reconnect by name, any status.
	for _, t := range g.teams {
		if t.IsClaimed && strings.EqualFold(t.TeamName, teamName) {
			if t.ConnectionID != "" && t.ConnectionID != connectionID {
				g.mu.Unlock()
				return 0, ErrNameTaken
			}
			t.ConnectionID = connectionID
			id := t.TeamID
			snap := g.snapshotLocked()
			g.mu.Unlock()
			g.log.Info("team reconnected", "team_id", id, "name", teamName)
			g.listener.StateChanged(snap)
			return id, nil
		}
	}
	if g.status == StatusFinished {
		g.mu.Unlock()
		return 0, ErrWrongStatus
	}
	for _, t := range g.teams {
		if !t.IsClaimed {
			t.IsClaimed = true
			t.TeamName = teamName
			t.ConnectionID = connectionID
			id := t.TeamID
			snap := g.snapshotLocked()
			g.mu.Unlock()
			g.log.Info("team joined", "team_id", id, "name", teamName)
			g.listener.StateChanged(snap)
			return id, nil
		}
	}
	g.mu.Unlock()
	return 0, ErrGameFull
}

// Disconnect clears the connection identity only. The slot stays claimed
// so the team can reconnect by name.
func (g *Game) Disconnect(connectionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, t := range g.teams {
		if t.ConnectionID == connectionID {
			t.ConnectionID = ""
			g.log.Info("team disconnected", "team_id", t.TeamID)
			return
		}
	}
}

// Submit commits the team's decision set for the current round, reserving
// the total cost out of its cash balance. Rejections leave no state change.
func (g *Game) Submit(connectionID string, decisionIDs []string) error {
	g.mu.Lock()
	if g.status != StatusActive {
		g.mu.Unlock()
		return ErrWrongStatus
	}
	t := g.teamByConnectionLocked(connectionID)
	if t == nil {
		g.mu.Unlock()
		return ErrTeamNotFound
	}
	if t.HasSubmitted {
		g.mu.Unlock()
		return ErrAlreadySubmitted
	}
	total, err := g.validateSelectionLocked(decisionIDs)
	if err != nil {
		g.mu.Unlock()
		return err
	}
	if total > t.CashBalance {
		g.mu.Unlock()
		return fmt.Errorf("%w: need %.0f, have %.0f", ErrInsufficientFunds, total, t.CashBalance)
	}
	t.CashBalance -= total
	t.CurrentRoundDecisions = append([]string(nil), decisionIDs...)
	t.HasSubmitted = true
	id := t.TeamID
	snap := g.snapshotLocked()
	g.mu.Unlock()
	g.log.Info("round submitted", "team_id", id, "round", snap.CurrentRound, "decisions", len(decisionIDs), "spent", total)
	g.listener.StateChanged(snap)
	return nil
}

// Unsubmit refunds the reserved cash and reopens the round for the team.
// The selection is preserved as a draft so it can be resubmitted, and is
// used for auto-submission if the round expires first.
func (g *Game) Unsubmit(connectionID string) error {
	g.mu.Lock()
	if g.status != StatusActive && g.status != StatusPaused {
		g.mu.Unlock()
		return ErrWrongStatus
	}
	t := g.teamByConnectionLocked(connectionID)
	if t == nil {
		g.mu.Unlock()
		return ErrTeamNotFound
	}
	if !t.HasSubmitted {
		g.mu.Unlock()
		return ErrNotSubmitted
	}
	t.CashBalance += g.selectionCostLocked(t.CurrentRoundDecisions)
	t.HasSubmitted = false
	id := t.TeamID
	snap := g.snapshotLocked()
	g.mu.Unlock()
	g.log.Info("round unsubmitted", "team_id", id)
	g.listener.StateChanged(snap)
	return nil
}

// validateSelectionLocked checks every id against the catalog and the
// current round's availability, rejecting duplicates, and returns the
// total cost.
func (g *Game) validateSelectionLocked(decisionIDs []string) (float64, error) {
	seen := make(map[string]bool, len(decisionIDs))
	var total float64
	for _, id := range decisionIDs {
		d, ok := g.catalog.ByID(id)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownDecision, id)
		}
		if !d.AvailableIn(g.currentRound) {
			return 0, fmt.Errorf("%w: %s in round %d", ErrDecisionUnavailable, id, g.currentRound)
		}
		if seen[id] {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateDecision, id)
		}
		seen[id] = true
		total += d.Cost
	}
	return total, nil
}

func (g *Game) selectionCostLocked(decisionIDs []string) float64 {
	var total float64
	for _, id := range decisionIDs {
		if d, ok := g.catalog.ByID(id); ok {
			total += d.Cost
		}
	}
	return total
}

func (g *Game) teamByConnectionLocked(connectionID string) *TeamState {
	for _, t := range g.teams {
		if t.IsClaimed && t.ConnectionID == connectionID && connectionID != "" {
			return t
		}
	}
	return nil
}

// Start moves lobby -> active: seeds round 1, starts the countdown.
// Requires at least one claimed team.
func (g *Game) Start() error {
	g.mu.Lock()
	if g.status != StatusLobby {
		g.mu.Unlock()
		return ErrWrongStatus
	}
	if g.claimedCountLocked() == 0 {
		g.mu.Unlock()
		return fmt.Errorf("%w: no teams have joined", ErrWrongStatus)
	}
	g.currentRound = 1
	g.scenario = sim.ScenarioForRound(1)
	g.timeRemaining = int(g.roundDuration / time.Second)
	g.startedAt = g.clock.Now()
	for _, t := range g.teams {
		t.CurrentRoundDecisions = nil
		t.HasSubmitted = false
	}
	g.status = StatusActive
	snap := g.snapshotLocked()
	g.mu.Unlock()
	g.log.Info("game started", "teams", snap.TeamCount, "round_seconds", snap.RoundDurationSeconds)
	g.listener.StateChanged(snap)
	return nil
}

func (g *Game) Pause() error {
	return g.toggleTimer(StatusActive, StatusPaused, "game paused")
}

func (g *Game) Resume() error {
	return g.toggleTimer(StatusPaused, StatusActive, "game resumed")
}

// toggleTimer flips between active and paused without touching any other
// state.
func (g *Game) toggleTimer(from, to Status, msg string) error {
	g.mu.Lock()
	if g.status != from {
		g.mu.Unlock()
		return ErrWrongStatus
	}
	g.status = to
	snap := g.snapshotLocked()
	g.mu.Unlock()
	g.log.Info(msg, "round", snap.CurrentRound, "remaining", snap.RoundTimeRemaining)
	g.listener.StateChanged(snap)
	return nil
}

// Tick is the 1-second countdown step, driven by an external scheduler.
// Stray ticks after settlement are no-ops: the status guard makes the
// tick idempotent once the round has left active.
func (g *Game) Tick() {
	g.mu.Lock()
	if g.status != StatusActive {
		g.mu.Unlock()
		return
	}
	g.timeRemaining--
	round := g.currentRound
	remaining := g.timeRemaining
	if remaining > 0 {
		g.mu.Unlock()
		g.listener.TimerTick(round, remaining)
		return
	}
	g.timeRemaining = 0
	results, snap := g.settleLocked()
	g.mu.Unlock()
	g.listener.TimerTick(round, 0)
	g.listener.RoundEnded(results)
	g.listener.StateChanged(snap)
}

// EndRound force-settles the current round before the timer expires.
func (g *Game) EndRound() error {
	g.mu.Lock()
	if g.status != StatusActive && g.status != StatusPaused {
		g.mu.Unlock()
		return ErrWrongStatus
	}
	results, snap := g.settleLocked()
	g.mu.Unlock()
	g.listener.RoundEnded(results)
	g.listener.StateChanged(snap)
	return nil
}

// settleLocked runs round settlement: auto-submit stragglers, apply the
// financial model once per claimed team, snapshot, move to results.
func (g *Game) settleLocked() (RoundResults, Snapshot) {
	round := g.currentRound
	for _, t := range g.teams {
		if !t.IsClaimed {
			continue
		}
		if !t.HasSubmitted {
			g.autoSubmitLocked(t)
		}
		spent := g.selectionCostLocked(t.CurrentRoundDecisions)
		for _, id := range t.CurrentRoundDecisions {
			d, ok := g.catalog.ByID(id)
			if !ok {
				// Cannot happen after submit-time validation.
				g.log.Error("settlement references unknown decision", "team_id", t.TeamID, "decision_id", id)
				continue
			}
			t.AllDecisions = append(t.AllDecisions, sim.ActiveDecision{Decision: d, RoundTaken: round})
		}

		verdicts := g.verdictsForLocked(t)
		next := sim.ApplyRound(t.Metrics, round, t.CashBalance, t.AllDecisions, g.scenario, verdicts)

		prevPrice := t.StockPrice
		t.Metrics = next
		t.StockPrice = next.SharePrice
		if prevPrice != 0 {
			t.RoundTSR = (next.SharePrice - prevPrice) / prevPrice
		}
		if t.InitialStockPrice != 0 {
			t.CumulativeTSR = (next.SharePrice - t.InitialStockPrice) / t.InitialStockPrice
		}
		t.HasSubmitted = true

		g.histories[t.TeamID] = append(g.histories[t.TeamID], TeamRoundSnapshot{
			TeamID:        t.TeamID,
			TeamName:      t.TeamName,
			Round:         round,
			Year:          BaseYear + round,
			StockPrice:    t.StockPrice,
			RoundTSR:      t.RoundTSR,
			CumulativeTSR: t.CumulativeTSR,
			DecisionIDs:   append([]string(nil), t.CurrentRoundDecisions...),
			CashSpent:     spent,
			EndingCash:    next.EndingCash,
		})
	}

	results := g.buildRoundResultsLocked()
	g.lastResults = &results
	g.status = StatusResults
	g.timeRemaining = 0
	g.log.Info("round settled", "round", round, "year", BaseYear+round, "scenario", g.scenario.Type)
	return results, g.snapshotLocked()
}

// autoSubmitLocked commits a straggler's draft selection if it still
// validates and fits the budget, otherwise an empty set.
func (g *Game) autoSubmitLocked(t *TeamState) {
	if len(t.CurrentRoundDecisions) > 0 {
		total, err := g.validateSelectionLocked(t.CurrentRoundDecisions)
		if err == nil && total <= t.CashBalance {
			t.CashBalance -= total
			t.HasSubmitted = true
			g.log.Info("auto-submitted draft", "team_id", t.TeamID, "decisions", len(t.CurrentRoundDecisions))
			return
		}
		t.CurrentRoundDecisions = nil
	}
	t.HasSubmitted = true
}

// verdictsForLocked resolves the adverse-outcome verdict for every risky
// decision the team has ever taken. Resolution is cached inside the
// resolver, so repeat calls are stable.
func (g *Game) verdictsForLocked(t *TeamState) sim.RiskVerdicts {
	verdicts := sim.RiskVerdicts{}
	for _, ad := range t.AllDecisions {
		if ad.Decision.IsRisky {
			verdicts[ad.Decision.ID] = g.resolver.Resolve(t.TeamID, ad.Decision.ID)
		}
	}
	return verdicts
}

// NextRound advances results -> active for the next round, or finishes
// the game after the last round.
func (g *Game) NextRound() error {
	g.mu.Lock()
	if g.status != StatusResults {
		g.mu.Unlock()
		return ErrWrongStatus
	}
	if g.currentRound >= TotalRounds {
		final, snap := g.finishLocked()
		g.mu.Unlock()
		g.listener.GameEnded(final)
		g.listener.StateChanged(snap)
		return nil
	}
	g.currentRound++
	g.scenario = sim.ScenarioForRound(g.currentRound)
	for _, t := range g.teams {
		if !t.IsClaimed {
			continue
		}
		spent := g.selectionCostLocked(t.CurrentRoundDecisions)
		t.CashBalance = g.replenishCashLocked(spent)
		t.CurrentRoundDecisions = nil
		t.HasSubmitted = false
	}
	g.timeRemaining = int(g.roundDuration / time.Second)
	g.status = StatusActive
	snap := g.snapshotLocked()
	g.mu.Unlock()
	g.log.Info("round started", "round", snap.CurrentRound, "year", snap.Year, "scenario", snap.Scenario.Type)
	g.listener.StateChanged(snap)
	return nil
}

// replenishCashLocked models operating cash generation without a balance
// sheet: a base top-up plus 0.9x-1.1x of what the team deployed last
// round, clamped to the allowed range.
func (g *Game) replenishCashLocked(lastRoundSpend float64) float64 {
	factor := 1 - replenishJitter + 2*replenishJitter*g.rng.Float64()
	cash := replenishBase + lastRoundSpend*factor
	if cash < replenishMin {
		cash = replenishMin
	}
	if cash > replenishMax {
		cash = replenishMax
	}
	return cash
}

// finishLocked runs the terminal forward projection and freezes the game.
func (g *Game) finishLocked() (FinalResults, Snapshot) {
	final := g.buildFinalResultsLocked()
	g.finalResults = &final
	g.status = StatusFinished
	g.log.Info("game finished", "teams", len(final.Leaderboard), "projected_to", final.ProjectedToYear)
	return final, g.snapshotLocked()
}

// TriggerEvent attaches a facilitator-injected event to the current
// round's scenario.
func (g *Game) TriggerEvent(description string) error {
	g.mu.Lock()
	if g.status != StatusActive && g.status != StatusPaused {
		g.mu.Unlock()
		return ErrWrongStatus
	}
	g.scenario.EventTriggered = true
	g.scenario.EventDescription = strings.TrimSpace(description)
	snap := g.snapshotLocked()
	g.mu.Unlock()
	g.log.Info("scenario event triggered", "round", snap.CurrentRound, "description", description)
	g.listener.StateChanged(snap)
	return nil
}

// Reset returns the session to an empty lobby, clearing all derived and
// historical state and re-drawing the risky-event slot.
func (g *Game) Reset() error {
	g.mu.Lock()
	count := len(g.teams)
	g.resetLocked(count)
	snap := g.snapshotLocked()
	g.mu.Unlock()
	g.log.Info("game reset", "teams", count)
	g.listener.StateChanged(snap)
	return nil
}

func (g *Game) ConfigureTeamCount(n int) error {
	if n < 1 || n > 12 {
		return ErrInvalidTeamCount
	}
	g.mu.Lock()
	if g.status != StatusLobby {
		g.mu.Unlock()
		return ErrWrongStatus
	}
	teams := make([]*TeamState, n)
	base := sim.Baseline()
	for i := range teams {
		if i < len(g.teams) {
			teams[i] = g.teams[i]
			continue
		}
		teams[i] = &TeamState{
			TeamID:            i + 1,
			CashBalance:       sim.StartingCash,
			Metrics:           base,
			StockPrice:        base.SharePrice,
			InitialStockPrice: base.SharePrice,
		}
	}
	g.teams = teams
	snap := g.snapshotLocked()
	g.mu.Unlock()
	g.listener.StateChanged(snap)
	return nil
}

func (g *Game) ConfigureRoundDuration(d time.Duration) error {
	if d <= 0 {
		return ErrInvalidDuration
	}
	g.mu.Lock()
	if g.status == StatusActive || g.status == StatusPaused {
		g.mu.Unlock()
		return ErrWrongStatus
	}
	g.roundDuration = d
	g.mu.Unlock()
	return nil
}

func (g *Game) claimedCountLocked() int {
	n := 0
	for _, t := range g.teams {
		if t.IsClaimed {
			n++
		}
	}
	return n
}

// Snapshot returns a copy of the full aggregate.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

func (g *Game) snapshotLocked() Snapshot {
	teams := make([]TeamState, len(g.teams))
	for i, t := range g.teams {
		teams[i] = t.clone()
	}
	return Snapshot{
		Status:               g.status,
		CurrentRound:         g.currentRound,
		Year:                 BaseYear + g.currentRound,
		RoundTimeRemaining:   g.timeRemaining,
		RoundDurationSeconds: int(g.roundDuration / time.Second),
		TeamCount:            len(g.teams),
		Teams:                teams,
		Scenario:             g.scenario,
		CreatedAt:            g.createdAt,
		StartedAt:            g.startedAt,
	}
}

// AvailableDecisions lists the catalog entries selectable this round.
func (g *Game) AvailableDecisions() []catalog.Decision {
	g.mu.Lock()
	round := g.currentRound
	g.mu.Unlock()
	return g.catalog.ForRound(round)
}

func (g *Game) LastRoundResults() (RoundResults, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.lastResults == nil {
		return RoundResults{}, false
	}
	return *g.lastResults, true
}

func (g *Game) FinalResults() (FinalResults, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.finalResults == nil {
		return FinalResults{}, false
	}
	return *g.finalResults, true
}

// TeamSubmissionSummary reports per-team round progress for facilitators.
func (g *Game) TeamSubmissionSummary() []TeamSubmission {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]TeamSubmission, 0, len(g.teams))
	for _, t := range g.teams {
		out = append(out, TeamSubmission{
			TeamID:        t.TeamID,
			TeamName:      t.TeamName,
			IsClaimed:     t.IsClaimed,
			Connected:     t.ConnectionID != "",
			HasSubmitted:  t.HasSubmitted,
			DecisionCount: len(t.CurrentRoundDecisions),
			CashRemaining: t.CashBalance,
		})
	}
	return out
}

// RoundHistories returns a copy of every team's per-round snapshots.
func (g *Game) RoundHistories() map[int][]TeamRoundSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.historiesLocked()
}

func (g *Game) historiesLocked() map[int][]TeamRoundSnapshot {
	out := make(map[int][]TeamRoundSnapshot, len(g.histories))
	for id, rows := range g.histories {
		out[id] = append([]TeamRoundSnapshot(nil), rows...)
	}
	return out
}
