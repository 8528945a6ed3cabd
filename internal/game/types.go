package game

import (
	"errors"
	"time"

	"boardroom/internal/sim"
)

// BaseYear anchors rounds to fiscal years: round 1 plays 2026, round 5
// plays 2030, projection years run 2031-2035.
const BaseYear = 2025

// TotalRounds is fixed; see catalog.MaxRounds.
const TotalRounds = 5

// ProjectionYears is how far past the last round the final results look.
const ProjectionYears = 5

type Status string

const (
	StatusLobby    Status = "lobby"
	StatusActive   Status = "active"
	StatusPaused   Status = "paused"
	StatusResults  Status = "results"
	StatusFinished Status = "finished"
)

var (
	ErrNameRequired        = errors.New("team name is required")
	ErrNameTaken           = errors.New("team name already claimed by a connected team")
	ErrGameFull            = errors.New("no free team slots")
	ErrWrongStatus         = errors.New("operation not allowed in current game status")
	ErrTeamNotFound        = errors.New("no team for this connection")
	ErrUnknownDecision     = errors.New("unknown decision id")
	ErrDecisionUnavailable = errors.New("decision not available this round")
	ErrDuplicateDecision   = errors.New("decision selected twice")
	ErrInsufficientFunds   = errors.New("insufficient cash for selected decisions")
	ErrAlreadySubmitted    = errors.New("round already submitted; unsubmit first")
	ErrNotSubmitted        = errors.New("nothing submitted this round")
	ErrInvalidTeamCount    = errors.New("team count must be between 1 and 12")
	ErrInvalidDuration     = errors.New("round duration must be positive")
)

// TeamState is the mutable per-slot state. ConnectionID empty means the
// slot is claimed but currently disconnected; disconnects never unclaim.
type TeamState struct {
	TeamID                int                  `json:"team_id"`
	TeamName              string               `json:"team_name"`
	IsClaimed             bool                 `json:"is_claimed"`
	ConnectionID          string               `json:"connection_id,omitempty"`
	CashBalance           float64              `json:"cash_balance"`
	CurrentRoundDecisions []string             `json:"current_round_decisions"`
	AllDecisions          []sim.ActiveDecision `json:"all_decisions"`
	Metrics               sim.Metrics          `json:"metrics"`
	StockPrice            float64              `json:"stock_price"`
	InitialStockPrice     float64              `json:"initial_stock_price"`
	CumulativeTSR         float64              `json:"cumulative_tsr"`
	RoundTSR              float64              `json:"round_tsr"`
	HasSubmitted          bool                 `json:"has_submitted"`
}

func (t *TeamState) clone() TeamState {
	out := *t
	out.CurrentRoundDecisions = append([]string(nil), t.CurrentRoundDecisions...)
	out.AllDecisions = append([]sim.ActiveDecision(nil), t.AllDecisions...)
	return out
}

// Snapshot is a point-in-time copy of the aggregate for read-only callers.
type Snapshot struct {
	Status               Status       `json:"status"`
	CurrentRound         int          `json:"current_round"`
	Year                 int          `json:"year"`
	RoundTimeRemaining   int          `json:"round_time_remaining"`
	RoundDurationSeconds int          `json:"round_duration_seconds"`
	TeamCount            int          `json:"team_count"`
	Teams                []TeamState  `json:"teams"`
	Scenario             sim.Scenario `json:"scenario"`
	CreatedAt            time.Time    `json:"created_at"`
	StartedAt            time.Time    `json:"started_at,omitempty"`
}

// TeamRoundSnapshot is the durable per-team record of one settled round.
type TeamRoundSnapshot struct {
	TeamID        int      `json:"team_id"`
	TeamName      string   `json:"team_name"`
	Round         int      `json:"round"`
	Year          int      `json:"year"`
	StockPrice    float64  `json:"stock_price"`
	RoundTSR      float64  `json:"round_tsr"`
	CumulativeTSR float64  `json:"cumulative_tsr"`
	DecisionIDs   []string `json:"decision_ids"`
	CashSpent     float64  `json:"cash_spent"`
	EndingCash    float64  `json:"ending_cash"`
}

// LeaderboardEntry is one ranked row of a round-end leaderboard.
type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	TeamID        int     `json:"team_id"`
	TeamName      string  `json:"team_name"`
	StockPrice    float64 `json:"stock_price"`
	RoundTSR      float64 `json:"round_tsr"`
	CumulativeTSR float64 `json:"cumulative_tsr"`
	CashSpent     float64 `json:"cash_spent"`
}

// RoundResults is the read-only record built when a round settles.
type RoundResults struct {
	Round       int                `json:"round"`
	Year        int                `json:"year"`
	Scenario    sim.Scenario       `json:"scenario"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

// FinalLeaderboardEntry ranks a team after the terminal forward projection.
type FinalLeaderboardEntry struct {
	Rank            int       `json:"rank"`
	TeamID          int       `json:"team_id"`
	TeamName        string    `json:"team_name"`
	FinalStockPrice float64   `json:"final_stock_price"`
	TotalTSR        float64   `json:"total_tsr"`
	ProjectedPrices []float64 `json:"projected_prices"`
}

// FinalResults is built once, after round 5 settles and the game advances
// to finished.
type FinalResults struct {
	ProjectedToYear int                         `json:"projected_to_year"`
	Leaderboard     []FinalLeaderboardEntry     `json:"leaderboard"`
	Histories       map[int][]TeamRoundSnapshot `json:"histories"`
}

// TeamSubmission summarizes one team's progress within the current round.
type TeamSubmission struct {
	TeamID        int     `json:"team_id"`
	TeamName      string  `json:"team_name"`
	IsClaimed     bool    `json:"is_claimed"`
	Connected     bool    `json:"connected"`
	HasSubmitted  bool    `json:"has_submitted"`
	DecisionCount int     `json:"decision_count"`
	CashRemaining float64 `json:"cash_remaining"`
}
