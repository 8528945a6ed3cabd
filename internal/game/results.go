package game

import (
	"sort"

	"boardroom/internal/sim"
)

// buildRoundResultsLocked ranks claimed teams by cumulative TSR. Ties
// break on stock price, then team id, so identical inputs always produce
// the same ordering.
func (g *Game) buildRoundResultsLocked() RoundResults {
	entries := make([]LeaderboardEntry, 0, len(g.teams))
	for _, t := range g.teams {
		if !t.IsClaimed {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			TeamID:        t.TeamID,
			TeamName:      t.TeamName,
			StockPrice:    t.StockPrice,
			RoundTSR:      t.RoundTSR,
			CumulativeTSR: t.CumulativeTSR,
			CashSpent:     g.selectionCostLocked(t.CurrentRoundDecisions),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.CumulativeTSR != b.CumulativeTSR {
			return a.CumulativeTSR > b.CumulativeTSR
		}
		if a.StockPrice != b.StockPrice {
			return a.StockPrice > b.StockPrice
		}
		return a.TeamID < b.TeamID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return RoundResults{
		Round:       g.currentRound,
		Year:        BaseYear + g.currentRound,
		Scenario:    g.scenario,
		Leaderboard: entries,
	}
}

// Nearby returns a narrow window of the leaderboard centered on the given
// team: the team itself plus up to span neighbors on each side.
func (r RoundResults) Nearby(teamID, span int) []LeaderboardEntry {
	idx := -1
	for i, e := range r.Leaderboard {
		if e.TeamID == teamID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	lo := idx - span
	if lo < 0 {
		lo = 0
	}
	hi := idx + span + 1
	if hi > len(r.Leaderboard) {
		hi = len(r.Leaderboard)
	}
	return append([]LeaderboardEntry(nil), r.Leaderboard[lo:hi]...)
}

// buildFinalResultsLocked projects every claimed team five unplayed years
// past the last round and ranks the terminal positions. Total TSR is
// measured against the starting share price, so the final price is always
// a monotone function of the team's round-5 state.
func (g *Game) buildFinalResultsLocked() FinalResults {
	entries := make([]FinalLeaderboardEntry, 0, len(g.teams))
	for _, t := range g.teams {
		if !t.IsClaimed {
			continue
		}
		projected := sim.ProjectForward(t.Metrics, TotalRounds, t.AllDecisions, g.verdictsForLocked(t), ProjectionYears)
		prices := make([]float64, len(projected))
		finalPrice := t.StockPrice
		for i, m := range projected {
			prices[i] = m.SharePrice
			finalPrice = m.SharePrice
		}
		totalTSR := t.CumulativeTSR
		if t.InitialStockPrice != 0 {
			totalTSR = (finalPrice - t.InitialStockPrice) / t.InitialStockPrice
		}
		entries = append(entries, FinalLeaderboardEntry{
			TeamID:          t.TeamID,
			TeamName:        t.TeamName,
			FinalStockPrice: finalPrice,
			TotalTSR:        totalTSR,
			ProjectedPrices: prices,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalTSR != b.TotalTSR {
			return a.TotalTSR > b.TotalTSR
		}
		if a.FinalStockPrice != b.FinalStockPrice {
			return a.FinalStockPrice > b.FinalStockPrice
		}
		return a.TeamID < b.TeamID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return FinalResults{
		ProjectedToYear: BaseYear + TotalRounds + ProjectionYears,
		Leaderboard:     entries,
		Histories:       g.historiesLocked(),
	}
}
