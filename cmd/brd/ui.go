package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"boardroom/internal/catalog"
	"boardroom/internal/game"

	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

type decisionsPayload struct {
	Decisions []catalog.Decision `json:"decisions"`
}

type submissionsPayload struct {
	Teams []game.TeamSubmission `json:"teams"`
}

type historiesPayload struct {
	Histories map[string][]game.TeamRoundSnapshot `json:"histories"`
}

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptOptional(label string) (string, error) {
	fmt.Printf("%s: ", label)
	text, err := stdinReader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func renderState(raw map[string]any) error {
	s, err := decodeInto[game.Snapshot](raw)
	if err != nil {
		return err
	}

	accent.Printf("\n== BOARDROOM (%s) ==\n", strings.ToUpper(string(s.Status)))
	fmt.Printf("Round:     %d of %d (FY%d)\n", s.CurrentRound, game.TotalRounds, s.Year)
	fmt.Printf("Timer:     %s remaining\n", formatSeconds(s.RoundTimeRemaining))
	fmt.Printf("Scenario:  %s\n", s.Scenario.Type)
	if strings.TrimSpace(s.Scenario.Narrative) != "" {
		fmt.Printf("Outlook:   %s\n", s.Scenario.Narrative)
	}
	if s.Scenario.EventTriggered {
		warn.Printf("Event:     %s\n", s.Scenario.EventDescription)
	}

	fmt.Println()
	accent.Println("Teams")
	fmt.Printf("%-4s %-20s %-10s %10s %10s %9s %9s %-9s\n", "ID", "NAME", "STATUS", "CASH", "PRICE", "RD TSR", "CUM TSR", "SUBMIT")
	for _, t := range s.Teams {
		if !t.IsClaimed {
			fmt.Printf("%-4d %-20s %-10s\n", t.TeamID, "(open slot)", "-")
			continue
		}
		status := "offline"
		if t.ConnectionID != "" {
			status = "online"
		}
		submitted := "no"
		if t.HasSubmitted {
			submitted = "yes"
		}
		fmt.Printf("%-4d %-20s %-10s %10s %10s %9s %9s %-9s\n",
			t.TeamID,
			truncate(t.TeamName, 20),
			status,
			formatMoney(t.CashBalance),
			formatMoney(t.StockPrice),
			colorizePercent(t.RoundTSR*100),
			colorizePercent(t.CumulativeTSR*100),
			submitted,
		)
	}
	fmt.Println()
	return nil
}

func renderDecisions(raw map[string]any) error {
	payload, err := decodeInto[decisionsPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== AVAILABLE DECISIONS ==")
	if len(payload.Decisions) == 0 {
		printInfo("No decisions available this round.")
		return nil
	}
	fmt.Printf("%-22s %-28s %-9s %8s %6s %5s\n", "ID", "NAME", "CATEGORY", "COST", "RISKY", "MAG")
	for _, d := range payload.Decisions {
		risky := ""
		if d.IsRisky {
			risky = danger.Sprint("yes")
		}
		fmt.Printf("%-22s %-28s %-9s %8s %6s %5d\n",
			d.ID,
			truncate(d.Name, 28),
			d.Category,
			formatMoney(d.Cost),
			risky,
			d.ImpactMagnitude,
		)
		if strings.TrimSpace(d.GuidingPrinciple) != "" {
			neutral.Printf("    %s\n", d.GuidingPrinciple)
		}
	}
	fmt.Println()
	return nil
}

func renderSubmissions(raw map[string]any) error {
	payload, err := decodeInto[submissionsPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== ROUND SUBMISSIONS ==")
	fmt.Printf("%-4s %-20s %-9s %-10s %6s %12s\n", "ID", "NAME", "ONLINE", "SUBMITTED", "PICKS", "CASH LEFT")
	for _, t := range payload.Teams {
		if !t.IsClaimed {
			continue
		}
		online := "no"
		if t.Connected {
			online = "yes"
		}
		submitted := "no"
		if t.HasSubmitted {
			submitted = success.Sprint("yes")
		}
		fmt.Printf("%-4d %-20s %-9s %-10s %6d %12s\n",
			t.TeamID,
			truncate(t.TeamName, 20),
			online,
			submitted,
			t.DecisionCount,
			formatMoney(t.CashRemaining),
		)
	}
	fmt.Println()
	return nil
}

func renderRoundResults(raw map[string]any) error {
	r, err := decodeInto[game.RoundResults](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== ROUND %d RESULTS (FY%d, %s) ==\n", r.Round, r.Year, r.Scenario.Type)
	fmt.Printf("%-6s %-20s %10s %9s %9s %10s\n", "RANK", "TEAM", "PRICE", "RD TSR", "CUM TSR", "SPENT")
	for _, e := range r.Leaderboard {
		fmt.Printf("%-6d %-20s %10s %9s %9s %10s\n",
			e.Rank,
			truncate(e.TeamName, 20),
			formatMoney(e.StockPrice),
			colorizePercent(e.RoundTSR*100),
			colorizePercent(e.CumulativeTSR*100),
			formatMoney(e.CashSpent),
		)
	}
	fmt.Println()
	return nil
}

func renderFinalResults(raw map[string]any) error {
	f, err := decodeInto[game.FinalResults](raw)
	if err != nil {
		return err
	}
	accent.Printf("\n== FINAL STANDINGS (projected to FY%d) ==\n", f.ProjectedToYear)
	fmt.Printf("%-6s %-20s %12s %10s\n", "RANK", "TEAM", "FINAL PRICE", "TOTAL TSR")
	for _, e := range f.Leaderboard {
		fmt.Printf("%-6d %-20s %12s %10s\n",
			e.Rank,
			truncate(e.TeamName, 20),
			formatMoney(e.FinalStockPrice),
			colorizePercent(e.TotalTSR*100),
		)
	}
	fmt.Println()
	return nil
}

func renderHistories(raw map[string]any) error {
	payload, err := decodeInto[historiesPayload](raw)
	if err != nil {
		return err
	}
	accent.Println("\n== ROUND HISTORY ==")
	if len(payload.Histories) == 0 {
		printInfo("No rounds settled yet.")
		return nil
	}

	keys := make([]string, 0, len(payload.Histories))
	for k := range payload.Histories {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		rounds := payload.Histories[k]
		if len(rounds) == 0 {
			continue
		}
		accent.Printf("\n%s\n", rounds[0].TeamName)
		fmt.Printf("%-6s %-6s %10s %9s %9s %10s %-30s\n", "ROUND", "YEAR", "PRICE", "RD TSR", "CUM TSR", "SPENT", "DECISIONS")
		for _, r := range rounds {
			fmt.Printf("%-6d %-6d %10s %9s %9s %10s %-30s\n",
				r.Round,
				r.Year,
				formatMoney(r.StockPrice),
				colorizePercent(r.RoundTSR*100),
				colorizePercent(r.CumulativeTSR*100),
				formatMoney(r.CashSpent),
				truncate(strings.Join(r.DecisionIDs, ","), 30),
			)
		}
	}
	fmt.Println()
	return nil
}

func decodeInto[T any](in any) (T, error) {
	var out T
	raw, err := json.Marshal(in)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	return out, nil
}

func colorizePercent(v float64) string {
	text := fmt.Sprintf("%+.2f%%", v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func formatSeconds(s int) string {
	if s < 0 {
		s = 0
	}
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
