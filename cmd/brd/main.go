package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	cl "boardroom/internal/cli"
	"boardroom/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	cfg := config.LoadCLIFromEnv()
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "brd",
		Short:        "Boardroom CLI game client",
		SilenceUsage: true,
	}

	root.AddCommand(
		newJoinCmd(&apiBase),
		newLeaveCmd(&apiBase),
		newStateCmd(&apiBase),
		newDecisionsCmd(&apiBase),
		newSubmitCmd(&apiBase),
		newUnsubmitCmd(&apiBase),
		newSubmissionsCmd(&apiBase),
		newResultsCmd(&apiBase),
		newFinalCmd(&apiBase),
		newHistoryCmd(&apiBase),
		newAdminCmd(&apiBase),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func newJoinCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "join [team_name]",
		Short: "Claim a team slot (reconnects if the name is already yours)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			var err error
			if len(args) > 0 {
				name = strings.TrimSpace(args[0])
			} else {
				name, err = promptRequired("Team name")
				if err != nil {
					return err
				}
			}

			// Reuse the stored connection id so a rejoin lands back on
			// the same slot.
			connID := ""
			if sess, err := cl.LoadSession(); err == nil {
				connID = sess.ConnectionID
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			client := newClient(apiBase)
			out, err := client.Join(ctx, name, connID)
			if err != nil {
				return err
			}
			if err := cl.SaveSession(cl.Session{
				TeamID:       out.TeamID,
				TeamName:     name,
				ConnectionID: out.ConnectionID,
			}); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Joined as team %d (%s).", out.TeamID, name))
			return nil
		},
	}
}

func newLeaveCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Disconnect from your team slot and clear the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err == nil {
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				defer cancel()
				if err := newClient(apiBase).Disconnect(ctx, sess.ConnectionID); err != nil {
					printWarn(fmt.Sprintf("Disconnect failed: %v", err))
				}
			}
			if err := cl.ClearSession(); err != nil {
				return err
			}
			printSuccess("Left the game.")
			return nil
		},
	}
}

func newStateCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show the current game state and leaderboard positions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).State(ctx)
			if err != nil {
				return err
			}
			return renderState(out)
		},
	}
}

func newDecisionsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "decisions",
		Short: "List investment decisions available this round",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Decisions(ctx)
			if err != nil {
				return err
			}
			return renderDecisions(out)
		},
	}
}

func newSubmitCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "submit [decision_id ...]",
		Short: "Submit your decisions for the current round",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("join required: %w", err)
			}

			ids := make([]string, 0, len(args))
			for _, a := range args {
				a = strings.TrimSpace(a)
				if a != "" {
					ids = append(ids, a)
				}
			}
			if len(ids) == 0 {
				raw, err := promptOptional("Decision ids (comma separated, empty to pass)")
				if err != nil {
					return err
				}
				for _, part := range strings.Split(raw, ",") {
					part = strings.TrimSpace(part)
					if part != "" {
						ids = append(ids, part)
					}
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := newClient(apiBase).Submit(ctx, sess.ConnectionID, ids); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Submitted %d decision(s).", len(ids)))
			return nil
		},
	}
}

func newUnsubmitCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "unsubmit",
		Short: "Withdraw this round's submission to change it",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := cl.LoadSession()
			if err != nil {
				return fmt.Errorf("join required: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := newClient(apiBase).Unsubmit(ctx, sess.ConnectionID); err != nil {
				return err
			}
			printSuccess("Submission withdrawn. Your picks are kept as a draft.")
			return nil
		},
	}
}

func newSubmissionsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "submissions",
		Short: "Show which teams have submitted this round",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Submissions(ctx)
			if err != nil {
				return err
			}
			return renderSubmissions(out)
		},
	}
}

func newResultsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "results",
		Short: "Show the last settled round's leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).RoundResults(ctx)
			if err != nil {
				return err
			}
			return renderRoundResults(out)
		},
	}
}

func newFinalCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "final",
		Short: "Show the final leaderboard after the forward projection",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).FinalResults(ctx)
			if err != nil {
				return err
			}
			return renderFinalResults(out)
		},
	}
}

func newHistoryCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show per-team round-by-round performance",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			out, err := newClient(apiBase).Histories(ctx)
			if err != nil {
				return err
			}
			return renderHistories(out)
		},
	}
}

func newAdminCmd(apiBase *string) *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Facilitator controls",
	}

	for _, op := range []struct {
		name, short string
	}{
		{"start", "Start the game from the lobby"},
		{"pause", "Pause the round timer"},
		{"resume", "Resume a paused round"},
		{"end-round", "Force the current round to settle now"},
		{"next-round", "Advance from results to the next round"},
		{"reset", "Reset the game back to the lobby"},
	} {
		op := op
		admin.AddCommand(&cobra.Command{
			Use:   op.name,
			Short: op.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
				defer cancel()
				if err := newClient(apiBase).AdminOp(ctx, op.name); err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Admin %s applied.", op.name))
				return nil
			},
		})
	}

	admin.AddCommand(&cobra.Command{
		Use:   "event [description]",
		Short: "Announce a market event for the current round",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var desc string
			var err error
			if len(args) > 0 {
				desc = strings.TrimSpace(args[0])
			} else {
				desc, err = promptRequired("Event description")
				if err != nil {
					return err
				}
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := newClient(apiBase).TriggerEvent(ctx, desc); err != nil {
				return err
			}
			printSuccess("Event announced.")
			return nil
		},
	})

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configure team count and round length before starting",
	}
	teams := configCmd.Flags().Int("teams", 0, "number of team slots")
	roundSeconds := configCmd.Flags().Int("round-seconds", 0, "round length in seconds")
	configCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if *teams == 0 && *roundSeconds == 0 {
			return fmt.Errorf("nothing to configure; pass --teams and/or --round-seconds")
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		if err := newClient(apiBase).Configure(ctx, *teams, *roundSeconds); err != nil {
			return err
		}
		printSuccess("Configuration applied.")
		return nil
	}
	admin.AddCommand(configCmd)

	return admin
}
