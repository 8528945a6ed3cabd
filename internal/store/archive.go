package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"boardroom/internal/game"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens the archive pool. The archive is optional: the game runs
// entirely in memory and never reads this database back.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 5
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

// Archiver persists round leaderboards and final results as they happen.
// It implements game.Listener; writes are best-effort and never block or
// fail the game itself.
type Archiver struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewArchiver(db *pgxpool.Pool, logger *slog.Logger) *Archiver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Archiver{db: db, log: logger}
}

func (a *Archiver) EnsureSchema(ctx context.Context) error {
	_, err := a.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS round_leaderboards (
			id           BIGSERIAL PRIMARY KEY,
			round        INT NOT NULL,
			year         INT NOT NULL,
			scenario     TEXT NOT NULL,
			rank         INT NOT NULL,
			team_id      INT NOT NULL,
			team_name    TEXT NOT NULL,
			stock_price  DOUBLE PRECISION NOT NULL,
			round_tsr    DOUBLE PRECISION NOT NULL,
			cumulative_tsr DOUBLE PRECISION NOT NULL,
			cash_spent   DOUBLE PRECISION NOT NULL,
			recorded_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS final_leaderboards (
			id                BIGSERIAL PRIMARY KEY,
			rank              INT NOT NULL,
			team_id           INT NOT NULL,
			team_name         TEXT NOT NULL,
			final_stock_price DOUBLE PRECISION NOT NULL,
			total_tsr         DOUBLE PRECISION NOT NULL,
			projected_to_year INT NOT NULL,
			recorded_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	return err
}

// game.Listener implementation. State and timer churn is not archived.

func (a *Archiver) StateChanged(game.Snapshot) {}

func (a *Archiver) TimerTick(int, int) {}

func (a *Archiver) RoundEnded(r game.RoundResults) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, e := range r.Leaderboard {
		_, err := a.db.Exec(ctx, `
			INSERT INTO round_leaderboards
			    (round, year, scenario, rank, team_id, team_name, stock_price, round_tsr, cumulative_tsr, cash_spent)
			VALUES
			    ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, r.Round, r.Year, string(r.Scenario.Type), e.Rank, e.TeamID, e.TeamName, e.StockPrice, e.RoundTSR, e.CumulativeTSR, e.CashSpent)
		if err != nil {
			a.log.Error("archive round leaderboard", "round", r.Round, "team_id", e.TeamID, "err", err)
			return
		}
	}
	a.log.Info("round archived", "round", r.Round, "teams", len(r.Leaderboard))
}

func (a *Archiver) GameEnded(f game.FinalResults) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, e := range f.Leaderboard {
		_, err := a.db.Exec(ctx, `
			INSERT INTO final_leaderboards
			    (rank, team_id, team_name, final_stock_price, total_tsr, projected_to_year)
			VALUES
			    ($1, $2, $3, $4, $5, $6)
		`, e.Rank, e.TeamID, e.TeamName, e.FinalStockPrice, e.TotalTSR, f.ProjectedToYear)
		if err != nil {
			a.log.Error("archive final leaderboard", "team_id", e.TeamID, "err", err)
			return
		}
	}
	a.log.Info("final results archived", "teams", len(f.Leaderboard))
}
