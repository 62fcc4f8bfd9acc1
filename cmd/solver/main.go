package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"auctionSolver/internal/config"
	"auctionSolver/internal/model"
	"auctionSolver/internal/router"
	"auctionSolver/internal/storage"
	"auctionSolver/internal/storage/postgres"
)

func main() {
	root := &cobra.Command{
		Use:          "solver",
		Short:        "DEX batch auction solver",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	solveCmd := &cobra.Command{
		Use:   "solve <auction.json>",
		Short: "Solve every order of an auction against a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolve,
	}

	solveCmd.Flags().String("rpc", "", "RPC URL for on-chain quote providers")
	solveCmd.Flags().String("snapshot", "./data/snapshot.jsonl", "snapshot JSONL path")
	solveCmd.Flags().StringSlice("base-token", nil, "intermediary token addresses (comma-separated)")
	solveCmd.Flags().Int("max-hops", 2, "maximum route hops")
	solveCmd.Flags().Duration("deadline", 2*time.Second, "per-order solve deadline")
	solveCmd.Flags().Int("parallelism", 0, "concurrent candidate simulations, 0 means GOMAXPROCS")
	solveCmd.Flags().Uint64("epsilon-bps", 5, "exact-output padding for vault edges in basis points")
	solveCmd.Flags().String("quoter", "", "QuoterV2 contract address for concentrated pools")
	solveCmd.Flags().String("timestamp", "", "quote-time clock (unix seconds or RFC3339), default now")
	solveCmd.Flags().String("out", "./data/solves.jsonl", "output JSONL path")
	solveCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for report persistence")
	solveCmd.Flags().Int("max-retries", 2, "maximum RPC retry attempts")
	solveCmd.Flags().Duration("retry-backoff", 100*time.Millisecond, "initial RPC retry backoff")
	solveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(solveCmd)
	root.AddCommand(newQuoteCmd())
	root.AddCommand(newPoolsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auction, err := readAuction(args[0])
	if err != nil {
		return err
	}
	if len(auction.Orders) == 0 {
		return fmt.Errorf("auction %s has no orders", auction.ID)
	}

	ix, closeIndex, err := loadIndex(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeIndex()

	r := router.New(ix, router.Config{
		BaseTokens:  cfg.BaseTokens,
		MaxHops:     cfg.MaxHops,
		Deadline:    cfg.Deadline,
		Parallelism: cfg.Parallelism,
	}, logger)

	logger.Info("solve start",
		zap.String("auction", auction.ID),
		zap.Int("orders", len(auction.Orders)),
		zap.Int("edges", ix.Size()),
		zap.Int("max_hops", cfg.MaxHops),
		zap.Duration("deadline", cfg.Deadline),
	)

	reports := make([]model.SolveReport, 0, len(auction.Orders))
	for i, record := range auction.Orders {
		order, err := parseOrder(record)
		if err != nil {
			return fmt.Errorf("order %d: %w", i, err)
		}
		report := solveOrder(ctx, r, auction.ID, i, order)
		reports = append(reports, report)
	}

	sink := storage.NewJsonlStorage(cfg.Out)
	if err := sink.PutReportBatch(reports); err != nil {
		return err
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.UpsertReports(ctx, reports); err != nil {
			return fmt.Errorf("persist reports: %w", err)
		}
	}

	solved := 0
	for _, report := range reports {
		if report.Failure == "" {
			solved++
		}
	}
	logger.Info("solve done",
		zap.String("auction", auction.ID),
		zap.Int("solved", solved),
		zap.Int("failed", len(reports)-solved),
		zap.String("out", cfg.Out),
	)
	return nil
}

func solveOrder(ctx context.Context, r *router.Router, auctionID string, index int, order model.Order) model.SolveReport {
	route, err := r.Solve(ctx, order)
	solvedAt := time.Now().UTC().Format(time.RFC3339)
	if err != nil {
		return model.SolveReport{
			AuctionID:  auctionID,
			OrderIndex: index,
			Side:       order.Side.String(),
			SellToken:  order.Sell.Token.Hex(),
			BuyToken:   order.Buy.Token.Hex(),
			Failure:    err.Error(),
			SolvedAt:   solvedAt,
		}
	}
	report := model.ReportFromRoute(auctionID, index, order, route)
	report.SolvedAt = solvedAt
	return report
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
