package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"auctionSolver/internal/config"
	"auctionSolver/internal/router"
)

func newQuoteCmd() *cobra.Command {
	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a single order against a snapshot",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("rpc", "", "RPC URL for on-chain quote providers")
	quoteCmd.Flags().String("snapshot", "./data/snapshot.jsonl", "snapshot JSONL path")
	quoteCmd.Flags().String("side", "sell", "order side (sell or buy)")
	quoteCmd.Flags().String("sell-token", "", "sell token address")
	quoteCmd.Flags().String("buy-token", "", "buy token address")
	quoteCmd.Flags().String("amount", "", "exact amount in wei")
	quoteCmd.Flags().String("limit", "", "limit amount in wei (min buy for sell orders, max sell for buy orders)")
	quoteCmd.Flags().StringSlice("base-token", nil, "intermediary token addresses (comma-separated)")
	quoteCmd.Flags().Int("max-hops", 2, "maximum route hops")
	quoteCmd.Flags().Duration("deadline", 2*time.Second, "solve deadline")
	quoteCmd.Flags().Uint64("epsilon-bps", 5, "exact-output padding for vault edges in basis points")
	quoteCmd.Flags().String("quoter", "", "QuoterV2 contract address for concentrated pools")
	quoteCmd.Flags().String("timestamp", "", "quote-time clock (unix seconds or RFC3339), default now")
	quoteCmd.Flags().Int("max-retries", 2, "maximum RPC retry attempts")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	return quoteCmd
}

func runQuote(cmd *cobra.Command, _ []string) error {
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

	side, _ := cmd.Flags().GetString("side")
	sellToken, _ := cmd.Flags().GetString("sell-token")
	buyToken, _ := cmd.Flags().GetString("buy-token")
	amount, _ := cmd.Flags().GetString("amount")
	limit, _ := cmd.Flags().GetString("limit")
	if sellToken == "" || buyToken == "" || amount == "" {
		return fmt.Errorf("sell-token, buy-token and amount are required")
	}

	record := orderRecord{Side: side, SellToken: sellToken, BuyToken: buyToken}
	if side == "buy" {
		record.BuyAmount = amount
		record.SellAmount = limit
	} else {
		record.SellAmount = amount
		record.BuyAmount = limit
	}
	order, err := parseOrder(record)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ix, closeIndex, err := loadIndex(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeIndex()

	r := router.New(ix, router.Config{
		BaseTokens: cfg.BaseTokens,
		MaxHops:    cfg.MaxHops,
		Deadline:   cfg.Deadline,
	}, logger)

	report := solveOrder(ctx, r, "quote", 0, order)
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return err
	}
	if report.Failure != "" {
		return fmt.Errorf("%s", report.Failure)
	}
	return nil
}
