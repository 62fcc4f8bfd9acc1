package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"auctionSolver/internal/config"
)

func newPoolsCmd() *cobra.Command {
	poolsCmd := &cobra.Command{
		Use:   "pools",
		Short: "List the edges of a snapshot",
		RunE:  runPools,
	}

	poolsCmd.Flags().String("snapshot", "./data/snapshot.jsonl", "snapshot JSONL path")
	poolsCmd.Flags().Uint64("epsilon-bps", 5, "exact-output padding for vault edges in basis points")
	poolsCmd.Flags().String("timestamp", "", "quote-time clock (unix seconds or RFC3339), default now")
	poolsCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	return poolsCmd
}

type edgeListing struct {
	ID    string   `json:"id"`
	Pairs []string `json:"pairs"`
	Gas   uint64   `json:"gas"`
}

func runPools(cmd *cobra.Command, _ []string) error {
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

	// Offline listing: edges whose kind needs a provider are skipped.
	cfg.RPCURL = ""
	ix, closeIndex, err := loadIndex(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeIndex()

	encoder := json.NewEncoder(os.Stdout)
	for _, edge := range ix.AllEdges() {
		pairs := edge.Pairs()
		listing := edgeListing{ID: edge.ID(), Gas: edge.GasCost(), Pairs: make([]string, 0, len(pairs))}
		for _, p := range pairs {
			listing.Pairs = append(listing.Pairs, p.String())
		}
		if err := encoder.Encode(listing); err != nil {
			return err
		}
	}
	return nil
}
