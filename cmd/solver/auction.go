package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"auctionSolver/internal/chain"
	"auctionSolver/internal/config"
	"auctionSolver/internal/dex"
	"auctionSolver/internal/model"
	"auctionSolver/internal/snapshot"
)

type auctionFile struct {
	ID     string        `json:"id"`
	Orders []orderRecord `json:"orders"`
}

type orderRecord struct {
	Side       string `json:"side"`
	SellToken  string `json:"sell_token"`
	SellAmount string `json:"sell_amount"`
	BuyToken   string `json:"buy_token"`
	BuyAmount  string `json:"buy_amount"`
}

func readAuction(path string) (auctionFile, error) {
	var auction auctionFile
	data, err := os.ReadFile(path)
	if err != nil {
		return auction, fmt.Errorf("read auction: %w", err)
	}
	if err := json.Unmarshal(data, &auction); err != nil {
		return auction, fmt.Errorf("parse auction: %w", err)
	}
	return auction, nil
}

func parseOrder(record orderRecord) (model.Order, error) {
	side, err := model.ParseSide(record.Side)
	if err != nil {
		return model.Order{}, err
	}
	sellToken, err := parseAddress(record.SellToken)
	if err != nil {
		return model.Order{}, fmt.Errorf("sell token: %w", err)
	}
	buyToken, err := parseAddress(record.BuyToken)
	if err != nil {
		return model.Order{}, fmt.Errorf("buy token: %w", err)
	}
	sellAmount, err := parseAmount(record.SellAmount)
	if err != nil {
		return model.Order{}, fmt.Errorf("sell amount: %w", err)
	}
	buyAmount, err := parseAmount(record.BuyAmount)
	if err != nil {
		return model.Order{}, fmt.Errorf("buy amount: %w", err)
	}
	return model.Order{
		Side: side,
		Sell: model.Asset{Token: sellToken, Amount: sellAmount},
		Buy:  model.Asset{Token: buyToken, Amount: buyAmount},
	}, nil
}

func parseAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("invalid address %q", raw)
	}
	return common.HexToAddress(raw), nil
}

// parseAmount decodes a decimal wei string; empty means no amount given.
func parseAmount(raw string) (*uint256.Int, error) {
	if raw == "" {
		return nil, nil
	}
	amount := new(uint256.Int)
	if err := amount.SetFromDecimal(raw); err != nil {
		return nil, fmt.Errorf("invalid amount %q: %v", raw, err)
	}
	return amount, nil
}

// loadIndex builds the routing index from the snapshot file, wiring on-chain
// providers when an RPC URL is configured.
func loadIndex(ctx context.Context, cfg config.Config, logger *zap.Logger) (*snapshot.Index, func(), error) {
	closeFn := func() {}

	timestamp, err := config.ParseTimestamp(cfg.Timestamp)
	if err != nil {
		return nil, nil, fmt.Errorf("parse timestamp: %w", err)
	}
	if timestamp == 0 {
		timestamp = uint64(time.Now().Unix())
	}

	providers := snapshot.Providers{
		EpsilonBps: cfg.EpsilonBps,
		Timestamp:  timestamp,
	}

	if cfg.RPCURL != "" {
		client, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect rpc: %w", err)
		}
		closeFn = client.Close

		previewer, err := dex.NewVaultPreviewer(client, 0, cfg.MaxRetries, cfg.RetryBackoff, logger)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		providers.Previewer = previewer

		if cfg.QuoterAddr != "" {
			quoterAddr, err := parseAddress(cfg.QuoterAddr)
			if err != nil {
				client.Close()
				return nil, nil, fmt.Errorf("quoter address: %w", err)
			}
			oracle, err := dex.NewConcentratedQuoter(client, quoterAddr, 0, cfg.MaxRetries, cfg.RetryBackoff, logger)
			if err != nil {
				client.Close()
				return nil, nil, err
			}
			providers.Oracle = oracle
		}
	}

	ix, err := snapshot.Load(cfg.Snapshot, providers, logger)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return ix, closeFn, nil
}
