package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"auctionSolver/internal/model"
)

// Store provides Postgres persistence for solve reports.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// UpsertReports inserts or updates solve reports keyed by auction and order
// index. Segments are stored as JSONB.
func (s *Store) UpsertReports(ctx context.Context, reports []model.SolveReport) error {
	if len(reports) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, report := range reports {
		segments, err := json.Marshal(report.Segments)
		if err != nil {
			return fmt.Errorf("marshal segments: %w", err)
		}
		batch.Queue(`
			INSERT INTO solve_reports (
				auction_id, order_index, side, sell_token, sell_amount,
				buy_token, buy_amount, segments, gas, failure, solved_at, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now(),now())
			ON CONFLICT (auction_id, order_index)
			DO UPDATE SET
				side = EXCLUDED.side,
				sell_token = EXCLUDED.sell_token,
				sell_amount = EXCLUDED.sell_amount,
				buy_token = EXCLUDED.buy_token,
				buy_amount = EXCLUDED.buy_amount,
				segments = EXCLUDED.segments,
				gas = EXCLUDED.gas,
				failure = EXCLUDED.failure,
				solved_at = EXCLUDED.solved_at,
				updated_at = now()
		`,
			report.AuctionID,
			report.OrderIndex,
			report.Side,
			report.SellToken,
			report.SellAmount,
			report.BuyToken,
			report.BuyAmount,
			segments,
			int64(report.Gas),
			report.Failure,
			report.SolvedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range reports {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// ReportsByAuction returns all stored reports for an auction, in order index
// order.
func (s *Store) ReportsByAuction(ctx context.Context, auctionID string) ([]model.SolveReport, error) {
	if auctionID == "" {
		return nil, fmt.Errorf("auction id required")
	}
	rows, err := s.pool.Query(ctx, `
		SELECT auction_id, order_index, side, sell_token, sell_amount,
		       buy_token, buy_amount, segments, gas, failure, solved_at
		FROM solve_reports
		WHERE auction_id = $1
		ORDER BY order_index
	`, auctionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []model.SolveReport
	for rows.Next() {
		var (
			report   model.SolveReport
			segments []byte
			gas      int64
		)
		if err := rows.Scan(
			&report.AuctionID,
			&report.OrderIndex,
			&report.Side,
			&report.SellToken,
			&report.SellAmount,
			&report.BuyToken,
			&report.BuyAmount,
			&segments,
			&gas,
			&report.Failure,
			&report.SolvedAt,
		); err != nil {
			return nil, err
		}
		if len(segments) > 0 {
			if err := json.Unmarshal(segments, &report.Segments); err != nil {
				return nil, fmt.Errorf("unmarshal segments: %w", err)
			}
		}
		report.Gas = uint64(gas)
		reports = append(reports, report)
	}
	return reports, rows.Err()
}
