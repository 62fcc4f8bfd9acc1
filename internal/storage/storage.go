package storage

import "auctionSolver/internal/model"

// Storage defines a sink for solve reports.
type Storage interface {
	PutReportBatch(reports []model.SolveReport) error
}
