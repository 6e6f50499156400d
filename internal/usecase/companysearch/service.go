// Package companysearch executes canonical search queries and shapes the
// warehouse rows into company-level summaries.
package companysearch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lanesight/lanesight/internal/domain"
	"github.com/lanesight/lanesight/internal/logger"
	"github.com/lanesight/lanesight/internal/querygen"
	"github.com/lanesight/lanesight/internal/warehouse"
)

// Service is the company aggregation entry point. Stateless; safe for
// concurrent use.
type Service struct {
	wh  warehouse.Runner
	now func() time.Time
}

// New creates a company search service.
func New(wh warehouse.Runner) *Service {
	return &Service{wh: wh, now: time.Now}
}

// WithClock overrides the query-time anchor for the trailing 12-month window.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Search compiles and executes the aggregation, returning one page of
// summaries plus the pre-pagination total of distinct matching companies.
// Warehouse failures surface as QueryError; nothing is retried here.
func (s *Service) Search(ctx context.Context, q domain.SearchQuery) (domain.SearchResult, error) {
	// The window anchor is UTC day-granular: identical searches issued the
	// same day compile to identical statements and parameters, so the
	// result cache can key on them.
	stmt := querygen.Compile(q, s.now().UTC().Truncate(24*time.Hour))

	rows, err := s.wh.RunQuery(ctx, stmt.SQL, stmt.Params)
	if err != nil {
		return domain.SearchResult{}, err
	}

	result := domain.SearchResult{Rows: make([]domain.CompanySummary, 0, len(rows))}
	for _, row := range rows {
		result.Rows = append(result.Rows, summaryFromRow(row))
	}
	switch {
	case len(rows) > 0:
		result.Total = toInt64(rows[0]["total_count"])
	case q.Page.Offset > 0:
		// An offset past the last company yields an empty page, but the
		// total still has to reflect every match.
		total, err := s.countMatches(ctx, q)
		if err != nil {
			return domain.SearchResult{}, err
		}
		result.Total = total
	}

	logger.FromContext(ctx).Debug("company search executed",
		zap.Int("rows", len(result.Rows)),
		zap.Int64("total", result.Total),
	)
	return result, nil
}

func (s *Service) countMatches(ctx context.Context, q domain.SearchQuery) (int64, error) {
	stmt := querygen.CompileCount(q)
	rows, err := s.wh.RunQuery(ctx, stmt.SQL, stmt.Params)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return toInt64(rows[0]["total_count"]), nil
}

func summaryFromRow(row warehouse.Row) domain.CompanySummary {
	return domain.CompanySummary{
		CompanyID:    toString(row["company_id"]),
		CompanyName:  toString(row["company_name"]),
		Shipments12M: toInt64(row["shipments_12m"]),
		LastActivity: toTimePtr(row["last_activity"]),
		TopRoutes:    toStringList(row["top_routes"], domain.TopListCap),
		TopCarriers:  toStringList(row["top_carriers"], domain.TopListCap),
	}
}
