/**
 * @description
 * Persistent storage tier backed by a relational database through GORM.
 * This is the source of truth for long-term retention: it answers
 * arbitrary-range queries directly and upserts by natural key, so replaying
 * a write leaves the stored state unchanged.
 *
 * @dependencies
 * - gorm.io/gorm
 * - internal/models
 */

package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/LemonCANDY42/ai-hedge-fund/internal/models"
)

// SQL is the persistent tier. It works against any GORM dialect; production
// uses Postgres or SQLite depending on DATABASE_URL.
type SQL struct {
	db *gorm.DB
}

// NewSQL wraps an existing GORM handle. The schema is expected to be
// migrated already (see internal/db.ConnectDatabase).
func NewSQL(db *gorm.DB) *SQL {
	return &SQL{db: db}
}

func (s *SQL) Name() string { return "sql" }

// Available pings the underlying connection; the context bounds the probe.
func (s *SQL) Available(ctx context.Context) bool {
	sqlDB, err := s.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}

func (s *SQL) Read(ctx context.Context, ticker string, kind models.Kind, r models.DateRange) ([]models.Record, Coverage, error) {
	var (
		found []models.Record
		err   error
	)

	switch kind {
	case models.KindPrices:
		found, err = sqlFind[models.Price](ctx, s.db, ticker, "time", r)
	case models.KindFinancialMetrics:
		found, err = sqlFind[models.FinancialMetric](ctx, s.db, ticker, "report_period", r)
	case models.KindLineItems:
		found, err = sqlFind[models.LineItem](ctx, s.db, ticker, "report_period", r)
	case models.KindInsiderTrades:
		found, err = s.findInsiderTrades(ctx, ticker, r)
	case models.KindCompanyNews:
		found, err = sqlFind[models.CompanyNews](ctx, s.db, ticker, "date", r)
	}
	if err != nil {
		return nil, Coverage{}, unavailable(s.Name(), "read", err)
	}

	return found, CoverageOf(found), nil
}

func (s *SQL) Write(ctx context.Context, ticker string, kind models.Kind, records []models.Record) error {
	var err error
	switch kind {
	case models.KindPrices:
		err = sqlUpsert(ctx, s.db, models.FromRecords[models.Price](records), "ticker", "time")
	case models.KindFinancialMetrics:
		err = sqlUpsert(ctx, s.db, models.FromRecords[models.FinancialMetric](records), "ticker", "report_period", "period")
	case models.KindLineItems:
		err = sqlUpsert(ctx, s.db, models.FromRecords[models.LineItem](records), "ticker", "report_period", "period", "name")
	case models.KindInsiderTrades:
		err = sqlUpsert(ctx, s.db, models.FromRecords[models.InsiderTrade](records), "ticker", "transaction_date", "trade_id")
	case models.KindCompanyNews:
		err = sqlUpsert(ctx, s.db, models.FromRecords[models.CompanyNews](records), "ticker", "date", "url")
	}
	if err != nil {
		return unavailable(s.Name(), "write", err)
	}
	return nil
}

// sqlFind queries one table for a ticker's rows inside the day range,
// ordered by the time column ascending.
func sqlFind[T models.Record](ctx context.Context, db *gorm.DB, ticker, timeCol string, r models.DateRange) ([]models.Record, error) {
	var rows []T
	q := db.WithContext(ctx).Where("ticker = ?", ticker)
	if r.Start != "" {
		q = q.Where(timeCol+" >= ?", models.Day(r.Start))
	}
	if r.End != "" {
		// ISO-8601 timestamps on the end day sort before the next day's date,
		// so a strict upper bound on the following day captures them.
		q = q.Where(timeCol+" < ?", models.NextDay(r.End))
	}
	if err := q.Order(timeCol + " ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return models.AsRecords(rows), nil
}

// findInsiderTrades matches on either transaction date or filing date, the
// way the upstream filings API filters: a trade filed late still belongs to
// the window it was transacted in.
func (s *SQL) findInsiderTrades(ctx context.Context, ticker string, r models.DateRange) ([]models.Record, error) {
	var rows []models.InsiderTrade
	q := s.db.WithContext(ctx).Where("ticker = ?", ticker)
	if r.Start != "" {
		q = q.Where("transaction_date >= ? OR filing_date >= ?", models.Day(r.Start), models.Day(r.Start))
	}
	if r.End != "" {
		next := models.NextDay(r.End)
		q = q.Where("transaction_date < ? OR filing_date < ?", next, next)
	}
	if err := q.Order("transaction_date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return models.AsRecords(rows), nil
}

// sqlUpsert inserts rows, updating every non-key column when the natural key
// already exists.
func sqlUpsert[T any](ctx context.Context, db *gorm.DB, rows []T, conflictCols ...string) error {
	if len(rows) == 0 {
		return nil
	}
	cols := make([]clause.Column, len(conflictCols))
	for i, c := range conflictCols {
		cols[i] = clause.Column{Name: c}
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: cols, UpdateAll: true}).
		Create(&rows).Error
}
