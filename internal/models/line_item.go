/**
 * @description
 * Financial line item record model: a single named entry from an income,
 * balance or cash-flow statement. Maps to the 'line_items' table in the
 * persistent tier.
 *
 * @dependencies
 * - gorm.io/gorm
 */

package models

import (
	"time"
)

// LineItem is one named statement entry for a ticker and report period.
// Natural key: ticker + report period + period type + line-item name.
type LineItem struct {
	ID            uint64  `gorm:"primaryKey;autoIncrement" json:"-"`
	Ticker        string  `gorm:"column:ticker;index;uniqueIndex:idx_line_items_natural" json:"ticker"`
	ReportPeriod  string  `gorm:"column:report_period;uniqueIndex:idx_line_items_natural" json:"report_period"` // ISO-8601 date
	Period        string  `gorm:"column:period;uniqueIndex:idx_line_items_natural" json:"period"`               // 'ttm', 'annual', 'quarterly'
	Name          string  `gorm:"column:name;uniqueIndex:idx_line_items_natural" json:"name"`                   // e.g. "free_cash_flow"
	StatementType string  `gorm:"column:statement_type" json:"statement_type,omitempty"`                        // 'income', 'balance', 'cash_flow'
	Value         float64 `gorm:"column:value" json:"value"`
	Currency      string  `gorm:"column:currency" json:"currency,omitempty"`
	Unit          string  `gorm:"column:unit" json:"unit,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName overrides the table name used by LineItem to `line_items`
func (LineItem) TableName() string { return "line_items" }

func (l LineItem) RecordTicker() string { return l.Ticker }

func (l LineItem) NaturalKey() string { return l.ReportPeriod + "|" + l.Period + "|" + l.Name }

func (l LineItem) EventTime() string { return l.ReportPeriod }
