/**
 * @description
 * Price record model: one OHLCV bar for a ticker at a point in time.
 * Maps to the 'prices' table in the persistent tier.
 *
 * @dependencies
 * - gorm.io/gorm
 */

package models

import (
	"time"
)

// Price represents an OHLCV bar for a ticker. Natural key: ticker + time.
type Price struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	Ticker    string    `gorm:"column:ticker;index;uniqueIndex:idx_prices_ticker_time" json:"ticker"`
	Time      string    `gorm:"column:time;uniqueIndex:idx_prices_ticker_time" json:"time"` // ISO-8601
	Open      float64   `gorm:"column:open" json:"open"`
	Close     float64   `gorm:"column:close" json:"close"`
	High      float64   `gorm:"column:high" json:"high"`
	Low       float64   `gorm:"column:low" json:"low"`
	Volume    int64     `gorm:"column:volume" json:"volume"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName overrides the table name used by Price to `prices`
func (Price) TableName() string { return "prices" }

func (p Price) RecordTicker() string { return p.Ticker }

// NaturalKey is the bar timestamp; one bar per ticker per timestamp.
func (p Price) NaturalKey() string { return p.Time }

func (p Price) EventTime() string { return p.Time }
