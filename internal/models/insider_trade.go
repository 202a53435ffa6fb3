/**
 * @description
 * Insider trade record model: one reported insider transaction for a ticker.
 * Maps to the 'insider_trades' table in the persistent tier.
 *
 * Distinct trades can legitimately share a transaction timestamp, so each
 * record carries an opaque TradeID that disambiguates them. When the upstream
 * feed supplies no identifier, EnsureTradeID derives a deterministic UUID from
 * the record's fields so repeated ingestion stays idempotent.
 *
 * @dependencies
 * - gorm.io/gorm
 * - github.com/google/uuid
 */

package models

import (
	"time"

	"github.com/google/uuid"
)

// InsiderTrade is one insider transaction. Natural key: ticker + transaction
// timestamp + opaque trade identifier.
type InsiderTrade struct {
	ID               uint64  `gorm:"primaryKey;autoIncrement" json:"-"`
	TradeID          string  `gorm:"column:trade_id;uniqueIndex:idx_insider_trades_natural" json:"trade_id"`
	Ticker           string  `gorm:"column:ticker;index;uniqueIndex:idx_insider_trades_natural" json:"ticker"`
	FilingDate       string  `gorm:"column:filing_date;index" json:"filing_date"` // ISO-8601
	TransactionDate  string  `gorm:"column:transaction_date;uniqueIndex:idx_insider_trades_natural" json:"transaction_date"`
	InsiderName      string  `gorm:"column:insider_name" json:"insider_name,omitempty"`
	Position         string  `gorm:"column:position" json:"position,omitempty"`
	TransactionType  string  `gorm:"column:transaction_type" json:"transaction_type,omitempty"` // 'buy', 'sell'
	Shares           int64   `gorm:"column:shares" json:"shares,omitempty"`
	PricePerShare    float64 `gorm:"column:price_per_share" json:"price_per_share,omitempty"`
	TotalValue       float64 `gorm:"column:total_value" json:"total_value,omitempty"`
	SharesOwnedAfter int64   `gorm:"column:shares_owned_after" json:"shares_owned_after,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName overrides the table name used by InsiderTrade to `insider_trades`
func (InsiderTrade) TableName() string { return "insider_trades" }

func (t InsiderTrade) RecordTicker() string { return t.Ticker }

func (t InsiderTrade) NaturalKey() string { return t.TransactionDate + "|" + t.TradeID }

// EventTime prefers the transaction date; some filings omit it and only carry
// the filing date.
func (t InsiderTrade) EventTime() string {
	if t.TransactionDate != "" {
		return t.TransactionDate
	}
	return t.FilingDate
}

// EnsureTradeID fills in a deterministic identifier when the upstream record
// carries none. SHA1-namespaced UUIDs keep repeated ingestion idempotent.
func (t *InsiderTrade) EnsureTradeID() {
	if t.TradeID != "" {
		return
	}
	seed := t.Ticker + "|" + t.FilingDate + "|" + t.InsiderName + "|" + t.TransactionDate + "|" + t.TransactionType
	t.TradeID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed)).String()
}
