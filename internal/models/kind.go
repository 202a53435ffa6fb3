/**
 * @description
 * Record kind enumeration for the five cached financial data types.
 * Kind values double as cache-key prefixes and as dispatch tags for the
 * storage tiers.
 */

package models

import "fmt"

// Kind identifies one of the five cached record types.
type Kind string

const (
	KindPrices           Kind = "prices"
	KindFinancialMetrics Kind = "financial_metrics"
	KindLineItems        Kind = "line_items"
	KindInsiderTrades    Kind = "insider_trades"
	KindCompanyNews      Kind = "company_news"
)

// Kinds lists every record kind, in cache-key order.
var Kinds = []Kind{
	KindPrices,
	KindFinancialMetrics,
	KindLineItems,
	KindInsiderTrades,
	KindCompanyNews,
}

// Valid reports whether k names a known record kind.
func (k Kind) Valid() bool {
	switch k {
	case KindPrices, KindFinancialMetrics, KindLineItems, KindInsiderTrades, KindCompanyNews:
		return true
	}
	return false
}

func (k Kind) String() string { return string(k) }

// Record is the contract every cached record type satisfies.
// NaturalKey uniquely identifies a record within one ticker's sequence;
// writing a record with an existing key overwrites it in place.
// EventTime is the ISO-8601 time used for range filtering and ordering.
type Record interface {
	RecordTicker() string
	NaturalKey() string
	EventTime() string
}

// CacheKey builds the canonical key for a (kind, ticker) sequence,
// e.g. "prices:ticker:AAPL". Every tier keys its storage off this.
func CacheKey(kind Kind, ticker string) string {
	return fmt.Sprintf("%s:ticker:%s", kind, ticker)
}
