/**
 * @description
 * Financial metric record model: periodic valuation and profitability ratios
 * for a ticker. Maps to the 'financial_metrics' table in the persistent tier.
 *
 * @dependencies
 * - gorm.io/gorm
 */

package models

import (
	"time"
)

// FinancialMetric holds the ratio set reported for one ticker and report
// period. Natural key: ticker + report period + period type, so 'ttm' and
// 'annual' rows for the same report date coexist.
type FinancialMetric struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement" json:"-"`
	Ticker       string `gorm:"column:ticker;index;uniqueIndex:idx_metrics_natural" json:"ticker"`
	ReportPeriod string `gorm:"column:report_period;uniqueIndex:idx_metrics_natural" json:"report_period"` // ISO-8601 date
	Period       string `gorm:"column:period;uniqueIndex:idx_metrics_natural" json:"period"`               // 'ttm', 'annual', 'quarterly'
	Currency     string `gorm:"column:currency" json:"currency,omitempty"`

	MarketCap        float64 `gorm:"column:market_cap" json:"market_cap,omitempty"`
	EnterpriseValue  float64 `gorm:"column:enterprise_value" json:"enterprise_value,omitempty"`
	PERatio          float64 `gorm:"column:pe_ratio" json:"pe_ratio,omitempty"`
	PBRatio          float64 `gorm:"column:pb_ratio" json:"pb_ratio,omitempty"`
	PSRatio          float64 `gorm:"column:ps_ratio" json:"ps_ratio,omitempty"`
	EVToEBITDA       float64 `gorm:"column:ev_to_ebitda" json:"ev_to_ebitda,omitempty"`
	ROE              float64 `gorm:"column:roe" json:"roe,omitempty"`
	ROA              float64 `gorm:"column:roa" json:"roa,omitempty"`
	GrossMargin      float64 `gorm:"column:gross_margin" json:"gross_margin,omitempty"`
	OperatingMargin  float64 `gorm:"column:operating_margin" json:"operating_margin,omitempty"`
	NetMargin        float64 `gorm:"column:net_margin" json:"net_margin,omitempty"`
	RevenueGrowth    float64 `gorm:"column:revenue_growth" json:"revenue_growth,omitempty"`
	EarningsGrowth   float64 `gorm:"column:earnings_growth" json:"earnings_growth,omitempty"`
	DividendYield    float64 `gorm:"column:dividend_yield" json:"dividend_yield,omitempty"`
	PayoutRatio      float64 `gorm:"column:payout_ratio" json:"payout_ratio,omitempty"`
	CurrentRatio     float64 `gorm:"column:current_ratio" json:"current_ratio,omitempty"`
	QuickRatio       float64 `gorm:"column:quick_ratio" json:"quick_ratio,omitempty"`
	DebtToEquity     float64 `gorm:"column:debt_to_equity" json:"debt_to_equity,omitempty"`
	InterestCoverage float64 `gorm:"column:interest_coverage" json:"interest_coverage,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName overrides the table name used by FinancialMetric to `financial_metrics`
func (FinancialMetric) TableName() string { return "financial_metrics" }

func (m FinancialMetric) RecordTicker() string { return m.Ticker }

func (m FinancialMetric) NaturalKey() string { return m.ReportPeriod + "|" + m.Period }

func (m FinancialMetric) EventTime() string { return m.ReportPeriod }
