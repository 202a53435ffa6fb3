/**
 * @description
 * Company news record model: one published article about a ticker.
 * Maps to the 'company_news' table in the persistent tier.
 *
 * @dependencies
 * - gorm.io/gorm
 */

package models

import (
	"time"
)

// CompanyNews is one published article. Natural key: ticker + published
// timestamp + URL; articles without a URL fall back to the title.
type CompanyNews struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement" json:"-"`
	Ticker    string `gorm:"column:ticker;index;uniqueIndex:idx_company_news_natural" json:"ticker"`
	Date      string `gorm:"column:date;uniqueIndex:idx_company_news_natural" json:"date"` // ISO-8601 published time
	Title     string `gorm:"column:title" json:"title"`
	Summary   string `gorm:"column:summary;type:text" json:"summary,omitempty"`
	Author    string `gorm:"column:author" json:"author,omitempty"`
	Source    string `gorm:"column:source" json:"source,omitempty"`
	URL       string `gorm:"column:url;uniqueIndex:idx_company_news_natural" json:"url,omitempty"`
	Sentiment string `gorm:"column:sentiment" json:"sentiment,omitempty"` // 'positive', 'negative', 'neutral'

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// TableName overrides the table name used by CompanyNews to `company_news`
func (CompanyNews) TableName() string { return "company_news" }

func (n CompanyNews) RecordTicker() string { return n.Ticker }

func (n CompanyNews) NaturalKey() string {
	if n.URL != "" {
		return n.Date + "|" + n.URL
	}
	return n.Date + "|" + n.Title
}

func (n CompanyNews) EventTime() string { return n.Date }
