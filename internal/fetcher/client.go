/**
 * @description
 * HTTP client for the financialdatasets.ai API: the production
 * implementation of the cache facade's fetcher bridge. One method per
 * record kind plus a kind-dispatching Fetch used by the cache on misses.
 *
 * Insider trades and news are paginated by walking filing/publication dates
 * backwards until the window is exhausted, the way the upstream API expects.
 *
 * @dependencies
 * - standard "net/http", "encoding/json"
 * - internal/config
 * - internal/models
 */

package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/LemonCANDY42/ai-hedge-fund/internal/config"
	"github.com/LemonCANDY42/ai-hedge-fund/internal/models"
)

const (
	defaultTimeout = 30 * time.Second
	pageLimit      = 1000
)

// DefaultLineItems is the statement entry set requested when the cache
// needs line items for a ticker and the caller did not name specific ones.
var DefaultLineItems = []string{
	"revenue",
	"net_income",
	"operating_income",
	"free_cash_flow",
	"capital_expenditure",
	"total_assets",
	"total_liabilities",
	"shareholders_equity",
	"outstanding_shares",
}

// Client calls the upstream financial data API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient builds a client from configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.API.BaseURL,
		apiKey:  cfg.API.Key,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// Fetch dispatches on the record kind. This is the facade's miss path.
func (c *Client) Fetch(ctx context.Context, ticker string, kind models.Kind, r models.DateRange) ([]models.Record, error) {
	switch kind {
	case models.KindPrices:
		prices, err := c.GetPrices(ctx, ticker, r.Start, r.End)
		return models.AsRecords(prices), err
	case models.KindFinancialMetrics:
		metrics, err := c.GetFinancialMetrics(ctx, ticker, r.Start, r.End, "ttm", 10)
		return models.AsRecords(metrics), err
	case models.KindLineItems:
		items, err := c.SearchLineItems(ctx, ticker, DefaultLineItems, r.End, "ttm", 10)
		return models.AsRecords(items), err
	case models.KindInsiderTrades:
		trades, err := c.GetInsiderTrades(ctx, ticker, r.Start, r.End)
		return models.AsRecords(trades), err
	case models.KindCompanyNews:
		news, err := c.GetCompanyNews(ctx, ticker, r.Start, r.End)
		return models.AsRecords(news), err
	}
	return nil, fmt.Errorf("fetcher: unknown record kind %q", kind)
}

// GetPrices fetches daily OHLCV bars for the window.
func (c *Client) GetPrices(ctx context.Context, ticker, startDate, endDate string) ([]models.Price, error) {
	q := url.Values{}
	q.Set("ticker", ticker)
	q.Set("interval", "day")
	q.Set("interval_multiplier", "1")
	if startDate != "" {
		q.Set("start_date", startDate)
	}
	if endDate != "" {
		q.Set("end_date", endDate)
	}

	var envelope struct {
		Prices []models.Price `json:"prices"`
	}
	if err := c.getJSON(ctx, "/prices/", q, &envelope); err != nil {
		return nil, err
	}
	for i := range envelope.Prices {
		envelope.Prices[i].Ticker = ticker
	}
	return envelope.Prices, nil
}

// GetFinancialMetrics fetches up to limit ratio sets reported on or before
// endDate.
func (c *Client) GetFinancialMetrics(ctx context.Context, ticker, startDate, endDate, period string, limit int) ([]models.FinancialMetric, error) {
	q := url.Values{}
	q.Set("ticker", ticker)
	q.Set("period", period)
	q.Set("limit", fmt.Sprint(limit))
	if startDate != "" {
		q.Set("report_period_gte", startDate)
	}
	if endDate != "" {
		q.Set("report_period_lte", endDate)
	}

	var envelope struct {
		FinancialMetrics []models.FinancialMetric `json:"financial_metrics"`
	}
	if err := c.getJSON(ctx, "/financial-metrics/", q, &envelope); err != nil {
		return nil, err
	}
	for i := range envelope.FinancialMetrics {
		envelope.FinancialMetrics[i].Ticker = ticker
	}
	return envelope.FinancialMetrics, nil
}

// SearchLineItems fetches named statement entries. The upstream response is
// one object per report period carrying the requested names as extra keys;
// it is flattened into one LineItem per name.
func (c *Client) SearchLineItems(ctx context.Context, ticker string, lineItems []string, endDate, period string, limit int) ([]models.LineItem, error) {
	body := map[string]any{
		"tickers":    []string{ticker},
		"line_items": lineItems,
		"period":     period,
		"limit":      limit,
	}
	if endDate != "" {
		body["end_date"] = endDate
	}

	var envelope struct {
		SearchResults []map[string]json.RawMessage `json:"search_results"`
	}
	if err := c.postJSON(ctx, "/financials/search/line-items", body, &envelope); err != nil {
		return nil, err
	}

	var items []models.LineItem
	for _, row := range envelope.SearchResults {
		base := models.LineItem{Ticker: ticker, Period: period}
		decodeString(row, "report_period", &base.ReportPeriod)
		decodeString(row, "period", &base.Period)
		decodeString(row, "currency", &base.Currency)

		for name, raw := range row {
			switch name {
			case "ticker", "report_period", "period", "currency":
				continue
			}
			var value float64
			if err := json.Unmarshal(raw, &value); err != nil {
				continue // non-numeric extras are not line items
			}
			item := base
			item.Name = name
			item.Value = value
			items = append(items, item)
		}
	}
	return items, nil
}

// GetInsiderTrades fetches insider transactions in the window, paging
// backwards through filing dates.
func (c *Client) GetInsiderTrades(ctx context.Context, ticker, startDate, endDate string) ([]models.InsiderTrade, error) {
	var all []models.InsiderTrade
	currentEnd := endDate

	for {
		q := url.Values{}
		q.Set("ticker", ticker)
		q.Set("limit", fmt.Sprint(pageLimit))
		if currentEnd != "" {
			q.Set("filing_date_lte", currentEnd)
		}
		if startDate != "" {
			q.Set("filing_date_gte", startDate)
		}

		var envelope struct {
			InsiderTrades []wireInsiderTrade `json:"insider_trades"`
		}
		if err := c.getJSON(ctx, "/insider-trades/", q, &envelope); err != nil {
			return nil, err
		}
		if len(envelope.InsiderTrades) == 0 {
			break
		}

		oldest := ""
		for _, w := range envelope.InsiderTrades {
			trade := w.toModel(ticker)
			all = append(all, trade)
			if d := models.Day(trade.FilingDate); oldest == "" || d < oldest {
				oldest = d
			}
		}

		if startDate == "" || len(envelope.InsiderTrades) < pageLimit || oldest <= startDate {
			break
		}
		currentEnd = nextPageEnd(currentEnd, oldest)
	}
	return all, nil
}

// GetCompanyNews fetches published articles in the window, paging backwards
// through publication dates.
func (c *Client) GetCompanyNews(ctx context.Context, ticker, startDate, endDate string) ([]models.CompanyNews, error) {
	var all []models.CompanyNews
	currentEnd := endDate

	for {
		q := url.Values{}
		q.Set("ticker", ticker)
		q.Set("limit", fmt.Sprint(pageLimit))
		if currentEnd != "" {
			q.Set("end_date", currentEnd)
		}
		if startDate != "" {
			q.Set("start_date", startDate)
		}

		var envelope struct {
			News []models.CompanyNews `json:"news"`
		}
		if err := c.getJSON(ctx, "/news/", q, &envelope); err != nil {
			return nil, err
		}
		if len(envelope.News) == 0 {
			break
		}

		oldest := ""
		for i := range envelope.News {
			envelope.News[i].Ticker = ticker
			all = append(all, envelope.News[i])
			if d := models.Day(envelope.News[i].Date); oldest == "" || d < oldest {
				oldest = d
			}
		}

		if startDate == "" || len(envelope.News) < pageLimit || oldest <= startDate {
			break
		}
		currentEnd = nextPageEnd(currentEnd, oldest)
	}
	return all, nil
}

// nextPageEnd picks the upper bound for the next page when walking dates
// backwards. A full page pinned on a single day would otherwise request the
// same page forever, so the cursor always moves at least one day back.
func nextPageEnd(currentEnd, oldest string) string {
	if oldest >= models.Day(currentEnd) {
		return models.PrevDay(oldest)
	}
	return oldest
}

// wireInsiderTrade matches the upstream field names, which differ from the
// stored model's.
type wireInsiderTrade struct {
	Ticker                      string  `json:"ticker"`
	FilingDate                  string  `json:"filing_date"`
	TransactionDate             string  `json:"transaction_date"`
	Name                        string  `json:"name"`
	Title                       string  `json:"title"`
	TransactionShares           float64 `json:"transaction_shares"`
	TransactionPricePerShare    float64 `json:"transaction_price_per_share"`
	TransactionValue            float64 `json:"transaction_value"`
	SharesOwnedAfterTransaction float64 `json:"shares_owned_after_transaction"`
}

func (w wireInsiderTrade) toModel(ticker string) models.InsiderTrade {
	trade := models.InsiderTrade{
		Ticker:           ticker,
		FilingDate:       w.FilingDate,
		TransactionDate:  w.TransactionDate,
		InsiderName:      w.Name,
		Position:         w.Title,
		Shares:           int64(w.TransactionShares),
		PricePerShare:    w.TransactionPricePerShare,
		TotalValue:       w.TransactionValue,
		SharesOwnedAfter: int64(w.SharesOwnedAfterTransaction),
	}
	if w.TransactionShares < 0 {
		trade.TransactionType = "sell"
	} else if w.TransactionShares > 0 {
		trade.TransactionType = "buy"
	}
	trade.EnsureTradeID()
	return trade
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("fetcher: %s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, payload)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeString(row map[string]json.RawMessage, key string, dst *string) {
	if raw, ok := row[key]; ok {
		_ = json.Unmarshal(raw, dst)
	}
}
