package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/IvanRychkov/catcher/internal/domain"
)

// DefaultTimeout bounds a single candles or instrument request.
const DefaultTimeout = 30 * time.Second

// APIError carries a non-success upstream response. The upstream message is
// propagated, not swallowed.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("market data API returned %d: %s", e.StatusCode, e.Message)
}

// Client implements CandleSource against a Tinkoff-style REST API.
type Client struct {
	baseURL string
	token   string
	ticker  string
	client  *http.Client
	now     func() time.Time

	instrument *domain.Instrument // cached after first resolution
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.client = hc
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithClock sets a custom clock for deterministic download windows.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a market-data client for one ticker.
func NewClient(baseURL, token, ticker string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		ticker:  ticker,
		client:  &http.Client{Timeout: DefaultTimeout},
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ CandleSource = (*Client)(nil)

// instrumentJSON mirrors the instrument search payload.
type instrumentJSON struct {
	FIGI     string `json:"figi"`
	Ticker   string `json:"ticker"`
	ISIN     string `json:"isin"`
	Currency string `json:"currency"`
	Name     string `json:"name"`
	Lot      int    `json:"lot"`
}

// candleJSON mirrors one candle of the candles payload.
type candleJSON struct {
	Open   float64 `json:"o"`
	Close  float64 `json:"c"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Volume float64 `json:"v"`
	Time   string  `json:"time"`
}

// Instrument resolves and caches metadata for the configured ticker.
func (c *Client) Instrument(ctx context.Context) (domain.Instrument, error) {
	if c.instrument != nil {
		return *c.instrument, nil
	}

	var payload struct {
		Payload struct {
			Instruments []instrumentJSON `json:"instruments"`
		} `json:"payload"`
	}
	params := url.Values{"ticker": {c.ticker}}
	if err := c.get(ctx, "/market/search/by-ticker", params, &payload); err != nil {
		return domain.Instrument{}, err
	}
	if len(payload.Payload.Instruments) == 0 {
		return domain.Instrument{}, fmt.Errorf("no instrument found for ticker %q", c.ticker)
	}

	in := payload.Payload.Instruments[0]
	c.instrument = &domain.Instrument{
		FIGI:     in.FIGI,
		Ticker:   in.Ticker,
		ISIN:     in.ISIN,
		Currency: in.Currency,
		Name:     in.Name,
		Lot:      in.Lot,
	}
	return *c.instrument, nil
}

// Candles downloads batches of candle history at the given interval.
// Batches are requested backwards in time so rows arrive chronologically;
// the combined result is sorted and deduplicated by timestamp.
func (c *Client) Candles(ctx context.Context, interval domain.CandleInterval, periods, batches int) ([]domain.Candle, error) {
	if !interval.Valid() {
		return nil, fmt.Errorf("unknown candle interval %q", interval)
	}
	if batches < 1 {
		batches = 1
	}

	instrument, err := c.Instrument(ctx)
	if err != nil {
		return nil, err
	}

	batchLength := interval.MaxLength()
	if periods > 0 {
		batchLength = interval.Step() * time.Duration(periods)
	}

	end := c.now()
	var candles []domain.Candle
	for batch := batches; batch > 0; batch-- {
		from := end.Add(-batchLength * time.Duration(batch))
		to := end.Add(-batchLength * time.Duration(batch-1))

		part, err := c.candleBatch(ctx, instrument.FIGI, interval, from, to)
		if err != nil {
			return nil, err
		}
		candles = append(candles, part...)
	}

	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Time.Before(candles[j].Time)
	})
	return dedupeByTime(candles), nil
}

func (c *Client) candleBatch(ctx context.Context, figi string, interval domain.CandleInterval, from, to time.Time) ([]domain.Candle, error) {
	var payload struct {
		Payload struct {
			Candles []candleJSON `json:"candles"`
		} `json:"payload"`
	}
	params := url.Values{
		"figi":     {figi},
		"from":     {from.Format(time.RFC3339)},
		"to":       {to.Format(time.RFC3339)},
		"interval": {string(interval)},
	}
	if err := c.get(ctx, "/market/candles", params, &payload); err != nil {
		return nil, err
	}

	candles := make([]domain.Candle, 0, len(payload.Payload.Candles))
	for _, raw := range payload.Payload.Candles {
		ts, err := time.Parse(time.RFC3339, raw.Time)
		if err != nil {
			return nil, fmt.Errorf("parse candle time %q: %w", raw.Time, err)
		}
		candles = append(candles, domain.Candle{
			Time:   ts,
			Open:   raw.Open,
			Close:  raw.Close,
			High:   raw.High,
			Low:    raw.Low,
			Volume: raw.Volume,
		})
	}
	return candles, nil
}

// get performs an authorized GET and decodes the JSON body into out. A
// non-200 status surfaces as *APIError with the upstream payload message.
func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errPayload struct {
			Payload struct {
				Message string `json:"message"`
			} `json:"payload"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errPayload)
		return &APIError{StatusCode: resp.StatusCode, Message: errPayload.Payload.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func dedupeByTime(candles []domain.Candle) []domain.Candle {
	out := candles[:0]
	for i, candle := range candles {
		if i > 0 && candle.Time.Equal(candles[i-1].Time) {
			continue
		}
		out = append(out, candle)
	}
	return out
}
