package domain

// Instrument describes a tradable market instrument.
// Immutable configuration resolved once from the market-data API.
type Instrument struct {
	FIGI     string // global instrument identifier used by the candles endpoint
	Ticker   string
	ISIN     string
	Currency string
	Name     string
	Lot      int
}
