package domain

import "time"

// Recommendation is the flat record emitted once per pipeline invocation
// and appended to the result log.
type Recommendation struct {
	Ticker          string         `json:"ticker"`
	Time            time.Time      `json:"time"`
	Interval        CandleInterval `json:"interval"`
	Periods         int            `json:"periods"`
	Batches         int            `json:"batches"`
	Price           float64        `json:"price"`
	ProfitThreshold float64        `json:"profit_threshold"`
	Buy             float64        `json:"buy"`
	Policy          string         `json:"policy"`
	ROCAUC          *float64       `json:"roc_auc"` // nil when cross-validation was skipped or failed
}
