// Package recommend orchestrates the buy-recommendation pipeline: download
// candles, build features, cross-profit label, fit the classifier and score
// the most recent price. Each run takes an explicit immutable Config and
// returns an explicit Result; nothing is carried between runs.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/IvanRychkov/catcher/internal/classifier"
	"github.com/IvanRychkov/catcher/internal/domain"
	"github.com/IvanRychkov/catcher/internal/features"
	"github.com/IvanRychkov/catcher/internal/frame"
	"github.com/IvanRychkov/catcher/internal/labeling"
	"github.com/IvanRychkov/catcher/internal/marketdata"
	"github.com/IvanRychkov/catcher/internal/profit"
	"github.com/IvanRychkov/catcher/internal/storage"
)

// Pipeline errors.
var (
	// ErrEmptyData is returned when the downloaded series has no rows left
	// for training. Increasing periods usually helps.
	ErrEmptyData = errors.New("no data rows: try increasing periods count")

	// ErrThresholdTooLarge is returned when the profit threshold filtered
	// the training labels down to a single class.
	ErrThresholdTooLarge = errors.New("profit threshold may be too large")
)

// Raw OHLCV column names. These are leakage-prone and are dropped from the
// training table before the classifier sees it.
const (
	colOpen   = "open"
	colClose  = "close"
	colHigh   = "high"
	colLow    = "low"
	colVolume = "volume"
)

var leakColumns = []string{colOpen, colClose, colHigh, colLow, colVolume}

// ChartData is everything the chart collaborator needs to draw the
// diagnostic picture: the price series, the current price with its non-loss
// boundary, and an optional profit-rate overlay.
type ChartData struct {
	Title        string
	Label        string // instrument label for the price series legend
	Currency     string
	Times        []time.Time
	Prices       []float64
	CurrentPrice float64
	NonLossPrice float64
	OverlayTimes []time.Time // optional mean-profit overlay, empty when absent
	Overlay      []float64
}

// ChartRenderer renders the diagnostic chart. The pipeline hands it data and
// does not render anything itself.
type ChartRenderer interface {
	Render(data ChartData) error
}

// Config is the immutable per-run configuration.
type Config struct {
	Interval        domain.CandleInterval
	Periods         int // candles per batch; <= 0 means the interval's maximum lookback
	Batches         int
	Commission      float64
	Policy          domain.Policy
	ProfitThreshold float64
	WindowSizes     []int
	ShiftWindows    bool
	CrossValidate   bool
	CrossValFolds   int // defaults to 3
}

// Result is the explicit outcome of one pipeline run.
type Result struct {
	Rows           int     // downloaded row count
	CurrentPrice   float64 // last observed close
	ProfitRate     float64 // mean of the per-pair profit flags
	BuyProbability float64
	ROCAUC         *float64 // nil when cross-validation was skipped or failed
	Record         *domain.Recommendation
}

// Options wires the pipeline's collaborators. Source is required; the rest
// are optional.
type Options struct {
	Source  marketdata.CandleSource
	Store   storage.RecommendationStore // result log
	Archive storage.CandleArchive       // downloaded-candle archive
	Chart   ChartRenderer
	Verbose bool
}

// Pipeline produces buy recommendations.
type Pipeline struct {
	source  marketdata.CandleSource
	store   storage.RecommendationStore
	archive storage.CandleArchive
	chart   ChartRenderer
	verbose bool
}

// New creates a Pipeline.
func New(opts Options) *Pipeline {
	return &Pipeline{
		source:  opts.Source,
		store:   opts.Store,
		archive: opts.Archive,
		chart:   opts.Chart,
		verbose: opts.Verbose,
	}
}

// Run executes one full pipeline pass and returns the recommendation for the
// most recent observed price.
func (p *Pipeline) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	if cfg.Batches < 1 {
		cfg.Batches = 1
	}
	if cfg.CrossValFolds < 2 {
		cfg.CrossValFolds = 3
	}

	instrument, err := p.source.Instrument(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve instrument: %w", err)
	}

	candles, err := p.source.Candles(ctx, cfg.Interval, cfg.Periods, cfg.Batches)
	if err != nil {
		return nil, fmt.Errorf("download candles: %w", err)
	}
	if len(candles) == 0 {
		return nil, ErrEmptyData
	}
	p.logf("Downloaded %d rows.", len(candles))

	current := candles[len(candles)-1].Close
	p.logf("Current price: %v %s", current, instrument.Currency)

	feats, err := features.Build(candlesFrame(candles), colOpen, features.Options{
		WindowSizes:  cfg.WindowSizes,
		ShiftWindows: cfg.ShiftWindows,
	})
	if err != nil {
		return nil, fmt.Errorf("build features: %w", err)
	}
	if feats.Len() == 0 {
		return nil, fmt.Errorf("%w (all rows trimmed as warm-up)", ErrEmptyData)
	}

	cross, err := labeling.CrossProfit(feats, colOpen, cfg.Policy, cfg.Commission, cfg.ProfitThreshold)
	if err != nil {
		return nil, fmt.Errorf("cross-profit labeling: %w", err)
	}
	train := cross.Drop(leakColumns...)
	if train.Len() == 0 {
		return nil, fmt.Errorf("%w (no eligible buy/sell pairs)", ErrEmptyData)
	}

	flags, err := train.Column(labeling.ColProfit)
	if err != nil {
		return nil, err
	}
	profitRate := stat.Mean(flags, nil)
	p.logf("Overall profit chance: %.2f%%", profitRate*100)

	featureNames := dropName(train.Names(), labeling.ColProfit)
	x, err := train.Matrix(featureNames...)
	if err != nil {
		return nil, err
	}

	var rocAUC *float64
	if cfg.CrossValidate {
		p.logf("Cross-validating...")
		auc, err := classifier.CrossValidateAUC(x, flags, cfg.CrossValFolds)
		if err != nil {
			// Cross-validation is diagnostic; a failure degrades to
			// "score unavailable" instead of aborting the run.
			p.logf("Cross-validation unavailable: %v", err)
		} else {
			rocAUC = &auc
			p.logf("ROC AUC score: %.3f", auc)
		}
	}

	model := classifier.NewLogisticRegression()
	if err := model.Fit(x, flags); err != nil {
		if errors.Is(err, classifier.ErrSingleClass) {
			return nil, fmt.Errorf("%w: %v", ErrThresholdTooLarge, err)
		}
		return nil, fmt.Errorf("fit classifier: %w", err)
	}

	currentX, err := currentFeatureRow(feats, featureNames)
	if err != nil {
		return nil, err
	}
	probs, err := model.PredictProba(currentX)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	buy := probs[0]
	p.logf("Buy recommendation: %.3f%%", buy*100)

	if p.chart != nil {
		if err := p.renderChart(candles, cross, instrument, current, cfg, buy); err != nil {
			return nil, fmt.Errorf("render chart: %w", err)
		}
	}

	if p.archive != nil {
		if err := p.archive.InsertBulk(ctx, instrument.Ticker, cfg.Interval, candles); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return nil, fmt.Errorf("archive candles: %w", err)
		}
	}

	record := &domain.Recommendation{
		Ticker:          instrument.Ticker,
		Time:            feats.Time(feats.Len() - 1),
		Interval:        cfg.Interval,
		Periods:         cfg.Periods,
		Batches:         cfg.Batches,
		Price:           current,
		ProfitThreshold: cfg.ProfitThreshold,
		Buy:             buy,
		Policy:          cfg.Policy.String(),
		ROCAUC:          rocAUC,
	}
	if p.store != nil {
		if err := p.store.Append(ctx, record); err != nil {
			return nil, fmt.Errorf("append result log: %w", err)
		}
	}

	return &Result{
		Rows:           len(candles),
		CurrentPrice:   current,
		ProfitRate:     profitRate,
		BuyProbability: buy,
		ROCAUC:         rocAUC,
		Record:         record,
	}, nil
}

func (p *Pipeline) renderChart(candles []domain.Candle, cross *frame.Frame, instrument domain.Instrument, current float64, cfg Config, buy float64) error {
	nonLoss, err := profit.MinPriceForProfit(current, cfg.Commission)
	if err != nil {
		return err
	}
	overlayTimes, overlay, err := labeling.MeanProfitByTime(cross)
	if err != nil {
		return err
	}

	times := make([]time.Time, len(candles))
	prices := make([]float64, len(candles))
	for i, candle := range candles {
		times[i] = candle.Time
		prices[i] = candle.Open
	}

	return p.chart.Render(ChartData{
		Title:        fmt.Sprintf("Buy = %.2f%% for minimum profit = %v", buy*100, cfg.ProfitThreshold),
		Label:        fmt.Sprintf("%s (%s)", instrument.Name, instrument.Ticker),
		Currency:     instrument.Currency,
		Times:        times,
		Prices:       prices,
		CurrentPrice: current,
		NonLossPrice: nonLoss,
		OverlayTimes: overlayTimes,
		Overlay:      overlay,
	})
}

func validate(cfg Config) error {
	if !cfg.Interval.Valid() {
		return fmt.Errorf("unknown candle interval %q", cfg.Interval)
	}
	// Reuses the predicate's threshold validation.
	if _, err := profit.Profitable(0, 0, 0, cfg.ProfitThreshold); err != nil {
		return err
	}
	return nil
}

// candlesFrame lays candles out as a time-indexed table with the canonical
// OHLCV column names.
func candlesFrame(candles []domain.Candle) *frame.Frame {
	times := make([]time.Time, len(candles))
	open := make([]float64, len(candles))
	closeCol := make([]float64, len(candles))
	high := make([]float64, len(candles))
	low := make([]float64, len(candles))
	volume := make([]float64, len(candles))
	for i, candle := range candles {
		times[i] = candle.Time
		open[i] = candle.Open
		closeCol[i] = candle.Close
		high[i] = candle.High
		low[i] = candle.Low
		volume[i] = candle.Volume
	}

	f := frame.New(times)
	_ = f.AddColumn(colOpen, open)
	_ = f.AddColumn(colClose, closeCol)
	_ = f.AddColumn(colHigh, high)
	_ = f.AddColumn(colLow, low)
	_ = f.AddColumn(colVolume, volume)
	return f
}

// currentFeatureRow extracts the latest feature row for prediction. The
// future indicator, present only under the full policy, is pinned to 1: the
// question asked is whether a future sale from now would be profitable.
func currentFeatureRow(feats *frame.Frame, featureNames []string) (*mat.Dense, error) {
	last := feats.Len() - 1
	row := frame.New([]time.Time{feats.Time(last)})
	for _, name := range featureNames {
		if name == labeling.ColFuture {
			if err := row.AddColumn(labeling.ColFuture, []float64{1}); err != nil {
				return nil, err
			}
			continue
		}
		v, err := feats.Value(last, name)
		if err != nil {
			return nil, err
		}
		if err := row.AddColumn(name, []float64{v}); err != nil {
			return nil, err
		}
	}
	return row.Matrix(featureNames...)
}

func dropName(names []string, drop string) []string {
	out := names[:0]
	for _, n := range names {
		if n != drop {
			out = append(out, n)
		}
	}
	return out
}

func (p *Pipeline) logf(format string, args ...interface{}) {
	if p.verbose {
		log.Printf(format, args...)
	}
}
