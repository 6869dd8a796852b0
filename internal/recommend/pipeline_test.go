package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/IvanRychkov/catcher/internal/domain"
	"github.com/IvanRychkov/catcher/internal/profit"
	"github.com/IvanRychkov/catcher/internal/storage/memory"
)

// stubSource serves canned candles without touching the network.
type stubSource struct {
	instrument domain.Instrument
	candles    []domain.Candle
	err        error
}

func (s *stubSource) Instrument(_ context.Context) (domain.Instrument, error) {
	return s.instrument, s.err
}

func (s *stubSource) Candles(_ context.Context, _ domain.CandleInterval, _, _ int) ([]domain.Candle, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.candles, nil
}

// stubChart captures the data handed to the renderer.
type stubChart struct {
	rendered bool
	data     ChartData
}

func (c *stubChart) Render(data ChartData) error {
	c.rendered = true
	c.data = data
	return nil
}

func testCandles(opens []float64) []domain.Candle {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	out := make([]domain.Candle, len(opens))
	for i, open := range opens {
		out[i] = domain.Candle{
			Time:   base.Add(time.Duration(i) * time.Hour),
			Open:   open,
			Close:  open + 0.5,
			High:   open + 1,
			Low:    open - 1,
			Volume: 1000,
		}
	}
	return out
}

func testSource(opens []float64) *stubSource {
	return &stubSource{
		instrument: domain.Instrument{
			FIGI:     "BBG000BTEST1",
			Ticker:   "TEST",
			Currency: "USD",
			Name:     "Test Corp",
			Lot:      1,
		},
		candles: testCandles(opens),
	}
}

var mixedOpens = []float64{100, 101, 99, 105, 102}

func TestRun(t *testing.T) {
	source := testSource(mixedOpens)
	store := memory.NewRecommendationStore()
	p := New(Options{Source: source, Store: store})

	res, err := p.Run(context.Background(), Config{
		Interval: domain.IntervalHour,
		Periods:  5,
		Batches:  1,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.Rows != 5 {
		t.Errorf("expected 5 rows, got %d", res.Rows)
	}
	if res.CurrentPrice != 102.5 {
		t.Errorf("expected current price from last close, got %v", res.CurrentPrice)
	}
	if res.BuyProbability <= 0 || res.BuyProbability >= 1 {
		t.Errorf("probability out of range: %v", res.BuyProbability)
	}
	// 7 of the 10 eligible pairs clear zero commission.
	if res.ProfitRate != 0.7 {
		t.Errorf("expected profit rate 0.7, got %v", res.ProfitRate)
	}
	if res.ROCAUC != nil {
		t.Error("expected no AUC without cross-validation")
	}

	// One record lands in the result log.
	recs, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	rec := recs[0]
	if rec.Ticker != "TEST" || rec.Policy != "lookahead" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.Buy != res.BuyProbability {
		t.Errorf("record probability %v does not match result %v", rec.Buy, res.BuyProbability)
	}
	if !rec.Time.Equal(source.candles[4].Time) {
		t.Errorf("record time not pinned to the last observation: %v", rec.Time)
	}
}

func TestRunWithCrossValidation(t *testing.T) {
	p := New(Options{Source: testSource(mixedOpens)})

	res, err := p.Run(context.Background(), Config{
		Interval:      domain.IntervalHour,
		Periods:       5,
		CrossValidate: true,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.ROCAUC == nil {
		t.Fatal("expected an AUC score")
	}
	if *res.ROCAUC < 0 || *res.ROCAUC > 1 {
		t.Errorf("AUC out of range: %v", *res.ROCAUC)
	}
	if res.Record.ROCAUC == nil {
		t.Error("AUC missing from the record")
	}
}

func TestRunFullPolicy(t *testing.T) {
	p := New(Options{Source: testSource(mixedOpens)})

	res, err := p.Run(context.Background(), Config{
		Interval: domain.IntervalHour,
		Periods:  5,
		Policy:   domain.PolicyFull,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Record.Policy != "full" {
		t.Errorf("expected full policy in record, got %q", res.Record.Policy)
	}
	if res.BuyProbability <= 0 || res.BuyProbability >= 1 {
		t.Errorf("probability out of range: %v", res.BuyProbability)
	}
}

func TestRunRendersChart(t *testing.T) {
	chart := &stubChart{}
	p := New(Options{Source: testSource(mixedOpens), Chart: chart})

	_, err := p.Run(context.Background(), Config{
		Interval: domain.IntervalHour,
		Periods:  5,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !chart.rendered {
		t.Fatal("chart renderer was not invoked")
	}
	if len(chart.data.Prices) != 5 || len(chart.data.Times) != 5 {
		t.Errorf("chart got %d prices over %d times", len(chart.data.Prices), len(chart.data.Times))
	}
	if chart.data.CurrentPrice != 102.5 {
		t.Errorf("chart current price: %v", chart.data.CurrentPrice)
	}
	// Zero commission: selling at the rounded current price is non-loss.
	if chart.data.NonLossPrice != 102.5 {
		t.Errorf("chart non-loss price: %v", chart.data.NonLossPrice)
	}
	if len(chart.data.Overlay) == 0 || len(chart.data.OverlayTimes) != len(chart.data.Overlay) {
		t.Errorf("chart overlay missing or misaligned: %d times, %d values",
			len(chart.data.OverlayTimes), len(chart.data.Overlay))
	}
	if chart.data.Currency != "USD" {
		t.Errorf("chart currency: %q", chart.data.Currency)
	}
}

func TestRunArchivesCandles(t *testing.T) {
	source := testSource(mixedOpens)
	archive := memory.NewCandleArchive()
	p := New(Options{Source: source, Archive: archive})

	cfg := Config{Interval: domain.IntervalHour, Periods: 5}
	if _, err := p.Run(context.Background(), cfg); err != nil {
		t.Fatalf("run: %v", err)
	}

	from := source.candles[0].Time
	to := source.candles[4].Time
	got, err := archive.GetByTimeRange(context.Background(), "TEST", from, to)
	if err != nil {
		t.Fatalf("archive query: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 archived candles, got %d", len(got))
	}

	// A second run re-downloads the same history; the duplicate batch must
	// not fail the pipeline.
	if _, err := p.Run(context.Background(), cfg); err != nil {
		t.Fatalf("second run: %v", err)
	}
}

func TestRunEmptyData(t *testing.T) {
	p := New(Options{Source: testSource(nil)})
	_, err := p.Run(context.Background(), Config{Interval: domain.IntervalHour, Periods: 5})
	if !errors.Is(err, ErrEmptyData) {
		t.Errorf("expected ErrEmptyData, got %v", err)
	}
}

func TestRunThresholdTooLarge(t *testing.T) {
	p := New(Options{Source: testSource(mixedOpens)})
	_, err := p.Run(context.Background(), Config{
		Interval:        domain.IntervalHour,
		Periods:         5,
		ProfitThreshold: 1000,
	})
	if !errors.Is(err, ErrThresholdTooLarge) {
		t.Errorf("expected ErrThresholdTooLarge, got %v", err)
	}
}

func TestRunValidation(t *testing.T) {
	p := New(Options{Source: testSource(mixedOpens)})

	if _, err := p.Run(context.Background(), Config{Interval: "4min"}); err == nil {
		t.Error("expected error for unknown interval")
	}

	_, err := p.Run(context.Background(), Config{
		Interval:        domain.IntervalHour,
		ProfitThreshold: -1,
	})
	if !errors.Is(err, profit.ErrNegativeThreshold) {
		t.Errorf("expected ErrNegativeThreshold, got %v", err)
	}
}

func TestRunSourceFailure(t *testing.T) {
	p := New(Options{Source: &stubSource{err: errors.New("upstream down")}})
	if _, err := p.Run(context.Background(), Config{Interval: domain.IntervalHour}); err == nil {
		t.Error("expected upstream error to propagate")
	}
}

func TestRunWindowFeatures(t *testing.T) {
	// Enough history for a size-3 rolling window plus labeling.
	opens := []float64{100, 101, 99, 105, 102, 104, 101, 106, 103, 107}
	p := New(Options{Source: testSource(opens)})

	res, err := p.Run(context.Background(), Config{
		Interval:    domain.IntervalHour,
		Periods:     10,
		WindowSizes: []int{3},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.BuyProbability <= 0 || res.BuyProbability >= 1 {
		t.Errorf("probability out of range: %v", res.BuyProbability)
	}
}
