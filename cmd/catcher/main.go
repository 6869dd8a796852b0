// Command catcher runs the buy-recommendation pipeline for one instrument:
// downloads recent candles, builds the training set, fits the classifier and
// prints the buy probability for the latest price.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/IvanRychkov/catcher/internal/chart"
	"github.com/IvanRychkov/catcher/internal/domain"
	"github.com/IvanRychkov/catcher/internal/marketdata"
	"github.com/IvanRychkov/catcher/internal/recommend"
	"github.com/IvanRychkov/catcher/internal/storage/clickhouse"
	"github.com/IvanRychkov/catcher/internal/storage/jsonfile"
	"github.com/IvanRychkov/catcher/internal/storage/migrations"
	"github.com/IvanRychkov/catcher/internal/storage/postgres"
)

const defaultBaseURL = "https://api-invest.tinkoff.ru/openapi/sandbox"

func main() {
	ticker := flag.String("ticker", "tcsg", "Instrument ticker")
	baseURL := flag.String("base-url", defaultBaseURL, "Market data API base URL")
	intervalArg := flag.String("interval", "1min", "Candle interval")
	periods := flag.Int("periods", 0, "Candles per batch (0 = interval maximum)")
	batches := flag.Int("batches", 1, "Consecutive download batches")
	commission := flag.Float64("commission", 0.003, "Broker commission rate per leg")
	policyArg := flag.String("policy", "lookahead", "Labeling policy: lookahead, lookbehind or full")
	threshold := flag.Float64("threshold", 0, "Minimum net profit to label a pair profitable")
	windowsArg := flag.String("windows", "", "Comma-separated rolling window sizes, e.g. 10,30,60")
	shiftWindows := flag.Bool("shift-windows", false, "Center rolling means on their windows")
	crossValidate := flag.Bool("cross-validate", false, "Estimate ROC-AUC over 3 folds")
	chartPath := flag.String("chart", "", "Save diagnostic chart PNG to this path")
	logPath := flag.String("log", "results.json", "JSON result log path (empty to disable)")
	postgresDSN := flag.String("postgres-dsn", "", "Log recommendations to PostgreSQL instead of the JSON file")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "Archive downloaded candles to ClickHouse")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling...\n", sig)
		cancel()
	}()

	// Token comes from the environment; a .env file is honored when present.
	_ = godotenv.Load()
	token := os.Getenv("CATCHER_TOKEN")
	if token == "" {
		fmt.Fprintln(os.Stderr, "CATCHER_TOKEN is not set")
		os.Exit(1)
	}

	interval, err := domain.ParseCandleInterval(*intervalArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	policy, err := domain.ParsePolicy(*policyArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	windows, err := parseWindows(*windowsArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts := recommend.Options{
		Source:  marketdata.NewClient(*baseURL, token, *ticker),
		Verbose: *verbose,
	}

	switch {
	case *postgresDSN != "":
		pool, err := postgres.NewPool(ctx, *postgresDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		opts.Store = postgres.NewRecommendationStore(pool)
	case *logPath != "":
		opts.Store = jsonfile.NewRecommendationStore(*logPath)
	}

	if *clickhouseDSN != "" {
		conn, err := clickhouse.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer conn.Close()
		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		opts.Archive = clickhouse.NewCandleArchive(conn)
	}

	if *chartPath != "" {
		opts.Chart = chart.NewRenderer(*chartPath)
	}

	result, err := recommend.New(opts).Run(ctx, recommend.Config{
		Interval:        interval,
		Periods:         *periods,
		Batches:         *batches,
		Commission:      *commission,
		Policy:          policy,
		ProfitThreshold: *threshold,
		WindowSizes:     windows,
		ShiftWindows:    *shiftWindows,
		CrossValidate:   *crossValidate,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Pipeline error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Ticker:          %s\n", result.Record.Ticker)
	fmt.Printf("Rows:            %d\n", result.Rows)
	fmt.Printf("Current price:   %v\n", result.CurrentPrice)
	fmt.Printf("Profit rate:     %.2f%%\n", result.ProfitRate*100)
	fmt.Printf("Buy probability: %.3f%%\n", result.BuyProbability*100)
	if result.ROCAUC != nil {
		fmt.Printf("ROC AUC:         %.3f\n", *result.ROCAUC)
	}
}

func parseWindows(arg string) ([]int, error) {
	if arg == "" {
		return nil, nil
	}
	parts := strings.Split(arg, ",")
	windows := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid window size %q", part)
		}
		windows = append(windows, n)
	}
	return windows, nil
}
