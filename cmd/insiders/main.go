package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/bighogz/insider-tracker/internal/aggregator"
	"github.com/bighogz/insider-tracker/internal/config"
	"github.com/bighogz/insider-tracker/internal/export"
	"github.com/bighogz/insider-tracker/internal/filter"
	"github.com/bighogz/insider-tracker/internal/format"
	"github.com/bighogz/insider-tracker/internal/logging"
	"github.com/bighogz/insider-tracker/internal/models"
	"github.com/bighogz/insider-tracker/internal/source"
	"github.com/bighogz/insider-tracker/internal/symbols"
	"github.com/bighogz/insider-tracker/internal/telemetry"
)

type resultLoader interface {
	Load(ctx context.Context, req source.Request) source.Result
}

type options struct {
	req      source.Request
	criteria filter.Criteria
	top      int
	list     bool
	csvPath  string
	xlsxPath string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loader := source.FromConfig(cfg, logger, telemetry.Noop())
	if err := run(ctx, os.Args[1:], cfg.RecentDays, loader, os.Stdout, time.Now); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func parseFlags(args []string, defaultDays int, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("insiders", flag.ContinueOnError)
	fs.SetOutput(stderr)
	src := fs.String("source", "recent", "Data source: recent, symbol, multi or sample")
	symbol := fs.String("symbol", "", "Ticker for -source symbol (empty: default basket)")
	syms := fs.String("symbols", "", "Comma separated tickers for -source multi")
	days := fs.Int("days", defaultDays, "Look-back window for -source recent")
	tickers := fs.String("ticker", "", "Only show these tickers (comma separated)")
	types := fs.String("trade-type", "", "Only show these trade types (comma separated)")
	start := fs.String("start", "", "Earliest trade date YYYY-MM-DD")
	end := fs.String("end", "", "Latest trade date YYYY-MM-DD")
	top := fs.Int("top", 10, "Number of tickers in the top-volume table")
	list := fs.Bool("list", false, "Print every matching trade")
	csvPath := fs.String("csv", "", "Write matching trades to CSV")
	xlsxPath := fs.String("xlsx", "", "Write matching trades to XLSX")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	o := options{top: *top, list: *list, csvPath: *csvPath, xlsxPath: *xlsxPath}
	o.req.Mode = source.ParseMode(*src)
	switch o.req.Mode {
	case source.ModeSymbol:
		if *symbol != "" {
			sym := symbols.Clean(*symbol)
			if !symbols.Valid(sym) {
				return o, fmt.Errorf("invalid symbol %q", *symbol)
			}
			o.req.Symbols = []string{sym}
		}
	case source.ModeMulti:
		o.req.Symbols = symbols.Split(*syms)
	case source.ModeRecent:
		o.req.Days = *days
	}

	q := map[string][]string{"ticker": {*tickers}, "trade_type": {*types}, "start": {*start}, "end": {*end}}
	c, err := filter.ParseQuery(q)
	if err != nil {
		return o, err
	}
	if err := c.Validate(); err != nil {
		return o, fmt.Errorf("invalid filter: %w", err)
	}
	o.criteria = c
	return o, nil
}

func run(ctx context.Context, args []string, defaultDays int, loader resultLoader, stdout io.Writer, now func() time.Time) error {
	o, err := parseFlags(args, defaultDays, stdout)
	if err != nil {
		return err
	}

	res := loader.Load(ctx, o.req)
	if res.Synthetic() {
		msg := "Using synthetic sample data."
		if res.Err != nil {
			msg = fmt.Sprintf("Using synthetic sample data (%s: %v).", source.KindOf(res.Err), res.Err)
		}
		fmt.Fprintln(stdout, msg)
	} else {
		fmt.Fprintf(stdout, "Loaded %d trades from %s.\n", len(res.Dataset), res.Origin)
	}

	ds := filter.Apply(res.Dataset, o.criteria)
	printSummary(stdout, ds, o.top)
	if o.list {
		printTrades(stdout, ds)
	}

	if o.csvPath != "" {
		if err := writeFile(o.csvPath, ds, export.WriteCSV); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		fmt.Fprintf(stdout, "\nWrote %s.\n", o.csvPath)
	}
	if o.xlsxPath != "" {
		if err := writeFile(o.xlsxPath, ds, export.WriteXLSX); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
		fmt.Fprintf(stdout, "\nWrote %s.\n", o.xlsxPath)
	}
	if o.csvPath == "" && o.xlsxPath == "" {
		fmt.Fprintf(stdout, "\nTip: -csv %s exports the table.\n", export.FileName(now(), "csv"))
	}
	return nil
}

func printSummary(w io.Writer, ds models.Dataset, top int) {
	s := aggregator.SummaryStatistics(ds)
	fmt.Fprintln(w, "\nTrading metrics:")
	fmt.Fprintf(w, "  Total trades:  %s\n", format.Number(float64(s.TotalTrades)))
	fmt.Fprintf(w, "  Buy trades:    %s (%s)\n", format.Number(float64(s.BuyCount)), format.Currency(s.BuyValue))
	fmt.Fprintf(w, "  Sell trades:   %s (%s)\n", format.Number(float64(s.SellCount)), format.Currency(s.SellValue))
	fmt.Fprintf(w, "  Total value:   %s\n", format.Currency(s.TotalValue))
	fmt.Fprintf(w, "  Average trade: %s\n", format.Currency(s.MeanTradeValue))
	fmt.Fprintf(w, "  Tickers:       %d\n", s.UniqueTickerCount)
	if s.TotalTrades > 0 {
		fmt.Fprintf(w, "  Date range:    %s to %s\n",
			s.DateRange.Min.Format(models.DateLayout), s.DateRange.Max.Format(models.DateLayout))
	}

	fmt.Fprintln(w, "\nTop tickers by value:")
	tops := aggregator.TopTickersByVolume(ds, top)
	if len(tops) == 0 {
		fmt.Fprintln(w, "  (No data)")
	}
	for i, tv := range tops {
		fmt.Fprintf(w, "  %2d. %-5s %s\n", i+1, tv.Ticker, format.Currency(tv.Value))
	}

	counts := aggregator.CountByTradeType(ds)
	if len(counts) > 0 {
		parts := make([]string, 0, len(counts))
		for _, tt := range models.AllTradeTypes() {
			if n := counts[tt]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s=%d", tt, n))
			}
		}
		fmt.Fprintf(w, "\nDistribution: %s\n", strings.Join(parts, " "))
	}
}

func printTrades(w io.Writer, ds models.Dataset) {
	fmt.Fprintln(w, "\nTrades:")
	for _, t := range ds {
		fmt.Fprintf(w, "  %s  %-5s %-20s %-14s %10s @ $%.2f = %s\n",
			t.Date.Format(models.DateLayout), t.Ticker, t.Insider, t.TradeType,
			format.Number(t.Shares), t.Price, format.Currency(t.Value))
	}
}

func writeFile(path string, ds models.Dataset, write func(io.Writer, models.Dataset) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, ds); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
