package scanner

import (
	"context"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/ketanswebsite/signalforge-sub005/internal/monitoring"
	"github.com/ketanswebsite/signalforge-sub005/internal/signals"
	"github.com/ketanswebsite/signalforge-sub005/pkg/data"
	"github.com/ketanswebsite/signalforge-sub005/pkg/types"
)

// Source names one symbol to scan and where its bars live.
type Source struct {
	Info types.SymbolInfo
	Path string
}

// SkipRecord notes a symbol excluded from the batch and why. A failed
// symbol never aborts the batch.
type SkipRecord struct {
	Symbol string
	Market types.Market
	Err    error
}

// BatchResult is the ordered outcome of a batch scan. Signals follow the
// catalog order of the sources, so downstream FIFO admission is
// deterministic regardless of worker scheduling.
type BatchResult struct {
	Signals []signals.Signal
	Skipped []SkipRecord
}

// Scanner runs per-symbol backtests concurrently. Symbol backtests share
// no mutable state, so they parallelize freely; results are collected
// into catalog order before anything downstream consumes them.
type Scanner struct {
	provider data.Provider
	params   signals.Params
	workers  int
}

// New creates a scanner. workers <= 0 selects one worker per CPU.
func New(provider data.Provider, params signals.Params, workers int) *Scanner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Scanner{provider: provider, params: params, workers: workers}
}

type job struct {
	index  int
	source Source
}

type outcome struct {
	index   int
	signals []signals.Signal
	err     error
}

// Scan backtests every source and returns the combined signal batch.
// Cancellation is honored between symbols, never mid-backtest.
func (s *Scanner) Scan(ctx context.Context, sources []Source) (*BatchResult, error) {
	if err := s.params.Validate(); err != nil {
		return nil, err
	}

	jobs := make(chan job)
	outcomes := make([]outcome, len(sources))

	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				outcomes[j.index] = s.scanOne(j)
			}
		}()
	}

	submitted := 0
feed:
	for i, src := range sources {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- job{index: i, source: src}:
			submitted++
		}
	}
	close(jobs)
	wg.Wait()

	result := &BatchResult{}
	for i := 0; i < submitted; i++ {
		o := outcomes[i]
		src := sources[i]
		if o.err != nil {
			log.Printf("⚠️ %s: %v, excluding from batch", src.Info.Symbol, o.err)
			monitoring.RecordScanError(string(src.Info.Market))
			result.Skipped = append(result.Skipped, SkipRecord{
				Symbol: src.Info.Symbol,
				Market: src.Info.Market,
				Err:    o.err,
			})
			continue
		}
		monitoring.RecordSymbolScanned(string(src.Info.Market), len(o.signals))
		result.Signals = append(result.Signals, o.signals...)
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (s *Scanner) scanOne(j job) outcome {
	start := time.Now()
	series, err := s.provider.LoadSeries(j.source.Info, j.source.Path)
	if err != nil {
		return outcome{index: j.index, err: err}
	}
	batch, err := signals.Backtest(series, s.params)
	if err != nil {
		return outcome{index: j.index, err: err}
	}
	log.Printf("🔍 %s: %d signals in %s", j.source.Info.Symbol, len(batch), time.Since(start).Round(time.Millisecond))
	return outcome{index: j.index, signals: batch}
}
