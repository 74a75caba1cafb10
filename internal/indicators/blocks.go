package indicators

import (
	"fmt"
	"math"
	"time"
)

// DefaultBlockSize is the number of trading days collapsed into one block
// for the 7-day DTI series.
const DefaultBlockSize = 7

// Block is a run of consecutive daily bars collapsed into one entry.
// Blocks are formed by input order, not by calendar-week boundaries, so
// the final block may span fewer days than the block size.
type Block struct {
	StartDate  time.Time
	EndDate    time.Time
	StartIndex int
	EndIndex   int
	High       float64
	Low        float64
}

// Days returns the number of daily bars the block spans.
func (b Block) Days() int {
	return b.EndIndex - b.StartIndex + 1
}

// AggregateBlocks collapses the daily series into fixed-size blocks,
// recording the extreme high/low inside each block.
func AggregateBlocks(dates []time.Time, high, low []float64, blockSize int) ([]Block, error) {
	if len(dates) == 0 {
		return nil, ErrEmptySeries
	}
	if len(dates) != len(high) || len(dates) != len(low) {
		return nil, fmt.Errorf("misaligned inputs: dates=%d high=%d low=%d", len(dates), len(high), len(low))
	}
	if blockSize <= 0 {
		return nil, fmt.Errorf("block size must be positive, got %d", blockSize)
	}

	blocks := make([]Block, 0, (len(dates)+blockSize-1)/blockSize)
	for start := 0; start < len(dates); start += blockSize {
		end := start + blockSize - 1
		if end >= len(dates) {
			end = len(dates) - 1
		}
		b := Block{
			StartDate:  dates[start],
			EndDate:    dates[end],
			StartIndex: start,
			EndIndex:   end,
			High:       high[start],
			Low:        low[start],
		}
		for i := start + 1; i <= end; i++ {
			b.High = math.Max(b.High, high[i])
			b.Low = math.Min(b.Low, low[i])
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// SevenDayDTI computes DTI over the block-level high/low series and
// back-maps each block's scalar value onto every daily index the block
// spans. Daily indices ahead of the first complete block are NaN. The
// result has the same length as the daily input.
func SevenDayDTI(dates []time.Time, high, low []float64, r, s, u int) ([]float64, error) {
	blocks, err := AggregateBlocks(dates, high, low, DefaultBlockSize)
	if err != nil {
		return nil, err
	}

	blockHigh := make([]float64, len(blocks))
	blockLow := make([]float64, len(blocks))
	for i, b := range blocks {
		blockHigh[i] = b.High
		blockLow[i] = b.Low
	}

	blockDTI, err := DTI(blockHigh, blockLow, r, s, u)
	if err != nil {
		return nil, err
	}

	daily := make([]float64, len(dates))
	for i := range daily {
		daily[i] = math.NaN()
	}
	for i, b := range blocks {
		if b.Days() < DefaultBlockSize && i == 0 {
			// A short leading block has no complete-block DTI to carry.
			continue
		}
		for j := b.StartIndex; j <= b.EndIndex; j++ {
			daily[j] = blockDTI[i]
		}
	}
	return daily, nil
}
