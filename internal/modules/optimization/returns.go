package optimization

import (
	"fmt"
	"sort"

	"github.com/adurand/portanalyzer/internal/modules/universe"
	"github.com/adurand/portanalyzer/pkg/formulas"
)

// Alignment thresholds. Instruments missing more than half of the observed
// dates are dropped before the remaining dates are intersected; keeping them
// would shrink the common window for everyone else.
const (
	minObservations    = 30
	maxMissingFraction = 0.5
	minInstruments     = 2
)

// ReturnMatrix holds aligned daily return series for a set of instruments.
// Every series has the same length and date ordering.
type ReturnMatrix struct {
	Symbols      []string
	Series       map[string][]float64
	Observations int
	Dropped      []string
}

// BuildAlignedReturns aligns per-symbol close histories onto their common
// trading dates and converts them to daily returns. Sparse instruments are
// dropped first, then any date missing from a surviving instrument is removed
// for all of them.
func BuildAlignedReturns(history map[string][]universe.DailyClose) (*ReturnMatrix, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("no price history supplied")
	}

	dateSet := make(map[string]bool)
	closesBySymbol := make(map[string]map[string]float64, len(history))
	for symbol, closes := range history {
		bySymbol := make(map[string]float64, len(closes))
		for _, c := range closes {
			bySymbol[c.Date] = c.Close
			dateSet[c.Date] = true
		}
		closesBySymbol[symbol] = bySymbol
	}
	totalDates := len(dateSet)

	var kept, dropped []string
	for symbol, bySymbol := range closesBySymbol {
		missing := float64(totalDates-len(bySymbol)) / float64(totalDates)
		if missing > maxMissingFraction {
			dropped = append(dropped, symbol)
			continue
		}
		kept = append(kept, symbol)
	}
	sort.Strings(kept)
	sort.Strings(dropped)

	if len(kept) < minInstruments {
		return nil, fmt.Errorf("only %d instruments have usable history, need at least %d", len(kept), minInstruments)
	}

	// Intersect: keep dates present for every surviving instrument.
	var dates []string
	for date := range dateSet {
		complete := true
		for _, symbol := range kept {
			if _, ok := closesBySymbol[symbol][date]; !ok {
				complete = false
				break
			}
		}
		if complete {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)

	if len(dates) < minObservations+1 {
		return nil, fmt.Errorf("only %d common observations, need at least %d", len(dates), minObservations+1)
	}

	series := make(map[string][]float64, len(kept))
	for _, symbol := range kept {
		prices := make([]float64, len(dates))
		for i, date := range dates {
			prices[i] = closesBySymbol[symbol][date]
		}
		series[symbol] = formulas.CalculateReturns(prices)
	}

	return &ReturnMatrix{
		Symbols:      kept,
		Series:       series,
		Observations: len(dates) - 1,
		Dropped:      dropped,
	}, nil
}
