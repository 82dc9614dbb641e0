package concentration

import (
	"fmt"

	"github.com/adurand/portanalyzer/internal/modules/portfolio"
)

// Recommendation severities.
const (
	SeverityWarning = "warning"
	SeverityInfo    = "info"
	SeveritySuccess = "success"
)

// Recommendation is one rule-based diversification finding.
type Recommendation struct {
	Severity string `json:"severity"`
	Title    string `json:"title"`
	Message  string `json:"message"`
}

// Rule thresholds. Policy constants tuned for retail portfolios.
const (
	maxSectorShare      = 0.40
	maxRegionShare      = 0.70
	minPositionCount    = 10
	maxPositionCount    = 50
	losingReturnCutoff  = -0.20
	losingShareCutoff   = 0.30
	goodDiversifiedHHI  = 0.10
	goodPositionCount   = 15
	goodSectorBreadth   = 5
)

// Recommend evaluates the rule set against a snapshot and its concentration
// metrics. Rules are independent; the result may mix warnings and successes.
func Recommend(snapshot portfolio.Snapshot, metrics Metrics, sectors, regions []GroupShare) []Recommendation {
	var recs []Recommendation

	if metrics.HHI > hhiVeryConcentrated {
		recs = append(recs, Recommendation{
			Severity: SeverityWarning,
			Title:    "Excessive concentration",
			Message: fmt.Sprintf(
				"The portfolio is very concentrated (HHI %.3f). The three largest positions represent %.1f%% of the total.",
				metrics.HHI, metrics.Top3Concentration*100),
		})
	}

	if len(sectors) > 0 && sectors[0].Weight > maxSectorShare {
		recs = append(recs, Recommendation{
			Severity: SeverityWarning,
			Title:    "Sector concentration",
			Message: fmt.Sprintf(
				"Sector %q represents %.1f%% of the portfolio. Consider diversifying into other sectors.",
				sectors[0].Name, sectors[0].Weight*100),
		})
	}

	if len(regions) > 0 && regions[0].Weight > maxRegionShare {
		recs = append(recs, Recommendation{
			Severity: SeverityInfo,
			Title:    "Geographic diversification",
			Message: fmt.Sprintf(
				"Exposure to region %q is %.1f%%. Consider broader international exposure.",
				regions[0].Name, regions[0].Weight*100),
		})
	}

	positionCount := len(snapshot.Positions)
	switch {
	case positionCount > 0 && positionCount < minPositionCount:
		recs = append(recs, Recommendation{
			Severity: SeverityInfo,
			Title:    "Position count",
			Message: fmt.Sprintf(
				"With %d positions the portfolio carries avoidable idiosyncratic risk. Adding 5-10 positions would reduce it.",
				positionCount),
		})
	case positionCount > maxPositionCount:
		recs = append(recs, Recommendation{
			Severity: SeverityWarning,
			Title:    "Too many positions",
			Message: fmt.Sprintf(
				"With %d positions the portfolio is hard to manage. Consider consolidating toward 20-30 core positions.",
				positionCount),
		})
	}

	if positionCount > 0 {
		losing := 0
		for _, p := range snapshot.Positions {
			if p.PeriodReturn() < losingReturnCutoff {
				losing++
			}
		}
		if float64(losing) > float64(positionCount)*losingShareCutoff {
			recs = append(recs, Recommendation{
				Severity: SeverityWarning,
				Title:    "Losing positions",
				Message: fmt.Sprintf(
					"%d positions show losses beyond 20%%. Review whether some should be closed to limit losses.",
					losing),
			})
		}
	}

	if metrics.HHI > 0 && metrics.HHI < goodDiversifiedHHI && positionCount >= goodPositionCount {
		recs = append(recs, Recommendation{
			Severity: SeveritySuccess,
			Title:    "Good diversification",
			Message:  "The portfolio shows good diversification with low concentration risk.",
		})
	}

	if len(sectors) >= goodSectorBreadth {
		recs = append(recs, Recommendation{
			Severity: SeveritySuccess,
			Title:    "Sector breadth",
			Message:  fmt.Sprintf("Good sector diversification with %d sectors represented.", len(sectors)),
		})
	}

	return recs
}
