package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// DefaultJSONReporter implements JSON output functionality
type DefaultJSONReporter struct{}

// NewDefaultJSONReporter creates a new JSON reporter
func NewDefaultJSONReporter() *DefaultJSONReporter {
	return &DefaultJSONReporter{}
}

// jsonReport is the stable on-disk shape; internal structs are not
// marshalled directly so field renames don't break consumers.
type jsonReport struct {
	RunName     string          `json:"run_name"`
	GeneratedAt time.Time       `json:"generated_at"`
	Mode        string          `json:"filter_mode,omitempty"`
	Signals     int             `json:"signals_total"`
	Selected    int             `json:"signals_selected"`
	Portfolio   *jsonPortfolio  `json:"portfolio,omitempty"`
	Summary     json.RawMessage `json:"summary,omitempty"`
	Risk        json.RawMessage `json:"risk,omitempty"`
}

type jsonPortfolio struct {
	FinalValue    float64 `json:"final_value"`
	OpenPositions int     `json:"open_positions"`
	ClosedTrades  int     `json:"closed_trades"`
	Skipped       int     `json:"skipped"`
}

// WriteReportJSON writes the full run report as indented JSON.
func (r *DefaultJSONReporter) WriteReportJSON(report *Report, path string) error {
	out := jsonReport{
		RunName:     report.RunName,
		GeneratedAt: time.Now().UTC(),
		Signals:     len(report.Batch),
	}
	if report.FilterResult != nil {
		out.Mode = report.FilterResult.Mode.String()
		out.Selected = len(report.FilterResult.Opportunities)
	}
	if report.Portfolio != nil {
		p := &jsonPortfolio{
			OpenPositions: len(report.Portfolio.OpenPositions),
			ClosedTrades:  len(report.Portfolio.ClosedTrades),
			Skipped:       len(report.Portfolio.Skipped),
		}
		if n := len(report.Portfolio.DailyValuations); n > 0 {
			p.FinalValue = report.Portfolio.DailyValuations[n-1].Value
		}
		out.Portfolio = p
	}
	if report.Summary != nil {
		raw, err := json.Marshal(report.Summary)
		if err != nil {
			return fmt.Errorf("marshalling summary: %w", err)
		}
		out.Summary = raw
	}
	if report.Risk != nil {
		raw, err := json.Marshal(report.Risk)
		if err != nil {
			return fmt.Errorf("marshalling risk report: %w", err)
		}
		out.Risk = raw
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// WriteRiskJSON writes just the Monte Carlo risk report, for the
// standalone risk simulator.
func WriteRiskJSON(report *Report, path string) error {
	if report.Risk == nil {
		return fmt.Errorf("no risk report to write")
	}
	data, err := json.MarshalIndent(report.Risk, "", "  ")
	if err != nil {
		return err
	}
	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
