package reporting

import (
	"github.com/ketanswebsite/signalforge-sub005/internal/analytics"
	"github.com/ketanswebsite/signalforge-sub005/internal/portfolio"
	"github.com/ketanswebsite/signalforge-sub005/internal/signals"
)

// Package reporting renders scan-and-simulate output to console and files.

// Report bundles everything one run produced. Writers consume it
// read-only; nil sections are skipped.
type Report struct {
	RunName      string
	Batch        []signals.Signal
	FilterResult *signals.FilterResult
	Portfolio    *portfolio.Result
	Summary      *analytics.Summary
	Risk         *analytics.RiskReport
}

// ConsoleReporter defines interface for console output
type ConsoleReporter interface {
	OutputOpportunities(result *signals.FilterResult)
	OutputPortfolio(result *portfolio.Result, currency portfolio.Currency)
	OutputSummary(summary *analytics.Summary)
	OutputRiskReport(report *analytics.RiskReport)
}

// FileReporter defines interface for file output
type FileReporter interface {
	WriteTradesCSV(result *portfolio.Result, path string) error
	WriteValuationsCSV(result *portfolio.Result, path string) error
	WriteWorkbook(report *Report, path string) error
	WriteReportJSON(report *Report, path string) error
}

// PathManager defines interface for output path management
type PathManager interface {
	OutputDir(baseDir, runName string) string
	EnsureDirectoryExists(path string) error
}
