package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/phuslu/log"
)

const ReportFilePrefix = "report_"

// StateDir is the directory where run reports are stored.
// Must be set before using any report-related functions.
var StateDir string

// Report summarizes one pipeline run.
type Report struct {
	Scenario    string         `json:"scenario"`
	Expected    int            `json:"expected"`
	Delivered   int            `json:"delivered"`
	PerProducer map[string]int `json:"per_producer,omitempty"`
	// Ordered is set only for single-consumer runs, where end-to-end FIFO
	// order is observable.
	Ordered    *bool         `json:"ordered,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	FinishedAt time.Time     `json:"finished_at"`
}

func (r *Report) String() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		log.Panic().Msgf("error marshalling report: %s", err)
	}
	return string(data)
}

func (r *Report) GetPath() string {
	return filepath.Join(StateDir, fmt.Sprintf("%s%s.json", ReportFilePrefix, r.Scenario))
}

func (r *Report) Save() error {
	log.Info().Msgf("Saving report for scenario %s", r.Scenario)
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling report: %w", err)
	}
	if err := os.WriteFile(r.GetPath(), data, 0644); err != nil {
		return fmt.Errorf("error writing report file: %w", err)
	}
	return nil
}

// Reports is a map of scenario names to their most recent run report.
type Reports map[string]Report

var GlobalReports Reports

func ReadReports() (Reports, error) {
	if StateDir == "" {
		return nil, fmt.Errorf("state directory not set")
	}
	log.Debug().Msgf("Reading reports from %s", StateDir)
	reports := make(Reports)
	files, err := os.ReadDir(StateDir)
	if err != nil {
		return nil, fmt.Errorf("error reading state directory: %w", err)
	}
	for _, file := range files {
		if !strings.HasPrefix(file.Name(), ReportFilePrefix) {
			continue
		}
		filePath := filepath.Join(StateDir, file.Name())
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("error reading report file %q: %w", filePath, err)
		}
		var report Report
		if err := json.Unmarshal(data, &report); err != nil {
			return nil, fmt.Errorf("error unmarshalling report file %q: %w", filePath, err)
		}
		reports[report.Scenario] = report
	}
	return reports, nil
}
