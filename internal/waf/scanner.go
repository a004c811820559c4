// Package waf shells out to the wafw00f fingerprinter and parses its
// JSON report.
package waf

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/itsascout/scout/internal/models"
)

// Scanner runs the external fingerprinter binary with JSON file output.
type Scanner struct {
	binary  string
	timeout time.Duration
	logger  arbor.ILogger
}

// NewScanner creates a scanner around the configured binary.
func NewScanner(binary string, timeout time.Duration, logger arbor.ILogger) *Scanner {
	return &Scanner{
		binary:  binary,
		timeout: timeout,
		logger:  logger,
	}
}

type reportEntry struct {
	Detected     bool   `json:"detected"`
	Firewall     string `json:"firewall"`
	Manufacturer string `json:"manufacturer"`
	URL          string `json:"url"`
	TriggerURL   string `json:"trigger_url"`
}

// Scan fingerprints the URL and returns the findings. The binary writes
// its report to a temp file because its stdout mixes in progress text.
func (s *Scanner) Scan(ctx context.Context, url string) ([]models.WAFFinding, error) {
	tmp, err := os.CreateTemp("", "wafscan-*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, s.binary, url, "-f", "json", "-o", tmpPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w (output: %.200s)", s.binary, err, string(output))
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	var entries []reportEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid report json: %w", err)
	}

	findings := make([]models.WAFFinding, 0, len(entries))
	for _, e := range entries {
		findings = append(findings, models.WAFFinding{
			Detected:     e.Detected,
			Firewall:     e.Firewall,
			Manufacturer: e.Manufacturer,
			URL:          e.URL,
			TriggerURL:   e.TriggerURL,
		})
	}

	s.logger.Debug().
		Str("url", url).
		Int("findings", len(findings)).
		Msg("WAF scan finished")

	return findings, nil
}
