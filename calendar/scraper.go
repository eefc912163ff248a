package calendar

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// ScrapeOptions mirror the scraper CLI's flags: a day-offset window
// relative to today, plus the two source-group toggles.
type ScrapeOptions struct {
	SinceDays    int
	UntilDays    int
	CentralBanks bool
	Global       bool
}

// DefaultScrapeOptions matches the window the calendar panel requests.
func DefaultScrapeOptions() ScrapeOptions {
	return ScrapeOptions{
		SinceDays:    0,
		UntilDays:    15,
		CentralBanks: true,
		Global:       true,
	}
}

// Runner invokes the external calendar scraper and parses its stdout.
// The scraper is a separate process (site-specific HTML/RSS parsing lives
// there); this side only launches it and stores what comes back.
type Runner struct {
	command []string
}

// NewRunner takes the scraper invocation, e.g.
// ["python3", "scraper/cli.py"]. Window and toggle flags are appended
// per run.
func NewRunner(command []string) (*Runner, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("scraper command is empty")
	}
	return &Runner{command: command}, nil
}

// Run executes the scraper and returns the parsed events. A non-zero exit,
// unparseable stdout, or a bad row all fail the run; there is no partial
// import from a broken scrape.
func (r *Runner) Run(ctx context.Context, opts ScrapeOptions) ([]Event, error) {
	args := append([]string(nil), r.command[1:]...)
	args = append(args,
		"--since", strconv.Itoa(opts.SinceDays),
		"--until", strconv.Itoa(opts.UntilDays),
		"--central-banks", strconv.FormatBool(opts.CentralBanks),
		"--global", strconv.FormatBool(opts.Global),
	)

	cmd := exec.CommandContext(ctx, r.command[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := stderr.String()
		if len(msg) > 512 {
			msg = msg[:512]
		}
		return nil, fmt.Errorf("run scraper: %w: %s", err, msg)
	}

	events, err := ParseEvents(stdout.Bytes())
	if err != nil {
		return nil, err
	}
	return events, nil
}
