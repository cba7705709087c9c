// Package direct implements one-shot mode: query every configured
// device once, print a line per device, and exit.
package direct

import (
	"context"
	"fmt"
	"io"

	"codeberg.org/mutker/disktempd/internal/device"
)

type Config struct {
	Numeric bool
	Quiet   bool
}

// Runner queries devices through the reader and writes results to the
// given streams. Readable temperatures go to stdout; everything else
// goes to stderr, matching the legacy tool.
type Runner struct {
	reader device.Reader
	cfg    Config
	stdout io.Writer
	stderr io.Writer
}

func New(reader device.Reader, cfg Config, stdout, stderr io.Writer) *Runner {
	return &Runner{
		reader: reader,
		cfg:    cfg,
		stdout: stdout,
		stderr: stderr,
	}
}

// Run reads each device in order and prints its line. The returned exit
// code is 1 if any device failed with a hard error, 0 otherwise.
func (r *Runner) Run(ctx context.Context, devices []device.Spec) int {
	exitCode := 0
	for _, spec := range devices {
		reading := r.reader.Read(ctx, spec)

		line, toStdout, hardError := formatReading(reading, r.cfg)
		out := r.stderr
		if toStdout {
			out = r.stdout
		}
		fmt.Fprint(out, line)

		if hardError {
			exitCode = 1
		}
	}

	return exitCode
}

// formatReading renders one reading as a terminal line and reports
// whether it belongs on stdout and whether it counts as a hard error.
func formatReading(r device.Reading, cfg Config) (line string, toStdout, hardError bool) {
	if r.HasTemp() {
		if cfg.Numeric {
			return fmt.Sprintf("%d\n", r.Temp), true, false
		}
		return fmt.Sprintf("%s: %s: %d°%s\n", r.Spec.Path, r.Model, r.Temp, r.Unit), true, false
	}

	if cfg.Numeric && cfg.Quiet {
		return "0\n", true, false
	}

	switch r.Status {
	case device.StatusSleeping:
		return fmt.Sprintf("%s: %s: drive is sleeping\n", r.Spec.Path, r.Model), false, false
	case device.StatusNoSensor, device.StatusUnknown:
		return fmt.Sprintf("%s: %s: no sensor\n", r.Spec.Path, r.Model), false, false
	case device.StatusNotSupported:
		return fmt.Sprintf("%s: %s: not supported\n", r.Spec.Path, r.Model), false, false
	}

	detail := r.Detail
	if detail == "" {
		detail = "temperature query failed"
	}

	return fmt.Sprintf("%s: %s: %s\n", r.Spec.Path, r.Model, detail), false, true
}
