// Package smartctl reads drive temperatures by invoking the smartctl
// binary from smartmontools with JSON output and mapping its result
// into a device.Reading.
package smartctl

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strings"
	"time"

	"codeberg.org/mutker/disktempd/internal/device"
	"codeberg.org/mutker/disktempd/internal/errors"
	"codeberg.org/mutker/disktempd/internal/logger"
)

const defaultBinary = "smartctl"

// Reader implements device.Reader on top of the smartctl binary.
type Reader struct {
	unit    device.Unit
	wakeUp  bool
	timeout time.Duration
	binary  string
}

// NewReader returns a Reader that reports temperatures in the given
// unit. Unless wakeUp is set, drives in standby are not spun up
// (smartctl -n standby). Each read is bounded by timeout.
func NewReader(unit device.Unit, wakeUp bool, timeout time.Duration) *Reader {
	return &Reader{
		unit:    unit,
		wakeUp:  wakeUp,
		timeout: timeout,
		binary:  defaultBinary,
	}
}

// Read runs smartctl for one device. Failures never surface as Go
// errors; they are folded into the Reading's status so a refresh cycle
// is not aborted by a single bad drive.
func (r *Reader) Read(ctx context.Context, spec device.Spec) device.Reading {
	errFactory := errors.New()

	readCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	args := []string{"-a", "-j"}
	if arg := spec.Type.SmartctlArg(); arg != "" {
		args = append(args, "-d", arg)
	}
	if !r.wakeUp {
		args = append(args, "-n", "standby")
	}
	args = append(args, spec.Path)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(readCtx, r.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	// smartctl sets non-zero exit bits routinely (e.g. for drives in
	// standby), so the exit status alone is not a failure. Only the
	// inability to run the tool at all is.
	switch {
	case errors.Is(readCtx.Err(), context.DeadlineExceeded):
		return errorReading(spec, "smartctl timed out",
			errFactory.Wrap(errors.ErrReadTimeout, readCtx.Err()))
	case err != nil && (errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist)):
		return errorReading(spec, "smartctl not found (install smartmontools)",
			errFactory.Wrap(errors.ErrDeviceUnavailable, err))
	}

	reading := parseOutput(spec, stdout.Bytes(), stderr.String())
	if reading.HasTemp() {
		reading.Temp = device.Convert(reading.Temp, r.unit)
		reading.Unit = r.unit
	}

	logger.Debug().
		Str("device", spec.Path).
		Str("status", string(reading.Status)).
		Int("temp", reading.Temp).
		Msg("Device read complete")

	return reading
}

// parseOutput builds a Reading from raw smartctl stdout/stderr. The
// temperature is left in Celsius; the caller applies unit conversion.
func parseOutput(spec device.Spec, stdout []byte, stderr string) device.Reading {
	errFactory := errors.New()

	var rep report
	if len(bytes.TrimSpace(stdout)) == 0 {
		detail := strings.TrimSpace(stderr)
		if detail == "" {
			detail = "no smartctl output"
		}
		return errorReading(spec, detail,
			errFactory.WithMessage(errors.ErrParseFailure, detail))
	}
	if err := json.Unmarshal(stdout, &rep); err != nil {
		detail := strings.TrimSpace(stderr)
		if detail == "" {
			detail = "invalid smartctl output"
		}
		return errorReading(spec, detail,
			errFactory.Wrap(errors.ErrParseFailure, err))
	}

	model := rep.model(spec.Path)
	messages := rep.gatherMessages(stderr)

	if tempC, ok := rep.temperatureC(); ok {
		return device.Reading{
			Spec:   spec,
			Model:  model,
			Status: device.StatusKnown,
			Temp:   tempC,
			Unit:   device.Celsius,
			Detail: messages,
		}
	}

	return device.Reading{
		Spec:   spec,
		Model:  model,
		Status: inferStatus(messages),
		Detail: messages,
	}
}

func errorReading(spec device.Spec, detail string, err error) device.Reading {
	return device.Reading{
		Spec:   spec,
		Model:  spec.Path,
		Status: device.StatusError,
		Detail: detail,
		Err:    err,
	}
}

// inferStatus maps smartctl diagnostics to a legacy status marker when
// no temperature was found.
func inferStatus(messages string) device.Status {
	lowered := strings.ToLower(messages)

	switch {
	case strings.Contains(lowered, "standby") || strings.Contains(lowered, "sleep"):
		return device.StatusSleeping
	case strings.Contains(lowered, "permission denied"),
		strings.Contains(lowered, "unable to open device"),
		strings.Contains(lowered, "no such device"),
		strings.Contains(lowered, "cannot open"):
		return device.StatusError
	case strings.Contains(lowered, "smart support is: unavailable"),
		strings.Contains(lowered, "unknown usb bridge"):
		return device.StatusNotSupported
	}

	return device.StatusNoSensor
}
