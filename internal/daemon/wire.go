package daemon

import (
	"strconv"
	"strings"

	"codeberg.org/mutker/disktempd/internal/device"
)

// FormatPayload renders the legacy hddtemp payload: one field group per
// device, in configured order, each group opening and closing with the
// separator and no padding between groups:
//
//	|path|model|value|unit|
//
// Devices without a temperature carry their status marker in the value
// field and "*" in the unit field:
//
//	|path|model|SLP|*|
func FormatPayload(readings []device.Reading, separator string) string {
	var b strings.Builder
	for _, r := range readings {
		value := string(marker(r.Status))
		unit := "*"
		if r.HasTemp() {
			value = strconv.Itoa(r.Temp)
			unit = string(r.Unit)
		}

		b.WriteString(separator)
		b.WriteString(r.Spec.Path)
		b.WriteString(separator)
		b.WriteString(r.Model)
		b.WriteString(separator)
		b.WriteString(value)
		b.WriteString(separator)
		b.WriteString(unit)
		b.WriteString(separator)
	}

	return b.String()
}

// marker returns the wire marker for a non-temperature status. Anything
// unexpected degrades to ERR rather than leaking internal state.
func marker(status device.Status) device.Status {
	switch status {
	case device.StatusNotSupported, device.StatusUnknown,
		device.StatusNoSensor, device.StatusSleeping, device.StatusError:
		return status
	default:
		return device.StatusError
	}
}
