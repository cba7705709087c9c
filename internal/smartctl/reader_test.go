package smartctl

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/mutker/disktempd/internal/device"
	"codeberg.org/mutker/disktempd/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutputGenericTemperature(t *testing.T) {
	stdout := []byte(`{
		"model_name": "Samsung SSD 870 EVO",
		"temperature": {"current": 34}
	}`)

	reading := parseOutput(device.Parse("/dev/sda"), stdout, "")
	assert.Equal(t, device.StatusKnown, reading.Status)
	assert.Equal(t, 34, reading.Temp)
	assert.Equal(t, device.Celsius, reading.Unit)
	assert.Equal(t, "Samsung SSD 870 EVO", reading.Model)
}

func TestParseOutputATAAttributeTable(t *testing.T) {
	stdout := []byte(`{
		"model_name": "WDC WD40EFRX",
		"ata_smart_attributes": {
			"table": [
				{"id": 1, "raw": {"value": 0}},
				{"id": 194, "raw": {"value": 34}}
			]
		}
	}`)

	reading := parseOutput(device.Parse("/dev/sdb"), stdout, "")
	assert.Equal(t, device.StatusKnown, reading.Status)
	assert.Equal(t, 34, reading.Temp)
}

func TestParseOutputAirflowAttributeFallback(t *testing.T) {
	stdout := []byte(`{
		"ata_smart_attributes": {
			"table": [
				{"id": 190, "raw": {"value": 29}}
			]
		}
	}`)

	reading := parseOutput(device.Parse("/dev/sdc"), stdout, "")
	assert.Equal(t, device.StatusKnown, reading.Status)
	assert.Equal(t, 29, reading.Temp)
}

func TestParseOutputNVMeKelvin(t *testing.T) {
	stdout := []byte(`{
		"nvme_model_name": "WD_BLACK SN850X",
		"nvme_smart_health_information_log": {"temperature": 315}
	}`)

	reading := parseOutput(device.Parse("NVME:/dev/nvme0n1"), stdout, "")
	assert.Equal(t, device.StatusKnown, reading.Status)
	assert.Equal(t, 42, reading.Temp)
	assert.Equal(t, "WD_BLACK SN850X", reading.Model)
}

func TestParseOutputAttributeRawString(t *testing.T) {
	// Some drives encode the raw value as a composite string; only the
	// leading integer is the temperature.
	stdout := []byte(`{
		"ata_smart_attributes": {
			"table": [
				{"id": 194, "raw": {"value": "36 (Min/Max 19/45)"}}
			]
		}
	}`)

	reading := parseOutput(device.Parse("/dev/sda"), stdout, "")
	assert.Equal(t, device.StatusKnown, reading.Status)
	assert.Equal(t, 36, reading.Temp)
}

func TestParseOutputStandby(t *testing.T) {
	stdout := []byte(`{
		"model_name": "WDC WD40EFRX",
		"smartctl": {
			"messages": [{"string": "Device is in STANDBY mode, exit(2)"}]
		}
	}`)

	reading := parseOutput(device.Parse("/dev/sdb"), stdout, "")
	assert.Equal(t, device.StatusSleeping, reading.Status)
	assert.False(t, reading.HasTemp())
}

func TestParseOutputNoSensor(t *testing.T) {
	stdout := []byte(`{"model_name": "Some Flash Drive"}`)

	reading := parseOutput(device.Parse("/dev/sdd"), stdout, "")
	assert.Equal(t, device.StatusNoSensor, reading.Status)
}

func TestParseOutputSmartUnavailable(t *testing.T) {
	stdout := []byte(`{
		"smartctl": {
			"messages": [{"string": "SMART support is: Unavailable - device lacks SMART capability"}]
		}
	}`)

	reading := parseOutput(device.Parse("/dev/sde"), stdout, "")
	assert.Equal(t, device.StatusNotSupported, reading.Status)
}

func TestParseOutputPermissionDenied(t *testing.T) {
	stdout := []byte(`{
		"smartctl": {
			"messages": [{"string": "Smartctl open device: /dev/sda failed: Permission denied"}]
		}
	}`)

	reading := parseOutput(device.Parse("/dev/sda"), stdout, "")
	assert.Equal(t, device.StatusError, reading.Status)
}

func TestParseOutputInvalidJSON(t *testing.T) {
	reading := parseOutput(device.Parse("/dev/sda"), []byte("not json"), "boom")
	assert.Equal(t, device.StatusError, reading.Status)
	assert.Equal(t, "boom", reading.Detail)
	assert.Equal(t, errors.ErrParseFailure, errors.CodeOf(reading.Err))
}

func TestParseOutputEmpty(t *testing.T) {
	reading := parseOutput(device.Parse("/dev/sda"), nil, "")
	assert.Equal(t, device.StatusError, reading.Status)
	assert.Equal(t, errors.ErrParseFailure, errors.CodeOf(reading.Err))
}

func TestParseOutputModelFallbackToPath(t *testing.T) {
	reading := parseOutput(device.Parse("/dev/sdf"), []byte(`{}`), "")
	assert.Equal(t, "/dev/sdf", reading.Model)
}

func TestReadMissingBinary(t *testing.T) {
	r := NewReader(device.Celsius, false, time.Second)
	r.binary = "/nonexistent/smartctl"

	reading := r.Read(context.Background(), device.Parse("/dev/sda"))
	assert.Equal(t, device.StatusError, reading.Status)
	assert.Equal(t, errors.ErrDeviceUnavailable, errors.CodeOf(reading.Err))
}

func TestReadTimeout(t *testing.T) {
	r := NewReader(device.Celsius, false, 100*time.Millisecond)
	r.binary = fakeSmartctl(t, "#!/bin/sh\nsleep 5\n")

	reading := r.Read(context.Background(), device.Parse("/dev/sda"))
	assert.Equal(t, device.StatusError, reading.Status)
	assert.Equal(t, errors.ErrReadTimeout, errors.CodeOf(reading.Err))
}

func TestReadConvertsToFahrenheit(t *testing.T) {
	r := NewReader(device.Fahrenheit, false, time.Second)
	r.binary = fakeSmartctl(t, "#!/bin/sh\necho '{\"model_name\":\"X\",\"temperature\":{\"current\":30}}'\n")

	reading := r.Read(context.Background(), device.Parse("/dev/sda"))
	require.Equal(t, device.StatusKnown, reading.Status)
	assert.Equal(t, 86, reading.Temp)
	assert.Equal(t, device.Fahrenheit, reading.Unit)
}

func TestReadIgnoresExitStatus(t *testing.T) {
	// smartctl exits non-zero for drives in standby; the output still counts.
	r := NewReader(device.Celsius, false, time.Second)
	r.binary = fakeSmartctl(t,
		"#!/bin/sh\necho '{\"smartctl\":{\"messages\":[{\"string\":\"Device is in STANDBY mode\"}]}}'\nexit 2\n")

	reading := r.Read(context.Background(), device.Parse("/dev/sdb"))
	assert.Equal(t, device.StatusSleeping, reading.Status)
}

// fakeSmartctl writes an executable stand-in script and returns its path.
func fakeSmartctl(t *testing.T, script string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "smartctl")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	return path
}
