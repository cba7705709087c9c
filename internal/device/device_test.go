package device_test

import (
	"testing"

	"codeberg.org/mutker/disktempd/internal/device"
	"github.com/stretchr/testify/assert"
)

func TestParseTypePrefix(t *testing.T) {
	tests := []struct {
		arg      string
		wantPath string
		wantType device.Type
	}{
		{"SATA:/dev/sda", "/dev/sda", device.TypeSATA},
		{"sata:/dev/sda", "/dev/sda", device.TypeSATA},
		{"PATA:/dev/hda", "/dev/hda", device.TypePATA},
		{"ATA:/dev/sdb", "/dev/sdb", device.TypeATA},
		{"SCSI:/dev/sg0", "/dev/sg0", device.TypeSCSI},
		{"NVME:/dev/nvme0n1", "/dev/nvme0n1", device.TypeNVMe},
		{"nvme:/dev/nvme1", "/dev/nvme1", device.TypeNVMe},
	}

	for _, tt := range tests {
		spec := device.Parse(tt.arg)
		assert.Equal(t, tt.wantPath, spec.Path, "path for %q", tt.arg)
		assert.Equal(t, tt.wantType, spec.Type, "type for %q", tt.arg)
		assert.Equal(t, tt.arg, spec.Raw, "raw for %q", tt.arg)
	}
}

func TestParseNoPrefix(t *testing.T) {
	spec := device.Parse("/dev/sda")
	assert.Equal(t, "/dev/sda", spec.Path)
	assert.Equal(t, device.TypeNone, spec.Type)
}

func TestParseUnrecognizedPrefixKeptLiterally(t *testing.T) {
	// An unknown token before a colon is not stripped.
	spec := device.Parse("FOO:/dev/sda")
	assert.Equal(t, "FOO:/dev/sda", spec.Path)
	assert.Equal(t, device.TypeNone, spec.Type)
}

func TestParseEmptyRemainder(t *testing.T) {
	// A hint with nothing after the colon is not a valid spec; keep it
	// as a literal path and let the reader fail on it.
	spec := device.Parse("SATA:")
	assert.Equal(t, "SATA:", spec.Path)
	assert.Equal(t, device.TypeNone, spec.Type)
}

func TestParseAllPreservesOrder(t *testing.T) {
	specs := device.ParseAll([]string{"/dev/sdb", "NVME:/dev/nvme0n1", "/dev/sda"})
	assert.Len(t, specs, 3)
	assert.Equal(t, "/dev/sdb", specs[0].Path)
	assert.Equal(t, "/dev/nvme0n1", specs[1].Path)
	assert.Equal(t, "/dev/sda", specs[2].Path)
}

func TestSmartctlArg(t *testing.T) {
	assert.Equal(t, "sat", device.TypeSATA.SmartctlArg())
	assert.Equal(t, "ata", device.TypePATA.SmartctlArg())
	assert.Equal(t, "ata", device.TypeATA.SmartctlArg())
	assert.Equal(t, "scsi", device.TypeSCSI.SmartctlArg())
	assert.Equal(t, "nvme", device.TypeNVMe.SmartctlArg())
	assert.Equal(t, "", device.TypeNone.SmartctlArg())
}

func TestConvert(t *testing.T) {
	assert.Equal(t, 30, device.Convert(30, device.Celsius))
	assert.Equal(t, 86, device.Convert(30, device.Fahrenheit))
	assert.Equal(t, 32, device.Convert(0, device.Fahrenheit))
	assert.Equal(t, 95, device.Convert(35, device.Fahrenheit))
}

func TestHasTemp(t *testing.T) {
	ok := device.Reading{Status: device.StatusKnown, Temp: 35, Unit: device.Celsius}
	assert.True(t, ok.HasTemp())

	for _, status := range []device.Status{
		device.StatusNoSensor,
		device.StatusUnknown,
		device.StatusNotSupported,
		device.StatusSleeping,
		device.StatusError,
	} {
		r := device.Reading{Status: status}
		assert.False(t, r.HasTemp(), "status %s", status)
	}
}
