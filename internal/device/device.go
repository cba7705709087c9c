// Package device holds the core types shared by every mode of operation:
// device specifications, temperature readings, and the reader contract
// implemented by the smartctl collaborator.
package device

import (
	"context"
	"math"
	"strings"
)

// Type is an optional bus-type hint prefixed to a device argument,
// e.g. "NVME:/dev/nvme0n1".
type Type string

const (
	TypeNone Type = ""
	TypeSATA Type = "SATA"
	TypePATA Type = "PATA"
	TypeATA  Type = "ATA"
	TypeSCSI Type = "SCSI"
	TypeNVMe Type = "NVME"
)

// smartctlTypes maps recognized hints to smartctl -d arguments.
var smartctlTypes = map[Type]string{
	TypeSATA: "sat",
	TypePATA: "ata",
	TypeATA:  "ata",
	TypeSCSI: "scsi",
	TypeNVMe: "nvme",
}

// SmartctlArg returns the smartctl -d value for the hint, or "" when no
// hint was given.
func (t Type) SmartctlArg() string {
	return smartctlTypes[t]
}

// Spec identifies one configured device. Raw preserves the original
// argument; Path is the device node handed to the diagnostic tool.
type Spec struct {
	Raw  string
	Path string
	Type Type
}

// Parse splits an optional TYPE: prefix off a device argument. Only the
// known bus types are treated as hints; anything else, including an
// unrecognized token before a colon, is kept literally as the path.
func Parse(arg string) Spec {
	prefix, path, found := strings.Cut(arg, ":")
	if !found {
		return Spec{Raw: arg, Path: arg}
	}

	hint := Type(strings.ToUpper(prefix))
	if _, ok := smartctlTypes[hint]; ok && path != "" {
		return Spec{Raw: arg, Path: path, Type: hint}
	}

	return Spec{Raw: arg, Path: arg}
}

// ParseAll parses every device argument, preserving order.
func ParseAll(args []string) []Spec {
	specs := make([]Spec, len(args))
	for i, arg := range args {
		specs[i] = Parse(arg)
	}

	return specs
}

// Unit is the output temperature unit.
type Unit string

const (
	Celsius    Unit = "C"
	Fahrenheit Unit = "F"
)

// Convert converts a Celsius temperature to the given unit.
func Convert(tempC int, unit Unit) int {
	if unit == Fahrenheit {
		return int(math.Round(float64(tempC)*9.0/5.0 + 32.0))
	}

	return tempC
}

// Status classifies the outcome of one temperature read. The values are
// the literal markers used on the wire by the legacy daemon protocol.
type Status string

const (
	StatusKnown        Status = "KNOWN"
	StatusNoSensor     Status = "NOS"
	StatusUnknown      Status = "UNK"
	StatusNotSupported Status = "NA"
	StatusSleeping     Status = "SLP"
	StatusError        Status = "ERR"
)

// Reading is one temperature observation for one device. Temp and Unit
// are only meaningful when Status is StatusKnown; otherwise Detail and
// Err describe why no value is available. Readings are immutable and
// replaced wholesale on each refresh.
type Reading struct {
	Spec   Spec
	Model  string
	Status Status
	Temp   int
	Unit   Unit
	Detail string
	Err    error
}

// HasTemp reports whether the reading carries a usable temperature.
func (r Reading) HasTemp() bool {
	return r.Status == StatusKnown
}

// Reader produces a Reading for one device. Implementations never
// return a Go error: failures are folded into the Reading so that one
// bad drive degrades only its own field. The context bounds the read.
type Reader interface {
	Read(ctx context.Context, spec Spec) Reading
}
