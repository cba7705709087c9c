package smartctl

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// report mirrors the parts of smartctl's JSON output we consume. Fields
// vary across drive families, so scalar values that smartctl sometimes
// emits as strings are kept raw and parsed leniently.
type report struct {
	Smartctl struct {
		Messages []struct {
			String string `json:"string"`
		} `json:"messages"`
	} `json:"smartctl"`
	Device struct {
		ModelName string `json:"model_name"`
		Name      string `json:"name"`
	} `json:"device"`
	ModelName     string `json:"model_name"`
	NVMeModelName string `json:"nvme_model_name"`
	SCSIModelName string `json:"scsi_model_name"`
	Product       string `json:"product"`

	Temperature     *tempField `json:"temperature"`
	SCSITemperature *tempField `json:"scsi_temperature"`
	NVMeHealth      *struct {
		Temperature json.RawMessage `json:"temperature"`
	} `json:"nvme_smart_health_information_log"`
	ATAAttributes *struct {
		Table []ataAttribute `json:"table"`
	} `json:"ata_smart_attributes"`
}

type tempField struct {
	Current json.RawMessage `json:"current"`
}

type ataAttribute struct {
	ID    int             `json:"id"`
	Value json.RawMessage `json:"value"`
	Raw   struct {
		Value json.RawMessage `json:"value"`
	} `json:"raw"`
}

// ATA SMART attributes that carry a drive temperature, in preference
// order: Temperature_Celsius, Airflow_Temperature_Cel, Temperature_C.
var tempAttributeIDs = []int{194, 190, 231}

var intPattern = regexp.MustCompile(`-?\d+`)

// parseInt extracts an integer from a raw JSON scalar, accepting
// numbers, floats, and strings with embedded digits.
func parseInt(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n), true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if match := intPattern.FindString(s); match != "" {
			v, err := strconv.Atoi(match)
			if err == nil {
				return v, true
			}
		}
	}

	return 0, false
}

// normalizeTempC validates a parsed temperature. Some NVMe firmwares
// report Kelvin; anything outside a plausible Celsius range after the
// shift is rejected.
func normalizeTempC(raw json.RawMessage) (int, bool) {
	v, ok := parseInt(raw)
	if !ok {
		return 0, false
	}

	if v > 200 {
		v -= 273
	}
	if v < -80 || v > 200 {
		return 0, false
	}

	return v, true
}

// model returns the drive's model string, trying the fields different
// drive families populate and falling back to the device path.
func (r *report) model(fallback string) string {
	candidates := []string{
		r.ModelName,
		r.NVMeModelName,
		r.SCSIModelName,
		r.Product,
		r.Device.ModelName,
		r.Device.Name,
	}

	for _, c := range candidates {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			return trimmed
		}
	}

	return fallback
}

// temperatureC finds the current temperature in Celsius, checking the
// generic field first, then the SCSI and NVMe locations, then the ATA
// attribute table.
func (r *report) temperatureC() (int, bool) {
	if r.Temperature != nil {
		if v, ok := normalizeTempC(r.Temperature.Current); ok {
			return v, true
		}
	}

	if r.SCSITemperature != nil {
		if v, ok := normalizeTempC(r.SCSITemperature.Current); ok {
			return v, true
		}
	}

	if r.NVMeHealth != nil {
		if v, ok := normalizeTempC(r.NVMeHealth.Temperature); ok {
			return v, true
		}
	}

	if r.ATAAttributes != nil {
		for _, id := range tempAttributeIDs {
			for _, attr := range r.ATAAttributes.Table {
				if attr.ID != id {
					continue
				}
				if v, ok := normalizeTempC(attr.Raw.Value); ok {
					return v, true
				}
				if v, ok := normalizeTempC(attr.Value); ok {
					return v, true
				}
			}
		}
	}

	return 0, false
}

// gatherMessages joins smartctl's own diagnostics with stderr output
// for status inference and error detail.
func (r *report) gatherMessages(stderr string) string {
	var messages []string
	for _, m := range r.Smartctl.Messages {
		if m.String != "" {
			messages = append(messages, m.String)
		}
	}
	if trimmed := strings.TrimSpace(stderr); trimmed != "" {
		messages = append(messages, trimmed)
	}

	return strings.Join(messages, "\n")
}
