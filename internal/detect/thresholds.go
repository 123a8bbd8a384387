package detect

import (
	"fmt"
	"time"

	"github.com/satwatch/satwatch/internal/alert"
	"github.com/satwatch/satwatch/internal/telemetry"
)

// direction says which side of a band is unhealthy.
type direction int

const (
	below direction = iota
	above
)

// thresholdCheck is one row of the fixed threshold table.
type thresholdCheck struct {
	subsystem string
	parameter string
	unit      string
	dir       direction
	warning   float64
	critical  float64
	// value extracts the reading from a sample.
	value func(telemetry.Sample) float64
	// skip suppresses the check for samples where the band does not apply.
	skip func(telemetry.Sample) bool
	hint string
}

// thresholdTable mirrors the status-derivation bands so threshold alerts and
// subsystem statuses can never disagree.
var thresholdTable = []thresholdCheck{
	{
		subsystem: "battery", parameter: "voltage", unit: "V", dir: below,
		warning: telemetry.BatteryVoltageWarning, critical: telemetry.BatteryVoltageCritical,
		value: func(s telemetry.Sample) float64 { return s.Battery.Voltage },
		hint:  "Reduce non-essential loads and verify charge regulator output.",
	},
	{
		subsystem: "battery", parameter: "temperature", unit: "°C", dir: above,
		warning: telemetry.BatteryTempWarning, critical: telemetry.BatteryTempCritical,
		value: func(s telemetry.Sample) float64 { return s.Battery.Temperature },
		hint:  "Check battery heater duty cycle and radiator pointing.",
	},
	{
		subsystem: "battery", parameter: "capacityPercent", unit: "%", dir: below,
		warning: telemetry.BatteryCapacityWarning, critical: telemetry.BatteryCapacityCritical,
		value: func(s telemetry.Sample) float64 { return s.Battery.CapacityPct },
		hint:  "Plan reduced-power operations; schedule capacity reconditioning.",
	},
	{
		subsystem: "solar", parameter: "power", unit: "W", dir: below,
		warning: telemetry.SolarPowerWarning, critical: telemetry.SolarPowerCritical,
		value: func(s telemetry.Sample) float64 { return s.Solar.Power },
		skip:  func(s telemetry.Sample) bool { return s.Eclipse },
		hint:  "Verify array orientation and check for panel degradation.",
	},
	{
		subsystem: "thermal", parameter: "processor", unit: "°C", dir: above,
		warning: telemetry.ThermalProcessorWarning, critical: telemetry.ThermalProcessorCritical,
		value: func(s telemetry.Sample) float64 { return s.Thermal.Processor },
		hint:  "Throttle onboard processing and verify heat-pipe performance.",
	},
	{
		subsystem: "communication", parameter: "signalStrength", unit: "dBm", dir: below,
		warning: telemetry.CommsSignalWarning, critical: telemetry.CommsSignalCritical,
		value: func(s telemetry.Sample) float64 { return s.Comms.SignalStrength },
		hint:  "Check antenna pointing and switch to the backup transponder if needed.",
	},
	{
		subsystem: "communication", parameter: "errorRate", unit: "%", dir: above,
		warning: telemetry.CommsErrorRateWarning, critical: telemetry.CommsErrorRateCritical,
		value: func(s telemetry.Sample) float64 { return s.Comms.ErrorRate },
		hint:  "Lower the data rate and re-verify link margin.",
	},
}

// evaluate classifies the value against the check's bands. Critical takes
// precedence when both match.
func (c thresholdCheck) evaluate(v float64) (alert.Severity, bool) {
	switch c.dir {
	case below:
		if v < c.critical {
			return alert.SeverityCritical, true
		}
		if v < c.warning {
			return alert.SeverityWarning, true
		}
	case above:
		if v > c.critical {
			return alert.SeverityCritical, true
		}
		if v > c.warning {
			return alert.SeverityWarning, true
		}
	}
	return "", false
}

// checkThresholds runs the full table against one sample.
func checkThresholds(s telemetry.Sample, detectedAt time.Time) []*alert.Alert {
	var out []*alert.Alert
	for _, c := range thresholdTable {
		if c.skip != nil && c.skip(s) {
			continue
		}
		v := c.value(s)
		severity, breached := c.evaluate(v)
		if !breached {
			continue
		}

		limit := c.warning
		if severity == alert.SeverityCritical {
			limit = c.critical
		}
		cmp := "below"
		if c.dir == above {
			cmp = "above"
		}

		a := alert.New(alert.KindThreshold, severity, c.subsystem, c.parameter, v, detectedAt)
		a.Message = fmt.Sprintf("%s %s is %.2f %s, %s the %s limit of %.2f %s",
			c.subsystem, c.parameter, v, c.unit, cmp, severity, limit, c.unit)
		a.Explanation = fmt.Sprintf("Direct comparison against the fixed %s band.", severity)
		a.RecommendationHint = c.hint
		out = append(out, a)
	}
	return out
}
