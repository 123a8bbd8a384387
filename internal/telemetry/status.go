package telemetry

// Status thresholds. Critical bands are strictly more extreme than warning
// bands in the same direction. The pipeline's threshold detector reuses these
// constants so alerts and sample statuses can never disagree.
const (
	BatteryVoltageWarning   = 22.0 // V, below
	BatteryVoltageCritical  = 20.0
	BatteryTempWarning      = 35.0 // °C, above
	BatteryTempCritical     = 45.0
	BatteryCapacityWarning  = 80.0 // %, below
	BatteryCapacityCritical = 60.0

	SolarPowerWarning  = 750.0 // W, below, sunlight only
	SolarPowerCritical = 450.0
	SolarTempWarning   = 70.0 // °C, above
	SolarTempCritical  = 85.0

	ThermalProcessorWarning  = 60.0 // °C, above
	ThermalProcessorCritical = 70.0
	ThermalBatteryWarning    = 40.0
	ThermalBatteryCritical   = 50.0

	CommsSignalWarning     = -80.0 // dBm, below
	CommsSignalCritical    = -90.0
	CommsErrorRateWarning  = 1.0 // %, above
	CommsErrorRateCritical = 5.0
	CommsDataRateWarning   = 50.0 // Mbps, below
	CommsDataRateCritical  = 20.0
)

// BatteryStatus derives battery health from voltage, temperature, and
// remaining capacity.
func BatteryStatus(voltage, temperature, capacityPct float64) Status {
	if voltage < BatteryVoltageCritical || temperature > BatteryTempCritical || capacityPct < BatteryCapacityCritical {
		return StatusCritical
	}
	if voltage < BatteryVoltageWarning || temperature > BatteryTempWarning || capacityPct < BatteryCapacityWarning {
		return StatusWarning
	}
	return StatusNormal
}

// SolarStatus derives solar array health. Low power output during eclipse is
// expected and never flagged.
func SolarStatus(power, temperature float64, eclipse bool) Status {
	if temperature > SolarTempCritical || (!eclipse && power < SolarPowerCritical) {
		return StatusCritical
	}
	if temperature > SolarTempWarning || (!eclipse && power < SolarPowerWarning) {
		return StatusWarning
	}
	return StatusNormal
}

// ThermalStatus derives thermal health from the processor and battery
// channels.
func ThermalStatus(processor, battery float64) Status {
	if processor > ThermalProcessorCritical || battery > ThermalBatteryCritical {
		return StatusCritical
	}
	if processor > ThermalProcessorWarning || battery > ThermalBatteryWarning {
		return StatusWarning
	}
	return StatusNormal
}

// CommsStatus derives communication health from signal strength, error rate,
// and data rate.
func CommsStatus(signalStrength, errorRate, dataRate float64) Status {
	if signalStrength < CommsSignalCritical || errorRate > CommsErrorRateCritical || dataRate < CommsDataRateCritical {
		return StatusCritical
	}
	if signalStrength < CommsSignalWarning || errorRate > CommsErrorRateWarning || dataRate < CommsDataRateWarning {
		return StatusWarning
	}
	return StatusNormal
}
