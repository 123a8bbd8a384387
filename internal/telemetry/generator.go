package telemetry

import (
	"math"
	"math/rand"
	"time"
)

// Subsystem baselines. The sinusoid amplitudes and noise magnitudes stay
// well inside the normal status bands so an unfaulted run produces only
// normal samples.
const (
	batteryBaseVoltage   = 24.0   // V
	batteryChargeAmps    = 2.0    // A while in sunlight
	batteryDischargeAmps = 3.0    // A while in eclipse
	batteryBaseTemp      = 25.0   // °C
	batteryDecayPctPerS  = 0.0005 // capacity loss per simulated second
	batteryCapacityFloor = 50.0

	solarBasePower       = 1500.0 // W
	solarPanelEfficiency = 0.92
	solarEclipseFactor   = 0.1
	solarBaseVoltage     = 32.0
	solarSunTemp         = 55.0
	solarEclipseTemp     = 5.0

	thermalProcessorBase = 45.0
	thermalBatteryBase   = 22.0
	thermalSolarBase     = 38.0
	thermalRadiatorBase  = -12.0

	commsBaseSignal      = -65.0 // dBm
	commsBaseDataRate    = 150.0 // Mbps
	commsBaseErrorRate   = 0.5   // %
	commsBaseAntennaTemp = 15.0

	// Fault biases, applied only while the subsystem's fault flag is active.
	faultBatteryTempDelta    = 25.0
	faultBatteryVoltageScale = 0.85
	faultBatteryCurrentScale = 1.5
	faultSolarPowerScale     = 0.3
	faultSolarTempDelta      = 20.0
	faultThermalProcDelta    = 20.0
	faultThermalBattDelta    = 15.0
	faultCommsSignalDelta    = -20.0
	faultCommsDataRateScale  = 0.1
	faultCommsErrorScale     = 10.0
)

// IsEclipse reports whether the satellite is in Earth's shadow at the given
// mission time. The shadow occupies the (0.6, 0.9) fraction of each orbit.
func IsEclipse(missionTime float64, orbitalPeriod float64) bool {
	phase := math.Mod(missionTime, orbitalPeriod) / orbitalPeriod
	if phase < 0 {
		phase += 1
	}
	return phase > 0.6 && phase < 0.9
}

// Generator fabricates one telemetry Sample per tick. Output is noisy by
// design; the rng is injected so tests can seed it.
type Generator struct {
	orbitalPeriod float64 // seconds
	rng           *rand.Rand
	faults        *FaultState
}

// NewGenerator creates a signal generator reading fault flags each tick.
func NewGenerator(orbitalPeriod time.Duration, faults *FaultState, rng *rand.Rand) *Generator {
	return &Generator{
		orbitalPeriod: orbitalPeriod.Seconds(),
		rng:           rng,
		faults:        faults,
	}
}

// noise returns bounded uniform noise in [-mag, mag]. Bounded noise keeps
// an unfaulted signal strictly inside its status band.
func (g *Generator) noise(mag float64) float64 {
	return (g.rng.Float64()*2 - 1) * mag
}

// Tick produces the sample for the given wall time and mission elapsed time.
func (g *Generator) Tick(now time.Time, missionTime float64) Sample {
	eclipse := IsEclipse(missionTime, g.orbitalPeriod)
	flags := g.faults.Snapshot()

	s := Sample{
		Timestamp:   now.UnixMilli(),
		MissionTime: missionTime,
		Eclipse:     eclipse,
	}

	s.Battery = g.battery(missionTime, eclipse, flags[CategoryBattery])
	s.Solar = g.solar(missionTime, eclipse, flags[CategorySolar])
	s.Thermal = g.thermal(missionTime, flags[CategoryThermal])
	s.Comms = g.comms(missionTime, flags[CategoryComms])
	s.Attitude = g.attitude(missionTime)

	return s
}

func (g *Generator) battery(t float64, eclipse, fault bool) BatteryReadings {
	voltage := batteryBaseVoltage + 0.3*math.Sin(t/600) + g.noise(0.05)

	var current float64
	if eclipse {
		current = -batteryDischargeAmps + g.noise(0.2)
	} else {
		current = batteryChargeAmps + g.noise(0.2)
	}

	temperature := batteryBaseTemp + 2*math.Sin(t/900) + g.noise(0.5)

	// Prefill samples carry negative mission time; capacity stays pinned
	// at full until the mission clock starts counting.
	capacity := 100.0 - batteryDecayPctPerS*t
	if capacity < batteryCapacityFloor {
		capacity = batteryCapacityFloor
	}
	if capacity > 100.0 {
		capacity = 100.0
	}

	if fault {
		temperature += faultBatteryTempDelta
		voltage *= faultBatteryVoltageScale
		current *= faultBatteryCurrentScale
	}

	return BatteryReadings{
		Voltage:     voltage,
		Current:     current,
		Temperature: temperature,
		CapacityPct: capacity,
		Status:      BatteryStatus(voltage, temperature, capacity),
	}
}

func (g *Generator) solar(t float64, eclipse, fault bool) SolarReadings {
	var power float64
	if eclipse {
		power = solarBasePower * solarPanelEfficiency * solarEclipseFactor
	} else {
		illumination := 0.8 + 0.4*g.rng.Float64()
		power = solarBasePower * solarPanelEfficiency * illumination
	}

	var temperature float64
	if eclipse {
		temperature = solarEclipseTemp + 2*math.Sin(t/700) + g.noise(1.0)
	} else {
		temperature = solarSunTemp + 3*math.Sin(t/700) + g.noise(1.0)
	}

	if fault {
		power *= faultSolarPowerScale
		temperature += faultSolarTempDelta
	}

	voltage := solarBaseVoltage * (0.9 + 0.2*power/solarBasePower)
	current := power / voltage

	return SolarReadings{
		Power:         power,
		Voltage:       voltage,
		Current:       current,
		Temperature:   temperature,
		EfficiencyPct: solarPanelEfficiency * 100,
		Status:        SolarStatus(power, temperature, eclipse),
	}
}

func (g *Generator) thermal(t float64, fault bool) ThermalReadings {
	processor := thermalProcessorBase + 3*math.Sin(t/500) + g.noise(0.8)
	battery := thermalBatteryBase + 2*math.Sin(t/800) + g.noise(0.5)
	solar := thermalSolarBase + 4*math.Sin(t/650) + g.noise(1.0)
	radiator := thermalRadiatorBase + 2*math.Sin(t/750) + g.noise(0.8)

	if fault {
		processor += faultThermalProcDelta
		battery += faultThermalBattDelta
	}

	return ThermalReadings{
		Processor: processor,
		Battery:   battery,
		Solar:     solar,
		Radiator:  radiator,
		Status:    ThermalStatus(processor, battery),
	}
}

func (g *Generator) comms(t float64, fault bool) CommsReadings {
	signal := commsBaseSignal + 3*math.Sin(t/400) + g.noise(0.7)
	dataRate := commsBaseDataRate + 10*math.Sin(t/550) + g.noise(2.0)
	errorRate := commsBaseErrorRate + 0.2*math.Sin(t/450) + g.noise(0.05)
	antennaTemp := commsBaseAntennaTemp + 3*math.Sin(t/850) + g.noise(0.6)

	if fault {
		signal += faultCommsSignalDelta
		dataRate *= faultCommsDataRateScale
		errorRate *= faultCommsErrorScale
	}
	if errorRate < 0 {
		errorRate = 0
	}

	return CommsReadings{
		SignalStrength:     signal,
		DataRate:           dataRate,
		ErrorRate:          errorRate,
		AntennaTemperature: antennaTemp,
		Status:             CommsStatus(signal, errorRate, dataRate),
	}
}

func (g *Generator) attitude(t float64) AttitudeReadings {
	return AttitudeReadings{
		Roll:            2.0*math.Sin(t/1200) + g.noise(0.1),
		Pitch:           1.5*math.Sin(t/1500) + g.noise(0.1),
		Yaw:             2.5*math.Sin(t/1800) + g.noise(0.1),
		AngularVelocity: g.noise(0.05),
	}
}

// Prefill generates n historical samples, one per simulated second ending
// just before start, so consumers have a populated history immediately.
// Samples are returned oldest first.
func (g *Generator) Prefill(start time.Time, n int) []Sample {
	out := make([]Sample, 0, n)
	for i := n; i >= 1; i-- {
		ts := start.Add(-time.Duration(i) * time.Second)
		out = append(out, g.Tick(ts, -float64(i)))
	}
	return out
}
