package telemetry

// Package telemetry defines the synthetic satellite telemetry model: one
// Sample per simulation tick, covering the power, thermal, communication,
// and attitude subsystems, each with a status derived purely from the
// sample's own numeric fields.

// Status classifies a subsystem's health at one instant.
type Status string

const (
	StatusNormal   Status = "normal"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// Category identifies a telemetry subsystem.
type Category string

const (
	CategoryBattery  Category = "battery"
	CategorySolar    Category = "solar"
	CategoryThermal  Category = "thermal"
	CategoryComms    Category = "communication"
	CategoryAttitude Category = "attitude"
)

// Categories lists every subsystem category in a stable order.
func Categories() []Category {
	return []Category{CategoryBattery, CategorySolar, CategoryThermal, CategoryComms, CategoryAttitude}
}

// FaultCategories lists the subsystems that accept fault injection.
func FaultCategories() []Category {
	return []Category{CategoryBattery, CategorySolar, CategoryThermal, CategoryComms}
}

// BatteryReadings holds one tick of battery subsystem telemetry.
type BatteryReadings struct {
	Voltage     float64 `json:"voltage"`     // V
	Current     float64 `json:"current"`     // A, negative while discharging
	Temperature float64 `json:"temperature"` // °C
	CapacityPct float64 `json:"capacityPercent"`
	Status      Status  `json:"status"`
}

// SolarReadings holds one tick of solar array telemetry.
type SolarReadings struct {
	Power         float64 `json:"power"`   // W
	Voltage       float64 `json:"voltage"` // V
	Current       float64 `json:"current"` // A
	Temperature   float64 `json:"temperature"`
	EfficiencyPct float64 `json:"efficiencyPercent"`
	Status        Status  `json:"status"`
}

// ThermalReadings holds one tick of thermal channel telemetry.
type ThermalReadings struct {
	Processor float64 `json:"processor"` // °C
	Battery   float64 `json:"battery"`
	Solar     float64 `json:"solar"`
	Radiator  float64 `json:"radiator"`
	Status    Status  `json:"status"`
}

// CommsReadings holds one tick of communication subsystem telemetry.
type CommsReadings struct {
	SignalStrength     float64 `json:"signalStrength"` // dBm
	DataRate           float64 `json:"dataRate"`       // Mbps
	ErrorRate          float64 `json:"errorRate"`      // %
	AntennaTemperature float64 `json:"antennaTemperature"`
	Status             Status  `json:"status"`
}

// AttitudeReadings holds one tick of attitude telemetry.
type AttitudeReadings struct {
	Roll            float64 `json:"roll"` // degrees
	Pitch           float64 `json:"pitch"`
	Yaw             float64 `json:"yaw"`
	AngularVelocity float64 `json:"angularVelocity"` // deg/s
}

// Sample is one tick's full-system snapshot. Samples are immutable after
// creation.
type Sample struct {
	Timestamp   int64   `json:"timestamp"` // epoch milliseconds
	MissionTime float64 `json:"missionTimeSeconds"`
	Eclipse     bool    `json:"eclipse"`

	Battery  BatteryReadings  `json:"battery"`
	Solar    SolarReadings    `json:"solar"`
	Thermal  ThermalReadings  `json:"thermal"`
	Comms    CommsReadings    `json:"communication"`
	Attitude AttitudeReadings `json:"attitude"`
}
