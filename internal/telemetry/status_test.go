package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatteryStatus(t *testing.T) {
	tests := []struct {
		name     string
		voltage  float64
		temp     float64
		capacity float64
		want     Status
	}{
		{"nominal", 24.0, 25.0, 95.0, StatusNormal},
		{"low voltage warning", 21.5, 25.0, 95.0, StatusWarning},
		{"low voltage critical", 19.5, 25.0, 95.0, StatusCritical},
		{"high temp warning", 24.0, 36.0, 95.0, StatusWarning},
		{"high temp critical", 24.0, 46.0, 95.0, StatusCritical},
		{"low capacity warning", 24.0, 25.0, 75.0, StatusWarning},
		{"low capacity critical", 24.0, 25.0, 55.0, StatusCritical},
		{"critical wins over warning", 21.5, 46.0, 95.0, StatusCritical},
		{"warning boundary not crossed", 22.0, 35.0, 80.0, StatusNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BatteryStatus(tt.voltage, tt.temp, tt.capacity))
		})
	}
}

func TestBatteryStatus_CriticalImpliesWarningDirection(t *testing.T) {
	// Any critical triple must also satisfy the warning condition.
	triples := [][3]float64{
		{19.0, 25.0, 95.0},
		{24.0, 50.0, 95.0},
		{24.0, 25.0, 50.0},
	}
	for _, tr := range triples {
		v, temp, cap := tr[0], tr[1], tr[2]
		assert.Equal(t, StatusCritical, BatteryStatus(v, temp, cap))
		warning := v < BatteryVoltageWarning || temp > BatteryTempWarning || cap < BatteryCapacityWarning
		assert.True(t, warning, "critical condition must satisfy the warning direction")
	}
}

func TestSolarStatus_EclipseSuppressesPowerCheck(t *testing.T) {
	// 138 W is far below any sunlight band but expected during eclipse.
	assert.Equal(t, StatusNormal, SolarStatus(138.0, 10.0, true))
	assert.Equal(t, StatusCritical, SolarStatus(138.0, 10.0, false))
	assert.Equal(t, StatusWarning, SolarStatus(700.0, 55.0, false))
	// Temperature applies regardless of eclipse.
	assert.Equal(t, StatusCritical, SolarStatus(1400.0, 90.0, true))
}

func TestThermalStatus(t *testing.T) {
	assert.Equal(t, StatusNormal, ThermalStatus(45.0, 22.0))
	assert.Equal(t, StatusWarning, ThermalStatus(65.0, 22.0))
	assert.Equal(t, StatusCritical, ThermalStatus(75.0, 22.0))
	assert.Equal(t, StatusWarning, ThermalStatus(45.0, 42.0))
	assert.Equal(t, StatusCritical, ThermalStatus(45.0, 52.0))
}

func TestCommsStatus(t *testing.T) {
	assert.Equal(t, StatusNormal, CommsStatus(-65.0, 0.5, 150.0))
	assert.Equal(t, StatusWarning, CommsStatus(-85.0, 0.5, 150.0))
	assert.Equal(t, StatusCritical, CommsStatus(-95.0, 0.5, 150.0))
	assert.Equal(t, StatusWarning, CommsStatus(-65.0, 2.0, 150.0))
	assert.Equal(t, StatusCritical, CommsStatus(-65.0, 6.0, 150.0))
	assert.Equal(t, StatusCritical, CommsStatus(-65.0, 0.5, 15.0))
}

func TestIsEclipse(t *testing.T) {
	const period = 5400.0

	// Boundary checks: eclipse is the open interval (0.6, 0.9) of the orbit.
	assert.False(t, IsEclipse(0.6*period, period))
	assert.True(t, IsEclipse(0.61*period, period))
	assert.True(t, IsEclipse(0.75*period, period))
	assert.False(t, IsEclipse(0.9*period, period))
	assert.False(t, IsEclipse(0.5*period, period))
	assert.False(t, IsEclipse(0.95*period, period))
}

func TestIsEclipse_Periodicity(t *testing.T) {
	const period = 5400.0
	for _, t0 := range []float64{0, 100, 3300, 4000, 4859, 4900, 5399} {
		assert.Equal(t, IsEclipse(t0, period), IsEclipse(t0+period, period),
			"eclipse state must be invariant under one full orbit, t=%v", t0)
		assert.Equal(t, IsEclipse(t0, period), IsEclipse(t0+3*period, period))
	}
}
