// Package sampleclient generates synthetic watch sensor sessions and uploads
// them to the receiver, the way the watch app does.
package sampleclient

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

// Sampling rates of the watch sensors, in Hz.
const (
	AccelerometerHz = 100
	GyroscopeHz     = 100
	MagnetometerHz  = 50
	DeviceMotionHz  = 100
	AltimeterHz     = 1

	seaLevelKPa = 101.325
)

// SensorDataPoint is one three-axis reading.
type SensorDataPoint struct {
	Timestamp float64 `json:"timestamp"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
}

// AttitudeData is the device orientation in radians.
type AttitudeData struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// DeviceMotionDataPoint is one fused motion reading.
type DeviceMotionDataPoint struct {
	Timestamp        float64         `json:"timestamp"`
	Attitude         AttitudeData    `json:"attitude"`
	RotationRate     SensorDataPoint `json:"rotationRate"`
	Gravity          SensorDataPoint `json:"gravity"`
	UserAcceleration SensorDataPoint `json:"userAcceleration"`
	MagneticField    SensorDataPoint `json:"magneticField"`
}

// AltimeterDataPoint is one barometer reading.
type AltimeterDataPoint struct {
	Timestamp        float64 `json:"timestamp"`
	RelativeAltitude float64 `json:"relativeAltitude"`
	Pressure         float64 `json:"pressure"`
}

// SessionData is the body the watch app uploads.
type SessionData struct {
	SessionID     string                  `json:"sessionId"`
	Accelerometer []SensorDataPoint       `json:"accelerometer"`
	Gyroscope     []SensorDataPoint       `json:"gyroscope"`
	Magnetometer  []SensorDataPoint       `json:"magnetometer"`
	DeviceMotion  []DeviceMotionDataPoint `json:"deviceMotion"`
	Altimeter     []AltimeterDataPoint    `json:"altimeter"`
	StartTime     time.Time               `json:"startTime"`
	EndTime       time.Time               `json:"endTime"`
}

// TotalSamples counts the samples across all categories.
func (s *SessionData) TotalSamples() int {
	return len(s.Accelerometer) + len(s.Gyroscope) + len(s.Magnetometer) + len(s.DeviceMotion) + len(s.Altimeter)
}

// SessionFilename names a session file after its start time, matching the
// watch app's convention.
func SessionFilename(start time.Time) string {
	return "sensor_data_" + start.Format("2006-01-02_15-04-05") + ".json"
}

// Generate synthesises a session of the given duration starting at start.
// The same rng state produces the same readings.
func Generate(rng *rand.Rand, start time.Time, d time.Duration) *SessionData {
	secs := d.Seconds()
	if secs < 0 {
		secs = 0
	}
	s := &SessionData{
		SessionID: uuid.NewString(),
		StartTime: start,
		EndTime:   start.Add(d),
	}
	t0 := float64(start.UnixNano()) / 1e9

	s.Accelerometer = make([]SensorDataPoint, int(secs*AccelerometerHz))
	for i := range s.Accelerometer {
		s.Accelerometer[i] = triaxial(rng, t0+float64(i)/AccelerometerHz, 0.05, 0, 0, -1)
	}
	s.Gyroscope = make([]SensorDataPoint, int(secs*GyroscopeHz))
	for i := range s.Gyroscope {
		s.Gyroscope[i] = triaxial(rng, t0+float64(i)/GyroscopeHz, 0.2, 0, 0, 0)
	}
	s.Magnetometer = make([]SensorDataPoint, int(secs*MagnetometerHz))
	for i := range s.Magnetometer {
		s.Magnetometer[i] = triaxial(rng, t0+float64(i)/MagnetometerHz, 2, 20, -5, -40)
	}
	s.DeviceMotion = make([]DeviceMotionDataPoint, int(secs*DeviceMotionHz))
	for i := range s.DeviceMotion {
		ts := t0 + float64(i)/DeviceMotionHz
		phase := 2 * math.Pi * float64(i) / DeviceMotionHz
		s.DeviceMotion[i] = DeviceMotionDataPoint{
			Timestamp: ts,
			Attitude: AttitudeData{
				Roll:  0.3 * math.Sin(phase),
				Pitch: 0.2 * math.Cos(phase),
				Yaw:   rng.Float64()*2*math.Pi - math.Pi,
			},
			RotationRate:     triaxial(rng, ts, 0.2, 0, 0, 0),
			Gravity:          triaxial(rng, ts, 0.01, 0, 0, -1),
			UserAcceleration: triaxial(rng, ts, 0.05, 0, 0, 0),
			MagneticField:    triaxial(rng, ts, 2, 20, -5, -40),
		}
	}
	s.Altimeter = make([]AltimeterDataPoint, int(secs*AltimeterHz))
	for i := range s.Altimeter {
		alt := rng.NormFloat64() * 0.5
		s.Altimeter[i] = AltimeterDataPoint{
			Timestamp:        t0 + float64(i)/AltimeterHz,
			RelativeAltitude: alt,
			Pressure:         seaLevelKPa - alt*0.012,
		}
	}
	return s
}

func triaxial(rng *rand.Rand, ts, noise, x, y, z float64) SensorDataPoint {
	return SensorDataPoint{
		Timestamp: ts,
		X:         x + rng.NormFloat64()*noise,
		Y:         y + rng.NormFloat64()*noise,
		Z:         z + rng.NormFloat64()*noise,
	}
}
