package plottemp

// Calibration holds the linear digital-number-to-temperature parameters for
// a sensor. The exact scale and offset are sensor-specific and must be
// supplied by the caller; raw values below Floor are invalid rather than
// convertible, which is how FLIR rasters encode unusable pixels.
type Calibration struct {
	Scale  float64
	Offset float64
	Floor  float64
}

// FlirDefaults is the conversion used by the FLIR IR camera pipeline: raw
// values are already Kelvin, so unit scale with the Kelvin-to-Celsius shift
// and a floor of zero.
func FlirDefaults() Calibration {
	return Calibration{Scale: 1.0, Offset: -273.15, Floor: 0}
}

// Convert maps one raw digital value to the target temperature unit. ok is
// false when the raw value sits below the sensor floor.
func (c Calibration) Convert(raw float64) (float64, bool) {
	if raw < c.Floor {
		return 0, false
	}
	return raw*c.Scale + c.Offset, true
}
