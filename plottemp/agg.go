package plottemp

// AggFunc reduces a non-empty sample of converted temperatures to a single
// statistic.
type AggFunc func(...float64) float64

func Mean(inData ...float64) float64 {
	sum := Sum(inData...)
	return sum / float64(len(inData))
}

func Sum(inData ...float64) float64 {
	var sum float64
	for _, val := range inData {
		sum += val
	}
	return sum
}

func Max(inData ...float64) float64 {
	max := inData[0]
	for _, val := range inData[1:] {
		if val > max {
			max = val
		}
	}
	return max
}

func Min(inData ...float64) float64 {
	min := inData[0]
	for _, val := range inData[1:] {
		if val < min {
			min = val
		}
	}
	return min
}

// WindowStats reduces one masked crop window to a single statistic and the
// count of pixels that contributed. Pixels outside the mask, equal to the
// raster's no-data value, or below the calibration floor are discarded
// before conversion. A count of zero means no valid sample existed; agg is
// never called on an empty sample.
func WindowStats(window []float64, mask *PixelMask, noData float64, hasNoData bool, cal Calibration, agg AggFunc) (float64, int) {
	vals := make([]float64, 0, len(window))
	for i, raw := range window {
		if !mask.Inside[i] {
			continue
		}
		if hasNoData && raw == noData {
			continue
		}
		v, ok := cal.Convert(raw)
		if !ok {
			continue
		}
		vals = append(vals, v)
	}
	if len(vals) == 0 {
		return 0, 0
	}
	return agg(vals...), len(vals)
}
