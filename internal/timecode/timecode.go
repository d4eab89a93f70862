package timecode

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalid is returned for timecodes that do not parse or are out of range.
var ErrInvalid = errors.New("invalid timecode")

// Parse converts "HH:MM:SS", "MM:SS" or "SS" (each optionally with a ".fff"
// or ",fff" fraction) into seconds. Minutes and seconds fields after the first
// component must be below 60.
func Parse(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalid)
	}
	s = strings.Replace(s, ",", ".", 1)

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	var total float64
	for i, p := range parts {
		last := i == len(parts)-1
		if p == "" {
			return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
		}

		var v float64
		if last {
			f, err := strconv.ParseFloat(p, 64)
			if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
				return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
			}
			v = f
		} else {
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 {
				return 0, fmt.Errorf("%w: %q", ErrInvalid, s)
			}
			v = float64(n)
		}

		if i > 0 && v >= 60 {
			return 0, fmt.Errorf("%w: %q field out of range", ErrInvalid, s)
		}
		total = total*60 + v
	}

	return total, nil
}

// Seconds converts hour, minute and second fields into whole seconds.
func Seconds(h, m, s int) (int, error) {
	if h < 0 || m < 0 || s < 0 || m >= 60 || s >= 60 {
		return 0, fmt.Errorf("%w: %02d:%02d:%02d", ErrInvalid, h, m, s)
	}
	return h*3600 + m*60 + s, nil
}

// Format renders whole seconds as "HH:MM:SS".
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// FormatFloat renders fractional seconds as "HH:MM:SS.mmm", the form ffmpeg accepts for -ss and -to.
func FormatFloat(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int64(seconds*1000 + 0.5)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", ms/3600000, (ms%3600000)/60000, (ms%60000)/1000, ms%1000)
}
