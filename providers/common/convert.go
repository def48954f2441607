package common

import (
	"fmt"
	"math"
	"time"
)

// FormatDuration renders seconds as "Hh Mm". Whole minutes are truncated,
// never rounded, so 7384s reads "2h 3m".
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	minutes := seconds / 60
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// SecondsToHours converts seconds to hours rounded to one decimal.
func SecondsToHours(seconds int64) float64 {
	return Round(float64(seconds)/3600, 1)
}

// MetersToKilometers converts meters to kilometers rounded to two decimals.
func MetersToKilometers(meters float64) float64 {
	return Round(meters/1000, 2)
}

// Round rounds half away from zero at the given number of decimals.
func Round(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}

// EpochMillisToLocal converts an epoch-milliseconds stamp into the zone.
func EpochMillisToLocal(millis int64, zone *time.Location) time.Time {
	if zone == nil {
		zone = time.UTC
	}
	return time.UnixMilli(millis).In(zone)
}

// ClockLabel renders an epoch-milliseconds stamp as "HH:MM" wall time in the
// zone. A zero stamp reads "Unknown".
func ClockLabel(millis int64, zone *time.Location) string {
	if millis == 0 {
		return "Unknown"
	}
	return EpochMillisToLocal(millis, zone).Format("15:04")
}

// ISOLocal renders an epoch-milliseconds stamp as a zone-local ISO8601
// timestamp with offset, the form the destination date fields expect.
func ISOLocal(millis int64, zone *time.Location) string {
	return EpochMillisToLocal(millis, zone).Format("2006-01-02T15:04:05-07:00")
}

// FormatPace converts an average speed in m/s into a "M:SS min/km" label.
// Non-positive speeds have no meaningful pace and read as empty.
func FormatPace(speed float64) string {
	if speed <= 0 {
		return ""
	}
	paceMinutes := 1000 / (speed * 60)
	minutes := int(paceMinutes)
	seconds := int((paceMinutes - float64(minutes)) * 60)
	return fmt.Sprintf("%d:%02d min/km", minutes, seconds)
}
