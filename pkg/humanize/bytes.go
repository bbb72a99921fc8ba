package humanize

import "fmt"

// For decimal (SI) units: KB, MB, GB, etc.
const SIUnitBase = 1000

var siUnits = []string{"", "K", "M", "G", "T", "P", "E"}

func Bytes(bytes uint64) string { return FormatSIUnit(bytes, "Bytes") }

func BitsRate(bits float64) string { return formatFloatUnit(bits, SIUnitBase, siUnits) + "bps" }

// CountRate formats an event rate, e.g. pps.
func CountRate(n float64, suffix string) string {
	return formatFloatUnit(n, SIUnitBase, siUnits) + suffix
}

func FormatSIUnit(b uint64, suffix string) string { return formatUnit(b, SIUnitBase, siUnits) + suffix }

func formatUnit(b uint64, base uint64, units []string) string {
	if b < base {
		return fmt.Sprintf("%d %s", b, units[0])
	}
	return formatFloatUnit(float64(b), base, units)
}

func formatFloatUnit(value float64, base uint64, units []string) string {
	if value < float64(base) {
		return fmt.Sprintf("%.1f %s", value, units[0])
	}
	for i := 1; i < len(units); i++ {
		value /= float64(base)
		if value < float64(base) {
			return fmt.Sprintf("%.1f %s", value, units[i])
		}
	}
	return fmt.Sprintf("%.1f %s", value, units[len(units)-1])
}
