package netutil

import "time"

// Statistics is a point-in-time snapshot of frame counters of one device.
type Statistics struct {
	RxPackets uint64    `json:"rx_packets"`
	TxPackets uint64    `json:"tx_packets"`
	RxBytes   uint64    `json:"rx_bytes"`
	TxBytes   uint64    `json:"tx_bytes"`
	RxIOs     uint64    `json:"rx_ios"` // read
	TxIOs     uint64    `json:"tx_ios"` // write
	RxErrors  uint64    `json:"rx_errors"`
	TxErrors  uint64    `json:"tx_errors"`
	RxDropped uint64    `json:"rx_dropped"`
	TxDropped uint64    `json:"tx_dropped"`
	Timestamp time.Time `json:"timestamp"` // Get statistics time
}

type StatisticsRate struct {
	RxPPS       float64 // Packets Per Second
	TxPPS       float64
	RxBPS       float64 // Bits Per Second
	TxBPS       float64
	RxIOPS      float64 // IOs Per Second
	TxIOPS      float64
	RxErrIOPS   float64 // Errors Per Second
	TxErrIOPS   float64
	RxDroppedPS float64 // Dropped Per Second
	TxDroppedPS float64
}

// Rate computes per second rates between prev and s.
// Zero rate is returned if both have the same timestamp.
func (s Statistics) Rate(prev Statistics) StatisticsRate {
	period := s.Timestamp.Sub(prev.Timestamp).Seconds()
	if period <= 0 {
		return StatisticsRate{}
	}

	perSecond := func(prev, curr uint64) float64 {
		if curr < prev {
			return 0
		}
		return float64(curr-prev) / period
	}

	return StatisticsRate{
		RxPPS:       perSecond(prev.RxPackets, s.RxPackets),
		TxPPS:       perSecond(prev.TxPackets, s.TxPackets),
		RxBPS:       perSecond(prev.RxBytes, s.RxBytes) * 8,
		TxBPS:       perSecond(prev.TxBytes, s.TxBytes) * 8,
		RxIOPS:      perSecond(prev.RxIOs, s.RxIOs),
		TxIOPS:      perSecond(prev.TxIOs, s.TxIOs),
		RxErrIOPS:   perSecond(prev.RxErrors, s.RxErrors),
		TxErrIOPS:   perSecond(prev.TxErrors, s.TxErrors),
		RxDroppedPS: perSecond(prev.RxDropped, s.RxDropped),
		TxDroppedPS: perSecond(prev.TxDropped, s.TxDropped),
	}
}
