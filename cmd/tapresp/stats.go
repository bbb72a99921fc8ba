package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/sirupsen/logrus"
	"github.com/zxhio/tapresp/internal/responder"
	"github.com/zxhio/tapresp/pkg/humanize"
	"github.com/zxhio/tapresp/pkg/netutil"
)

type statsSource interface {
	Stats() netutil.Statistics
	Verdicts() map[responder.Verdict]uint64
}

func dumpStats(ctx context.Context, src statsSource, dur time.Duration) {
	ticker := time.NewTicker(dur)
	defer ticker.Stop()

	prev := src.Stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stat := src.Stats()
			logStats(stat, stat.Rate(prev))
			prev = stat
		}
	}
}

func logStats(stat netutil.Statistics, rate netutil.StatisticsRate) {
	logrus.WithFields(logrus.Fields{
		"rx_pkts":    stat.RxPackets,
		"rx_pps":     humanize.CountRate(rate.RxPPS, "pps"),
		"rx_bps":     humanize.BitsRate(rate.RxBPS),
		"tx_pkts":    stat.TxPackets,
		"tx_pps":     humanize.CountRate(rate.TxPPS, "pps"),
		"tx_bps":     humanize.BitsRate(rate.TxBPS),
		"rx_dropped": stat.RxDropped,
		"tx_dropped": stat.TxDropped,
	}).Info("Stats")
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.SeparatorsNone,
				Lines:      tw.LinesNone,
			},
		})),
		tablewriter.WithRowAlignment(tw.AlignCenter),
	)
}

func displayStats(w io.Writer, src statsSource) {
	stat := src.Stats()

	tbl := newTable(w)
	tbl.Header([]string{"dir", "pkts", "bytes", "ios", "errors", "dropped"})
	tbl.Append([]string{
		"rx",
		fmt.Sprintf("%d", stat.RxPackets),
		humanize.Bytes(stat.RxBytes),
		fmt.Sprintf("%d", stat.RxIOs),
		fmt.Sprintf("%d", stat.RxErrors),
		fmt.Sprintf("%d", stat.RxDropped),
	})
	tbl.Append([]string{
		"tx",
		fmt.Sprintf("%d", stat.TxPackets),
		humanize.Bytes(stat.TxBytes),
		fmt.Sprintf("%d", stat.TxIOs),
		fmt.Sprintf("%d", stat.TxErrors),
		fmt.Sprintf("%d", stat.TxDropped),
	})
	tbl.Render()
	fmt.Fprintln(w)

	verdicts := src.Verdicts()
	tbl = newTable(w)
	tbl.Header([]string{"verdict", "frames"})
	for _, v := range responder.AllVerdicts {
		tbl.Append([]string{v.String(), fmt.Sprintf("%d", verdicts[v])})
	}
	tbl.Render()
}
