package responder

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/zxhio/tapresp/pkg/fastpkt"
	"github.com/zxhio/tapresp/pkg/netaddr"
	"github.com/zxhio/tapresp/pkg/netutil"
	"golang.org/x/time/rate"
)

const (
	DefaultMTU = 1500

	// 802.1Q tag room, frames above the MTU are truncated by the read
	frameOverhead = fastpkt.SizeofEthernet + 4
)

// Identity is the local address pair replies are sent from.
type Identity struct {
	HwAddr netaddr.HwAddr   `json:"hw_addr"`
	IPv4   netaddr.IPv4Addr `json:"ipv4"`
}

// Device reads and writes whole ethernet frames.
type Device interface {
	Name() string

	// ReadFrame blocks until a frame is read into b or ctx is done,
	// in which case ctx.Err() is returned.
	ReadFrame(ctx context.Context, b []byte) (int, error)
	WriteFrame(b []byte) (int, error)
}

type responderOpts struct {
	mtu         int
	logInterval time.Duration
}

type ResponderOpt func(*responderOpts)

func WithMTU(mtu int) ResponderOpt {
	return func(o *responderOpts) { o.mtu = mtu }
}

// WithDropLogInterval limits drop logs to one per interval and kind, 0 logs
// every drop.
func WithDropLogInterval(d time.Duration) ResponderOpt {
	return func(o *responderOpts) { o.logInterval = d }
}

// Responder answers ARP requests and ICMP echo requests for one Identity.
// Frames are handled one at a time, only the counters are safe for
// concurrent use.
type Responder struct {
	Identity
	*responderOpts
	targets map[fastpkt.EtherType]Target

	stats    counters
	verdicts [numVerdicts]atomic.Uint64

	malformedLog   rate.Sometimes
	unsupportedLog rate.Sometimes
}

type counters struct {
	rxPackets atomic.Uint64
	txPackets atomic.Uint64
	rxBytes   atomic.Uint64
	txBytes   atomic.Uint64
	rxIOs     atomic.Uint64
	txIOs     atomic.Uint64
	rxErrors  atomic.Uint64
	txErrors  atomic.Uint64
	rxDropped atomic.Uint64
	txDropped atomic.Uint64
}

func New(id Identity, opts ...ResponderOpt) *Responder {
	o := responderOpts{mtu: DefaultMTU, logInterval: time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Responder{
		Identity:       id,
		responderOpts:  &o,
		targets:        make(map[fastpkt.EtherType]Target),
		malformedLog:   newDropLog(o.logInterval),
		unsupportedLog: newDropLog(o.logInterval),
	}
	r.addTarget(TargetARPReply{Identity: id})
	r.addTarget(TargetICMPEchoReply{Identity: id})
	return r
}

func newDropLog(interval time.Duration) rate.Sometimes {
	if interval <= 0 {
		return rate.Sometimes{Every: 1}
	}
	return rate.Sometimes{First: 1, Interval: interval}
}

func (r *Responder) addTarget(tgt Target) {
	r.targets[tgt.L3Proto()] = tgt
}

// Handle decodes rx and builds the reply, if any, at the end of tx's
// capacity. A tx with capacity of len(rx) is always enough, a smaller one is
// replaced. tx must not overlap rx.
func (r *Responder) Handle(rx, tx []byte) ([]byte, Verdict) {
	if cap(tx) < len(rx) {
		tx = make([]byte, 0, len(rx))
	}

	var pkt fastpkt.Packet
	err := pkt.DecodeFromData(rx)
	if err != nil {
		if fastpkt.IsUnsupported(err) {
			return nil, VerdictDropUnsupported
		}
		return nil, VerdictDropMalformed
	}

	tgt, ok := r.targets[pkt.L3Proto]
	if !ok {
		return nil, VerdictDropUnsupported
	}

	pkt.TxData = tx[:0]
	if !tgt.Execute(&pkt) {
		return nil, VerdictDropPolicy
	}
	return pkt.TxData, tgt.TargetType().Verdict()
}

// Run reads, handles and answers frames from dev until ctx is done or the
// device fails. Cancellation is a clean stop and returns nil.
func (r *Responder) Run(ctx context.Context, dev Device) error {
	frameSize := r.mtu + frameOverhead
	rx := make([]byte, frameSize)
	tx := make([]byte, 0, frameSize)

	l := logrus.WithFields(logrus.Fields{"iface": dev.Name(), "hw_addr": r.HwAddr, "ip": r.IPv4})
	l.WithField("mtu", r.mtu).Info("Start responder")

	for ctx.Err() == nil {
		n, err := dev.ReadFrame(ctx, rx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			r.stats.rxErrors.Add(1)
			return errors.Wrapf(err, "read frame from %s", dev.Name())
		}
		r.stats.rxIOs.Add(1)
		if n == 0 {
			continue
		}
		r.stats.rxPackets.Add(1)
		r.stats.rxBytes.Add(uint64(n))

		reply, verdict := r.Handle(rx[:n], tx)
		r.verdicts[verdict].Add(1)
		r.logFrame(l, rx[:n], reply, verdict)

		if !verdict.IsReply() {
			r.stats.rxDropped.Add(1)
			continue
		}

		err = r.writeFrame(dev, reply)
		if err != nil {
			return err
		}
	}

	l.WithField("verdicts", r.Verdicts()).Info("Stop responder")
	return nil
}

func (r *Responder) writeFrame(dev Device, b []byte) error {
	n, err := dev.WriteFrame(b)
	r.stats.txIOs.Add(1)
	if err != nil {
		r.stats.txErrors.Add(1)
		return errors.Wrapf(err, "write frame to %s", dev.Name())
	}
	if n < len(b) {
		r.stats.txDropped.Add(1)
		logrus.WithFields(logrus.Fields{"iface": dev.Name(), "written": n, "len": len(b)}).Warn("Short write")
		return nil
	}
	r.stats.txPackets.Add(1)
	r.stats.txBytes.Add(uint64(n))
	return nil
}

func (r *Responder) logFrame(l *logrus.Entry, rx, tx []byte, verdict Verdict) {
	if !logrus.IsLevelEnabled(logrus.DebugLevel) {
		return
	}

	switch verdict {
	case VerdictDropMalformed:
		r.malformedLog.Do(func() { r.logDrop(l, rx, verdict) })
	case VerdictDropUnsupported:
		r.unsupportedLog.Do(func() { r.logDrop(l, rx, verdict) })
	}
	l.WithField("verdict", verdict).Debug(fastpkt.Format(rx, fastpkt.WithFormatEthernet()))
	if len(tx) > 0 {
		l.WithField("verdict", verdict).Debug(fastpkt.Format(tx, fastpkt.WithFormatEthernet()))
	}
}

func (r *Responder) logDrop(l *logrus.Entry, rx []byte, verdict Verdict) {
	l.WithFields(logrus.Fields{
		"verdict": verdict,
		"len":     len(rx),
		"frame":   frameSummary(rx),
		"dropped": r.verdicts[verdict].Load(),
	}).Debug("Drop frame")
}

// frameSummary describes the headers of rx that decode, outermost first.
func frameSummary(rx []byte) string {
	eth, payload, err := fastpkt.DecodeEthernet(rx)
	if err != nil {
		return ""
	}
	parts := []string{eth.String()}

	switch eth.Type() {
	case fastpkt.EtherTypeARP:
		arp, err := fastpkt.DecodeARP(payload)
		if err == nil {
			parts = append(parts, arp.String())
		}
	case fastpkt.EtherTypeIPv4:
		ip, payload, err := fastpkt.DecodeIPv4(payload)
		if err != nil {
			break
		}
		parts = append(parts, ip.String())
		if ip.Protocol != fastpkt.IPProtoICMP {
			break
		}
		icmp, _, err := fastpkt.DecodeICMP(payload)
		if err == nil {
			parts = append(parts, icmp.String())
		}
	}
	return strings.Join(parts, ", ")
}

// Stats returns a snapshot of the frame counters.
func (r *Responder) Stats() netutil.Statistics {
	return netutil.Statistics{
		RxPackets: r.stats.rxPackets.Load(),
		TxPackets: r.stats.txPackets.Load(),
		RxBytes:   r.stats.rxBytes.Load(),
		TxBytes:   r.stats.txBytes.Load(),
		RxIOs:     r.stats.rxIOs.Load(),
		TxIOs:     r.stats.txIOs.Load(),
		RxErrors:  r.stats.rxErrors.Load(),
		TxErrors:  r.stats.txErrors.Load(),
		RxDropped: r.stats.rxDropped.Load(),
		TxDropped: r.stats.txDropped.Load(),
		Timestamp: time.Now(),
	}
}

// Verdicts returns the number of frames per verdict.
func (r *Responder) Verdicts() map[Verdict]uint64 {
	m := make(map[Verdict]uint64, len(AllVerdicts))
	for _, v := range AllVerdicts {
		m[v] = r.verdicts[v].Load()
	}
	return m
}
