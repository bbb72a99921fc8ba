package tap

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
	"github.com/zxhio/tapresp/pkg/netutil"
	"github.com/zxhio/tapresp/pkg/utils"
	"golang.org/x/sys/unix"
)

const (
	DefaultName        = "tap69"
	DefaultPollTimeout = 100 * time.Millisecond
)

var ErrPhyNic = errors.New("refuse to use a physical nic")

type deviceOpts struct {
	mtu         int
	pollTimeout int // ms
	keepLink    bool
}

type DeviceOpt func(*deviceOpts)

func newDeviceOpts(opts ...DeviceOpt) deviceOpts {
	o := deviceOpts{pollTimeout: int(DefaultPollTimeout.Milliseconds())}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMTU sets the link mtu, 0 keeps the kernel default.
func WithMTU(mtu int) DeviceOpt {
	return func(o *deviceOpts) { o.mtu = mtu }
}

// WithPollTimeout sets how long a read waits before checking its context
// again, at least 1ms.
func WithPollTimeout(d time.Duration) DeviceOpt {
	return func(o *deviceOpts) { o.pollTimeout = max(int(d.Milliseconds()), 1) }
}

// WithKeepLink leaves the link in place on Close, a later Open of the same
// name attaches to it.
func WithKeepLink(keep bool) DeviceOpt {
	return func(o *deviceOpts) { o.keepLink = keep }
}

// Device is a single queue TAP interface without packet information
// header, every read and write is one ethernet frame.
type Device struct {
	name string
	*deviceOpts
	fd      int
	closers utils.NamedClosers
}

// Open creates the TAP link name and brings it up.
func Open(name string, opts ...DeviceOpt) (*Device, error) {
	o := newDeviceOpts(opts...)

	if netutil.IsPhyNic(name) {
		return nil, newDeviceError(name, "open", ErrPhyNic)
	}

	l := logrus.WithFields(logrus.Fields{"name": name, "existed": netutil.NicExists(name), "keep_link": o.keepLink})

	tuntap := &netlink.Tuntap{
		LinkAttrs: netlink.LinkAttrs{Name: name},
		Mode:      netlink.TUNTAP_MODE_TAP,
		Flags:     netlink.TUNTAP_NO_PI | netlink.TUNTAP_ONE_QUEUE,
		Queues:    1,
	}
	err := netlink.LinkAdd(tuntap)
	if err != nil {
		return nil, newDeviceError(name, "netlink.LinkAdd", err)
	}
	if len(tuntap.Fds) == 0 {
		netlink.LinkDel(tuntap)
		return nil, newDeviceError(name, "netlink.LinkAdd", errors.New("no queue fd"))
	}

	var closers utils.NamedClosers
	if !o.keepLink {
		closers = append(closers, utils.NamedCloser{Name: "netlink.Link", Close: func() error { return netlink.LinkDel(tuntap) }})
	}
	closers = append(closers, utils.NamedCloser{Name: "netlink.Tuntap.Fds", Close: func() error { return closeFiles(tuntap.Fds) }})

	link, err := netlink.LinkByName(name)
	if err != nil {
		closers.Close(&utils.CloseOpt{ReverseOrder: true})
		return nil, newDeviceError(name, "netlink.LinkByName", err)
	}
	l.WithFields(logrus.Fields{
		"index": link.Attrs().Index, "hw_addr": link.Attrs().HardwareAddr, "fds": len(tuntap.Fds),
	}).Info("Created tap link")

	if o.mtu > 0 {
		err = netlink.LinkSetMTU(link, o.mtu)
		if err != nil {
			closers.Close(&utils.CloseOpt{ReverseOrder: true})
			return nil, newDeviceError(name, "netlink.LinkSetMTU", err)
		}
	}

	err = netlink.LinkSetUp(link)
	if err != nil {
		closers.Close(&utils.CloseOpt{ReverseOrder: true})
		return nil, newDeviceError(name, "netlink.LinkSetUp", err)
	}
	l.WithField("mtu", o.mtu).Info("Set tap link up")

	return &Device{
		name:       name,
		deviceOpts: &o,
		fd:         int(tuntap.Fds[0].Fd()),
		closers:    closers,
	}, nil
}

func closeFiles(files []*os.File) error {
	var first error
	for _, f := range files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (d *Device) Name() string { return d.name }

// ReadFrame waits for a frame and reads it into b. It returns ctx.Err() once
// ctx is done, which is observed at least every poll timeout.
func (d *Device) ReadFrame(ctx context.Context, b []byte) (int, error) {
	fds := []unix.PollFd{{Fd: int32(d.fd), Events: unix.POLLIN}}

	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		ready, err := d.waitPoll(fds)
		if err != nil {
			return 0, newDeviceError(d.name, "poll", err)
		}
		if !ready {
			continue
		}

		n, err := unix.Read(d.fd, b)
		if err != nil {
			if errors.Is(err, unix.EINTR) || errors.Is(err, unix.EAGAIN) {
				continue
			}
			return 0, newDeviceError(d.name, "read", err)
		}
		return n, nil
	}
}

func (d *Device) waitPoll(fds []unix.PollFd) (bool, error) {
	fds[0].Revents = 0
	n, err := unix.Poll(fds, d.pollTimeout)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return false, nil
		}
		return false, errors.Wrap(err, "unix.Poll")
	}
	if n == 0 {
		return false, nil
	}

	if fds[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
		return false, errors.Errorf("revents 0x%x", fds[0].Revents)
	}
	return fds[0].Revents&unix.POLLIN != 0, nil
}

// WriteFrame writes one frame.
func (d *Device) WriteFrame(b []byte) (int, error) {
	for {
		n, err := unix.Write(d.fd, b)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return n, newDeviceError(d.name, "write", err)
		}
		return n, nil
	}
}

// Close releases the queue fd and deletes the link unless it is kept.
func (d *Device) Close() error {
	err := d.closers.Close(&utils.CloseOpt{
		ReverseOrder: true,
		Output:       logrus.WithField("name", d.name).Info,
		ErrorOutput:  logrus.WithField("name", d.name).Error,
	})
	d.closers = nil
	return err
}
