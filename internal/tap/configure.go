package tap

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"
	"github.com/zxhio/tapresp/pkg/netaddr"
	"github.com/zxhio/tapresp/pkg/utils"
	"golang.org/x/sys/unix"
)

// LinkConfig selects how the address and route of the link are set up.
type LinkConfig string

const (
	LinkConfigNetlink  LinkConfig = "netlink"
	LinkConfigIPRoute2 LinkConfig = "iproute2"
	LinkConfigNone     LinkConfig = "none"
)

var linkConfigs = []LinkConfig{LinkConfigNetlink, LinkConfigIPRoute2, LinkConfigNone}

func (LinkConfig) Type() string { return "LinkConfig" }

func (c LinkConfig) String() string { return string(c) }

func (c *LinkConfig) Set(s string) error {
	for _, lc := range linkConfigs {
		if string(lc) == s {
			*c = lc
			return nil
		}
	}
	return errors.Errorf("invalid link config: %s", s)
}

// LinkAddrs is the kernel side address of the link and the route through it.
type LinkAddrs struct {
	Address netaddr.IPv4Prefix
	Route   netaddr.IPv4Prefix
}

var runCommand = utils.RunCommand

// ConfigureLink brings the link up, adds the address and the route.
// Every step is attempted, the first failure is returned.
func ConfigureLink(lc LinkConfig, name string, addrs LinkAddrs) error {
	l := logrus.WithFields(logrus.Fields{"name": name, "config": lc, "addr": addrs.Address, "route": addrs.Route})

	var err error
	switch lc {
	case LinkConfigNone:
		l.Info("Skip link config")
		return nil
	case LinkConfigIPRoute2:
		err = configureIPRoute2(l, name, addrs)
	case LinkConfigNetlink, "":
		err = configureNetlink(l, name, addrs)
	default:
		return errors.Errorf("invalid link config: %s", lc)
	}
	if err != nil {
		return newDeviceError(name, "configure", err)
	}
	l.Info("Configured link")
	return nil
}

// IPRoute2Commands returns the ip(8) commands configuring the link.
func IPRoute2Commands(name string, addrs LinkAddrs) [][]string {
	return [][]string{
		{"ip", "link", "set", "dev", name, "up"},
		{"ip", "addr", "add", addrs.Address.String(), "dev", name},
		{"ip", "route", "add", addrs.Route.String(), "dev", name},
	}
}

func configureIPRoute2(l *logrus.Entry, name string, addrs LinkAddrs) error {
	var first error
	for _, cmd := range IPRoute2Commands(name, addrs) {
		out, err := runCommand(cmd[0], cmd[1:]...)
		if err != nil {
			// ip(8) fails with "File exists" on a second run
			if strings.Contains(string(out), "File exists") {
				continue
			}
			l.WithError(err).Warn("Fail to run command")
			if first == nil {
				first = err
			}
			continue
		}
		l.WithField("cmd", utils.CommandLine(cmd[0], cmd[1:]...)).Debug("Run command")
	}
	return first
}

func configureNetlink(l *logrus.Entry, name string, addrs LinkAddrs) error {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return errors.Wrap(err, "netlink.LinkByName")
	}

	var first error
	fail := func(err error, op string) {
		if err == nil || errors.Is(err, unix.EEXIST) {
			return
		}
		err = errors.Wrap(err, op)
		l.WithError(err).Warn("Fail to configure link")
		if first == nil {
			first = err
		}
	}

	fail(netlink.LinkSetUp(link), "netlink.LinkSetUp")
	fail(netlink.AddrAdd(link, &netlink.Addr{IPNet: addrs.Address.IPNet()}), "netlink.AddrAdd")
	fail(netlink.RouteAdd(&netlink.Route{
		LinkIndex: link.Attrs().Index,
		Scope:     netlink.SCOPE_LINK,
		Dst:       addrs.Route.IPNet(),
	}), "netlink.RouteAdd")
	return first
}
