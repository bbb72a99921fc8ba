package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/zxhio/tapresp/internal/config"
	"github.com/zxhio/tapresp/internal/responder"
	"github.com/zxhio/tapresp/internal/tap"
	"github.com/zxhio/tapresp/pkg/builder"
	"github.com/zxhio/tapresp/pkg/netaddr"
	"github.com/zxhio/tapresp/pkg/utils"
)

var runOpts struct {
	iface         string
	mtu           int
	keepLink      bool
	pollTimeout   time.Duration
	dropInterval  time.Duration
	hwAddr        netaddr.HwAddr
	ip            netaddr.IPv4Addr
	linkConfig    tap.LinkConfig
	linkAddr      netaddr.IPv4Prefix
	linkRoute     netaddr.IPv4Prefix
	statsInterval time.Duration
	logLevel      string
	logFile       string
}

var runCmd = cobra.Command{
	Use:   "run",
	Short: "Create the tap interface and answer requests until interrupted",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(configPath, cmd.Flags())
		utils.CheckErrorAndExit(err, "Load config failed")

		s, err := cfg.Validate()
		utils.CheckErrorAndExit(err, "Check invalid config")

		if verbose {
			s.LogLevel = logrus.DebugLevel
		}
		setupLogging(cfg.Log, s.LogLevel)

		err = runResponder(s)
		if err != nil {
			logrus.WithError(err).Error("Responder failed")
			os.Exit(1)
		}
	},
}

func init() {
	runOpts.hwAddr, _ = netaddr.ParseHwAddr(config.DefaultHwAddr)
	runOpts.ip, _ = netaddr.ParseIPv4Addr(config.DefaultIP)
	runOpts.linkConfig = tap.LinkConfigNetlink
	runOpts.linkAddr, _ = netaddr.NewIPv4PrefixFromStr(config.DefaultLinkAddress)
	runOpts.linkRoute, _ = netaddr.NewIPv4PrefixFromStr(config.DefaultLinkRoute)

	disableSort(&runCmd)
	runCmd.Flags().StringVarP(&runOpts.iface, "iface", "i", tap.DefaultName, "Tap interface name")
	runCmd.Flags().IntVar(&runOpts.mtu, "mtu", responder.DefaultMTU, "Tap interface mtu")
	runCmd.Flags().BoolVar(&runOpts.keepLink, "keep-link", false, "Leave the tap interface in place on exit")
	runCmd.Flags().DurationVar(&runOpts.pollTimeout, "poll-timeout", tap.DefaultPollTimeout, "Read poll timeout, bounds the shutdown delay")
	runCmd.Flags().Var(&runOpts.hwAddr, "hwaddr", "Mac address to answer for")
	runCmd.Flags().Var(&runOpts.ip, "ip", "Ip address to answer for")
	runCmd.Flags().Var(&runOpts.linkConfig, "link-config", "Link config backend, netlink/iproute2/none")
	runCmd.Flags().Var(&runOpts.linkAddr, "link-addr", "Kernel side address of the tap interface")
	runCmd.Flags().Var(&runOpts.linkRoute, "link-route", "Route through the tap interface")
	runCmd.Flags().DurationVar(&runOpts.statsInterval, "stats-interval", config.DefaultStatsInterval, "Stats log interval, 0 disables")
	runCmd.Flags().StringVar(&runOpts.logLevel, "log-level", "info", "Log level, debug/info/warn/error")
	runCmd.Flags().StringVar(&runOpts.logFile, "log-file", "", "Log file path, empty means stderr")
	runCmd.Flags().DurationVar(&runOpts.dropInterval, "drop-log-interval", config.DefaultDropInterval, "Debug log at most one dropped frame per interval and kind, 0 logs all")
}

func runResponder(s *config.Settings) error {
	l := logrus.WithField("pid", os.Getpid())
	l.WithFields(builder.Fields()).Info("///tapresp start")
	defer l.Info("///tapresp quit")

	dev, err := tap.Open(s.Interface,
		tap.WithMTU(s.MTU),
		tap.WithPollTimeout(s.PollTimeout),
		tap.WithKeepLink(s.KeepLink),
	)
	if err != nil {
		return err
	}
	defer dev.Close()

	err = tap.ConfigureLink(s.LinkConfig, dev.Name(), s.LinkAddrs)
	if err != nil {
		logrus.WithError(err).Warn("Fail to configure link")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logrus.WithField("sig", sig).Info("Recv signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	r := responder.New(s.Identity,
		responder.WithMTU(s.MTU),
		responder.WithDropLogInterval(s.DropLogInterval),
	)
	if s.StatsInterval > 0 {
		go dumpStats(ctx, r, s.StatsInterval)
	}

	err = r.Run(ctx, dev)
	displayStats(os.Stdout, r)
	return err
}
