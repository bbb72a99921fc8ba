// Package config loads the responder configuration with viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/zxhio/tapresp/internal/responder"
	"github.com/zxhio/tapresp/internal/tap"
	"github.com/zxhio/tapresp/pkg/netaddr"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. TAPRESP_IDENTITY_IP.
const EnvPrefix = "TAPRESP"

const (
	DefaultHwAddr        = "ba:14:16:19:10:1b"
	DefaultIP            = "10.10.10.5"
	DefaultLinkAddress   = "10.10.10.1"
	DefaultLinkRoute     = "10.10.10.0/24"
	DefaultStatsInterval = 10 * time.Second
	DefaultDropInterval  = time.Second

	minMTU = 68
	maxMTU = 65535

	maxIfaceNameLen = 15 // IFNAMSIZ - 1
)

type Config struct {
	Interface InterfaceConfig `mapstructure:"interface" yaml:"interface"`
	Identity  IdentityConfig  `mapstructure:"identity" yaml:"identity"`
	Link      LinkConfig      `mapstructure:"link" yaml:"link"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Stats     StatsConfig     `mapstructure:"stats" yaml:"stats"`
}

type InterfaceConfig struct {
	Name        string        `mapstructure:"name" yaml:"name"`
	MTU         int           `mapstructure:"mtu" yaml:"mtu"`
	KeepLink    bool          `mapstructure:"keep_link" yaml:"keep_link"`
	PollTimeout time.Duration `mapstructure:"poll_timeout" yaml:"poll_timeout"`
}

// IdentityConfig is the address pair the responder answers for.
type IdentityConfig struct {
	HwAddr string `mapstructure:"hwaddr" yaml:"hwaddr"`
	IP     string `mapstructure:"ip" yaml:"ip"`
}

// LinkConfig is the kernel side of the tap link.
type LinkConfig struct {
	Config  string `mapstructure:"config" yaml:"config"`   // netlink / iproute2 / none
	Address string `mapstructure:"address" yaml:"address"` // ip or cidr, ip means /32
	Route   string `mapstructure:"route" yaml:"route"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"` // debug / info / warn / error
	File       string `mapstructure:"file" yaml:"file"`   // empty means stderr
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`

	DropInterval time.Duration `mapstructure:"drop_interval" yaml:"drop_interval"` // 0 logs every drop
}

type StatsConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"` // 0 disables periodic stats
}

// Settings are the validated, typed values of a Config.
type Settings struct {
	Interface       string
	MTU             int
	KeepLink        bool
	PollTimeout     time.Duration
	Identity        responder.Identity
	LinkConfig      tap.LinkConfig
	LinkAddrs       tap.LinkAddrs
	LogLevel        logrus.Level
	DropLogInterval time.Duration
	StatsInterval   time.Duration
}

// FlagKeys maps command line flag names to configuration keys.
var FlagKeys = map[string]string{
	"iface":             "interface.name",
	"mtu":               "interface.mtu",
	"keep-link":         "interface.keep_link",
	"poll-timeout":      "interface.poll_timeout",
	"hwaddr":            "identity.hwaddr",
	"ip":                "identity.ip",
	"link-config":       "link.config",
	"link-addr":         "link.address",
	"link-route":        "link.route",
	"log-level":         "log.level",
	"log-file":          "log.file",
	"drop-log-interval": "log.drop_interval",
	"stats-interval":    "stats.interval",
}

// Load merges defaults, the optional file at path, TAPRESP_ environment
// variables and the changed flags of fs, later ones win.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "read config file")
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range FlagKeys {
			f := fs.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errors.Wrapf(err, "bind flag %s", name)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("interface.name", tap.DefaultName)
	v.SetDefault("interface.mtu", responder.DefaultMTU)
	v.SetDefault("interface.keep_link", false)
	v.SetDefault("interface.poll_timeout", tap.DefaultPollTimeout)

	v.SetDefault("identity.hwaddr", DefaultHwAddr)
	v.SetDefault("identity.ip", DefaultIP)

	v.SetDefault("link.config", string(tap.LinkConfigNetlink))
	v.SetDefault("link.address", DefaultLinkAddress)
	v.SetDefault("link.route", DefaultLinkRoute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 10)
	v.SetDefault("log.max_age_days", 60)
	v.SetDefault("log.compress", false)
	v.SetDefault("log.drop_interval", DefaultDropInterval)

	v.SetDefault("stats.interval", DefaultStatsInterval)
}

// Validate checks every value and returns them typed.
func (cfg *Config) Validate() (*Settings, error) {
	var s Settings

	// Interface
	name := cfg.Interface.Name
	if name == "" || len(name) > maxIfaceNameLen || strings.ContainsAny(name, "/ \t") {
		return nil, fmt.Errorf("invalid interface.name: %q", name)
	}
	if cfg.Interface.MTU < minMTU || cfg.Interface.MTU > maxMTU {
		return nil, fmt.Errorf("invalid interface.mtu: %d (must be %d-%d)", cfg.Interface.MTU, minMTU, maxMTU)
	}
	if cfg.Interface.PollTimeout < time.Millisecond {
		return nil, fmt.Errorf("invalid interface.poll_timeout: %s (must be at least 1ms)", cfg.Interface.PollTimeout)
	}
	s.Interface = name
	s.MTU = cfg.Interface.MTU
	s.KeepLink = cfg.Interface.KeepLink
	s.PollTimeout = cfg.Interface.PollTimeout

	// Identity
	hwAddr, err := netaddr.ParseHwAddr(cfg.Identity.HwAddr)
	if err != nil {
		return nil, errors.Wrap(err, "invalid identity.hwaddr")
	}
	if hwAddr.IsZero() || hwAddr[0]&0x01 != 0 {
		return nil, fmt.Errorf("invalid identity.hwaddr: %s is not a unicast address", hwAddr)
	}
	ip, err := netaddr.ParseIPv4Addr(cfg.Identity.IP)
	if err != nil {
		return nil, errors.Wrap(err, "invalid identity.ip")
	}
	s.Identity = responder.Identity{HwAddr: hwAddr, IPv4: ip}

	// Link
	if err := s.LinkConfig.Set(cfg.Link.Config); err != nil {
		return nil, errors.Wrap(err, "invalid link.config")
	}
	s.LinkAddrs.Address, err = netaddr.NewIPv4HostPrefixFromStr(cfg.Link.Address)
	if err != nil {
		return nil, errors.Wrap(err, "invalid link.address")
	}
	s.LinkAddrs.Route, err = netaddr.NewIPv4PrefixFromCIDRStr(cfg.Link.Route)
	if err != nil {
		return nil, errors.Wrap(err, "invalid link.route")
	}

	// Log
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
		s.LogLevel, _ = logrus.ParseLevel(cfg.Log.Level)
	default:
		return nil, fmt.Errorf("invalid log.level: %s (must be debug/info/warn/error)", cfg.Log.Level)
	}
	if cfg.Log.DropInterval < 0 {
		return nil, fmt.Errorf("invalid log.drop_interval: %s", cfg.Log.DropInterval)
	}
	s.DropLogInterval = cfg.Log.DropInterval

	// Stats
	if cfg.Stats.Interval < 0 {
		return nil, fmt.Errorf("invalid stats.interval: %s", cfg.Stats.Interval)
	}
	s.StatsInterval = cfg.Stats.Interval

	if s.LinkConfig != tap.LinkConfigNone {
		l := logrus.WithFields(logrus.Fields{"ip": ip, "link_addr": s.LinkAddrs.Address, "link_route": s.LinkAddrs.Route})
		if s.LinkAddrs.Address.Addr == ip {
			l.Warn("Identity ip is also the link address, the kernel answers for it too")
		}
		if !s.LinkAddrs.Route.ContainsAddrV4(ip) {
			l.Warn("Identity ip is not routed through the link")
		}
	}
	return &s, nil
}

// YAML returns the configuration in the file format Load reads.
func (cfg *Config) YAML() ([]byte, error) {
	return yaml.Marshal(cfg)
}
