// Huectl controls Philips Hue lights over the bridge's local API.
//
// Usage:
//
//	huectl [command] [flags]
//
// See 'huectl --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wheelibin/huectl/internal/concurrency"
	"github.com/wheelibin/huectl/internal/config"
	"github.com/wheelibin/huectl/internal/constants"
	"github.com/wheelibin/huectl/internal/discovery"
	"github.com/wheelibin/huectl/internal/hue"
	"github.com/wheelibin/huectl/internal/repos"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	v       = viper.New()
	cfgFile string

	cfg    *config.Config
	logger *log.Logger
	// nil when the cache could not be opened
	bridgeCache *repos.BridgeRepo
)

func main() {
	// stop long running commands (presets, status --watch) on ctrl+c
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// PersistentPostRunE is skipped when a command fails
		_ = closeCache()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "huectl",
	Short: "Control Philips Hue lights on the local network",
	Long: `Discover a Hue bridge, pair with it and drive its lights.

The bridge address comes from --ip or the config file, then the local cache,
then network discovery.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return closeCache() },
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default searches /etc/huectl, ~/.config/huectl and .)")
	flags.String("ip", "", "bridge IP address (skips the cache and discovery)")
	flags.String("username", "", "username to authenticate with (defaults to the SHA-1 of the hostname)")
	flags.String("client-id", constants.DefaultClientID, "client id sent when pairing")
	flags.String("discovery", constants.DiscoveryMethodSSDP, "discovery method: ssdp, mdns, cloud or all")
	flags.String("log-level", "info", "log level")
	flags.String("log-file", "", "write logs to this file instead of stderr")

	bindings := map[string]string{
		"bridgeIp":         "ip",
		"username":         "username",
		"clientId":         "client-id",
		"discovery.method": "discovery",
		"log.level":        "log-level",
		"log.file":         "log-file",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func setup(cmd *cobra.Command, args []string) error {
	if err := config.InitialiseConfig(v, cfgFile); err != nil {
		return err
	}

	var err error
	cfg, err = config.Load(v)
	if err != nil {
		return err
	}

	logger, err = newLogger(cfg.Log)
	if err != nil {
		return err
	}

	bridgeCache, err = openCache(cfg.CachePath)
	if err != nil {
		logger.Warn("bridge cache unavailable", "path", cfg.CachePath, "err", err)
		bridgeCache = nil
	}
	return nil
}

func newLogger(c config.Log) (*log.Logger, error) {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}

	if c.File != "" {
		return log.NewWithOptions(&lumberjack.Logger{
			Filename: c.File,
			MaxAge:   3,
		}, log.Options{
			Level:      level,
			TimeFormat: "2006/01/02 15:04:05",
		}), nil
	}

	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	}), nil
}

// openCache returns nil without an error when path is empty, which disables the cache.
func openCache(path string) (*repos.BridgeRepo, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := repos.OpenDB(path)
	if err != nil {
		return nil, err
	}
	repo, err := repos.NewBridgeRepo(logger, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return repo, nil
}

func closeCache() error {
	if bridgeCache == nil {
		return nil
	}
	err := bridgeCache.Close()
	bridgeCache = nil
	return err
}

// newDiscoverer builds the discoverer for the configured method.
var newDiscoverer = func() hue.Discoverer {
	ssdp := discovery.NewSSDPDiscoverer(
		logger,
		discovery.NewMulticastSearcher(),
		hue.NewAPIService(logger, cfg.Timeout),
		cfg.Discovery.Timeout,
	)
	mdns := discovery.NewMDNSDiscoverer(logger, cfg.Discovery.Timeout)
	cloud := discovery.NewCloudDiscoverer(logger)

	switch cfg.Discovery.Method {
	case constants.DiscoveryMethodMDNS:
		return mdns
	case constants.DiscoveryMethodCloud:
		return cloud
	case constants.DiscoveryMethodAll:
		return discovery.NewChain(logger).
			Add(constants.DiscoveryMethodSSDP, ssdp).
			Add(constants.DiscoveryMethodMDNS, mdns).
			Add(constants.DiscoveryMethodCloud, cloud)
	default:
		return ssdp
	}
}

// discoverAndCache runs network discovery and remembers the result.
func discoverAndCache(ctx context.Context) (string, error) {
	ip, err := newDiscoverer().Discover(ctx)
	if err != nil {
		return "", err
	}
	if bridgeCache != nil {
		if err := bridgeCache.SaveIP(ip); err != nil {
			logger.Warn("could not cache bridge ip", "ip", ip, "err", err)
		}
	}
	return ip, nil
}

// resolveBridge picks the bridge ip and username from config, then the cache, then discovery.
func resolveBridge(ctx context.Context) (ip string, username string, err error) {
	ip, username = cfg.BridgeIP, cfg.Username

	if bridgeCache != nil {
		cached, err := bridgeCache.Get()
		if err != nil {
			logger.Warn("could not read bridge cache", "err", err)
		} else if cached != nil && (ip == "" || ip == cached.IP) {
			ip = cached.IP
			if username == "" {
				username = cached.Username
			}
		}
	}

	if ip == "" {
		ip, err = discoverAndCache(ctx)
		if err != nil {
			return "", "", err
		}
	}
	return ip, username, nil
}

func newSession(ctx context.Context, secret string) (*hue.Session, error) {
	ip, username, err := resolveBridge(ctx)
	if err != nil {
		return nil, err
	}
	if secret == "" {
		secret = username
	}

	return hue.NewSession(ctx, logger, hue.Options{
		IP:       ip,
		ClientID: cfg.ClientID,
		Secret:   secret,
		Timeout:  cfg.Timeout,
		Limiter: concurrency.NewSlidingWindowLimiter(
			cfg.RateLimit.Max,
			cfg.RateLimit.Window,
			cfg.RateLimit.PollInterval,
		),
	})
}
