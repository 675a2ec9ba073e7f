package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/grandcat/zeroconf"
	"github.com/wheelibin/huectl/internal/constants"
)

// MDNSDiscoverer browses for the bridge's _hue._tcp service.
type MDNSDiscoverer struct {
	logger  *log.Logger
	timeout time.Duration
}

func NewMDNSDiscoverer(logger *log.Logger, timeout time.Duration) *MDNSDiscoverer {
	if timeout <= 0 {
		timeout = constants.DefaultDiscoveryTimeout
	}
	return &MDNSDiscoverer{logger: logger, timeout: timeout}
}

func (d *MDNSDiscoverer) Discover(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return "", fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan string, 1)

	go func() {
		for entry := range entries {
			if len(entry.AddrIPv4) == 0 {
				continue
			}
			d.logger.Debug("mdns entry", "instance", entry.Instance, "ip", entry.AddrIPv4[0])
			select {
			case found <- entry.AddrIPv4[0].String():
				cancel()
			default:
			}
		}
	}()

	if err := resolver.Browse(ctx, constants.DiscoveryMDNSService, constants.DiscoveryMDNSDomain, entries); err != nil {
		return "", fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()

	select {
	case ip := <-found:
		d.logger.Info("Found hue bridge", "ip", ip, "method", constants.DiscoveryMethodMDNS)
		return ip, nil
	default:
		return "", ErrNotFound
	}
}
