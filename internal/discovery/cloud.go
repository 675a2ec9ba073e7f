package discovery

import (
	"context"
	"fmt"

	"github.com/amimof/huego"
	"github.com/charmbracelet/log"
	"github.com/wheelibin/huectl/internal/constants"
)

type bridgeLister func(ctx context.Context) ([]huego.Bridge, error)

// CloudDiscoverer asks the vendor's discovery endpoint which bridges share our public address.
type CloudDiscoverer struct {
	logger *log.Logger
	list   bridgeLister
}

func NewCloudDiscoverer(logger *log.Logger) *CloudDiscoverer {
	return &CloudDiscoverer{logger: logger, list: huego.DiscoverAllContext}
}

func (d *CloudDiscoverer) Discover(ctx context.Context) (string, error) {
	bridges, err := d.list(ctx)
	if err != nil {
		return "", fmt.Errorf("cloud discovery failed: %w", err)
	}

	for _, b := range bridges {
		if ip, ok := ExtractIPv4(b.Host); ok {
			d.logger.Info("Found hue bridge", "ip", ip, "id", b.ID, "method", constants.DiscoveryMethodCloud)
			return ip, nil
		}
	}
	return "", ErrNotFound
}
