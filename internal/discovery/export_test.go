package discovery

import (
	"context"

	"github.com/amimof/huego"
	"github.com/charmbracelet/log"
)

func NewCloudDiscovererWithLister(logger *log.Logger, list func(ctx context.Context) ([]huego.Bridge, error)) *CloudDiscoverer {
	return &CloudDiscoverer{logger: logger, list: list}
}

var FriendlyName = friendlyName
